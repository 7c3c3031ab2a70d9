package validators

import "go.mongodb.org/mongo-driver/bson"

var money = bson.M{"bsonType": []string{"int", "long"}, "minimum": 0}

var ResourceValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "kind", "name", "active", "created_at"},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"campsite", "rental_item"},
			},

			"name": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 120,
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"campsite": bson.M{
				"bsonType": "object",
				"required": []string{"capacity", "daily_fee"},
				"properties": bson.M{
					"capacity": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  1,
						"maximum":  500,
					},
					"daily_fee": money,
					"coordinates": bson.M{
						"bsonType": "object",
						"properties": bson.M{
							"lat": bson.M{"bsonType": "double", "minimum": -90, "maximum": 90},
							"lng": bson.M{"bsonType": "double", "minimum": -180, "maximum": 180},
						},
					},
				},
			},

			"rental_item": bson.M{
				"bsonType": "object",
				"required": []string{"daily_rate", "category", "stock_status"},
				"properties": bson.M{
					"daily_rate": money,
					"category": bson.M{
						"bsonType":  "string",
						"maxLength": 50,
					},
					"stock_status": bson.M{
						"bsonType": "string",
						"enum":     []string{"in_stock", "low_stock", "out_of_stock"},
					},
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
