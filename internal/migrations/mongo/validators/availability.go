package validators

import "go.mongodb.org/mongo-driver/bson"

var resourceRef = bson.M{
	"bsonType": "object",
	"required": []string{"kind", "id"},
	"properties": bson.M{
		"kind": bson.M{
			"bsonType": "string",
			"enum":     []string{"campsite", "rental_item"},
		},
		"id": bson.M{
			"bsonType":  "string",
			"minLength": 1,
		},
	},
}

var AvailabilityWindowValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"resource",
			"start_date",
			"end_date",
			"status",
			"created_at",
			"updated_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"resource": resourceRef,

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"Available", "Unavailable", "Maintenance"},
			},

			"notes": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"booking_id": bson.M{
				"bsonType": "string",
			},

			"created_at": bson.M{
				"bsonType": "date",
			},

			"updated_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
