package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"idempotency_key",
			"resource",
			"start_date",
			"end_date",
			"party_size",
			"line_items",
			"total_price",
			"currency",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"idempotency_key": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 128,
			},

			"resource": resourceRef,

			"start_date": bson.M{
				"bsonType": "date",
			},

			"end_date": bson.M{
				"bsonType": "date",
			},

			"party_size": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
				"maximum":  500,
			},

			"line_items": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"resource", "unit_rate", "quantity", "days", "subtotal"},
					"properties": bson.M{
						"resource":  resourceRef,
						"unit_rate": money,
						"quantity": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  1,
						},
						"days": bson.M{
							"bsonType": []string{"int", "long"},
							"minimum":  1,
						},
						"subtotal": money,
					},
				},
			},

			"base_fee_total": money,
			"total_price":    money,

			"currency": bson.M{
				"bsonType":  "string",
				"minLength": 3,
				"maxLength": 3,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"Pending",
					"Confirmed",
					"Cancelled",
				},
			},

			"special_requests": bson.M{
				"bsonType":  "string",
				"maxLength": 1000,
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
