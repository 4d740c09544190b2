package validators

import "go.mongodb.org/mongo-driver/bson"

var TaskValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"booking_id",
			"property_id",
			"template_id",
			"title",
			"category",
			"priority",
			"scheduled_at",
			"deadline",
			"estimated_duration_minutes",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"booking_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"template_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},

			"priority": bson.M{
				"enum": []string{"low", "medium", "high", "urgent"},
			},

			"scheduled_at": bson.M{
				"bsonType": "date",
			},

			"deadline": bson.M{
				"bsonType": "date",
			},

			"estimated_duration_minutes": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"status": bson.M{
				"enum": []string{"pending", "assigned", "in_progress", "completed", "cancelled"},
			},

			"assignment_confidence": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
				"maximum":  1,
			},

			"actual_duration_minutes": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"labor_cost": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"supplies_cost": bson.M{
				"bsonType": []string{"double", "int", "long"},
				"minimum":  0,
			},

			"completed_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
