package validators

import "go.mongodb.org/mongo-driver/bson"

// BookingValidator only pins the fields the scheduler reads and writes; the
// booking service owns the rest of the document.
var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"status",
			"property_id",
			"check_in",
			"check_out",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"status": bson.M{
				"enum": []string{
					"pending_approval",
					"approved",
					"confirmed",
					"checked_in",
					"checked_out",
					"completed",
					"cancelled",
				},
			},

			"property_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
			},

			"check_in": bson.M{
				"bsonType": "date",
			},

			"check_out": bson.M{
				"bsonType": "date",
			},

			"jobs_created": bson.M{
				"bsonType": "bool",
			},

			"created_job_ids": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},

			"job_creation_error": bson.M{
				"bsonType": "string",
			},

			"jobs_created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
