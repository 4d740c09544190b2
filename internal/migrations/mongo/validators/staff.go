package validators

import "go.mongodb.org/mongo-driver/bson"

var StaffValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"name",
			"active",
			"available",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"active": bson.M{
				"bsonType": "bool",
			},

			"available": bson.M{
				"bsonType": "bool",
			},

			"skills": bson.M{
				"bsonType": "array",
				"items":    bson.M{"bsonType": "string"},
			},

			"rating": bson.M{
				"bsonType": []string{"double", "int"},
				"minimum":  0,
				"maximum":  5,
			},

			"daily_capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"location": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"lat": bson.M{"bsonType": []string{"double", "int"}, "minimum": -90, "maximum": 90},
					"lng": bson.M{"bsonType": []string{"double", "int"}, "minimum": -180, "maximum": 180},
				},
			},
		},
	},
}
