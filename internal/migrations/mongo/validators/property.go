package validators

import "go.mongodb.org/mongo-driver/bson"

var PropertyValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"name"},
		"additionalProperties": true,

		"properties": bson.M{
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},

			"address": bson.M{
				"bsonType": "string",
			},

			"coordinates": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"lat": bson.M{"bsonType": []string{"double", "int"}, "minimum": -90, "maximum": 90},
					"lng": bson.M{"bsonType": []string{"double", "int"}, "minimum": -180, "maximum": 180},
				},
			},
		},
	},
}
