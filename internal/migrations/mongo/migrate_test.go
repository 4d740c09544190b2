package mongo

import (
	"testing"

	"villaops/internal/jobs/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections(t *testing.T) {
	var names []string
	for _, c := range Collections() {
		names = append(names, c.Name)
		assert.NotEmpty(t, c.Indexes, c.Name)
		assert.Contains(t, c.Validator, "$jsonSchema", c.Name)
	}

	assert.Equal(t, []string{repository.BookingsCollection, repository.TasksCollection, "Staff", "Properties"}, names)
}

func TestTaskIdentityIndexIsUnique(t *testing.T) {
	idx := TasksIndexes[0]

	assert.Equal(t, bson.D{{Key: "booking_id", Value: 1}, {Key: "template_id", Value: 1}}, idx.Keys)
	require.NotNil(t, idx.Options)
	require.NotNil(t, idx.Options.Unique)
	assert.True(t, *idx.Options.Unique)
	require.NotNil(t, idx.Options.Name)
	assert.Equal(t, TaskIdentityIndex, *idx.Options.Name)
}

func TestTaskValidatorRequiresIdentity(t *testing.T) {
	schema := Collections()[1].Validator["$jsonSchema"].(bson.M)
	required := schema["required"].([]string)

	assert.Contains(t, required, "booking_id")
	assert.Contains(t, required, "template_id")
	assert.Contains(t, required, "status")
}
