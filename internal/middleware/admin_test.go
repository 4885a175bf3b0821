package middleware

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseUserIDs(t *testing.T) {
	assert := assert.New(t)

	a, b := uuid.New(), uuid.New()
	ids, err := ParseUserIDs(" " + a.String() + ", ," + b.String())
	assert.NoError(err)
	assert.Equal([]uuid.UUID{a, b}, ids)

	ids, err = ParseUserIDs("")
	assert.NoError(err)
	assert.Empty(ids)

	_, err = ParseUserIDs("not-a-uuid")
	assert.Error(err)
}
