package ids

import (
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewULIDIsMonotonic(t *testing.T) {
	prev := NewULID()
	for i := 0; i < 1000; i++ {
		next := NewULID()
		_, err := ulid.ParseStrict(next)
		require.NoError(t, err)
		assert.Less(t, prev, next)
		prev = next
	}
}

func TestNewUUID(t *testing.T) {
	_, err := uuid.Parse(NewUUID())
	assert.NoError(t, err)
	assert.NotEqual(t, NewUUID(), NewUUID())
}
