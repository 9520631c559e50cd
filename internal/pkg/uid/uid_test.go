package uid

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnowflake_Generate(t *testing.T) {
	// Arrange
	gen, err := NewSnowflake()
	require.NoError(t, err)

	// Act
	prev := gen.Generate()
	for range 1000 {
		next := gen.Generate()

		// Assert
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestNewSnowflakeNode_OutOfRange(t *testing.T) {
	_, err := NewSnowflakeNode(4096)
	assert.Error(t, err)
}

func TestUUID_Generate(t *testing.T) {
	// Arrange
	gen := NewUUID()

	// Act
	id := gen.Generate()

	// Assert
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.NotEqual(t, id, gen.Generate())
}

func TestGenerators_SatisfyInterfaces(t *testing.T) {
	var _ StringID = NewUUID()
	var _ NumberID = &Snowflake{}
}
