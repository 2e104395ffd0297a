package utils

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRandomBase36(t *testing.T) {
	length := 4
	code := RandomBase36(length)

	assert.Equal(t, length, len(code))

	// Ensure only charset characters are used
	for _, char := range code {
		assert.True(t, strings.Contains(charset, string(char)))
	}
}

func TestNewID(t *testing.T) {
	id := NewID()

	assert.NotEmpty(t, id)
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, NewID())
}

func TestNewEventID(t *testing.T) {
	_, err := uuid.Parse(NewEventID())
	assert.NoError(t, err)
}
