package common

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWipeByteArray(t *testing.T) {
	key := []byte("MySecretAESKey123")
	view := key[4:10]

	WipeByteArray(key)

	assert.Equal(t, make([]byte, len(key)), key)
	assert.Equal(t, make([]byte, len(view)), view, "shared backing array is cleared too")
	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(16)
	b := GenerateRandByteArray(16)

	assert.Len(t, a, 16)
	assert.False(t, bytes.Equal(a, b), "two 16-byte salts should differ")
	assert.Empty(t, GenerateRandByteArray(0))
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	all := []error{ErrorInternal, ErrDatabaseUnavailable, ErrDatabaseNotLoaded,
		ErrInvalidContainer, ErrUnsupportedSource, ErrorValidation}

	for i, a := range all {
		for j, b := range all {
			assert.Equal(t, i == j, errors.Is(a, b), "%v vs %v", a, b)
		}
	}
}
