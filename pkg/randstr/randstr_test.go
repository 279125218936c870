package randstr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomString(t *testing.T) {
	g := NewHex()

	s := g.GenerateRandomString(8)
	assert.Len(t, s, 8)
	for _, c := range s {
		assert.Contains(t, "0123456789abcdef", string(c))
	}

	assert.Empty(t, g.GenerateRandomString(0))
}

func TestGenerateRandomStringCustomAlphabet(t *testing.T) {
	g := New([]byte("ab"))

	s := g.GenerateRandomString(64)
	for _, c := range s {
		assert.Contains(t, "ab", string(c))
	}
}
