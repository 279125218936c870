package randstr

import "math/rand"

type Generator struct {
	letters []byte
}

func New(letters []byte) *Generator {
	return &Generator{letters: letters}
}

func (g *Generator) GenerateRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = g.letters[rand.Intn(len(g.letters))]
	}

	return string(b)
}

// NewHex returns a generator over the lowercase hexadecimal alphabet.
func NewHex() *Generator {
	return New([]byte("0123456789abcdef"))
}
