package ytvideoid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		raw    string
		wantId string
		wantOk bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"http://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"youtube.com/watch?v=abc_-123", "abc_-123", true},
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://vimeo.com/12345", "", false},
		{"not a url at all", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, ok := Extract(tt.raw)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantId, id)
		})
	}
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, "https://i.ytimg.com/vi/abc/hqdefault.jpg", ThumbnailURL("abc"))
}
