package filestorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
)

func TestStaticContentTypes_Resolve(t *testing.T) {
	types := DefaultContentTypes()

	tests := []struct {
		ext  string
		want string
	}{
		{".png", "image/png"},
		{"PNG", "image/png"},
		{".JPG", "image/jpeg"},
		{".pdf", "application/pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			got, err := types.Resolve(tt.ext)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := types.Resolve(".xyz")
	assert.ErrorIs(t, err, apperrors.ErrUnsupportedContentType)
	assert.True(t, apperrors.IsClientError(err))
}

func TestExtensionPolicy_Allows(t *testing.T) {
	p := NewExtensionPolicy([]string{"PNG", ".Jpg", "pdf", "", ".png"})

	assert.True(t, p.Allows(".png"))
	assert.True(t, p.Allows(".PNG"))
	assert.True(t, p.Allows("jpg"))
	assert.True(t, p.Allows(".pdf"))
	assert.False(t, p.Allows(".exe"))
	assert.False(t, p.Allows(""))
}
