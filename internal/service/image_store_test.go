package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalImageStore(t *testing.T) {
	root := t.TempDir()
	store := service.NewLocalImageStore(root, "/media")
	ctx := context.Background()

	ref, err := store.Save(ctx, pngPayload("soup"))
	require.NoError(t, err)
	assert.Equal(t, "/media/recipes/soup.png", ref)

	data, err := os.ReadFile(filepath.Join(root, "recipes", "soup.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

	require.NoError(t, store.Delete(ctx, ref))
	_, err = os.Stat(filepath.Join(root, "recipes", "soup.png"))
	assert.True(t, os.IsNotExist(err))

	// deleting twice is not an error
	assert.NoError(t, store.Delete(ctx, ref))
}

func TestLocalImageStoreStaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "media")
	store := service.NewLocalImageStore(root, "/media/")

	payload := pngPayload("x")
	payload.Filename = "../../escape.png"
	_, err := store.Save(context.Background(), payload)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "escape.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(parent, "escape.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestViewerCanModify(t *testing.T) {
	assert.False(t, service.Viewer{}.CanModify(0))
	assert.True(t, service.Viewer{ID: 3}.CanModify(3))
	assert.False(t, service.Viewer{ID: 3}.CanModify(4))
	assert.True(t, service.Viewer{ID: 9, IsStaff: true}.CanModify(4))
}
