package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/udlcoach/pkg/adapters/file"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunSessionRepositoryContract(t, file.New(t.TempDir()))
}

func TestFileStore_ListIgnoresTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "abc", domain.NewRecord("abc", time.Now())))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tmp-x-123.json.tmp"), []byte("{"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.json"), 0755))

	tokens, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc"}, tokens)
}

func TestFileStore_ListMissingDirectory(t *testing.T) {
	tokens, err := file.New(filepath.Join(t.TempDir(), "absent")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestFileStore_RejectsPathTokens(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, token := range []string{"../escape", "a/b", `a\b`, ".."} {
		err := store.Put(ctx, token, domain.NewRecord(token, time.Now()))
		assert.ErrorIs(t, err, domain.ErrInvalidInput, token)
		_, err = store.Get(ctx, token)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, token)
	}
	_, err := store.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrMissingToken)
}

func TestFileStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{not json"), 0644))

	_, err := file.New(dir).Get(context.Background(), "bad")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}
