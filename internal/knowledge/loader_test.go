package knowledge

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// deniedFs fails every Open with a permission error.
type deniedFs struct {
	afero.Fs
}

func (deniedFs) Open(name string) (afero.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
}

func newLoader(t *testing.T, fsys afero.Fs) *FileLoader {
	t.Helper()
	l, err := NewFileLoader(fsys, DefaultPath)
	require.NoError(t, err)
	return l
}

func TestNewFileLoader_Validates(t *testing.T) {
	_, err := NewFileLoader(nil, DefaultPath)
	require.Error(t, err)

	_, err = NewFileLoader(afero.NewMemMapFs(), "  ")
	require.Error(t, err)
}

func TestLoad_ReturnsContentVerbatim(t *testing.T) {
	fsys := afero.NewMemMapFs()
	content := "  Store hours: 9-17.\nReturns within 30 days.\n\n"
	require.NoError(t, afero.WriteFile(fsys, DefaultPath, []byte(content), 0o644))

	got, err := newLoader(t, fsys).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, content, got)
}

func TestLoad_ReadsFreshOnEveryCall(t *testing.T) {
	fsys := afero.NewMemMapFs()
	l := newLoader(t, fsys)
	require.NoError(t, afero.WriteFile(fsys, DefaultPath, []byte("v1"), 0o644))

	got, err := l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v1", got)

	require.NoError(t, afero.WriteFile(fsys, DefaultPath, []byte("v2"), 0o644))
	got, err = l.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "v2", got)
}

func TestLoad_MissingFileReturnsFallback(t *testing.T) {
	got, err := newLoader(t, afero.NewMemMapFs()).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "No knowledge base file found. Please create 'knowledge_base.txt' with your data.", got)
}

func TestLoad_MissingFileOnDisk(t *testing.T) {
	fsys := afero.NewBasePathFs(afero.NewOsFs(), t.TempDir())
	got, err := newLoader(t, fsys).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, FallbackText(DefaultPath), got)
}

func TestLoad_FileOnDisk(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(dir+"/"+DefaultPath, []byte("مرحبا"), 0o644))

	got, err := newLoader(t, afero.NewBasePathFs(afero.NewOsFs(), dir)).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "مرحبا", got)
}

func TestLoad_PermissionDeniedIsUnreadable(t *testing.T) {
	_, err := newLoader(t, deniedFs{Fs: afero.NewMemMapFs()}).Load(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnreadable)
	require.True(t, errors.Is(err, fs.ErrPermission))
}

func TestLoad_InvalidUTF8IsUnreadable(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, DefaultPath, []byte{0xff, 0xfe, 0xfd}, 0o644))

	_, err := newLoader(t, fsys).Load(context.Background())
	require.ErrorIs(t, err, ErrUnreadable)
	require.Contains(t, err.Error(), "UTF-8")
}

func TestFallbackText_NamesPath(t *testing.T) {
	require.Contains(t, FallbackText("docs/kb.txt"), "'docs/kb.txt'")
}
