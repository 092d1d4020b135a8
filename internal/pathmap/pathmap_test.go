package pathmap_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewmd5/wasihost/internal/pathmap"
)

func newMapper(t *testing.T, root string) *pathmap.Mapper {
	t.Helper()
	m := pathmap.New()
	m.SetRoot(root)
	require.NoError(t, m.AddMapping("/", root, pathmap.AccessReadWrite))
	return m
}

func TestResolveLongestPrefixWins(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))

	m := pathmap.New()
	m.SetRoot(root)
	require.NoError(t, m.AddMapping("/", filepath.Join(root, "narrow-does-not-exist"), pathmap.AccessRead))
	require.NoError(t, m.AddMapping("/sub", filepath.Join(root, "sub"), pathmap.AccessReadWrite))

	host, matched, err := m.Resolve("/sub/file.txt", true)
	require.NoError(t, err)
	assert.Equal(t, "/sub", matched.GuestPrefix)
	assert.Equal(t, filepath.Join(root, "sub", "file.txt"), host)
}

func TestAddMappingRejectsDev(t *testing.T) {
	m := pathmap.New()
	m.SetRoot(t.TempDir())
	err := m.AddMapping("/dev", "/anything", pathmap.AccessRead)
	assert.ErrorIs(t, err, pathmap.ErrDevReserved)

	err = m.AddMapping("/dev/null", "/anything", pathmap.AccessRead)
	assert.ErrorIs(t, err, pathmap.ErrDevReserved)
}

func TestResolveRejectsDotDotEscape(t *testing.T) {
	root := t.TempDir()
	m := newMapper(t, root)

	_, _, err := m.Resolve("/../../etc/passwd", true)
	assert.ErrorIs(t, err, pathmap.ErrNotCapable)
}

func TestResolveRejectsSymlinkEscape(t *testing.T) {
	root := t.TempDir()
	sandbox := filepath.Join(root, "sandbox")
	outside := filepath.Join(root, "outside")
	require.NoError(t, os.MkdirAll(sandbox, 0o755))
	require.NoError(t, os.MkdirAll(outside, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.txt"), []byte("nope"), 0o644))
	require.NoError(t, os.Symlink(outside, filepath.Join(sandbox, "escape")))

	m := pathmap.New()
	m.SetRoot(sandbox)
	require.NoError(t, m.AddMapping("/", sandbox, pathmap.AccessReadWrite))

	_, _, err := m.Resolve("/escape/secret.txt", true)
	assert.ErrorIs(t, err, pathmap.ErrNotCapable)
}

func TestResolveAllowsSymlinkWithinRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "real"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real", "f.txt"), []byte("hi"), 0o644))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")))

	m := newMapper(t, root)
	host, _, err := m.Resolve("/link/f.txt", true)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "real", "f.txt"), host)
}

func TestResolveNoMappingCoversPath(t *testing.T) {
	m := pathmap.New()
	m.SetRoot(t.TempDir())
	_, _, err := m.Resolve("/anything", true)
	assert.ErrorIs(t, err, pathmap.ErrNotCapable)
}

func TestRemoveMapping(t *testing.T) {
	m := pathmap.New()
	m.SetRoot(t.TempDir())
	require.NoError(t, m.AddMapping("/a", "/host/a", pathmap.AccessRead))
	assert.True(t, m.RemoveMapping("/a"))
	assert.False(t, m.RemoveMapping("/a"))
	assert.Empty(t, m.Mappings())
}
