package workspace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGuard(t *testing.T) (*Guard, string) {
	t.Helper()
	root := t.TempDir()
	g, err := NewGuard(root)
	require.NoError(t, err)
	return g, g.Root()
}

func TestNewGuardRequiresRoot(t *testing.T) {
	_, err := NewGuard("")
	assert.Error(t, err)
}

func TestValidateRelativePathInsideRoot(t *testing.T) {
	g, _ := newTestGuard(t)
	assert.NoError(t, g.Validate("src/main.go"))
	assert.NoError(t, g.Validate("./nested/deep/file.txt"))
}

func TestValidateRejectsTraversal(t *testing.T) {
	g, _ := newTestGuard(t)
	assert.Error(t, g.Validate("../outside.txt"))
	assert.Error(t, g.Validate("nested/../../outside.txt"))
}

func TestValidateRejectsAbsoluteOutside(t *testing.T) {
	g, _ := newTestGuard(t)
	assert.Error(t, g.Validate("/etc/passwd"))
}

func TestValidateAcceptsAbsoluteInside(t *testing.T) {
	g, root := newTestGuard(t)
	assert.NoError(t, g.Validate(filepath.Join(root, "file.txt")))
}

func TestResolveJoinsRelativeToRoot(t *testing.T) {
	g, root := newTestGuard(t)
	resolved, err := g.Resolve("a/b.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "a", "b.txt"), resolved)
}

func TestValidateRejectsSymlinkEscape(t *testing.T) {
	g, root := newTestGuard(t)

	outside := t.TempDir()
	link := filepath.Join(root, "escape")
	require.NoError(t, os.Symlink(outside, link))

	assert.Error(t, g.Validate("escape/secret.txt"))
}

func TestValidateRoot(t *testing.T) {
	g, root := newTestGuard(t)
	assert.NoError(t, g.Validate(root))
}
