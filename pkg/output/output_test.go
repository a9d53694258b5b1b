package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	base := t.TempDir()
	w, err := NewWriter(base)
	require.NoError(t, err)

	cases := []struct {
		name    string
		path    string
		want    string
		outside bool
	}{
		{name: "relative file", path: "shot.png", want: filepath.Join(w.BaseDir, "shot.png")},
		{name: "nested relative", path: "out/pdf/report.pdf", want: filepath.Join(w.BaseDir, "out", "pdf", "report.pdf")},
		{name: "dot segments that stay inside", path: "a/../b.png", want: filepath.Join(w.BaseDir, "b.png")},
		{name: "absolute inside", path: filepath.Join(w.BaseDir, "x.webp"), want: filepath.Join(w.BaseDir, "x.webp")},
		{name: "parent escape", path: "../evil.png", outside: true},
		{name: "deep escape", path: "out/../../evil.png", outside: true},
		{name: "absolute outside", path: filepath.Join(filepath.Dir(w.BaseDir), "evil.png"), outside: true},
		{name: "sibling with shared prefix", path: w.BaseDir + "-other/evil.png", outside: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := w.Resolve(tc.path)
			if tc.outside {
				assert.ErrorIs(t, err, ErrOutsideWorkingDir)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveRejectsEmptyAndBase(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	_, err = w.Resolve("  ")
	assert.Error(t, err)

	_, err = w.Resolve(".")
	assert.Error(t, err)
}

func TestWriteCreatesFile(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	require.NoError(t, err)

	path, err := w.Write("captures/page.png", []byte("png-bytes"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestWriteOutsideDoesNotTouchDisk(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "work")
	require.NoError(t, os.Mkdir(base, 0o755))

	w, err := NewWriter(base)
	require.NoError(t, err)

	_, err = w.Write("../escaped.png", []byte("data"))
	assert.ErrorIs(t, err, ErrOutsideWorkingDir)

	_, statErr := os.Stat(filepath.Join(root, "escaped.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewWriterDefaultsToWorkingDir(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	w, err := NewWriter("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(wd), w.BaseDir)
}

func TestWriteRejectsSymlinkEscape(t *testing.T) {
	base := t.TempDir()
	outside := t.TempDir()
	require.NoError(t, os.Symlink(outside, filepath.Join(base, "link")))

	w, err := NewWriter(base)
	require.NoError(t, err)

	_, err = w.Write("link/escaped.png", []byte("data"))
	assert.ErrorIs(t, err, ErrOutsideWorkingDir)

	_, err = w.Write("link/nested/dir/escaped.png", []byte("data"))
	assert.ErrorIs(t, err, ErrOutsideWorkingDir)

	_, statErr := os.Stat(filepath.Join(outside, "escaped.png"))
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(filepath.Join(outside, "nested"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteRejectsDanglingSymlink(t *testing.T) {
	base := t.TempDir()
	outside := t.TempDir()
	target := filepath.Join(outside, "created.png")
	require.NoError(t, os.Symlink(target, filepath.Join(base, "shot.png")))

	w, err := NewWriter(base)
	require.NoError(t, err)

	_, err = w.Write("shot.png", []byte("data"))
	assert.ErrorIs(t, err, ErrOutsideWorkingDir)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteFollowsSymlinkInsideBase(t *testing.T) {
	base := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(base, "real"), 0o755))
	require.NoError(t, os.Symlink(filepath.Join(base, "real"), filepath.Join(base, "alias")))

	w, err := NewWriter(base)
	require.NoError(t, err)

	_, err = w.Write("alias/page.png", []byte("png"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(base, "real", "page.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}
