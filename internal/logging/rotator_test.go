package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRotator returns a rotator whose clock advances one second per
// rotation so rotated names never collide.
func newTestRotator(t *testing.T, cfg *Config) *FileRotator {
	t.Helper()
	r, err := NewFileRotator(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	clock := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	r.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return r
}

func TestFileRotator_RotatesPastLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quietctl.log")
	r := newTestRotator(t, &Config{FilePath: path, MaxSizeMB: 1})

	chunk := []byte(strings.Repeat("x", 600*1024))
	_, err := r.Write(chunk)
	require.NoError(t, err)
	_, err = r.Write(chunk)
	require.NoError(t, err)

	files, err := r.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, path, files[0])
	assert.Equal(t, filepath.Join(filepath.Dir(path), "quietctl-20261017-120001.log"), files[1])

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(chunk)), info.Size())
}

func TestFileRotator_NoLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quietctl.log")
	r := newTestRotator(t, &Config{FilePath: path})

	for i := 0; i < 3; i++ {
		_, err := r.Write([]byte("line\n"))
		require.NoError(t, err)
	}
	files, err := r.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)
}

func TestFileRotator_PrunesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quietctl.log")
	r := newTestRotator(t, &Config{FilePath: path, MaxSizeMB: 1, MaxBackups: 2})

	chunk := []byte(strings.Repeat("y", 700*1024))
	for i := 0; i < 5; i++ {
		_, err := r.Write(chunk)
		require.NoError(t, err)
	}

	files, err := r.Files()
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.True(t, strings.HasSuffix(files[1], "-120003.log"))
	assert.True(t, strings.HasSuffix(files[2], "-120004.log"))
}

func TestFileRotator_Compress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quietctl.log")
	r := newTestRotator(t, &Config{FilePath: path, MaxSizeMB: 1, Compress: true})

	first := []byte(strings.Repeat("z", 900*1024))
	_, err := r.Write(first)
	require.NoError(t, err)
	_, err = r.Write(first)
	require.NoError(t, err)

	files, err := r.Files()
	require.NoError(t, err)
	require.Len(t, files, 2)
	require.True(t, strings.HasSuffix(files[1], ".log.gz"))

	f, err := os.Open(files[1])
	require.NoError(t, err)
	defer f.Close()
	gz, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(gz)
	require.NoError(t, err)
	assert.Equal(t, first, data)
}

func TestNew_FileOutputRotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quietctl.log")
	l, err := New(&Config{Level: LevelInfo, Output: "file", FilePath: path, MaxSizeMB: 1})
	require.NoError(t, err)

	_, ok := l.closer.(*FileRotator)
	assert.True(t, ok)
	l.Info("rotated writer")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "rotated writer")
}

func TestFileRotator_SameSecondKeepsEveryBackup(t *testing.T) {
	for _, compress := range []bool{false, true} {
		t.Run(fmt.Sprintf("compress=%t", compress), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "q.log")
			r, err := NewFileRotator(&Config{FilePath: path, MaxSizeMB: 1, Compress: compress})
			require.NoError(t, err)
			t.Cleanup(func() { r.Close() })
			fixed := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
			r.now = func() time.Time { return fixed }

			chunks := [][]byte{
				[]byte(strings.Repeat("a", 700*1024)),
				[]byte(strings.Repeat("b", 700*1024)),
				[]byte(strings.Repeat("c", 700*1024)),
			}
			for _, c := range chunks {
				_, err := r.Write(c)
				require.NoError(t, err)
			}

			files, err := r.Files()
			require.NoError(t, err)
			require.Len(t, files, 3)

			suffix := ".log"
			if compress {
				suffix = ".log.gz"
			}
			dir := filepath.Dir(path)
			assert.Equal(t, filepath.Join(dir, "q-20261017-120000"+suffix), files[1])
			assert.Equal(t, filepath.Join(dir, "q-20261017-120000_1"+suffix), files[2])

			for i, f := range files[1:] {
				assert.Equal(t, chunks[i], readLog(t, f, compress))
			}
			assert.Equal(t, chunks[2], readLog(t, files[0], false))
		})
	}
}

func readLog(t *testing.T, path string, compressed bool) []byte {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	var rd io.Reader = f
	if compressed {
		gz, err := gzip.NewReader(f)
		require.NoError(t, err)
		rd = gz
	}
	data, err := io.ReadAll(rd)
	require.NoError(t, err)
	return data
}
