// Package testutil builds fixture archives in Go and stub tools for tests that run processes.
package testutil

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// Compression selects how a fixture tar stream is wrapped.
type Compression string

const (
	CompressionGzip Compression = "gzip"
	CompressionZstd Compression = "zstd"
	CompressionNone Compression = "none"
)

// WriteTree creates files (relative path -> content) under dir.
func WriteTree(t testing.TB, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// ReadTree returns every regular file under dir keyed by its slash-separated relative path.
func ReadTree(t testing.TB, dir string) map[string]string {
	t.Helper()
	found := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		found[filepath.ToSlash(rel)] = string(content)
		return nil
	})
	require.NoError(t, err)
	return found
}

// WriteTar writes files into a tar archive at path, compressed as requested.
func WriteTar(t testing.TB, path string, compression Compression, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	var compressor io.WriteCloser
	switch compression {
	case CompressionGzip:
		compressor = gzip.NewWriter(f)
	case CompressionZstd:
		compressor, err = zstd.NewWriter(f)
		require.NoError(t, err)
	case CompressionNone:
		compressor = nopWriteCloser{f}
	default:
		t.Fatalf("unsupported compression type: %s", compression)
	}

	tw := tar.NewWriter(compressor)
	names := lo.Keys(files)
	slices.Sort(names)
	for _, name := range names {
		content := files[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, tw.Close())
	require.NoError(t, compressor.Close())
}

// ReadTar decompresses the tar archive at path and returns its regular files by name.
func ReadTar(t testing.TB, path string, compression Compression) map[string]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var r io.Reader
	switch compression {
	case CompressionGzip:
		gr, err := gzip.NewReader(f)
		require.NoError(t, err)
		defer gr.Close()
		r = gr
	case CompressionZstd:
		zr, err := zstd.NewReader(f)
		require.NoError(t, err)
		defer zr.Close()
		r = zr
	case CompressionNone:
		r = f
	default:
		t.Fatalf("unsupported compression type: %s", compression)
	}

	tr := tar.NewReader(r)
	found := make(map[string]string)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if h.Typeflag != tar.TypeReg {
			continue
		}
		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		found[h.Name] = string(content)
	}
	return found
}

// RequireTool skips the test when name cannot be found in PATH.
func RequireTool(t testing.TB, names ...string) {
	t.Helper()
	for _, name := range names {
		if _, err := exec.LookPath(name); err != nil {
			t.Skipf("%s not found in PATH", name)
		}
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
