package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

const dirCSV = "id,name\n1,Alice\n2,Bob\n"

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func gzipBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func zstdBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func xzBytes(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	xw, err := xz.NewWriter(&buf)
	require.NoError(t, err)
	_, err = xw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, xw.Close())
	return buf.Bytes()
}

func readTable(t *testing.T, d *Dir, tbl string) string {
	t.Helper()
	rc, err := d.Open(context.Background(), tbl)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(data)
}

func TestDirOpen(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "plain.csv", []byte(dirCSV))
	writeFile(t, root, "zipped.csv.gz", gzipBytes(t, dirCSV))
	writeFile(t, root, "zstded.csv.zst", zstdBytes(t, dirCSV))
	writeFile(t, root, "xzed.csv.xz", xzBytes(t, dirCSV))

	d := NewDir(root)
	for _, tbl := range []string{"plain", "zipped", "zstded", "xzed"} {
		assert.Equal(t, dirCSV, readTable(t, d, tbl), tbl)
	}
}

func TestDirOpenPrefersPlainCSV(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "users.csv", []byte(dirCSV))
	writeFile(t, root, "users.csv.gz", gzipBytes(t, "id\n9\n"))

	assert.Equal(t, dirCSV, readTable(t, NewDir(root), "users"))
}

func TestDirOpenMissingTable(t *testing.T) {
	d := NewDir(t.TempDir())
	_, err := d.Open(context.Background(), "ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCompressorRoundTrip(t *testing.T) {
	for _, name := range []string{"out.csv", "out.csv.gz", "out.csv.xz", "out.csv.zst"} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			w, finish, err := NewCompressor(&buf, name)
			require.NoError(t, err)
			_, err = w.Write([]byte(dirCSV))
			require.NoError(t, err)
			require.NoError(t, finish())

			rc, err := newDecompressor(io.NopCloser(&buf), name)
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, dirCSV, string(data))
		})
	}
}

func TestCompressorRejectsBzip2(t *testing.T) {
	var buf bytes.Buffer
	_, _, err := NewCompressor(&buf, "out.csv.bz2")
	require.Error(t, err)
}
