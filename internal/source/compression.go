package source

import (
	"compress/bzip2"
	"compress/gzip"
	"io"
	"path/filepath"
	"strings"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression extensions recognized on top of .csv.
const (
	ExtGZ   = ".gz"
	ExtBZ2  = ".bz2"
	ExtXZ   = ".xz"
	ExtZSTD = ".zst"
)

// extensions lists the candidate suffixes tried when resolving a table
// name to a file or object key, in priority order.
var extensions = []string{".csv", ".csv" + ExtGZ, ".csv" + ExtBZ2, ".csv" + ExtXZ, ".csv" + ExtZSTD}

// newDecompressor wraps rc with the decompressor selected by the name's
// extension. The returned ReadCloser closes both the decompressor and rc.
func newDecompressor(rc io.ReadCloser, name string) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtGZ:
		gz, err := gzip.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, errs.IO("creating gzip reader", err)
		}
		return &wrapped{Reader: gz, closers: []func() error{gz.Close, rc.Close}}, nil

	case ExtBZ2:
		return &wrapped{Reader: bzip2.NewReader(rc), closers: []func() error{rc.Close}}, nil

	case ExtXZ:
		xr, err := xz.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, errs.IO("creating xz reader", err)
		}
		return &wrapped{Reader: xr, closers: []func() error{rc.Close}}, nil

	case ExtZSTD:
		zr, err := zstd.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, errs.IO("creating zstd reader", err)
		}
		return &wrapped{
			Reader:  zr,
			closers: []func() error{func() error { zr.Close(); return nil }, rc.Close},
		}, nil

	default:
		return rc, nil
	}
}

// NewCompressor wraps w with the compressor selected by the output name's
// extension, returning the writer and a finish function that flushes the
// compressor (the caller still owns closing w). bzip2 has no stdlib
// writer and is rejected.
func NewCompressor(w io.Writer, name string) (io.Writer, func() error, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ExtGZ:
		gz := gzip.NewWriter(w)
		return gz, gz.Close, nil

	case ExtBZ2:
		return nil, nil, errs.InvalidInput("bzip2 compression is not supported for writing")

	case ExtXZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, errs.IO("creating xz writer", err)
		}
		return xw, xw.Close, nil

	case ExtZSTD:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, errs.IO("creating zstd writer", err)
		}
		return zw, zw.Close, nil

	default:
		return w, func() error { return nil }, nil
	}
}

// wrapped is a reader with an ordered chain of closers.
type wrapped struct {
	io.Reader
	closers []func() error
}

func (w *wrapped) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
