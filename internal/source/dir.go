package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MaxwellKnight/csvg/internal/errs"
)

// Dir serves tables from CSV files in a local directory. A table named
// "users" resolves to users.csv, or to a compressed variant
// (users.csv.gz, .csv.bz2, .csv.xz, .csv.zst) when the plain file is
// absent.
type Dir struct {
	root string
}

// NewDir creates a directory-backed source rooted at root.
func NewDir(root string) *Dir {
	return &Dir{root: root}
}

// Open resolves tbl to a file under the root and returns its decompressed
// row stream.
func (d *Dir) Open(_ context.Context, tbl string) (io.ReadCloser, error) {
	for _, ext := range extensions {
		path := filepath.Join(d.root, tbl+ext)
		f, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errs.IO(fmt.Sprintf("opening %s", path), err)
		}
		return newDecompressor(f, path)
	}
	return nil, errs.IO(fmt.Sprintf("no csv file for table %q under %s", tbl, d.root), os.ErrNotExist)
}
