package stream

import (
	"bufio"
	"container/ring"
	"io"
	"time"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/logger"
	"github.com/MaxwellKnight/csvg/internal/table"
)

// Select writes only the named columns of every row of r to w.
//
// Output column order is always the descriptor's on-disk header order
// filtered to the requested set; the order the caller listed the columns
// in is not preserved. The first line of r is taken as the header and
// replaced with the filtered one.
func Select(desc *table.Descriptor, r io.Reader, w io.Writer, columns []string) error {
	keep, err := keepIndices(desc, columns, false)
	if err != nil {
		return err
	}
	return project(desc, r, w, keep)
}

// Drop is the complement of Select: it writes every column of r except the
// named ones.
func Drop(desc *table.Descriptor, r io.Reader, w io.Writer, columns []string) error {
	keep, err := keepIndices(desc, columns, true)
	if err != nil {
		return err
	}
	return project(desc, r, w, keep)
}

// keepIndices resolves the requested columns against the descriptor and
// returns the header ordinals to keep, in header order. Every requested
// column must exist.
func keepIndices(desc *table.Descriptor, columns []string, drop bool) ([]int, error) {
	for _, c := range columns {
		if !desc.HasColumn(c) {
			return nil, errs.ColumnNotFound(desc.Name, c)
		}
	}
	named := make(map[string]bool, len(columns))
	for _, c := range columns {
		named[c] = true
	}

	var keep []int
	for i, h := range desc.Headers {
		if named[h] != drop {
			keep = append(keep, i)
		}
	}
	return keep, nil
}

func project(desc *table.Descriptor, r io.Reader, w io.Writer, keep []int) error {
	start := time.Now()
	bw := bufio.NewWriter(w)

	header := make([]string, len(keep))
	for i, k := range keep {
		header[i] = desc.Headers[k]
	}
	if err := writeRow(bw, header); err != nil {
		return errs.IO("writing header", err)
	}

	out := make([]string, len(keep))
	err := scanRows(r, true, func(line string) error {
		row := SplitLine(line)
		for i, k := range keep {
			if k < len(row) {
				out[i] = row[k]
			} else {
				out[i] = ""
			}
		}
		return writeRow(bw, out)
	})
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errs.IO("flushing output", err)
	}
	logger.Default().Timed("projection finished", start)
	return nil
}

// Concat writes the descriptor's header once, then every data row of every
// input unchanged. Each input's own header line is consumed and discarded.
//
// Later inputs are assumed to share the first one's schema; their headers
// are not verified, and a row with a different column count passes through
// uninterpreted.
func Concat(desc *table.Descriptor, w io.Writer, inputs ...io.Reader) error {
	start := time.Now()
	bw := bufio.NewWriter(w)

	if err := writeRow(bw, desc.Headers); err != nil {
		return errs.IO("writing header", err)
	}

	for _, r := range inputs {
		err := scanRows(r, true, func(line string) error {
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			return bw.WriteByte('\n')
		})
		if err != nil {
			return err
		}
	}
	if err := bw.Flush(); err != nil {
		return errs.IO("flushing output", err)
	}
	logger.Default().Timed("concat finished", start)
	return nil
}

// Head writes the header and the first n data rows of r to w. n <= 0
// yields the header alone.
func Head(r io.Reader, w io.Writer, n int) error {
	if n < 0 {
		n = 0
	}
	bw := bufio.NewWriter(w)
	written := 0

	err := scanRows(r, false, func(line string) error {
		if written > n { // header plus n rows
			return io.EOF
		}
		written++
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		return bw.WriteByte('\n')
	})
	if err != nil && err != io.EOF {
		return err
	}
	if err := bw.Flush(); err != nil {
		return errs.IO("flushing output", err)
	}
	return nil
}

// Tail writes the header and the last n data rows of r to w, keeping only
// a ring of n rows in memory. n <= 0 yields the header alone, like Head.
func Tail(r io.Reader, w io.Writer, n int) error {
	bw := bufio.NewWriter(w)
	var buf *ring.Ring
	if n > 0 {
		buf = ring.New(n)
	}

	first := true
	err := scanRows(r, false, func(line string) error {
		if first {
			first = false
			if _, err := bw.WriteString(line); err != nil {
				return err
			}
			return bw.WriteByte('\n')
		}
		if buf == nil {
			return nil
		}
		buf.Value = line
		buf = buf.Next()
		return nil
	})
	if err != nil {
		return err
	}

	var werr error
	buf.Do(func(v any) {
		if v == nil || werr != nil {
			return
		}
		if _, err := bw.WriteString(v.(string)); err != nil {
			werr = err
			return
		}
		werr = bw.WriteByte('\n')
	})
	if werr != nil {
		return errs.IO("writing output", werr)
	}
	if err := bw.Flush(); err != nil {
		return errs.IO("flushing output", err)
	}
	return nil
}
