package stream

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/logger"
	"github.com/MaxwellKnight/csvg/internal/table"
)

// Kind selects the emission semantics of a join. It is a closed set; a
// single switch in the engine handles all four cases.
type Kind int

const (
	Inner Kind = iota
	Left
	Right
	Full
)

func (k Kind) String() string {
	switch k {
	case Inner:
		return "inner"
	case Left:
		return "left"
	case Right:
		return "right"
	case Full:
		return "full"
	default:
		return "unknown"
	}
}

// ParseKind converts a CLI join-type string into a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "inner":
		return Inner, nil
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	case "full":
		return Full, nil
	default:
		return Inner, errs.InvalidInput(fmt.Sprintf("unknown join type %q", s))
	}
}

// rightIndex maps a key value to all right rows carrying it, preserving
// each bucket's original file order. Keys() returns ascending key order for
// the unmatched-right sweep.
type rightIndex map[string][][]string

func (idx rightIndex) Keys() []string {
	keys := make([]string, 0, len(idx))
	for k := range idx {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Join performs an equality join of two CSV streams and writes the result
// to w.
//
// The left stream's header is described by desc and its first line is
// skipped; the right stream's header is read from the stream itself. The
// output header is the left headers followed by the right headers with the
// right key column elided.
//
// Only the right stream is materialized: it is fully indexed by key value,
// bounding memory by the right input's size. The left stream is processed
// one row at a time, so left-derived output preserves left-row order.
// Repeated keys on both sides fan out to the full cross-product of matches.
// Under Right and Full, rows for right keys never seen on the left are
// appended afterward in ascending key order, left side padded with empty
// fields.
//
// A join producing zero data rows is not an error at this layer.
func Join(desc *table.Descriptor, left, right io.Reader, w io.Writer, leftKey, rightKey string, kind Kind) error {
	start := time.Now()

	leftIdx, ok := desc.IndexOf(leftKey)
	if !ok {
		return errs.ColumnNotFound("left", leftKey)
	}

	rightReader := bufio.NewReader(right)
	rightHeaders, err := readHeaderLine(rightReader)
	if err != nil {
		return err
	}
	rightIdx := -1
	for i, h := range rightHeaders {
		if h == rightKey {
			rightIdx = i
			break
		}
	}
	if rightIdx < 0 {
		return errs.ColumnNotFound("right", rightKey)
	}

	bw := bufio.NewWriter(w)
	header := append(append([]string{}, desc.Headers...), elide(rightHeaders, rightIdx)...)
	if err := writeRow(bw, header); err != nil {
		return errs.IO("writing joined header", err)
	}

	index, err := buildRightIndex(rightReader, rightIdx)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{})
	err = scanRows(left, true, func(line string) error {
		row := SplitLine(line)
		if leftIdx >= len(row) {
			return nil
		}
		key := row[leftIdx]
		seen[key] = struct{}{}

		matches, found := index[key]
		switch {
		case found:
			for _, rrow := range matches {
				if err := writeRow(bw, append(append([]string{}, row...), elide(rrow, rightIdx)...)); err != nil {
					return err
				}
			}
		case kind == Left || kind == Full:
			padded := append(append([]string{}, row...), make([]string, len(rightHeaders)-1)...)
			if err := writeRow(bw, padded); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if kind == Right || kind == Full {
		pad := make([]string, len(desc.Headers))
		for _, key := range index.Keys() {
			if _, matched := seen[key]; matched {
				continue
			}
			for _, rrow := range index[key] {
				if err := writeRow(bw, append(append([]string{}, pad...), elide(rrow, rightIdx)...)); err != nil {
					return err
				}
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return errs.IO("flushing joined output", err)
	}
	logger.Default().With().Str("type", kind.String()).Logger().Timed("join finished", start)
	return nil
}

// buildRightIndex consumes the right stream's data rows into a key-bucketed
// index. Rows too short to carry the key column are skipped.
func buildRightIndex(r io.Reader, keyIdx int) (rightIndex, error) {
	index := rightIndex{}
	err := scanRows(r, false, func(line string) error {
		row := SplitLine(line)
		if keyIdx >= len(row) {
			return nil
		}
		key := row[keyIdx]
		index[key] = append(index[key], row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return index, nil
}

// elide returns fields without the element at idx.
func elide(fields []string, idx int) []string {
	out := make([]string, 0, len(fields)-1)
	for i, f := range fields {
		if i != idx {
			out = append(out, f)
		}
	}
	return out
}
