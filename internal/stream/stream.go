// Package stream implements the row-by-row CSV engine: projection
// (select/drop), concatenation, previews, and the two-stream equality join.
//
// All operations read a buffered input whose first line is the header and
// write `\n`-terminated, comma-joined lines to the sink. Rows are processed
// one at a time; only the join materializes anything, and then only its
// right-hand input (see Join). Fields are split literally on commas;
// quoting and escaping are not supported.
package stream

import (
	"bufio"
	"io"
	"strings"

	"github.com/MaxwellKnight/csvg/internal/errs"
)

// SplitLine splits a raw CSV line into trimmed fields.
func SplitLine(line string) []string {
	fields := strings.Split(line, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

// writeRow writes one comma-joined, newline-terminated record.
func writeRow(w *bufio.Writer, fields []string) error {
	if _, err := w.WriteString(strings.Join(fields, ",")); err != nil {
		return err
	}
	return w.WriteByte('\n')
}

// scanRows invokes fn for every data line of r. When skipHeader is set the
// first line is consumed without being passed to fn.
func scanRows(r io.Reader, skipHeader bool, fn func(line string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			first = false
			if skipHeader {
				continue
			}
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return errs.IO("reading csv stream", err)
	}
	return nil
}

// readHeaderLine consumes the first line of br and returns its fields.
func readHeaderLine(br *bufio.Reader) ([]string, error) {
	line, err := br.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errs.IO("reading csv header", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, errs.InvalidInput("csv stream has no header line")
	}
	return SplitLine(line), nil
}
