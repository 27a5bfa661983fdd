// Package orchestrate chains pairwise inner joins along the shortest
// schema-graph path between two tables, producing one final joined stream.
//
// Each hop joins the running result (a scratch file on disk) against the
// next table's row source; the hop's output becomes the next hop's scratch
// file, so peak memory is bounded by a single hop's right-side index
// regardless of path length.
package orchestrate

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/graph"
	"github.com/MaxwellKnight/csvg/internal/logger"
	"github.com/MaxwellKnight/csvg/internal/source"
	"github.com/MaxwellKnight/csvg/internal/stream"
	"github.com/MaxwellKnight/csvg/internal/table"
)

// Orchestrator folds the two-stream join engine across a join path.
type Orchestrator struct {
	src source.Source
	log *logger.Logger

	// ScratchDir is where intermediate hop results are written.
	// Empty means the system temp directory.
	ScratchDir string
}

// New creates an orchestrator reading table rows from src.
func New(src source.Source) *Orchestrator {
	return &Orchestrator{src: src, log: logger.Default()}
}

// JoinAlongPath joins every table on the shortest path between from and to,
// writing the final joined relation (header plus data rows) to w and
// returning its descriptor.
//
// Every hop is an inner join; a hop that yields zero data rows aborts the
// chain with EmptyJoinResult carrying the 1-based hop index. Scratch files
// are removed on success and failure alike; removal failures are logged
// and never mask an operational error.
func (o *Orchestrator) JoinAlongPath(ctx context.Context, g *graph.Graph, from, to string, w io.Writer) (*table.Descriptor, error) {
	fromID, err := g.FindNode(from)
	if err != nil {
		return nil, err
	}
	toID, err := g.FindNode(to)
	if err != nil {
		return nil, err
	}

	path, err := g.ShortestPath(fromID, toID)
	if err != nil {
		return nil, err
	}
	if len(path) == 0 {
		return nil, errs.EmptyPath()
	}

	current := g.Node(path[0]).Clone()

	scratch, err := o.seed(ctx, current.Name)
	if err != nil {
		return nil, err
	}
	defer func() { o.discard(scratch) }()

	for hop := 1; hop < len(path); hop++ {
		next := g.Node(path[hop])
		o.log.With().Str("left", current.Name).Str("right", next.Name).Int("hop", hop).Logger().
			Info("joining tables")

		scratch, current, err = o.runHop(ctx, scratch, current, next, hop)
		if err != nil {
			return nil, err
		}
	}

	final, err := os.Open(scratch)
	if err != nil {
		return nil, errs.IO("reopening final join result", err)
	}
	defer final.Close()

	n, err := io.Copy(w, final)
	if err != nil {
		return nil, errs.IO("writing final join result", err)
	}
	o.log.Infof("join chain complete, wrote %s", humanBytes(n))
	return current, nil
}

// seed copies the first table's full content into a fresh scratch file and
// returns its path.
func (o *Orchestrator) seed(ctx context.Context, tbl string) (string, error) {
	rows, err := o.src.Open(ctx, tbl)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	f, err := os.CreateTemp(o.ScratchDir, "csvg-hop-*.csv")
	if err != nil {
		return "", errs.IO("creating scratch file", err)
	}

	n, err := io.Copy(f, rows)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		o.discard(f.Name())
		return "", errs.IO("seeding scratch file", err)
	}
	o.log.Debugf("seeded %s with %s", tbl, humanBytes(n))
	return f.Name(), nil
}

// runHop inner-joins the scratch file against next's rows into a new
// scratch file, replacing the old one. It returns the new scratch path and
// the functionally updated running descriptor.
func (o *Orchestrator) runHop(ctx context.Context, scratch string, current, next *table.Descriptor, hop int) (string, *table.Descriptor, error) {
	leftCol, rightCol, err := joinColumns(current, next)
	if err != nil {
		return scratch, current, err
	}

	left, err := os.Open(scratch)
	if err != nil {
		return scratch, current, errs.IO("reopening scratch file", err)
	}
	defer left.Close()

	right, err := o.src.Open(ctx, next.Name)
	if err != nil {
		return scratch, current, err
	}
	defer right.Close()

	out, err := os.CreateTemp(o.ScratchDir, "csvg-hop-*.csv")
	if err != nil {
		return scratch, current, errs.IO("creating scratch file", err)
	}

	counter := &rowCounter{w: out}
	err = stream.Join(current, left, right, counter, leftCol, rightCol, stream.Inner)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = errs.IO("closing scratch file", cerr)
	}
	if err != nil {
		o.discard(out.Name())
		return scratch, current, err
	}

	o.discard(scratch)
	o.log.Debugf("hop %d wrote %d rows (%s)", hop, counter.rows(), humanBytes(counter.bytes))

	if counter.rows() == 0 {
		return out.Name(), current, errs.EmptyJoinResult(hop)
	}
	return out.Name(), current.JoinedWith(next, leftCol, rightCol), nil
}

// joinColumns resolves the equality columns for a hop: first a foreign key
// of left referencing next whose target column exists in next's headers,
// then symmetrically a foreign key of right referencing a column present
// in left's headers. The symmetric scan cannot match on table name: the
// running descriptor keeps the seed table's name while absorbing columns
// of every table joined so far.
func joinColumns(left, right *table.Descriptor) (string, string, error) {
	for _, fk := range left.ForeignKeys {
		if fk.RefTable == right.Name && right.HasColumn(fk.RefColumn) {
			return fk.Column, fk.RefColumn, nil
		}
	}
	for _, fk := range right.ForeignKeys {
		if left.HasColumn(fk.RefColumn) {
			return fk.RefColumn, fk.Column, nil
		}
	}
	return "", "", errs.NoJoinColumns(left.Name, right.Name)
}

// discard removes a scratch file, logging (not propagating) failures so
// cleanup can never mask an operational error.
func (o *Orchestrator) discard(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		o.log.Warnf("failed to remove scratch file %s: %v", path, err)
	}
}

// rowCounter counts newline-terminated lines as they pass through,
// excluding the header line.
type rowCounter struct {
	w     io.Writer
	lines int64
	bytes int64
}

func (c *rowCounter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			c.lines++
		}
	}
	c.bytes += int64(len(p))
	return c.w.Write(p)
}

func (c *rowCounter) rows() int64 {
	if c.lines == 0 {
		return 0
	}
	return c.lines - 1
}

// humanBytes formats a byte count for progress logs.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(n)/float64(div), "KMGT"[exp])
}
