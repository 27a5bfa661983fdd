// Package table defines the descriptor for one CSV-backed table: its
// ordered headers, optional primary key, and foreign-key relationships.
// Descriptors are produced by the schema extractors and consumed by the
// stream engine, the schema graph, and the join orchestrator.
package table

import (
	"fmt"

	"github.com/MaxwellKnight/csvg/internal/errs"
)

// ForeignKey is a single-column reference from this table to another.
type ForeignKey struct {
	Column    string `json:"column"`
	RefTable  string `json:"ref_table"`
	RefColumn string `json:"ref_column"`
}

// Descriptor is the schema metadata for one CSV-backed table.
//
// Headers holds the column names in on-disk order. HeaderIndex is always
// the inverse mapping: HeaderIndex[Headers[i]] == i for every i. The two
// are kept consistent by SetHeaders; callers must not mutate either
// directly.
type Descriptor struct {
	Name        string         `json:"name"`
	Headers     []string       `json:"headers"`
	HeaderIndex map[string]int `json:"header_index"`
	PrimaryKey  string         `json:"primary_key,omitempty"`
	ForeignKeys []ForeignKey   `json:"foreign_keys"`
}

// New creates an empty descriptor for the named table.
func New(name string) *Descriptor {
	return &Descriptor{
		Name:        name,
		HeaderIndex: map[string]int{},
	}
}

// SetHeaders replaces the descriptor's headers and rebuilds the index.
// Duplicate column names are rejected.
func (d *Descriptor) SetHeaders(headers []string) error {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; dup {
			return errs.InvalidInput(fmt.Sprintf("duplicate column %q in table %q", h, d.Name))
		}
		index[h] = i
	}
	d.Headers = headers
	d.HeaderIndex = index
	return nil
}

// IndexOf returns the ordinal position of column, or false if absent.
func (d *Descriptor) IndexOf(column string) (int, bool) {
	i, ok := d.HeaderIndex[column]
	return i, ok
}

// HasColumn reports whether column appears in the headers.
func (d *Descriptor) HasColumn(column string) bool {
	_, ok := d.HeaderIndex[column]
	return ok
}

// AddForeignKey appends a foreign-key triple to the descriptor.
func (d *Descriptor) AddForeignKey(column, refTable, refColumn string) {
	d.ForeignKeys = append(d.ForeignKeys, ForeignKey{
		Column:    column,
		RefTable:  refTable,
		RefColumn: refColumn,
	})
}

// Clone returns a deep copy of the descriptor.
func (d *Descriptor) Clone() *Descriptor {
	c := &Descriptor{
		Name:        d.Name,
		Headers:     append([]string(nil), d.Headers...),
		HeaderIndex: make(map[string]int, len(d.HeaderIndex)),
		PrimaryKey:  d.PrimaryKey,
		ForeignKeys: append([]ForeignKey(nil), d.ForeignKeys...),
	}
	for k, v := range d.HeaderIndex {
		c.HeaderIndex[k] = v
	}
	return c
}

// JoinedWith returns the descriptor of the relation produced by joining
// this table to next on leftCol = rightCol. The receiver is not mutated;
// each join hop yields a fresh value.
//
// The result carries this table's headers followed by next's headers with
// the consumed join column elided, plus next's remaining foreign keys.
// When next's primary key was the consumed column, the left join column
// becomes the propagated primary key.
func (d *Descriptor) JoinedWith(next *Descriptor, leftCol, rightCol string) *Descriptor {
	joined := d.Clone()

	headers := joined.Headers
	for _, h := range next.Headers {
		if h != rightCol {
			headers = append(headers, h)
		}
	}
	joined.Headers = headers
	joined.HeaderIndex = make(map[string]int, len(headers))
	for i, h := range headers {
		joined.HeaderIndex[h] = i
	}

	for _, fk := range next.ForeignKeys {
		if fk.Column != rightCol {
			joined.ForeignKeys = append(joined.ForeignKeys, fk)
		}
	}

	if next.PrimaryKey != "" && next.PrimaryKey == rightCol {
		joined.PrimaryKey = leftCol
	}

	return joined
}

// Validate checks the header/index invariant. It exists for tests and for
// descriptors deserialized from the graph cache.
func (d *Descriptor) Validate() error {
	if len(d.Headers) != len(d.HeaderIndex) {
		return errs.InvalidInput(fmt.Sprintf("table %q: %d headers but %d index entries",
			d.Name, len(d.Headers), len(d.HeaderIndex)))
	}
	for i, h := range d.Headers {
		if d.HeaderIndex[h] != i {
			return errs.InvalidInput(fmt.Sprintf("table %q: header %q indexed at %d, expected %d",
				d.Name, h, d.HeaderIndex[h], i))
		}
	}
	return nil
}
