package extract

import (
	"context"
	"database/sql"
	"strings"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/table"

	_ "github.com/go-sql-driver/mysql"
)

// MySQL extracts descriptors from a live MySQL database by reading
// information_schema (schema = database in MySQL terms).
type MySQL struct {
	db     *sql.DB
	schema string
}

// NewMySQL opens dsn and prepares an extractor over the named database.
// It pings before returning.
func NewMySQL(ctx context.Context, dsn, schema string) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errs.IO("opening mysql connection", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errs.IO("pinging mysql", err)
	}
	return &MySQL{db: db, schema: schema}, nil
}

// Close releases the underlying connections.
func (m *MySQL) Close() error {
	return m.db.Close()
}

// Extract reads every base table in the database: ordered columns,
// primary key, and foreign-key column pairs.
func (m *MySQL) Extract(ctx context.Context) ([]*table.Descriptor, error) {
	names, err := m.listTables(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*table.Descriptor, len(names))
	tables := make([]*table.Descriptor, 0, len(names))
	for _, name := range names {
		t, err := m.inspectTable(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		byName[t.Name] = t
	}

	if err := m.attachForeignKeys(ctx, byName); err != nil {
		return nil, err
	}
	return tables, nil
}

func (m *MySQL) listTables(ctx context.Context) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := m.db.QueryContext(ctx, q, m.schema)
	if err != nil {
		return nil, errs.IO("listing tables", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errs.IO("scanning table name", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (m *MySQL) inspectTable(ctx context.Context, name string) (*table.Descriptor, error) {
	const q = `
		SELECT c.column_name, (c.column_key = 'PRI') AS is_primary_key
		FROM information_schema.columns c
		WHERE c.table_schema = ?
		  AND c.table_name   = ?
		ORDER BY c.ordinal_position`

	rows, err := m.db.QueryContext(ctx, q, m.schema, name)
	if err != nil {
		return nil, errs.IO("inspecting table "+name, err)
	}
	defer rows.Close()

	t := table.New(strings.ToLower(name))
	var headers []string
	for rows.Next() {
		var col string
		var isPK bool
		if err := rows.Scan(&col, &isPK); err != nil {
			return nil, errs.IO("scanning column", err)
		}
		headers = append(headers, col)
		if isPK && t.PrimaryKey == "" {
			t.PrimaryKey = col
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := t.SetHeaders(headers); err != nil {
		return nil, err
	}
	return t, nil
}

func (m *MySQL) attachForeignKeys(ctx context.Context, byName map[string]*table.Descriptor) error {
	const q = `
		SELECT
			kcu.table_name             AS from_table,
			kcu.column_name            AS from_column,
			kcu.referenced_table_name  AS to_table,
			kcu.referenced_column_name AS to_column
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu
			ON rc.constraint_name = kcu.constraint_name
			AND rc.constraint_schema = kcu.table_schema
		WHERE rc.constraint_schema = ?
		ORDER BY rc.constraint_name`

	rows, err := m.db.QueryContext(ctx, q, m.schema)
	if err != nil {
		return errs.IO("listing foreign keys", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fromTable, fromCol, toTable, toCol string
		if err := rows.Scan(&fromTable, &fromCol, &toTable, &toCol); err != nil {
			return errs.IO("scanning foreign key", err)
		}
		if t, ok := byName[strings.ToLower(fromTable)]; ok {
			t.AddForeignKey(fromCol, strings.ToLower(toTable), toCol)
		}
	}
	return rows.Err()
}
