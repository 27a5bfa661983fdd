package extract

import (
	"context"
	"strings"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/table"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres extracts descriptors from a live PostgreSQL database by
// reading information_schema. It is an alternative to the DDL scanner
// when the schema lives in a running database rather than a .sql file.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
}

// NewPostgres connects to dsn and prepares an extractor over the named
// schema (usually "public"). It pings before returning.
func NewPostgres(ctx context.Context, dsn, schema string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errs.IO("creating postgres pool", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errs.IO("pinging postgres", err)
	}
	return &Postgres{pool: pool, schema: schema}, nil
}

// Close drains the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Extract reads every base table in the schema: ordered columns, primary
// key, and foreign-key column pairs.
func (p *Postgres) Extract(ctx context.Context) ([]*table.Descriptor, error) {
	names, err := p.listTables(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*table.Descriptor, len(names))
	tables := make([]*table.Descriptor, 0, len(names))
	for _, name := range names {
		t, err := p.inspectTable(ctx, name)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
		byName[t.Name] = t
	}

	if err := p.attachForeignKeys(ctx, byName); err != nil {
		return nil, err
	}
	return tables, nil
}

func (p *Postgres) listTables(ctx context.Context) ([]string, error) {
	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	rows, err := p.pool.Query(ctx, q, p.schema)
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

func (p *Postgres) inspectTable(ctx context.Context, name string) (*table.Descriptor, error) {
	const q = `
		SELECT c.column_name
		FROM information_schema.columns c
		WHERE c.table_schema = $1
		  AND c.table_name   = $2
		ORDER BY c.ordinal_position`

	rows, err := p.pool.Query(ctx, q, p.schema, name)
	if err != nil {
		return nil, errs.IO("inspecting table "+name, err)
	}
	defer rows.Close()

	var headers []string
	for rows.Next() {
		var col string
		if err := rows.Scan(&col); err != nil {
			return nil, errs.IO("scanning column", err)
		}
		headers = append(headers, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	t := table.New(strings.ToLower(name))
	if err := t.SetHeaders(headers); err != nil {
		return nil, err
	}

	const pkq = `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = $1
		  AND tc.table_name   = $2
		ORDER BY kcu.ordinal_position
		LIMIT 1`

	var pk string
	if err := p.pool.QueryRow(ctx, pkq, p.schema, name).Scan(&pk); err == nil {
		t.PrimaryKey = pk
	}
	return t, nil
}

func (p *Postgres) attachForeignKeys(ctx context.Context, byName map[string]*table.Descriptor) error {
	const q = `
		SELECT
			kcu.table_name   AS from_table,
			kcu.column_name  AS from_column,
			ccu.table_name   AS to_table,
			ccu.column_name  AS to_column
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = $1
		ORDER BY tc.constraint_name`

	rows, err := p.pool.Query(ctx, q, p.schema)
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
