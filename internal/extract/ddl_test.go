package extract

import (
	"context"
	"testing"

	"github.com/MaxwellKnight/csvg/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSchema = `
-- user accounts
CREATE TABLE Users (
    id INTEGER PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    email VARCHAR(255) UNIQUE
);

CREATE TABLE public.orders (
    order_id SERIAL,
    user_id INTEGER REFERENCES Users(id), -- inline reference
    total NUMERIC(10, 2),
    PRIMARY KEY (order_id)
);

CREATE TABLE items (
    item_id INTEGER,
    order_id INTEGER,
    qty INTEGER,
    CONSTRAINT items_pk PRIMARY KEY (item_id),
    CONSTRAINT items_order_fk FOREIGN KEY (order_id) REFERENCES orders (order_id),
    CHECK (qty > 0)
);

ALTER TABLE items ADD CONSTRAINT items_user_fk FOREIGN KEY (qty) REFERENCES Users (id);
`

func extractSample(t *testing.T) map[string]*table.Descriptor {
	t.Helper()
	tables, err := NewDDL(sampleSchema).Extract(context.Background())
	require.NoError(t, err)

	byName := make(map[string]*table.Descriptor, len(tables))
	for _, tbl := range tables {
		byName[tbl.Name] = tbl
	}
	return byName
}

func TestDDLExtract(t *testing.T) {
	tables, err := NewDDL(sampleSchema).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 3)

	// declaration order, names lower-cased and schema-qualifier stripped
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, "orders", tables[1].Name)
	assert.Equal(t, "items", tables[2].Name)
}

func TestDDLColumnsAndPrimaryKeys(t *testing.T) {
	byName := extractSample(t)

	users := byName["users"]
	assert.Equal(t, []string{"id", "name", "email"}, users.Headers)
	assert.Equal(t, "id", users.PrimaryKey) // inline column option

	orders := byName["orders"]
	assert.Equal(t, []string{"order_id", "user_id", "total"}, orders.Headers)
	assert.Equal(t, "order_id", orders.PrimaryKey) // table-level constraint

	items := byName["items"]
	assert.Equal(t, []string{"item_id", "order_id", "qty"}, items.Headers)
	assert.Equal(t, "item_id", items.PrimaryKey) // named constraint
}

func TestDDLForeignKeys(t *testing.T) {
	byName := extractSample(t)

	orders := byName["orders"]
	require.Len(t, orders.ForeignKeys, 1)
	assert.Equal(t, table.ForeignKey{Column: "user_id", RefTable: "users", RefColumn: "id"}, orders.ForeignKeys[0])

	items := byName["items"]
	require.Len(t, items.ForeignKeys, 2)
	assert.Equal(t, table.ForeignKey{Column: "order_id", RefTable: "orders", RefColumn: "order_id"}, items.ForeignKeys[0])
	// ALTER TABLE ADD FOREIGN KEY lands on the existing descriptor
	assert.Equal(t, table.ForeignKey{Column: "qty", RefTable: "users", RefColumn: "id"}, items.ForeignKeys[1])
}

func TestDDLQuotedIdentifiers(t *testing.T) {
	schema := "CREATE TABLE `Accounts` (\n" +
		"  `id` INT PRIMARY KEY,\n" +
		"  \"owner_id\" INT,\n" +
		"  FOREIGN KEY (`owner_id`) REFERENCES \"Accounts\" (`id`)\n" +
		");"

	tables, err := NewDDL(schema).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)

	acc := tables[0]
	assert.Equal(t, "accounts", acc.Name)
	assert.Equal(t, []string{"id", "owner_id"}, acc.Headers)
	require.Len(t, acc.ForeignKeys, 1)
	assert.Equal(t, table.ForeignKey{Column: "owner_id", RefTable: "accounts", RefColumn: "id"}, acc.ForeignKeys[0])
}

func TestDDLIgnoresCommentsAndNoise(t *testing.T) {
	schema := `
-- a comment with CREATE TABLE bogus (x int);
CREATE INDEX idx_users_name ON users (name);
CREATE TABLE t (
  id INT, -- trailing comment
  KEY idx_id (id)
);
DROP TABLE old_stuff;
`
	tables, err := NewDDL(schema).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, []string{"id"}, tables[0].Headers)
	assert.Empty(t, tables[0].ForeignKeys)
}

func TestDDLUnbalancedParens(t *testing.T) {
	_, err := NewDDL("CREATE TABLE broken (id INT").Extract(context.Background())
	require.Error(t, err)
}
