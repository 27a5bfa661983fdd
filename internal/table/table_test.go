package table

import (
	"testing"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetHeaders(t *testing.T) {
	d := New("users")
	require.NoError(t, d.SetHeaders([]string{"id", "name", "email"}))

	require.NoError(t, d.Validate())
	assert.Len(t, d.HeaderIndex, 3)
	for i, h := range d.Headers {
		assert.Equal(t, i, d.HeaderIndex[h])
	}
}

func TestSetHeadersRejectsDuplicates(t *testing.T) {
	d := New("users")
	err := d.SetHeaders([]string{"id", "name", "id"})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}

func TestIndexOf(t *testing.T) {
	d := New("users")
	require.NoError(t, d.SetHeaders([]string{"id", "name"}))

	i, ok := d.IndexOf("name")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	_, ok = d.IndexOf("missing")
	assert.False(t, ok)
}

func TestCloneIsDeep(t *testing.T) {
	d := New("users")
	require.NoError(t, d.SetHeaders([]string{"id", "name"}))
	d.PrimaryKey = "id"
	d.AddForeignKey("org_id", "orgs", "id")

	c := d.Clone()
	c.Headers[0] = "changed"
	c.HeaderIndex["extra"] = 99
	c.ForeignKeys[0].Column = "changed"

	assert.Equal(t, "id", d.Headers[0])
	assert.NotContains(t, d.HeaderIndex, "extra")
	assert.Equal(t, "org_id", d.ForeignKeys[0].Column)
}

func TestJoinedWith(t *testing.T) {
	left := New("users")
	require.NoError(t, left.SetHeaders([]string{"user_id", "name"}))
	left.PrimaryKey = "user_id"

	right := New("orders")
	require.NoError(t, right.SetHeaders([]string{"order_id", "user_id", "total"}))
	right.PrimaryKey = "order_id"
	right.AddForeignKey("user_id", "users", "user_id")
	right.AddForeignKey("shop_id", "shops", "shop_id")

	joined := left.JoinedWith(right, "user_id", "user_id")

	// join column elided from the appended right headers
	assert.Equal(t, []string{"user_id", "name", "order_id", "total"}, joined.Headers)
	require.NoError(t, joined.Validate())

	// consumed foreign key dropped, the rest carried over
	require.Len(t, joined.ForeignKeys, 1)
	assert.Equal(t, "shop_id", joined.ForeignKeys[0].Column)

	// left operand untouched
	assert.Equal(t, []string{"user_id", "name"}, left.Headers)
	assert.Empty(t, left.ForeignKeys)
}

func TestJoinedWithPropagatesPrimaryKey(t *testing.T) {
	left := New("orders")
	require.NoError(t, left.SetHeaders([]string{"order_id", "user_id"}))
	left.PrimaryKey = "order_id"

	right := New("users")
	require.NoError(t, right.SetHeaders([]string{"user_id", "name"}))
	right.PrimaryKey = "user_id"

	// right's primary key is the consumed join column: identity flows to
	// the left join column
	joined := left.JoinedWith(right, "user_id", "user_id")
	assert.Equal(t, "user_id", joined.PrimaryKey)

	// unrelated right primary key leaves the left one in place
	right.PrimaryKey = "name"
	joined = left.JoinedWith(right, "user_id", "user_id")
	assert.Equal(t, "order_id", joined.PrimaryKey)
}
