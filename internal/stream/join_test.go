package stream

import (
	"bytes"
	"strings"
	"testing"

	"github.com/MaxwellKnight/csvg/internal/errs"
	"github.com/MaxwellKnight/csvg/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	leftCSV  = "id,name\n1,Alice\n2,Bob\n3,Charlie\n"
	rightCSV = "id,age\n1,30\n2,25\n4,35\n"
)

func leftDesc(t *testing.T) *table.Descriptor {
	t.Helper()
	d := table.New("people")
	require.NoError(t, d.SetHeaders([]string{"id", "name"}))
	return d
}

func runJoin(t *testing.T, left, right string, kind Kind) string {
	t.Helper()
	var out bytes.Buffer
	err := Join(leftDesc(t), strings.NewReader(left), strings.NewReader(right), &out, "id", "id", kind)
	require.NoError(t, err)
	return out.String()
}

func TestJoinKinds(t *testing.T) {
	tests := []struct {
		name string
		kind Kind
		want string
	}{
		{
			name: "inner keeps matched rows only",
			kind: Inner,
			want: "id,name,age\n1,Alice,30\n2,Bob,25\n",
		},
		{
			name: "left pads unmatched left rows",
			kind: Left,
			want: "id,name,age\n1,Alice,30\n2,Bob,25\n3,Charlie,\n",
		},
		{
			name: "right appends unmatched right rows in key order",
			kind: Right,
			want: "id,name,age\n1,Alice,30\n2,Bob,25\n,,35\n",
		},
		{
			name: "full is the union of left and right",
			kind: Full,
			want: "id,name,age\n1,Alice,30\n2,Bob,25\n3,Charlie,\n,,35\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runJoin(t, leftCSV, rightCSV, tt.kind))
		})
	}
}

func TestJoinFanOut(t *testing.T) {
	// two left rows and two right rows share key 1: the output carries the
	// full cross-product, right rows in original file order
	left := "id,name\n1,Alice\n1,Anna\n2,Bob\n"
	right := "id,age\n1,30\n1,31\n"

	got := runJoin(t, left, right, Inner)
	want := "id,name,age\n" +
		"1,Alice,30\n1,Alice,31\n" +
		"1,Anna,30\n1,Anna,31\n"
	assert.Equal(t, want, got)
}

func TestJoinRowCountLaw(t *testing.T) {
	// inner row count = sum over shared keys of count_left * count_right
	left := "id,v\n1,a\n1,b\n2,c\n3,d\n"
	right := "id,w\n1,x\n1,y\n1,z\n3,q\n"

	got := runJoin(t, left, right, Inner)
	rows := strings.Count(got, "\n") - 1
	assert.Equal(t, 2*3+1*1, rows)
}

func TestJoinLeftTotality(t *testing.T) {
	// every left row appears at least once under Left
	got := runJoin(t, leftCSV, rightCSV, Left)
	for _, name := range []string{"Alice", "Bob", "Charlie"} {
		assert.Contains(t, got, name)
	}
}

func TestJoinFullSymmetry(t *testing.T) {
	full := strings.Split(strings.TrimSuffix(runJoin(t, leftCSV, rightCSV, Full), "\n"), "\n")
	left := strings.Split(strings.TrimSuffix(runJoin(t, leftCSV, rightCSV, Left), "\n"), "\n")
	right := strings.Split(strings.TrimSuffix(runJoin(t, leftCSV, rightCSV, Right), "\n"), "\n")

	// dropping right-unmatched padding rows reproduces the left join
	var noRightPad []string
	for _, row := range full {
		if !strings.HasPrefix(row, ",") {
			noRightPad = append(noRightPad, row)
		}
	}
	assert.Equal(t, left, noRightPad)

	// dropping left-unmatched padding rows reproduces the right join
	var noLeftPad []string
	for _, row := range full {
		if !strings.HasSuffix(row, ",") {
			noLeftPad = append(noLeftPad, row)
		}
	}
	assert.Equal(t, right, noLeftPad)
}

func TestJoinUnmatchedRightPreservesBucketOrder(t *testing.T) {
	// two right rows under the same unmatched key keep their file order
	right := "id,age\n4,35\n4,36\n"
	got := runJoin(t, leftCSV, right, Right)
	assert.Equal(t, "id,name,age\n,,35\n,,36\n", got)
}

func TestJoinUnmatchedRightKeyOrder(t *testing.T) {
	// unmatched keys are swept in ascending key order regardless of file order
	right := "id,age\n9,50\n4,35\n"
	got := runJoin(t, leftCSV, right, Right)
	assert.Equal(t, "id,name,age\n,,35\n,,50\n", got)
}

func TestJoinColumnNotFound(t *testing.T) {
	var out bytes.Buffer

	err := Join(leftDesc(t), strings.NewReader(leftCSV), strings.NewReader(rightCSV), &out, "nope", "id", Inner)
	require.Error(t, err)
	assert.True(t, errs.IsColumnNotFound(err))

	err = Join(leftDesc(t), strings.NewReader(leftCSV), strings.NewReader(rightCSV), &out, "id", "nope", Inner)
	require.Error(t, err)
	assert.True(t, errs.IsColumnNotFound(err))
}

func TestJoinZeroRowsIsNotAnError(t *testing.T) {
	right := "id,age\n9,50\n"
	got := runJoin(t, leftCSV, right, Inner)
	assert.Equal(t, "id,name,age\n", got)
}

func TestParseKind(t *testing.T) {
	for s, want := range map[string]Kind{"inner": Inner, "left": Left, "right": Right, "full": Full} {
		got, err := ParseKind(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseKind("cross")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}
