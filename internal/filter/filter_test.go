package filter_test

import (
	"context"
	"testing"

	"github.com/leapstack-labs/leapcsv/internal/filter"
	"github.com/leapstack-labs/leapcsv/pkg/reader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readRecords(t *testing.T, lines ...string) ([]*reader.Record, []string) {
	t.Helper()
	r, err := reader.New(reader.NewSliceSource(lines...), reader.DefaultOptions())
	require.NoError(t, err)
	records, err := r.ReadAll(context.Background())
	require.NoError(t, err)
	return records, r.Header().Names()
}

func TestCompile_SyntaxError(t *testing.T) {
	_, err := filter.Compile(`name ==`, []string{"name"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter expression")
}

func TestMatch_ByColumnName(t *testing.T) {
	records, headers := readRecords(t,
		"name,category",
		"hammer,tools",
		"apple,food",
	)

	f, err := filter.Compile(`category == "tools"`, headers)
	require.NoError(t, err)

	ok, err := f.Match(records[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Match(records[1])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_RowDictAndLineNumber(t *testing.T) {
	records, headers := readRecords(t,
		"name,price",
		"a,10",
		"b,",
	)

	f, err := filter.Compile(`row["price"] != "" and n > 1`, headers)
	require.NoError(t, err)

	ok, err := f.Match(records[0])
	require.NoError(t, err)
	assert.True(t, ok, "line 2 with a price passes")

	ok, err = f.Match(records[1])
	require.NoError(t, err)
	assert.False(t, ok, "empty price fails")
}

func TestMatch_NonIdentifierHeaderViaRow(t *testing.T) {
	records, headers := readRecords(t,
		"unit price,name",
		"5,bolt",
	)

	// "unit price" cannot be a bare variable; the row dict still works.
	f, err := filter.Compile(`row["unit price"] == "5"`, headers)
	require.NoError(t, err)

	ok, err := f.Match(records[0])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMatch_TruthOfNonBool(t *testing.T) {
	records, headers := readRecords(t,
		"name,note",
		"a,x",
		"b,",
	)

	// Bare string: truthy when non-empty.
	f, err := filter.Compile(`note`, headers)
	require.NoError(t, err)

	ok, err := f.Match(records[0])
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.Match(records[1])
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatch_RuntimeError(t *testing.T) {
	records, headers := readRecords(t,
		"name",
		"a",
	)

	f, err := filter.Compile(`int(name)`, headers)
	require.NoError(t, err)

	_, err = f.Match(records[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter failed on line")
}
