package reader_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapcsv/pkg/reader"
)

func readOne(t *testing.T, opts reader.Options, lines ...string) *reader.Record {
	t.Helper()
	r, err := reader.New(reader.NewSliceSource(lines...), opts)
	require.NoError(t, err)
	rec, err := r.Read(context.Background())
	require.NoError(t, err)
	return rec
}

func TestRecordValuesAndRange(t *testing.T) {
	rec := readOne(t, reader.DefaultOptions(),
		"A,B,C,D",
		`1,"2,x",3,4`,
	)

	values, err := rec.Values()
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2,x", "3", "4"}, values)

	middle, err := rec.Range(1, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"2,x", "3"}, middle)

	empty, err := rec.Range(2, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = rec.Range(1, 9)
	assert.ErrorIs(t, err, reader.ErrMissingColumn)

	assert.Equal(t, 4, rec.Len())
}

func TestRecordValueCaching(t *testing.T) {
	rec := readOne(t, reader.DefaultOptions(),
		"A",
		`"value"`,
	)

	first, err := rec.FieldAt(0)
	require.NoError(t, err)
	second, err := rec.FieldAt(0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, "value", first)
}

func TestRecordRawKeepsQuoting(t *testing.T) {
	rec := readOne(t, reader.DefaultOptions(),
		"A,B",
		`"x",y`,
	)
	assert.Equal(t, `"x",y`, rec.Raw())
}

func TestRecordWipe(t *testing.T) {
	rec := readOne(t, reader.DefaultOptions(),
		"A,B",
		"1,2",
	)

	headers := rec.Headers()
	v, err := rec.Field("A")
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	rec.Wipe()

	assert.Equal(t, "", rec.Raw())
	assert.Equal(t, 0, rec.Len())

	_, err = rec.Field("A")
	assert.ErrorIs(t, err, reader.ErrMissingColumn)

	values, err := rec.Values()
	require.NoError(t, err)
	assert.Empty(t, values)

	// Names handed out before the wipe stay valid.
	assert.Equal(t, []string{"A", "B"}, headers)
}

func TestRecordEqual(t *testing.T) {
	opts := reader.DefaultOptions()

	t.Run("values compare case-insensitively", func(t *testing.T) {
		a := readOne(t, opts, "X,Y", "Alice,Berlin")
		b := readOne(t, opts, "X,Y", "ALICE,berlin")
		assert.True(t, a.Equal(b))
		assert.False(t, a.EqualRaw(b))
	})

	t.Run("raw comparison is exact", func(t *testing.T) {
		a := readOne(t, opts, "X", `"v"`)
		b := readOne(t, opts, "X", `"v"`)
		c := readOne(t, opts, "X", "v")

		assert.True(t, a.EqualRaw(b))
		assert.False(t, a.EqualRaw(c))
		// Same logical value either way.
		assert.True(t, a.Equal(c))
	})

	t.Run("different values differ", func(t *testing.T) {
		a := readOne(t, opts, "X", "1")
		b := readOne(t, opts, "X", "2")
		assert.False(t, a.Equal(b))
	})

	t.Run("different header widths differ", func(t *testing.T) {
		a := readOne(t, opts, "X", "1")
		b := readOne(t, opts, "X,Y", "1,2")
		assert.False(t, a.Equal(b))
	})

	t.Run("nil compares unequal", func(t *testing.T) {
		a := readOne(t, opts, "X", "1")
		assert.False(t, a.Equal(nil))
		assert.False(t, a.EqualRaw(nil))
	})
}

func TestRecordLazySplitCountsOnce(t *testing.T) {
	opts := reader.DefaultOptions()
	opts.ValidateColumnCount = true
	rec := readOne(t, opts,
		"A,B,C",
		"1,2",
	)

	// Every access repeats the mismatch; none panics or heals.
	for range 3 {
		_, err := rec.Values()
		assert.ErrorIs(t, err, reader.ErrColumnCount)
	}
}
