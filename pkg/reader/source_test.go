package reader_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapcsv/pkg/reader"
)

func drain(t *testing.T, src reader.LineSource) []string {
	t.Helper()
	var lines []string
	for {
		line, err := src.ReadLine(context.Background())
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestScannerSource(t *testing.T) {
	t.Run("splits on LF and CRLF", func(t *testing.T) {
		src := reader.NewScannerSource(strings.NewReader("a\r\nb\nc"))
		assert.Equal(t, []string{"a", "b", "c"}, drain(t, src))
	})

	t.Run("empty input", func(t *testing.T) {
		src := reader.NewScannerSource(strings.NewReader(""))
		assert.Empty(t, drain(t, src))
	})

	t.Run("keeps empty lines", func(t *testing.T) {
		src := reader.NewScannerSource(strings.NewReader("a\n\nb\n"))
		assert.Equal(t, []string{"a", "", "b"}, drain(t, src))
	})

	t.Run("honors context", func(t *testing.T) {
		src := reader.NewScannerSource(strings.NewReader("a\nb"))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := src.ReadLine(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSliceSource(t *testing.T) {
	src := reader.NewSliceSource("one", "two")
	assert.Equal(t, []string{"one", "two"}, drain(t, src))

	// Exhausted sources stay exhausted.
	_, err := src.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecodeSource(t *testing.T) {
	t.Run("strips UTF-8 BOM", func(t *testing.T) {
		raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Name,Value\n")...)
		src, err := reader.NewDecodeSource(bytes.NewReader(raw), "utf-8")
		require.NoError(t, err)
		assert.Equal(t, []string{"Name,Value"}, drain(t, src))
	})

	t.Run("decodes windows-1252", func(t *testing.T) {
		// 0xE9 is é in windows-1252.
		raw := []byte{'c', 'a', 'f', 0xE9, ',', '1', '\n'}
		src, err := reader.NewDecodeSource(bytes.NewReader(raw), "windows-1252")
		require.NoError(t, err)
		assert.Equal(t, []string{"café,1"}, drain(t, src))
	})

	t.Run("decodes windows-1251", func(t *testing.T) {
		// 0xC4 is Д in windows-1251.
		raw := []byte{0xC4, ',', 'x'}
		src, err := reader.NewDecodeSource(bytes.NewReader(raw), "cp1251")
		require.NoError(t, err)
		assert.Equal(t, []string{"Д,x"}, drain(t, src))
	})

	t.Run("rejects unknown encodings", func(t *testing.T) {
		_, err := reader.NewDecodeSource(strings.NewReader(""), "ebcdic")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ebcdic")
	})
}
