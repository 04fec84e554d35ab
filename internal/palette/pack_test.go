package palette

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExportImportPack(t *testing.T) {
	src := New(map[string]string{"Pets": "🐶🐱", "Food": "🍕"})
	var buf bytes.Buffer
	require.NoError(t, src.ExportPack(&buf))
	require.NoError(t, ValidatePack(buf.Bytes()))
	require.Contains(t, buf.String(), `"name": "Food"`)

	dst := New(map[string]string{"Pets": "🐭"})
	n, err := dst.ImportPack(&buf)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	require.Equal(t, "🐭🐶🐱", dst.Contents("Pets"))
	require.Equal(t, "🍕", dst.Contents("Food"))
}

func TestImportPackRejectsInvalid(t *testing.T) {
	bad := []string{
		`{"version":2,"palettes":[]}`,
		`{"version":1}`,
		`{"version":1,"palettes":[{"name":"","glyphs":"🐶"}]}`,
		`{"version":1,"palettes":[{"name":"x","glyphs":""}]}`,
		`{"version":1,"palettes":[],"extra":true}`,
		`not json`,
	}
	for _, in := range bad {
		r := New(map[string]string{"keep": "🐶"})
		_, err := r.ImportPack(strings.NewReader(in))
		require.Error(t, err, in)
		require.True(t, errors.Is(err, ErrInvalidPack), "want ErrInvalidPack for %s, got %v", in, err)
		require.Equal(t, []string{"keep"}, r.Names())
	}
}
