package dictionary

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/NikitaCOEUR/autocomplete/internal/completion"
	"github.com/NikitaCOEUR/autocomplete/internal/derrors"
)

var want = []completion.Candidate{
	{Value: "Type-Defect", Doc: "Something is broken"},
	{Value: "Security"},
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"labels.yml":     FormatYAML,
		"labels.YAML":    FormatYAML,
		"labels.json":    FormatJSON,
		"labels.msgpack": FormatMsgpack,
		"labels.mp":      FormatMsgpack,
		"labels.txt":     FormatText,
		"labels.csv":     FormatUnknown,
		"labels":         FormatUnknown,
	}
	for path, format := range tests {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, format, DetectFormat(path))
		})
	}
}

func TestLoad(t *testing.T) {
	mixed, err := msgpack.Marshal([]interface{}{
		map[string]string{"value": "Type-Defect", "doc": "Something is broken"},
		"Security",
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{
			name: "yaml mixed entries",
			file: "labels.yml",
			data: []byte("- value: Type-Defect\n  doc: Something is broken\n- Security\n"),
		},
		{
			name: "json mixed entries",
			file: "labels.json",
			data: []byte(`[{"value": "Type-Defect", "doc": "Something is broken"}, "Security"]`),
		},
		{
			name: "msgpack mixed entries",
			file: "labels.msgpack",
			data: mixed,
		},
		{
			name: "text with tab separated docs",
			file: "labels.txt",
			data: []byte("# labels\nType-Defect\tSomething is broken\n\nSecurity\n"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(writeFile(t, tt.file, tt.data))
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("unknown extension", func(t *testing.T) {
		_, err := Load(writeFile(t, "labels.csv", []byte("a,b")))

		var dictErr *derrors.DictionaryError
		require.True(t, errors.As(err, &dictErr))
		assert.Equal(t, "DICTIONARY_ERROR", dictErr.Code())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "labels.yml"))

		var notFound *derrors.NotFoundError
		assert.True(t, errors.As(err, &notFound))
	})

	t.Run("malformed content", func(t *testing.T) {
		_, err := Load(writeFile(t, "labels.json", []byte(`[{"value": `)))

		var dictErr *derrors.DictionaryError
		assert.True(t, errors.As(err, &dictErr))
	})

	t.Run("unexpected msgpack entry", func(t *testing.T) {
		data, err := msgpack.Marshal([]interface{}{42})
		require.NoError(t, err)

		_, err = Load(writeFile(t, "labels.mp", data))
		assert.Error(t, err)
	})
}

func TestPack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.msgpack")

	require.NoError(t, Pack(want, path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPack_UnwritablePath(t *testing.T) {
	err := Pack(want, filepath.Join(t.TempDir(), "missing", "labels.msgpack"))

	var dictErr *derrors.DictionaryError
	assert.True(t, errors.As(err, &dictErr))
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "msgpack", FormatMsgpack.String())
	assert.Equal(t, "unknown", Format(99).String())
}
