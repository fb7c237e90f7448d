package enum

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, files map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestIsArchive(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"backup.zip", true},
		{"BACKUP.ZIP", true},
		{"configs.7z", true},
		{"r1.cfg", false},
		{"archive.tar.gz", false},
		{"zip", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsArchive(tt.path))
		})
	}
}

func TestExtractArchive_Zip(t *testing.T) {
	data := buildZip(t, map[string][]byte{
		"site-a/r1.cfg":  []byte("hostname r1\n"),
		"site-a/":        nil,
		"firmware.bin":   {0x00, 0x01, 0x02},
		"site-b/big.cfg": bytes.Repeat([]byte("x"), 200),
	})

	members, err := ExtractArchive("backup.zip", data, 100)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "site-a/r1.cfg", members[0].Name)
	assert.Equal(t, "hostname r1\n", string(members[0].Content))

	members, err = ExtractArchive("backup.zip", data, 0)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestExtractArchive_Invalid(t *testing.T) {
	_, err := ExtractArchive("backup.zip", []byte("not a zip"), 0)
	assert.Error(t, err)

	_, err = ExtractArchive("backup.7z", []byte("not a 7z archive"), 0)
	assert.Error(t, err)

	_, err = ExtractArchive("backup.rar", []byte("whatever"), 0)
	assert.ErrorContains(t, err, "unsupported archive type")
}

func TestIsBinary(t *testing.T) {
	assert.False(t, isBinary([]byte("hostname r1\n")))
	assert.False(t, isBinary([]byte("banner motd \x03\n")))
	assert.True(t, isBinary([]byte{'a', 0x00, 'b'}))
	assert.False(t, isBinary(nil))

	late := append(bytes.Repeat([]byte("a"), 9000), 0x00)
	assert.False(t, isBinary(late), "only the first 8KB are inspected")
}
