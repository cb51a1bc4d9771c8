package extractor

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectFileType(t *testing.T) {
	e := NewDocconvExtractor(false)

	tests := []struct {
		fileName string
		want     string
	}{
		{"book.pdf", "pdf"},
		{"NOTES.TXT", "txt"},
		{"novel.epub", "epub"},
		{"report.docx", "docx"},
		{"archive.tar.gz", ""},
		{"noextension", ""},
		{"weird.xyz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.DetectFileType(tt.fileName), tt.fileName)
	}
}

func TestExtractTextPlain(t *testing.T) {
	e := NewDocconvExtractor(false)

	res, err := e.ExtractText(context.Background(), []byte("  hello plain world\n"), "txt")
	require.NoError(t, err)
	assert.Equal(t, "hello plain world", res.Text)
	assert.Equal(t, "docconv", res.Metadata["extractor"])
	assert.Equal(t, "txt", res.Metadata["fileType"])
	assert.Equal(t, "17", res.Metadata["characters"])
}

func TestExtractTextEPUB(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	w, err := zw.Create("OEBPS/chapter1.xhtml")
	require.NoError(t, err)
	_, err = w.Write([]byte("<html><body><p>Hello epub world</p></body></html>"))
	require.NoError(t, err)

	w, err = zw.Create("OEBPS/styles.css")
	require.NoError(t, err)
	_, err = w.Write([]byte("p { margin: 0 }"))
	require.NoError(t, err)

	require.NoError(t, zw.Close())

	e := NewDocconvExtractor(false)
	res, err := e.ExtractText(context.Background(), buf.Bytes(), "epub")
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Hello epub world")
	assert.Equal(t, "1", res.Metadata["sections"])
}

func TestExtractEPUBWithoutSections(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("mimetype")
	require.NoError(t, err)
	_, err = w.Write([]byte("application/epub+zip"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	e := NewDocconvExtractor(false)
	_, err = e.ExtractText(context.Background(), buf.Bytes(), "epub")
	assert.Error(t, err)
}

func TestExtractTextUnknownType(t *testing.T) {
	e := NewDocconvExtractor(false)

	_, err := e.ExtractText(context.Background(), []byte("data"), "tarball")
	assert.Error(t, err)
}
