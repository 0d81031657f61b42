package extract_test

import (
	"archive/zip"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/udlcoach/pkg/adapters/extract"
	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Unit 3 Quiz</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">1. Label the </w:t></w:r><w:r><w:t>cell.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Name:</w:t><w:tab/><w:t>____</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract_PlainText(t *testing.T) {
	x := extract.New()
	tests := []struct {
		name string
		data string
		want string
	}{
		{"quiz.txt", "  Q1. What is 1/2 + 1/4?\n", "Q1. What is 1/2 + 1/4?"},
		{"Quiz.MD", "# Quiz\n\n- item", "# Quiz\n\n- item"},
		{"bom.txt", "\xef\xbb\xbfhello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := x.Extract(context.Background(), tt.name, []byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_InvalidUTF8(t *testing.T) {
	_, err := extract.New().Extract(context.Background(), "a.txt", []byte{0xff, 0xfe, 0x00})
	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
}

func TestExtract_Docx(t *testing.T) {
	data := buildDocx(t, map[string]string{
		"[Content_Types].xml": `<Types/>`,
		"word/document.xml":   documentXML,
	})

	got, err := extract.New().Extract(context.Background(), "quiz.docx", data)
	require.NoError(t, err)
	assert.Equal(t, "Unit 3 Quiz\n1. Label the cell.\nName:\t____", got)
}

func TestExtract_DocxErrors(t *testing.T) {
	x := extract.New()

	_, err := x.Extract(context.Background(), "a.docx", []byte("not a zip"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)

	_, err = x.Extract(context.Background(), "a.docx", buildDocx(t, map[string]string{"other.xml": "<x/>"}))
	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)

	_, err = x.Extract(context.Background(), "a.docx", buildDocx(t, map[string]string{"word/document.xml": "<w:p><w:t>open"}))
	assert.ErrorIs(t, err, domain.ErrUnsupportedDocument)
}

func TestExtract_SizeLimit(t *testing.T) {
	x := extract.New(extract.WithMaxTextSize(1024))
	ctx := context.Background()

	run := func(text string) string {
		return `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>` +
			text + `</w:t></w:r></w:p></w:body></w:document>`
	}

	t.Run("compressed bomb", func(t *testing.T) {
		data := buildDocx(t, map[string]string{"word/document.xml": run(strings.Repeat("a", 4<<20))})
		require.Less(t, len(data), 64*1024, "deflate keeps the upload small")

		_, err := x.Extract(ctx, "bomb.docx", data)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("text over limit", func(t *testing.T) {
		data := buildDocx(t, map[string]string{"word/document.xml": run(strings.Repeat("b", 2048))})
		_, err := x.Extract(ctx, "long.docx", data)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("text within limit", func(t *testing.T) {
		data := buildDocx(t, map[string]string{"word/document.xml": run(strings.Repeat("c", 1000))})
		got, err := x.Extract(ctx, "ok.docx", data)
		require.NoError(t, err)
		assert.Len(t, got, 1000)
	})

	t.Run("plain text over limit", func(t *testing.T) {
		_, err := x.Extract(ctx, "long.txt", []byte(strings.Repeat("d", 1025)))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestExtract_Unsupported(t *testing.T) {
	for _, name := range []string{"a.pdf", "a.exe", "noext"} {
		_, err := extract.New().Extract(context.Background(), name, []byte("x"))
		assert.ErrorIs(t, err, domain.ErrUnsupportedDocument, name)
	}
}

func TestExtract_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := extract.New().Extract(ctx, "a.txt", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
