// Package extract converts uploaded assessment documents into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/udlcoach/pkg/domain"
	"github.com/aretw0/udlcoach/pkg/runner"
)

// docxBody is the part of a .docx package holding the main document text.
const docxBody = "word/document.xml"

// markupFactor bounds word/document.xml relative to the text limit.
// WordprocessingML wraps every run in several elements.
const markupFactor = 32

// Extractor implements ports.DocumentExtractor for plain text, markdown and
// Office Open XML (.docx) documents.
type Extractor struct {
	maxTextSize int
}

// Option configures the Extractor.
type Option func(*Extractor)

// WithMaxTextSize bounds the extracted text in bytes. A value <= 0 keeps
// the default of runner.MaxInputSize.
func WithMaxTextSize(n int) Option {
	return func(x *Extractor) {
		if n > 0 {
			x.maxTextSize = n
		}
	}
}

// New creates an Extractor.
func New(opts ...Option) *Extractor {
	x := &Extractor{maxTextSize: runner.MaxInputSize()}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract returns the text content of the document named name.
func (x *Extractor) Extract(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", ".text", ".md", ".markdown":
		if len(data) > x.maxTextSize {
			return "", x.tooLarge()
		}
		return plainText(data)
	case ".docx":
		return x.docxText(data)
	default:
		return "", fmt.Errorf("%w: %q", domain.ErrUnsupportedDocument, ext)
	}
}

func plainText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: text is not valid UTF-8", domain.ErrUnsupportedDocument)
	}
	return strings.TrimSpace(string(data)), nil
}

func (x *Extractor) tooLarge() error {
	return fmt.Errorf("%w: document text exceeds %d bytes", domain.ErrInvalidInput, x.maxTextSize)
}

func (x *Extractor) docxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: not a docx package: %w", domain.ErrUnsupportedDocument, err)
	}

	for _, f := range zr.File {
		if f.Name != docxBody {
			continue
		}
		limit := int64(x.maxTextSize) * markupFactor
		if f.UncompressedSize64 > uint64(limit) {
			return "", x.tooLarge()
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open %s: %w", docxBody, err)
		}
		defer rc.Close()
		// The header size is not trusted; the reader stops at the same bound.
		return x.wordprocessingText(&cappedReader{r: rc, n: limit})
	}
	return "", fmt.Errorf("%w: %s missing", domain.ErrUnsupportedDocument, docxBody)
}

// wordprocessingText walks WordprocessingML and keeps the text runs,
// one line per paragraph.
func (x *Extractor) wordprocessingText(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if errors.Is(err, errPartTooLarge) {
			return "", x.tooLarge()
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed document xml: %w", domain.ErrUnsupportedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br", "cr":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
		if b.Len() > x.maxTextSize {
			return "", x.tooLarge()
		}
	}
	return strings.TrimSpace(b.String()), nil
}

var errPartTooLarge = errors.New("document part too large")

// cappedReader fails once more than n bytes have been read.
type cappedReader struct {
	r io.Reader
	n int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	if c.n <= 0 {
		return 0, errPartTooLarge
	}
	if int64(len(p)) > c.n {
		p = p[:c.n]
	}
	n, err := c.r.Read(p)
	c.n -= int64(n)
	return n, err
}
