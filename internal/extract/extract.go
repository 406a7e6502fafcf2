// Package extract turns resume documents into plain text.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"resumeadvisor/internal/errors"
	"resumeadvisor/internal/utils"

	"github.com/ledongthuc/pdf"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

const wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

// Extractor reads PDF and DOCX files. Other extensions yield empty text.
type Extractor struct {
	logger *errors.Logger
}

// New creates an Extractor. logger may be nil.
func New(logger *errors.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Supported reports whether filename has an extension that Extract reads.
func Supported(filename string) bool {
	return utils.IsDocumentFile(filename)
}

// Extract returns the text of the document at path, dispatching on the
// lowercased extension. Unreadable documents fail with EXTRACTION_FAILED;
// an unsupported extension is not an error and returns "".
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ext := utils.GetFileExtension(path)
	_, span := otel.Tracer("resumeadvisor.extract").Start(ctx, "extract.document")
	defer span.End()
	span.SetAttributes(attribute.String("document.extension", ext))

	var (
		text string
		err  error
	)
	switch ext {
	case ".pdf":
		text, err = readPDF(path)
	case ".docx":
		text, err = readDOCX(path)
	default:
		if e.logger != nil {
			e.logger.Debug("Unsupported document extension", "path", path, "extension", ext)
		}
		return "", nil
	}

	if err != nil {
		span.RecordError(err)
		return "", errors.NewExtractionError(path, err).WithContext("extension", ext)
	}

	span.SetAttributes(attribute.Int("document.text_length", len(text)))
	if e.logger != nil {
		e.logger.Debug("Extracted document text", "path", path, "extension", ext, "characters", len(text))
	}
	return text, nil
}

func readPDF(path string) (text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	// the pdf reader panics on some malformed inputs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func readDOCX(path string) (string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", err
	}
	defer zr.Close()

	var document *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			document = f
			break
		}
	}
	if document == nil {
		return "", fmt.Errorf("word/document.xml not found")
	}

	rc, err := document.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	paragraphs, err := docxParagraphs(rc)
	if err != nil {
		return "", err
	}
	return strings.Join(paragraphs, "\n"), nil
}

// docxParagraphs returns the text of each w:p element in document order.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		open       []*strings.Builder
		inText     bool
	)
	current := func() *strings.Builder {
		if len(open) == 0 {
			return nil
		}
		return open[len(open)-1]
	}

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "p":
				open = append(open, &strings.Builder{})
			case "t":
				inText = true
			case "tab":
				if b := current(); b != nil {
					b.WriteByte('\t')
				}
			case "br", "cr":
				if b := current(); b != nil {
					b.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if b := current(); b != nil {
					paragraphs = append(paragraphs, b.String())
					open = open[:len(open)-1]
				}
			}
		case xml.CharData:
			if b := current(); inText && b != nil {
				b.Write(t)
			}
		}
	}

	return paragraphs, nil
}
