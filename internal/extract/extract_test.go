package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"resumeadvisor/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXMLTemplate = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`

func paragraphXML(runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	for _, run := range runs {
		fmt.Fprintf(&b, `<w:r><w:t xml:space="preserve">%s</w:t></w:r>`, run)
	}
	b.WriteString("</w:p>")
	return b.String()
}

func writeDOCX(t *testing.T, dir, name, body string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	ct, err := zw.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = ct.Write([]byte(`<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)
	doc, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = doc.Write([]byte(fmt.Sprintf(documentXMLTemplate, body)))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

// writePDF builds a single-page PDF whose content stream is content.
func writePDF(t *testing.T, dir, name, content string) string {
	t.Helper()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefStart)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestExtractDOCX(t *testing.T) {
	dir := t.TempDir()
	body := paragraphXML("Jane Doe") +
		paragraphXML("Senior ", "Go engineer") +
		"<w:p/>" +
		paragraphXML("Built payment APIs")

	tests := []struct {
		name string
		file string
	}{
		{name: "lowercase extension", file: "resume.docx"},
		{name: "uppercase extension", file: "RESUME.DOCX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDOCX(t, dir, tt.file, body)

			text, err := New(nil).Extract(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, "Jane Doe\nSenior Go engineer\n\nBuilt payment APIs", text)
		})
	}
}

func TestExtractDOCXTabsAndBreaks(t *testing.T) {
	body := `<w:p><w:r><w:t>Skills</w:t><w:tab/><w:t>Go</w:t><w:br/><w:t>Kubernetes</w:t></w:r></w:p>`
	path := writeDOCX(t, t.TempDir(), "cv.docx", body)

	text, err := New(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Skills\tGo\nKubernetes", text)
}

func TestExtractDOCXTableParagraphs(t *testing.T) {
	body := paragraphXML("Jane Doe") +
		"<w:tbl><w:tr>" +
		"<w:tc>" + paragraphXML("Languages") + "</w:tc>" +
		"<w:tc>" + paragraphXML("Go, SQL") + "</w:tc>" +
		"</w:tr></w:tbl>" +
		paragraphXML("Experience")
	path := writeDOCX(t, t.TempDir(), "cv.docx", body)

	text, err := New(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nLanguages\nGo, SQL\nExperience", text)
}

func TestExtractPDF(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "resume.PDF", "BT /F1 12 Tf 72 720 Td (Jane Doe Software Engineer) Tj ET")

	text, err := New(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, text, "Jane Doe Software Engineer")
}

func TestExtractPDFWithoutTextLayer(t *testing.T) {
	path := writePDF(t, t.TempDir(), "scan.pdf", "q Q")

	text, err := New(nil).Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(text))
}

func TestExtractUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"resume.txt", "resume.doc", "resume"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, os.WriteFile(path, []byte("Jane Doe"), 0o600))

			text, err := New(nil).Extract(context.Background(), path)
			assert.NoError(t, err)
			assert.Empty(t, text)
		})
	}
}

func TestExtractCorruptDocuments(t *testing.T) {
	dir := t.TempDir()

	noDocument := filepath.Join(dir, "empty-zip.docx")
	var buf bytes.Buffer
	require.NoError(t, zip.NewWriter(&buf).Close())
	require.NoError(t, os.WriteFile(noDocument, buf.Bytes(), 0o600))

	tests := []struct {
		name string
		path string
	}{
		{name: "pdf garbage", path: filepath.Join(dir, "bad.pdf")},
		{name: "docx not a zip", path: filepath.Join(dir, "bad.docx")},
		{name: "docx without document.xml", path: noDocument},
		{name: "missing file", path: filepath.Join(dir, "absent.pdf")},
	}
	require.NoError(t, os.WriteFile(tests[0].path, []byte("%PDF-1.4\nnot really a pdf"), 0o600))
	require.NoError(t, os.WriteFile(tests[1].path, []byte("PK but not really"), 0o600))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := New(nil).Extract(context.Background(), tt.path)
			require.Error(t, err)
			assert.Empty(t, text)
			assert.True(t, errors.HasCode(err, errors.ErrCodeExtractionFailed), "got %v", err)
		})
	}
}

func TestExtractCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Extract(ctx, "resume.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.pdf"))
	assert.True(t, Supported("A.Docx"))
	assert.False(t, Supported("a.doc"))
	assert.False(t, Supported("pdf"))
}
