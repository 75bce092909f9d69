package main

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

// buildDocx assembles a minimal DOCX archive with the given document body
func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, err := writer.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Failed to create archive entry: %v", err)
	}
	entry.Write([]byte(documentXML))
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close archive: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextPlain(t *testing.T) {
	text, err := extractText([]byte("plain body"), "text/plain")
	if err != nil {
		t.Fatalf("extractText failed: %v", err)
	}
	if text != "plain body" {
		t.Errorf("Expected passthrough text, got %q", text)
	}

	// Unknown content types are treated as text
	text, err = extractText([]byte("raw bytes"), "application/octet-stream")
	if err != nil {
		t.Fatalf("extractText failed: %v", err)
	}
	if text != "raw bytes" {
		t.Errorf("Expected passthrough for unknown type, got %q", text)
	}
}

func TestExtractTextFromDocx(t *testing.T) {
	documentXML := `<?xml version="1.0"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` +
		`<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	data := buildDocx(t, documentXML)
	text, err := extractText(data, docxContentType)
	if err != nil {
		t.Fatalf("extractText failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 paragraphs, got %d: %q", len(lines), text)
	}
	if lines[0] != "First paragraph" {
		t.Errorf("Unexpected first paragraph: %q", lines[0])
	}
	// Split runs within one paragraph join without separators
	if lines[1] != "Second paragraph" {
		t.Errorf("Unexpected second paragraph: %q", lines[1])
	}
}

func TestExtractTextFromDocxMissingBody(t *testing.T) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)
	entry, _ := writer.Create("word/other.xml")
	entry.Write([]byte("<x/>"))
	writer.Close()

	if _, err := extractText(buf.Bytes(), docxContentType); err == nil {
		t.Error("Expected error for DOCX without document body")
	}
}

func TestExtractTextFromInvalidPDF(t *testing.T) {
	if _, err := extractText([]byte("not a pdf"), "application/pdf"); err == nil {
		t.Error("Expected error for malformed PDF data")
	}
}
