// extract.go
package main

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// extractText converts uploaded file bytes into a text string based on the
// reported content type. PDF and DOCX get real extraction; everything else is
// treated as UTF-8 text, matching the upload contract.
func extractText(data []byte, contentType string) (string, error) {
	switch {
	case contentType == "application/pdf":
		return extractTextFromPDF(data)
	case contentType == docxContentType:
		return extractTextFromDocx(data)
	case strings.HasPrefix(contentType, "text/"):
		return string(data), nil
	default:
		return string(data), nil
	}
}

// extractTextFromPDF extracts the plain text of every page of a PDF.
func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %v", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %v", err)
	}

	text, err := io.ReadAll(textReader)
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %v", err)
	}
	return string(text), nil
}

// extractTextFromDocx extracts paragraph text from a DOCX file. The format is
// a zip archive whose word/document.xml holds the text runs; paragraphs become
// newline-separated lines.
func extractTextFromDocx(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX archive: %v", err)
	}

	var documentXML io.ReadCloser
	for _, file := range archive.File {
		if file.Name == "word/document.xml" {
			documentXML, err = file.Open()
			if err != nil {
				return "", fmt.Errorf("failed to open document body: %v", err)
			}
			break
		}
	}
	if documentXML == nil {
		return "", fmt.Errorf("DOCX archive has no document body")
	}
	defer documentXML.Close()

	var text strings.Builder
	decoder := xml.NewDecoder(documentXML)
	inTextRun := false

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse document body: %v", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			if element.Name.Local == "t" {
				inTextRun = true
			}
		case xml.EndElement:
			if element.Name.Local == "t" {
				inTextRun = false
			}
			// Paragraph boundaries become newlines
			if element.Name.Local == "p" {
				text.WriteString("\n")
			}
		case xml.CharData:
			if inTextRun {
				text.Write(element)
			}
		}
	}

	return text.String(), nil
}
