package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

// writeDocsDir creates a temp docs directory with the given files
func writeDocsDir(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write test file %s: %v", name, err)
		}
	}
	return dir
}

func TestDocumentFilesFiltersExtensions(t *testing.T) {
	dir := writeDocsDir(t, map[string]string{
		"assets.csv":  "a,b",
		"report.xlsx": "not really xlsx",
		"scan.pdf":    "not really pdf",
		"notes.txt":   "ignored",
		"README.md":   "ignored",
	})

	files := documentFiles(dir)
	if len(files) != 3 {
		t.Fatalf("Expected 3 evidence files, got %d: %v", len(files), files)
	}
	for _, file := range files {
		name := strings.ToLower(filepath.Base(file))
		if strings.HasSuffix(name, ".txt") || strings.HasSuffix(name, ".md") {
			t.Errorf("Unexpected file in evidence set: %s", file)
		}
	}
}

func TestDocumentFilesMissingDir(t *testing.T) {
	files := documentFiles("/nonexistent/docs/dir")
	if len(files) != 0 {
		t.Errorf("Expected empty list for missing directory, got %v", files)
	}
}

func TestParseCSVEvidence(t *testing.T) {
	dir := writeDocsDir(t, map[string]string{
		"assets.csv": "Asset ID,Type,Location\n" +
			"A-001,Laptop,Berlin\n" +
			"A-002,Server,Frankfurt\n",
	})

	result, err := parseCSVEvidence(filepath.Join(dir, "assets.csv"), "berlin")
	if err != nil {
		t.Fatalf("parseCSVEvidence failed: %v", err)
	}
	if result == nil {
		t.Fatal("Expected matching rows")
	}
	if result["fileType"] != "CSV" {
		t.Errorf("Expected fileType CSV, got %v", result["fileType"])
	}

	rows := result["relevantRows"].([]gin.H)
	if len(rows) != 1 {
		t.Fatalf("Expected 1 matching row, got %d", len(rows))
	}
	if rows[0]["rowNumber"] != 2 {
		t.Errorf("Expected row number 2, got %v", rows[0]["rowNumber"])
	}
	data := rows[0]["data"].(gin.H)
	if data["Location"] != "Berlin" {
		t.Errorf("Expected header-keyed field data, got %v", data)
	}
}

func TestParseCSVEvidenceNoMatch(t *testing.T) {
	dir := writeDocsDir(t, map[string]string{
		"assets.csv": "Asset ID,Type\nA-001,Laptop\n",
	})

	result, err := parseCSVEvidence(filepath.Join(dir, "assets.csv"), "mainframe")
	if err != nil {
		t.Fatalf("parseCSVEvidence failed: %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result for no matches, got %v", result)
	}
}

func TestParseAndExtractEvidenceEscalation(t *testing.T) {
	setupTestDB(t)
	dir := writeDocsDir(t, map[string]string{
		"assets.csv": "Asset ID,Type\nA-001,Laptop\n",
	})

	result := parseAndExtractEvidence("mainframe", documentFiles(dir))
	if result["found"] != false {
		t.Fatalf("Expected found=false, got %v", result["found"])
	}
	if result["filesProcessed"] != 1 {
		t.Errorf("Expected 1 file processed, got %v", result["filesProcessed"])
	}

	escalation, ok := result["escalation"].(gin.H)
	if !ok {
		t.Fatal("Expected escalation when nothing matches")
	}
	if escalation["reason"] != "No relevant information found in document repository" {
		t.Errorf("Unexpected escalation reason: %v", escalation["reason"])
	}

	summary, _ := result["summary"].(string)
	if !strings.Contains(summary, "No relevant information found") {
		t.Errorf("Unexpected summary: %q", summary)
	}
}

func TestParseAndExtractEvidenceMatch(t *testing.T) {
	setupTestDB(t)
	dir := writeDocsDir(t, map[string]string{
		"assets.csv": "Asset ID,Type,Location\n" +
			"A-001,Laptop,Berlin\n" +
			"A-002,Laptop,Munich\n",
		// Tokenized matching: any query term hitting a row counts
		"sites.csv": "Site,Country\nBerlin HQ,Germany\n",
	})

	result := parseAndExtractEvidence("berlin laptop", documentFiles(dir))
	if result["found"] != true {
		t.Fatalf("Expected found=true, got %v", result)
	}

	data := result["data"].([]gin.H)
	if len(data) != 2 {
		t.Fatalf("Expected matches in both files, got %d", len(data))
	}

	summary, _ := result["summary"].(string)
	if !strings.Contains(summary, "across 2 files") {
		t.Errorf("Unexpected summary: %q", summary)
	}
}

func TestFileTypeLabel(t *testing.T) {
	cases := map[string]string{
		"scan.pdf":    "PDF Document",
		"report.XLSX": "Excel Spreadsheet",
		"assets.csv":  "CSV File",
		"notes.txt":   "Unknown",
	}
	for name, want := range cases {
		if got := fileTypeLabel(name); got != want {
			t.Errorf("fileTypeLabel(%q) = %q, want %q", name, got, want)
		}
	}
}
