// docevidence.go
package main

import (
	"bufio"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// documentFiles lists the evidence files in the configured docs directory
func documentFiles(docsDir string) []string {
	filePaths := []string{}

	entries, err := os.ReadDir(docsDir)
	if err != nil {
		return filePaths
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if strings.HasSuffix(name, ".pdf") ||
			strings.HasSuffix(name, ".xlsx") ||
			strings.HasSuffix(name, ".xls") ||
			strings.HasSuffix(name, ".csv") {
			filePaths = append(filePaths, filepath.Join(docsDir, entry.Name()))
		}
	}

	return filePaths
}

// parseAndExtractEvidence scans the given files for rows matching the query.
// Files that fail to parse are logged and skipped. An empty result opens an
// escalation.
func parseAndExtractEvidence(query string, filePaths []string) gin.H {
	extractedData := []gin.H{}

	for _, filePath := range filePaths {
		fileData, err := parseEvidenceFile(filePath, query)
		if err != nil {
			log.Printf("Error parsing file: %s - %v", filePath, err)
			continue
		}
		if fileData != nil {
			extractedData = append(extractedData, fileData)
		}
	}

	result := gin.H{
		"query":          query,
		"filesProcessed": len(filePaths),
		"summary":        evidenceScanSummary(extractedData, query),
	}

	if len(extractedData) == 0 {
		result["found"] = false
		result["escalation"] = createEscalation(query, "No relevant information found in document repository")
	} else {
		result["found"] = true
		result["data"] = extractedData
	}

	return result
}

// parseEvidenceFile dispatches on file extension; unsupported types yield no data
func parseEvidenceFile(filePath, query string) (gin.H, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), ".")) {
	case "xlsx", "xls":
		return parseExcelEvidence(filePath, query)
	case "csv":
		return parseCSVEvidence(filePath, query)
	default:
		return nil, nil
	}
}

// parseCSVEvidence collects CSV rows matching the query, keyed by the header row
func parseCSVEvidence(filePath, query string) (gin.H, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	relevantRows := []gin.H{}
	var headers []string
	rowNumber := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		rowNumber++
		line := scanner.Text()
		values := strings.Split(line, ",")

		if rowNumber == 1 {
			headers = values
			continue
		}

		if !matchesQuery(line, query) {
			continue
		}

		fieldData := gin.H{}
		for i := 0; i < len(values) && i < len(headers); i++ {
			fieldData[strings.TrimSpace(headers[i])] = strings.TrimSpace(values[i])
		}
		relevantRows = append(relevantRows, gin.H{
			"rowNumber": rowNumber,
			"data":      fieldData,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(relevantRows) == 0 {
		return nil, nil
	}
	return gin.H{
		"fileName":     filepath.Base(filePath),
		"fileType":     "CSV",
		"relevantRows": relevantRows,
	}, nil
}

// parseExcelEvidence collects matching rows from every sheet of a workbook
func parseExcelEvidence(filePath, query string) (gin.H, error) {
	workbook, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	relevantRows := []gin.H{}
	for _, sheetName := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheetName)
		if err != nil {
			return nil, err
		}

		for rowIndex, row := range rows {
			rowText := strings.Join(row, " ")
			if !matchesQuery(rowText, query) {
				continue
			}
			relevantRows = append(relevantRows, gin.H{
				"rowNumber": rowIndex + 1,
				"sheetName": sheetName,
				"data":      row,
			})
		}
	}

	if len(relevantRows) == 0 {
		return nil, nil
	}
	return gin.H{
		"fileName":     filepath.Base(filePath),
		"fileType":     "Excel",
		"relevantRows": relevantRows,
	}, nil
}

// evidenceScanSummary summarizes how many rows matched across how many files
func evidenceScanSummary(extractedData []gin.H, query string) string {
	if len(extractedData) == 0 {
		return "No relevant information found for query: " + query
	}

	totalMatches := 0
	for _, fileData := range extractedData {
		if rows, ok := fileData["relevantRows"].([]gin.H); ok {
			totalMatches += len(rows)
		} else {
			totalMatches++
		}
	}

	return fmt.Sprintf("Found %d matches across %d files for query: %s",
		totalMatches, len(extractedData), query)
}

// fileTypeLabel maps a filename to a human-readable evidence file type
func fileTypeLabel(fileName string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), ".")) {
	case "pdf":
		return "PDF Document"
	case "xlsx", "xls":
		return "Excel Spreadsheet"
	case "csv":
		return "CSV File"
	default:
		return "Unknown"
	}
}

// searchDocumentEvidence scans the docs directory for rows matching the query
func searchDocumentEvidence(c *gin.Context) {
	var request struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	filePaths := documentFiles(serverConfig.Documents.DocsDir)
	c.JSON(http.StatusOK, parseAndExtractEvidence(request.Query, filePaths))
}

// availableDocuments lists the files the evidence scanner can see
func availableDocuments(c *gin.Context) {
	filePaths := documentFiles(serverConfig.Documents.DocsDir)
	documents := []gin.H{}

	for _, filePath := range filePaths {
		info, err := os.Stat(filePath)
		if err != nil {
			continue
		}
		documents = append(documents, gin.H{
			"name": filepath.Base(filePath),
			"path": filePath,
			"size": info.Size(),
			"type": fileTypeLabel(filePath),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"documents":  documents,
		"totalCount": len(documents),
	})
}
