// assets.go
package main

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// AssetStore holds the uploaded asset register in memory. Uploads append to
// the existing set; records are never individually updated. All access goes
// through the mutex so concurrent uploads and searches are safe.
type AssetStore struct {
	mu     sync.RWMutex
	assets []AssetRecord
}

// NewAssetStore creates an empty asset store
func NewAssetStore() *AssetStore {
	return &AssetStore{}
}

// UploadRegister parses a CSV or Excel asset register and appends its rows.
// The response map mirrors the upload contract: success flag, total loaded
// count and a message, or an error string on parse failure.
func (s *AssetStore) UploadRegister(filename string, r io.Reader) gin.H {
	var records []AssetRecord
	var err error

	switch {
	case strings.HasSuffix(filename, ".csv"):
		records, err = parseAssetCSV(r)
	case strings.HasSuffix(filename, ".xlsx"), strings.HasSuffix(filename, ".xls"):
		records, err = parseAssetExcel(r)
	default:
		err = fmt.Errorf("unsupported asset register format: %s", filename)
	}

	if err != nil {
		return gin.H{"success": false, "error": err.Error()}
	}

	s.mu.Lock()
	s.assets = append(s.assets, records...)
	total := len(s.assets)
	s.mu.Unlock()

	return gin.H{
		"success":      true,
		"assetsLoaded": total,
		"message":      "Asset register uploaded successfully",
	}
}

// parseAssetCSV reads asset rows from CSV data. The first line is a header;
// rows need at least 4 columns, and a missing 5th column defaults the status
// to "Active". Fields are split on commas with no quote handling.
func parseAssetCSV(r io.Reader) ([]AssetRecord, error) {
	var records []AssetRecord
	scanner := bufio.NewScanner(r)
	isHeader := true

	for scanner.Scan() {
		line := scanner.Text()
		if isHeader {
			isHeader = false
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) < 4 {
			continue
		}

		record := AssetRecord{
			AssetID:   strings.TrimSpace(parts[0]),
			AssetType: strings.TrimSpace(parts[1]),
			Location:  strings.TrimSpace(parts[2]),
			Owner:     strings.TrimSpace(parts[3]),
			Status:    "Active",
		}
		if len(parts) > 4 {
			record.Status = strings.TrimSpace(parts[4])
		}
		records = append(records, record)
	}

	return records, scanner.Err()
}

// parseAssetExcel reads asset rows from the first sheet of an Excel workbook.
// Row 0 is the header; missing cells become empty strings.
func parseAssetExcel(r io.Reader) ([]AssetRecord, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var records []AssetRecord
	for i, row := range rows {
		if i == 0 {
			continue
		}
		records = append(records, AssetRecord{
			AssetID:   cell(row, 0),
			AssetType: cell(row, 1),
			Location:  cell(row, 2),
			Owner:     cell(row, 3),
			Status:    cell(row, 4),
		})
	}
	return records, nil
}

// All returns a copy of the current asset set
func (s *AssetStore) All() []AssetRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]AssetRecord, len(s.assets))
	copy(out, s.assets)
	return out
}

// Search returns assets where any indexed field contains the whole query,
// case-insensitive.
func (s *AssetStore) Search(query string) []AssetRecord {
	lowerQuery := strings.ToLower(query)

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := []AssetRecord{}
	for _, asset := range s.assets {
		if strings.Contains(strings.ToLower(asset.AssetType), lowerQuery) ||
			strings.Contains(strings.ToLower(asset.Location), lowerQuery) ||
			strings.Contains(strings.ToLower(asset.Owner), lowerQuery) ||
			strings.Contains(strings.ToLower(asset.AssetID), lowerQuery) {
			results = append(results, asset)
		}
	}
	return results
}

// filtered applies the optional filter query to the asset set
func (s *AssetStore) filtered(filter string) []AssetRecord {
	if filter != "" {
		return s.Search(filter)
	}
	return s.All()
}

// ExportCSV renders assets as CSV text. Values are joined with commas and not
// escaped, so embedded commas break the column alignment; the export contract
// keeps this shape.
func (s *AssetStore) ExportCSV(filter string) []byte {
	var csv strings.Builder
	csv.WriteString("Asset ID,Asset Type,Location,Owner,Status\n")

	for _, asset := range s.filtered(filter) {
		csv.WriteString(fmt.Sprintf("%s,%s,%s,%s,%s\n",
			asset.AssetID, asset.AssetType, asset.Location, asset.Owner, asset.Status))
	}

	return []byte(csv.String())
}

// ExportExcel renders assets as an xlsx workbook with a fixed header row
func (s *AssetStore) ExportExcel(filter string) ([]byte, error) {
	workbook := excelize.NewFile()
	defer workbook.Close()

	const sheet = "Assets"
	if err := workbook.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"Asset ID", "Asset Type", "Location", "Owner", "Status"}
	for col, header := range headers {
		cellName, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := workbook.SetCellValue(sheet, cellName, header); err != nil {
			return nil, err
		}
	}

	for i, asset := range s.filtered(filter) {
		values := []string{asset.AssetID, asset.AssetType, asset.Location, asset.Owner, asset.Status}
		for col, value := range values {
			cellName, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := workbook.SetCellValue(sheet, cellName, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := workbook.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// uploadAssetRegister handles asset register uploads (CSV or Excel)
func uploadAssetRegister(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondBadRequest(c, "File upload failed")
		return
	}
	defer file.Close()

	c.JSON(http.StatusOK, assetStore.UploadRegister(header.Filename, file))
}

// listAssets returns every loaded asset record
func listAssets(c *gin.Context) {
	c.JSON(http.StatusOK, assetStore.All())
}

// searchAssets returns asset records matching the query
func searchAssets(c *gin.Context) {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		RespondBadRequest(c, "Query is required")
		return
	}

	c.JSON(http.StatusOK, assetStore.Search(query))
}

// exportAssetsCSV streams the asset register as a CSV attachment
func exportAssetsCSV(c *gin.Context) {
	csvData := assetStore.ExportCSV(c.Query("filter"))
	c.Header("Content-Disposition", "attachment; filename=assets.csv")
	c.Data(http.StatusOK, "text/csv", csvData)
}

// exportAssetsExcel streams the asset register as an xlsx attachment
func exportAssetsExcel(c *gin.Context) {
	excelData, err := assetStore.ExportExcel(c.Query("filter"))
	if err != nil {
		RespondInternalError(c, "Failed to create Excel file")
		return
	}

	c.Header("Content-Disposition", "attachment; filename=assets.xlsx")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", excelData)
}
