// documents.go
package main

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// findDocumentsByContent returns documents whose content contains the keyword,
// case-insensitive, ordered by insertion.
func findDocumentsByContent(keyword string) ([]Document, error) {
	var documents []Document
	pattern := "%" + strings.ToLower(keyword) + "%"
	err := db.Where("LOWER(content) LIKE ?", pattern).Order("id").Find(&documents).Error
	return documents, err
}

// findDocumentsByFilename returns documents whose filename contains the keyword, case-insensitive.
func findDocumentsByFilename(keyword string) ([]Document, error) {
	var documents []Document
	pattern := "%" + strings.ToLower(keyword) + "%"
	err := db.Where("LOWER(filename) LIKE ?", pattern).Order("id").Find(&documents).Error
	return documents, err
}

// getAllStoredDocuments returns every stored document in insertion order.
func getAllStoredDocuments() ([]Document, error) {
	var documents []Document
	err := db.Order("id").Find(&documents).Error
	return documents, err
}

// uploadDocument stores an uploaded file with its extracted text content
func uploadDocument(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondBadRequest(c, "File upload failed")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		RespondBadRequest(c, "Failed to read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	content, err := extractText(data, contentType)
	if err != nil {
		RespondBadRequest(c, "Error uploading file: "+err.Error())
		return
	}

	document := newDocument(header.Filename, content, contentType, header.Size)
	if err := db.Create(&document).Error; err != nil {
		RespondInternalError(c, "Failed to save document")
		return
	}

	c.JSON(http.StatusOK, document)
}

// listDocuments returns all stored documents, optionally filtered by file type
func listDocuments(c *gin.Context) {
	fileType := c.Query("type")

	var documents []Document
	var err error
	if fileType != "" {
		err = db.Where("file_type = ?", fileType).Order("id").Find(&documents).Error
	} else {
		documents, err = getAllStoredDocuments()
	}
	if err != nil {
		RespondInternalError(c, "Failed to retrieve documents")
		return
	}

	c.JSON(http.StatusOK, documents)
}

// getDocument returns a single document by id
func getDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondBadRequest(c, "Invalid document ID")
		return
	}

	var document Document
	if err := db.First(&document, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown ids produce an empty 404 body
			c.Status(http.StatusNotFound)
			return
		}
		RespondInternalError(c, "Failed to retrieve document")
		return
	}

	c.JSON(http.StatusOK, document)
}

// searchDocuments performs a substring search over stored document content,
// or over filenames when by=filename is requested
func searchDocuments(c *gin.Context) {
	query := c.Query("query")
	if strings.TrimSpace(query) == "" {
		RespondBadRequest(c, "Query is required")
		return
	}

	var documents []Document
	var err error
	if c.Query("by") == "filename" {
		documents, err = findDocumentsByFilename(query)
	} else {
		documents, err = findDocumentsByContent(query)
	}
	if err != nil {
		RespondInternalError(c, "Failed to search documents")
		return
	}

	c.JSON(http.StatusOK, documents)
}

// deleteDocument removes a document by id
func deleteDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondBadRequest(c, "Invalid document ID")
		return
	}

	if err := db.Delete(&Document{}, id).Error; err != nil {
		RespondInternalError(c, "Failed to delete document")
		return
	}

	c.Status(http.StatusOK)
}
