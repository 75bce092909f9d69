// evidence.go
package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// nonEmptyContents collects the readable text of the given documents
func nonEmptyContents(documents []Document) []string {
	contents := []string{}
	for _, document := range documents {
		if strings.TrimSpace(document.Content) != "" {
			contents = append(contents, document.Content)
		}
	}
	return contents
}

// generateEvidence retrieves documents matching the query and attaches both an
// LLM summary and a plain preview summary. A query with no matching documents
// opens an escalation.
func generateEvidence(query string) (gin.H, error) {
	documents, err := findDocumentsByContent(query)
	if err != nil {
		return nil, fmt.Errorf("Failed to search documents: %v", err)
	}

	evidence := gin.H{
		"query":          query,
		"documentsFound": len(documents),
		"documents":      documents,
		"basicSummary":   basicSummary(documents, query),
	}

	if len(documents) == 0 {
		evidence["summary"] = "No documents found for the query: " + query
		evidence["escalation"] = createEscalation(query, "No evidence found in document repository")
		return evidence, nil
	}

	contents := nonEmptyContents(documents)
	if len(contents) == 0 {
		evidence["summary"] = "No readable content found in the documents for analysis."
		return evidence, nil
	}

	summary, err := openAI.GenerateEvidenceSummary(query, contents)
	if err != nil {
		return nil, err
	}
	evidence["summary"] = summary

	return evidence, nil
}

// basicSummary builds the non-LLM evidence summary: a per-document bullet list
// with a 200-character content preview.
func basicSummary(documents []Document, query string) string {
	if len(documents) == 0 {
		return "No evidence found for the query: " + query
	}

	var summary strings.Builder
	summary.WriteString(fmt.Sprintf("Found %d document(s) related to '%s':\n\n", len(documents), query))

	for _, document := range documents {
		summary.WriteString(fmt.Sprintf("• %s (%s)\n", document.Filename, document.FileType))
		if len(document.Content) > 200 {
			summary.WriteString("  Preview: " + document.Content[:200] + "...\n\n")
		} else if document.Content != "" {
			summary.WriteString("  Content: " + document.Content + "\n\n")
		}
	}

	return summary.String()
}

// complianceReport counts policy and procedure documents and scores coverage,
// with an optional LLM gap analysis over all readable content.
func complianceReport(domain string) (gin.H, error) {
	documents, err := getAllStoredDocuments()
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve documents: %v", err)
	}

	var policyDocs, procedureDocs int
	for _, document := range documents {
		name := strings.ToLower(document.Filename)
		content := strings.ToLower(document.Content)
		if strings.Contains(name, "policy") || strings.Contains(content, "policy") {
			policyDocs++
		}
		if strings.Contains(name, "procedure") || strings.Contains(content, "procedure") {
			procedureDocs++
		}
	}

	report := gin.H{
		"domain":             domain,
		"totalDocuments":     len(documents),
		"policyDocuments":    policyDocs,
		"procedureDocuments": procedureDocs,
		"complianceScore":    complianceScore(policyDocs, procedureDocs, len(documents)),
		"lastUpdated":        time.Now().UTC(),
	}

	contents := nonEmptyContents(documents)
	if len(contents) > 0 {
		analysis, err := openAI.AnalyzeComplianceGaps(domain, contents)
		if err != nil {
			return nil, err
		}
		report["aiAnalysis"] = analysis
	}

	return report, nil
}

// complianceScore is the share of documents that are policies or procedures,
// capped at 100.
func complianceScore(policies, procedures, total int) float64 {
	if total == 0 {
		return 0.0
	}
	score := float64(policies+procedures) / float64(total) * 100
	if score > 100.0 {
		return 100.0
	}
	return score
}

// generateEvidenceHandler handles evidence generation requests
func generateEvidenceHandler(c *gin.Context) {
	var request struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	evidence, err := generateEvidence(request.Query)
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, evidence)
}

// complianceReportHandler handles compliance report requests
func complianceReportHandler(c *gin.Context) {
	domain := c.DefaultQuery("domain", "general")

	report, err := complianceReport(domain)
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// aiChat answers a free-form question against all uploaded documents
func aiChat(c *gin.Context) {
	var request struct {
		Query   string `json:"query"`
		History string `json:"history"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	documents, err := getAllStoredDocuments()
	if err != nil {
		RespondInternalError(c, "Failed to retrieve documents")
		return
	}

	contents := nonEmptyContents(documents)
	var response string
	if len(contents) == 0 {
		response = "I don't have access to any documents yet. Please upload some compliance documents first, and I'll be happy to help you analyze them!"
	} else {
		response, err = openAI.ChatWithDocuments(request.Query, contents, request.History)
		if err != nil {
			RespondUpstreamError(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"response":       response,
		"documentsCount": len(documents),
		"timestamp":      time.Now().UTC(),
	})
}

// aiAnalyzeDocument runs an evidence summary against one specific document
func aiAnalyzeDocument(c *gin.Context) {
	var request struct {
		DocumentID int64  `json:"documentId"`
		Query      string `json:"query"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document ID and query are required"})
		return
	}
	if request.DocumentID == 0 || strings.TrimSpace(request.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document ID and query are required"})
		return
	}

	var document Document
	if err := db.First(&document, request.DocumentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		RespondInternalError(c, "Failed to retrieve document")
		return
	}

	if strings.TrimSpace(document.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document has no readable content"})
		return
	}

	analysis, err := openAI.GenerateEvidenceSummary(request.Query, []string{document.Content})
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"documentId":   request.DocumentID,
		"documentName": document.Filename,
		"query":        request.Query,
		"analysis":     analysis,
		"timestamp":    time.Now().UTC(),
	})
}

// aiSuggestions returns canned starter queries for the chat UI
func aiSuggestions(c *gin.Context) {
	suggestions := []string{
		"What are our data privacy policies?",
		"Show me information about access controls",
		"What security procedures do we have?",
		"Are there any compliance gaps?",
		"What training materials are available?",
		"Show me our incident response procedures",
		"What are the requirements for GDPR compliance?",
		"How do we handle sensitive data?",
		"What audit evidence do we have?",
		"Are our policies up to date?",
	}

	var total int64
	db.Model(&Document{}).Count(&total)

	c.JSON(http.StatusOK, gin.H{
		"suggestions":    suggestions,
		"totalDocuments": total,
	})
}
