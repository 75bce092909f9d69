// routes.go
package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// healthCheck responds with server status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"service": "evidence-bot",
	})
}

// registerRoutes sets up all the API endpoints for the server
func registerRoutes(r *gin.Engine) {
	// Health check endpoints (no authentication required)
	r.GET("/", healthCheck)
	r.GET("/health", healthCheck)

	// Auth endpoints stay public; registration is gated by the secret key
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", registerUser)
		auth.POST("/login", login)
		auth.POST("/logout", logout)
	}

	api := r.Group("/api")
	if serverConfig.Security.RequireAuth {
		api.Use(authRequired())
	}

	documents := api.Group("/documents")
	{
		documents.POST("/upload", uploadDocument)
		documents.GET("", listDocuments)
		documents.GET("/search", searchDocuments)
		documents.GET("/:id", getDocument)
		documents.DELETE("/:id", deleteDocument)
	}

	assets := api.Group("/assets")
	{
		assets.POST("/upload", uploadAssetRegister)
		assets.GET("", listAssets)
		assets.GET("/search", searchAssets)
		assets.GET("/export/csv", exportAssetsCSV)
		assets.GET("/export/excel", exportAssetsExcel)
	}

	github := api.Group("/github")
	{
		github.POST("/evidence", getGitHubEvidence)
		github.GET("/evidence/:owner/:repo", getGitHubEvidenceByPath)
		github.GET("/download/:owner/:repo", downloadGitHubEvidence)
		github.GET("/prs-without-approval/:owner/:repo", getPRsWithoutApproval)
		github.GET("/prs-reviewed-by/:owner/:repo/:reviewer", getPRsReviewedBy)
		github.GET("/prs-waiting-review/:owner/:repo", getPRsWaitingForReview)
		github.GET("/recent-merged-prs/:owner/:repo", getRecentlyMergedPRs)
	}

	evidence := api.Group("/evidence")
	{
		evidence.POST("/generate", generateEvidenceHandler)
		evidence.GET("/compliance-report", complianceReportHandler)
	}

	ai := api.Group("/ai")
	{
		ai.POST("/chat", aiChat)
		ai.POST("/analyze-document", aiAnalyzeDocument)
		ai.GET("/suggestions", aiSuggestions)
	}

	documentEvidence := api.Group("/document-evidence")
	{
		documentEvidence.POST("/search", searchDocumentEvidence)
		documentEvidence.GET("/available-documents", availableDocuments)
	}

	api.POST("/query", naturalLanguageQuery)
	api.GET("/escalations", listEscalations)
}
