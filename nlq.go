// nlq.go
package main

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
)

// prNumberPattern extracts a pull request number from phrasings like
// "pr #42" or "pull request 42".
var prNumberPattern = regexp.MustCompile(`(?i)pr #(\d+)|pull request #?(\d+)`)

// detectQueryType routes a free-text query to the GitHub PR flow or the asset
// search flow. Anything mentioning PRs or merges goes to GitHub; everything
// else is treated as an asset lookup.
func detectQueryType(query string) string {
	lowerQuery := strings.ToLower(query)
	if strings.Contains(lowerQuery, "pr #") ||
		strings.Contains(lowerQuery, "pull request") ||
		strings.Contains(lowerQuery, "merged") {
		return "GITHUB_PR"
	}
	return "ASSET_SEARCH"
}

// processQuery answers a natural-language query against the loaded evidence
func processQuery(query string) gin.H {
	switch detectQueryType(query) {
	case "GITHUB_PR":
		return processGitHubPRQuery(query)
	default:
		return processAssetQuery(query)
	}
}

// processGitHubPRQuery extracts a PR number and asks for repository context
func processGitHubPRQuery(query string) gin.H {
	response := gin.H{"queryType": "GITHUB_PR"}

	match := prNumberPattern.FindStringSubmatch(query)
	if match != nil {
		prNumber := match[1]
		if prNumber == "" {
			prNumber = match[2]
		}
		response["prNumber"] = prNumber
		response["answer"] = "PR #" + prNumber + " analysis requires repository context. Please specify the repository (owner/repo) to investigate this pull request."
	} else {
		response["answer"] = "Could not identify specific PR number. Please specify the PR number (e.g., 'PR #456')."
	}

	return response
}

// processAssetQuery searches the asset register and escalates empty results
func processAssetQuery(query string) gin.H {
	results := assetStore.Search(query)

	response := gin.H{
		"queryType":    "ASSET_SEARCH",
		"searchTerm":   query,
		"resultsCount": len(results),
		"assets":       results,
	}

	if len(results) == 0 {
		response["answer"] = fmt.Sprintf("No assets found matching '%s'. Consider uploading asset register or checking spelling.", query)
		response["escalation"] = createEscalation(query, "Asset not found in current repository")
	} else {
		response["answer"] = fmt.Sprintf("Found %d asset(s) matching '%s'.", len(results), query)
	}

	return response
}

// naturalLanguageQuery handles free-text query requests
func naturalLanguageQuery(c *gin.Context) {
	var request struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || strings.TrimSpace(request.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query is required"})
		return
	}

	c.JSON(http.StatusOK, processQuery(request.Query))
}
