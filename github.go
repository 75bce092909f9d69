// github.go
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// GitHubClient talks to a GitHub-compatible REST API with bearer-token auth.
// One client instance serves both the generic evidence listings and the PR
// review reports.
type GitHubClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewGitHubClient creates a client for the given API base URL and token
func NewGitHubClient(baseURL, token string) *GitHubClient {
	return &GitHubClient{
		token:      token,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// GitHub wire types, shaped per the platform's JSON schema

type ghUser struct {
	Login string `json:"login"`
}

type ghPullRequest struct {
	Number    int     `json:"number"`
	Title     string  `json:"title"`
	State     string  `json:"state"`
	User      ghUser  `json:"user"`
	CreatedAt string  `json:"created_at"`
	MergedAt  string  `json:"merged_at"`
	MergedBy  *ghUser `json:"merged_by"`
	HTMLURL   string  `json:"html_url"`
}

type ghReview struct {
	State       string  `json:"state"`
	User        *ghUser `json:"user"`
	SubmittedAt string  `json:"submitted_at"`
}

type ghCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	HTMLURL string `json:"html_url"`
}

type ghIssue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	State       string          `json:"state"`
	User        ghUser          `json:"user"`
	CreatedAt   string          `json:"created_at"`
	HTMLURL     string          `json:"html_url"`
	PullRequest json.RawMessage `json:"pull_request"` // Present when the issue is actually a PR
}

// getJSON performs an authenticated GET against the API and decodes the response
func (g *GitHubClient) getJSON(path string, out interface{}) error {
	req, err := http.NewRequest(http.MethodGet, g.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GitHub API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return json.Unmarshal(body, out)
}

// listPullRequests fetches one page of pull requests in the given state
func (g *GitHubClient) listPullRequests(owner, repo, state string, perPage int) ([]ghPullRequest, error) {
	var prs []ghPullRequest
	path := fmt.Sprintf("/repos/%s/%s/pulls?state=%s&per_page=%d", owner, repo, state, perPage)
	if err := g.getJSON(path, &prs); err != nil {
		return nil, err
	}
	return prs, nil
}

// listReviews fetches the reviews of one pull request. A failed fetch is
// treated as no reviews, so a single broken PR does not sink a whole report.
func (g *GitHubClient) listReviews(owner, repo string, prNumber int) []ghReview {
	var reviews []ghReview
	path := fmt.Sprintf("/repos/%s/%s/pulls/%d/reviews", owner, repo, prNumber)
	if err := g.getJSON(path, &reviews); err != nil {
		return nil
	}
	return reviews
}

// GetEvidence fetches generic commit/PR/issue evidence, optionally filtered by
// a query substring on the commit message or title.
func (g *GitHubClient) GetEvidence(owner, repo, query, evidenceType string) (gin.H, error) {
	switch strings.ToLower(evidenceType) {
	case "prs":
		return g.getPullRequestEvidence(owner, repo, query)
	case "issues":
		return g.getIssueEvidence(owner, repo, query)
	default:
		return g.getCommitEvidence(owner, repo, query)
	}
}

func (g *GitHubClient) getCommitEvidence(owner, repo, query string) (gin.H, error) {
	var commits []ghCommit
	path := fmt.Sprintf("/repos/%s/%s/commits?per_page=%d", owner, repo, EvidencePageSize)
	if err := g.getJSON(path, &commits); err != nil {
		return nil, fmt.Errorf("Failed to retrieve commits: %v", err)
	}

	evidence := []gin.H{}
	for _, commit := range commits {
		message := commit.Commit.Message
		if query != "" && !strings.Contains(strings.ToLower(message), strings.ToLower(query)) {
			continue
		}
		sha := commit.SHA
		if len(sha) > 8 {
			sha = sha[:8]
		}
		evidence = append(evidence, gin.H{
			"sha":     sha,
			"message": strings.SplitN(message, "\n", 2)[0],
			"author":  commit.Commit.Author.Name,
			"date":    commit.Commit.Author.Date,
			"url":     commit.HTMLURL,
		})
	}

	return gin.H{
		"source":     "GitHub Commits",
		"repository": owner + "/" + repo,
		"evidence":   evidence,
		"summary":    fmt.Sprintf("Found %d commits", len(evidence)),
	}, nil
}

func (g *GitHubClient) getPullRequestEvidence(owner, repo, query string) (gin.H, error) {
	prs, err := g.listPullRequests(owner, repo, "all", EvidencePageSize)
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve PRs: %v", err)
	}

	evidence := []gin.H{}
	for _, pr := range prs {
		if query != "" && !strings.Contains(strings.ToLower(pr.Title), strings.ToLower(query)) {
			continue
		}
		evidence = append(evidence, gin.H{
			"number":     pr.Number,
			"title":      pr.Title,
			"state":      pr.State,
			"author":     pr.User.Login,
			"created_at": pr.CreatedAt,
			"url":        pr.HTMLURL,
		})
	}

	return gin.H{
		"source":     "GitHub Pull Requests",
		"repository": owner + "/" + repo,
		"evidence":   evidence,
		"summary":    fmt.Sprintf("Found %d pull requests", len(evidence)),
	}, nil
}

func (g *GitHubClient) getIssueEvidence(owner, repo, query string) (gin.H, error) {
	var issues []ghIssue
	path := fmt.Sprintf("/repos/%s/%s/issues?state=all&per_page=%d", owner, repo, EvidencePageSize)
	if err := g.getJSON(path, &issues); err != nil {
		return nil, fmt.Errorf("Failed to retrieve issues: %v", err)
	}

	evidence := []gin.H{}
	for _, issue := range issues {
		// The issues listing includes pull requests; skip them
		if issue.PullRequest != nil {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(issue.Title), strings.ToLower(query)) {
			continue
		}
		evidence = append(evidence, gin.H{
			"number":     issue.Number,
			"title":      issue.Title,
			"state":      issue.State,
			"author":     issue.User.Login,
			"created_at": issue.CreatedAt,
			"url":        issue.HTMLURL,
		})
	}

	return gin.H{
		"source":     "GitHub Issues",
		"repository": owner + "/" + repo,
		"evidence":   evidence,
		"summary":    fmt.Sprintf("Found %d issues", len(evidence)),
	}, nil
}

// GetPRsWithoutApproval reports merged pull requests that never received an
// APPROVED review. The state comparison is exact.
func (g *GitHubClient) GetPRsWithoutApproval(owner, repo string) (gin.H, error) {
	prs, err := g.listPullRequests(owner, repo, "closed", ReportPageSize)
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve PRs: %v", err)
	}

	evidence := []gin.H{}
	for _, pr := range prs {
		if pr.MergedAt == "" {
			continue
		}

		hasApproval := false
		for _, review := range g.listReviews(owner, repo, pr.Number) {
			if review.State == "APPROVED" {
				hasApproval = true
				break
			}
		}
		if hasApproval {
			continue
		}

		mergedBy := "Unknown"
		if pr.MergedBy != nil {
			mergedBy = pr.MergedBy.Login
		}
		evidence = append(evidence, gin.H{
			"pr_id":     pr.Number,
			"title":     pr.Title,
			"merged_by": mergedBy,
			"reviews":   []gin.H{},
			"merged_at": pr.MergedAt,
		})
	}

	return gin.H{
		"source":     "PRs Without Approval",
		"repository": owner + "/" + repo,
		"evidence":   evidence,
		"count":      len(evidence),
		"summary":    fmt.Sprintf("Found %d PRs merged without approval", len(evidence)),
	}, nil
}

// GetPRsReviewedBy reports pull requests with a review by the named reviewer.
// The login match is exact and case-sensitive; the first matching review per
// PR supplies the decision and date.
func (g *GitHubClient) GetPRsReviewedBy(owner, repo, reviewer string) (gin.H, error) {
	prs, err := g.listPullRequests(owner, repo, "all", ReportPageSize)
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve PR reviews: %v", err)
	}

	evidence := []gin.H{}
	for _, pr := range prs {
		for _, review := range g.listReviews(owner, repo, pr.Number) {
			if review.User == nil || review.User.Login != reviewer {
				continue
			}
			evidence = append(evidence, gin.H{
				"pr_id":    pr.Number,
				"title":    pr.Title,
				"reviewer": reviewer,
				"decision": review.State,
				"date":     review.SubmittedAt,
			})
			break
		}
	}

	return gin.H{
		"source":     "PRs Reviewed by " + reviewer,
		"repository": owner + "/" + repo,
		"evidence":   evidence,
		"summary":    fmt.Sprintf("Found %d PRs reviewed by %s", len(evidence), reviewer),
	}, nil
}

// GetPRsWaitingForReview reports open pull requests older than the staleness
// threshold with no reviews at all, with the hours waited so far.
func (g *GitHubClient) GetPRsWaitingForReview(owner, repo string) (gin.H, error) {
	prs, err := g.listPullRequests(owner, repo, "open", ReportPageSize)
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve waiting PRs: %v", err)
	}

	now := time.Now().UTC()
	threshold := now.Add(-StaleReviewThresholdHours * time.Hour)

	evidence := []gin.H{}
	for _, pr := range prs {
		createdAt, err := time.Parse(time.RFC3339, pr.CreatedAt)
		if err != nil || !createdAt.Before(threshold) {
			continue
		}

		if len(g.listReviews(owner, repo, pr.Number)) > 0 {
			continue
		}

		waitingHours := int(now.Sub(createdAt).Hours())
		evidence = append(evidence, gin.H{
			"pr_id":            pr.Number,
			"title":            pr.Title,
			"created_at":       pr.CreatedAt,
			"review_requested": false,
			"waiting_time":     fmt.Sprintf("%d hours", waitingHours),
		})
	}

	return gin.H{
		"source":     "PRs Waiting for Review",
		"repository": owner + "/" + repo,
		"evidence":   evidence,
		"summary":    fmt.Sprintf("Found %d PRs waiting for review > 24 hours", len(evidence)),
	}, nil
}

// GetRecentlyMergedPRs reports pull requests merged within the recent-merge
// window along with every approving reviewer, in review order.
func (g *GitHubClient) GetRecentlyMergedPRs(owner, repo string) (gin.H, error) {
	prs, err := g.listPullRequests(owner, repo, "closed", ReportPageSize)
	if err != nil {
		return nil, fmt.Errorf("Failed to retrieve recent PRs: %v", err)
	}

	cutoff := time.Now().UTC().Add(-RecentMergeWindowDays * 24 * time.Hour)

	evidence := []gin.H{}
	for _, pr := range prs {
		if pr.MergedAt == "" {
			continue
		}
		mergedAt, err := time.Parse(time.RFC3339, pr.MergedAt)
		if err != nil || !mergedAt.After(cutoff) {
			continue
		}

		approvers := []string{}
		for _, review := range g.listReviews(owner, repo, pr.Number) {
			if review.State == "APPROVED" && review.User != nil {
				approvers = append(approvers, review.User.Login)
			}
		}

		evidence = append(evidence, gin.H{
			"pr_id":     pr.Number,
			"title":     pr.Title,
			"merged_at": pr.MergedAt,
			"approvers": approvers,
		})
	}

	return gin.H{
		"source":     "Recently Merged PRs (Last 7 Days)",
		"repository": owner + "/" + repo,
		"evidence":   evidence,
		"summary":    fmt.Sprintf("Found %d PRs merged in the last 7 days", len(evidence)),
	}, nil
}

// GenerateCSVReport renders generic evidence as CSV with a fixed column order
// per evidence type. String fields are quoted but embedded quotes are not
// escaped; the export contract keeps this shape.
func (g *GitHubClient) GenerateCSVReport(owner, repo, evidenceType string) ([]byte, error) {
	result, err := g.GetEvidence(owner, repo, "", evidenceType)
	if err != nil {
		return nil, err
	}

	var csv strings.Builder
	kind := strings.ToLower(evidenceType)
	switch kind {
	case "prs", "issues":
		csv.WriteString("Number,Title,State,Author,Created,URL\n")
	default:
		kind = "commits"
		csv.WriteString("SHA,Message,Author,Date,URL\n")
	}

	items, _ := result["evidence"].([]gin.H)
	for _, item := range items {
		switch kind {
		case "commits":
			csv.WriteString(fmt.Sprintf("%v,\"%v\",\"%v\",%v,%v\n",
				item["sha"], item["message"], item["author"], item["date"], item["url"]))
		case "prs", "issues":
			csv.WriteString(fmt.Sprintf("%v,\"%v\",%v,\"%v\",%v,%v\n",
				item["number"], item["title"], item["state"], item["author"], item["created_at"], item["url"]))
		}
	}

	return []byte(csv.String()), nil
}

// getGitHubEvidence handles generic evidence requests with body parameters
func getGitHubEvidence(c *gin.Context) {
	var request struct {
		Owner string `json:"owner"`
		Repo  string `json:"repo"`
		Query string `json:"query"`
		Type  string `json:"type"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		RespondBadRequest(c, "Invalid request")
		return
	}
	if request.Owner == "" || request.Repo == "" {
		RespondBadRequest(c, "Owner and repo are required")
		return
	}
	if request.Type == "" {
		request.Type = "commits"
	}

	evidence, err := gitHub.GetEvidence(request.Owner, request.Repo, request.Query, request.Type)
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, evidence)
}

// getGitHubEvidenceByPath handles generic evidence requests with path parameters
func getGitHubEvidenceByPath(c *gin.Context) {
	evidenceType := c.DefaultQuery("type", "commits")

	evidence, err := gitHub.GetEvidence(c.Param("owner"), c.Param("repo"), c.Query("query"), evidenceType)
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, evidence)
}

// downloadGitHubEvidence streams generic evidence as a CSV attachment
func downloadGitHubEvidence(c *gin.Context) {
	owner := c.Param("owner")
	repo := c.Param("repo")
	evidenceType := c.DefaultQuery("type", "commits")

	csvData, err := gitHub.GenerateCSVReport(owner, repo, evidenceType)
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}

	filename := fmt.Sprintf("%s-%s-%s-evidence.csv", owner, repo, evidenceType)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "text/csv", csvData)
}

// getPRsWithoutApproval handles the unapproved-merges report
func getPRsWithoutApproval(c *gin.Context) {
	result, err := gitHub.GetPRsWithoutApproval(c.Param("owner"), c.Param("repo"))
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getPRsReviewedBy handles the reviews-by-reviewer report
func getPRsReviewedBy(c *gin.Context) {
	result, err := gitHub.GetPRsReviewedBy(c.Param("owner"), c.Param("repo"), c.Param("reviewer"))
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getPRsWaitingForReview handles the stale-open-PRs report
func getPRsWaitingForReview(c *gin.Context) {
	result, err := gitHub.GetPRsWaitingForReview(c.Param("owner"), c.Param("repo"))
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// getRecentlyMergedPRs handles the recent-merges-with-approvers report
func getRecentlyMergedPRs(c *gin.Context) {
	result, err := gitHub.GetRecentlyMergedPRs(c.Param("owner"), c.Param("repo"))
	if err != nil {
		RespondUpstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
