package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeChatCompletions returns a server that echoes a canned completion and
// captures the last request for inspection.
func fakeChatCompletions(t *testing.T, reply string, captured *chatRequest) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Expected bearer key header, got %q", got)
		}
		if captured != nil {
			if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
				t.Errorf("Failed to decode chat request: %v", err)
			}
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		})
	}))
}

func TestTruncateContent(t *testing.T) {
	short := "brief document"
	if got := truncateContent(short, 2000); got != short {
		t.Errorf("Expected short content unchanged, got %q", got)
	}

	long := strings.Repeat("a", 2500)
	got := truncateContent(long, 2000)
	if len(got) != 2003 {
		t.Errorf("Expected 2000 chars plus ellipsis, got %d chars", len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected truncated content to end with ellipsis")
	}
}

func TestGenerateEvidenceSummary(t *testing.T) {
	var captured chatRequest
	server := fakeChatCompletions(t, "Summary of the evidence.", &captured)
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", "gpt-3.5-turbo", 5*time.Second)
	long := strings.Repeat("x", EvidenceSummaryCharBudget+500)

	summary, err := client.GenerateEvidenceSummary("backup policy", []string{long})
	if err != nil {
		t.Fatalf("GenerateEvidenceSummary failed: %v", err)
	}
	if summary != "Summary of the evidence." {
		t.Errorf("Expected verbatim model reply, got %q", summary)
	}

	if captured.Temperature != 0.3 || captured.MaxTokens != 1000 {
		t.Errorf("Expected temperature 0.3 and max_tokens 1000, got %v and %d",
			captured.Temperature, captured.MaxTokens)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("Expected system and user messages, got %d", len(captured.Messages))
	}

	userPrompt := captured.Messages[1].Content
	if !strings.Contains(userPrompt, "Query: backup policy") {
		t.Error("Expected query in user prompt")
	}
	// Document content is truncated at the summary budget
	if strings.Contains(userPrompt, strings.Repeat("x", EvidenceSummaryCharBudget+1)) {
		t.Error("Expected document content truncated at the char budget")
	}
	if !strings.Contains(userPrompt, strings.Repeat("x", EvidenceSummaryCharBudget)+"...") {
		t.Error("Expected truncated document to carry an ellipsis")
	}
}

func TestAnalyzeComplianceGapsParameters(t *testing.T) {
	var captured chatRequest
	server := fakeChatCompletions(t, "Gap analysis.", &captured)
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", "gpt-3.5-turbo", 5*time.Second)
	if _, err := client.AnalyzeComplianceGaps("GDPR", []string{"policy text"}); err != nil {
		t.Fatalf("AnalyzeComplianceGaps failed: %v", err)
	}

	if captured.Temperature != 0.2 || captured.MaxTokens != 1200 {
		t.Errorf("Expected temperature 0.2 and max_tokens 1200, got %v and %d",
			captured.Temperature, captured.MaxTokens)
	}
	if !strings.Contains(captured.Messages[0].Content, "GDPR") {
		t.Error("Expected domain in system prompt")
	}
}

func TestChatWithDocumentsHistory(t *testing.T) {
	var captured chatRequest
	server := fakeChatCompletions(t, "Answer.", &captured)
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", "gpt-3.5-turbo", 5*time.Second)
	if _, err := client.ChatWithDocuments("what is our backup policy?", []string{"doc"}, "earlier exchange"); err != nil {
		t.Fatalf("ChatWithDocuments failed: %v", err)
	}

	if captured.Temperature != 0.4 || captured.MaxTokens != 800 {
		t.Errorf("Expected temperature 0.4 and max_tokens 800, got %v and %d",
			captured.Temperature, captured.MaxTokens)
	}
	if !strings.Contains(captured.Messages[1].Content, "Previous Conversation:\nearlier exchange") {
		t.Error("Expected conversation history block in user prompt")
	}
}

func TestTLSFailureReturnsFallback(t *testing.T) {
	// A TLS server with an untrusted certificate triggers the canned fallback
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", "gpt-3.5-turbo", 5*time.Second)
	summary, err := client.GenerateEvidenceSummary("access control", nil)
	if err != nil {
		t.Fatalf("Expected fallback with nil error on TLS failure, got %v", err)
	}
	if !strings.Contains(summary, "Evidence Summary for: access control") {
		t.Errorf("Expected canned evidence summary, got %q", summary)
	}

	gaps, err := client.AnalyzeComplianceGaps("SOC 2", nil)
	if err != nil {
		t.Fatalf("Expected fallback with nil error on TLS failure, got %v", err)
	}
	if !strings.Contains(gaps, "Compliance Gap Analysis - SOC 2") {
		t.Errorf("Expected canned gap analysis, got %q", gaps)
	}
}

func TestAPIErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "Rate limit reached", "type": "rate_limit_error"},
		})
	}))
	defer server.Close()

	client := NewOpenAIClient(server.URL, "test-key", "gpt-3.5-turbo", 5*time.Second)
	_, err := client.GenerateEvidenceSummary("anything", nil)
	if err == nil {
		t.Fatal("Expected error from non-200 API response")
	}
	if !strings.Contains(err.Error(), "Error generating AI summary") {
		t.Errorf("Expected wrapped summary error, got %v", err)
	}
}

func TestFallbackChatResponseRouting(t *testing.T) {
	if !strings.Contains(fallbackChatResponse("What about GDPR rules?"), "GDPR compliance requires") {
		t.Error("Expected GDPR fallback for GDPR query")
	}
	if !strings.Contains(fallbackChatResponse("tell me about iso 27001"), "ISO 27001") {
		t.Error("Expected ISO fallback for ISO query")
	}
	if !strings.Contains(fallbackChatResponse("random question"), "For compliance queries") {
		t.Error("Expected generic fallback for unmatched query")
	}
}
