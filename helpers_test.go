package main

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// setupTestDB points the global db at a fresh in-memory database
func setupTestDB(t *testing.T) {
	t.Helper()

	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := testDB.AutoMigrate(&User{}, &Document{}, &Escalation{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	db = testDB
}

// setupTestConfig installs a default config for handlers that read it
func setupTestConfig(t *testing.T) {
	t.Helper()

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}
	serverConfig = config
}

// setupTestOpenAI points the global LLM client at the given endpoint
func setupTestOpenAI(t *testing.T, baseURL string) {
	t.Helper()
	openAI = NewOpenAIClient(baseURL, "test-key", "gpt-3.5-turbo", 5*time.Second)
}

// setupTestGitHub points the global GitHub client at the given endpoint
func setupTestGitHub(t *testing.T, baseURL string) {
	t.Helper()
	gitHub = NewGitHubClient(baseURL, "test-token")
}
