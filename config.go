// config.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ServerConfig holds all server configuration
type ServerConfig struct {
	Server    ServerSettings    `json:"server"`
	Database  DatabaseSettings  `json:"database"`
	Security  SecuritySettings  `json:"security"`
	GitHub    GitHubSettings    `json:"github"`
	OpenAI    OpenAISettings    `json:"openai"`
	Documents DocumentsSettings `json:"documents"`
}

// ServerSettings contains server-specific configuration
type ServerSettings struct {
	Interface    string `json:"interface"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
	IdleTimeout  int    `json:"idle_timeout"`
}

// DatabaseSettings contains database configuration
type DatabaseSettings struct {
	Path string `json:"path"`
}

// SecuritySettings contains security-related configuration
type SecuritySettings struct {
	SecretKey         string   `json:"-"` // Never serialize secret key
	RequireAuth       bool     `json:"require_auth"`
	SessionMaxAge     int      `json:"session_max_age"`
	RateLimitRequests int      `json:"rate_limit_requests"`
	RateLimitWindow   int      `json:"rate_limit_window"`
	EnableHTTPS       bool     `json:"enable_https"`
	CertFile          string   `json:"cert_file"`
	KeyFile           string   `json:"key_file"`
	AllowedOrigins    []string `json:"allowed_origins"`
}

// GitHubSettings contains the GitHub REST API configuration
type GitHubSettings struct {
	Token   string `json:"-"` // Never serialize the API token
	BaseURL string `json:"base_url"`
}

// OpenAISettings contains the LLM chat-completion API configuration
type OpenAISettings struct {
	APIKey  string `json:"-"` // Never serialize the API key
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
	Timeout int    `json:"timeout"` // Request timeout in seconds
}

// DocumentsSettings contains the filesystem evidence scanner configuration
type DocumentsSettings struct {
	DocsDir string `json:"docs_dir"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*ServerConfig, error) {
	// Default configuration
	config := &ServerConfig{
		Server: ServerSettings{
			Interface:    ":8080",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
			IdleTimeout:  120,
		},
		Database: DatabaseSettings{
			Path: "evidence.db",
		},
		Security: SecuritySettings{
			RequireAuth:       false,
			SessionMaxAge:     86400, // 24 hours
			RateLimitRequests: 100,
			RateLimitWindow:   60, // 1 minute
			EnableHTTPS:       false,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:8080",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:8080",
			},
		},
		GitHub: GitHubSettings{
			BaseURL: "https://api.github.com",
		},
		OpenAI: OpenAISettings{
			BaseURL: "https://api.openai.com/v1/chat/completions",
			Model:   "gpt-3.5-turbo",
			Timeout: 60,
		},
		Documents: DocumentsSettings{
			DocsDir: "docs",
		},
	}

	// Load from file if it exists
	if configPath != "" {
		if err := loadConfigFromFile(config, configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %v", err)
		}
	}

	// Override with environment variables
	loadConfigFromEnv(config)

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %v", err)
	}

	return config, nil
}

// loadConfigFromFile loads configuration from JSON file
func loadConfigFromFile(config *ServerConfig, path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	return decoder.Decode(config)
}

// loadConfigFromEnv loads configuration from environment variables
func loadConfigFromEnv(config *ServerConfig) {
	// Security settings
	if secretKey := os.Getenv("SECRET_KEY"); secretKey != "" {
		config.Security.SecretKey = secretKey
	}
	if requireAuth := os.Getenv("REQUIRE_AUTH"); requireAuth != "" {
		config.Security.RequireAuth = strings.ToLower(requireAuth) == "true"
	}

	// Server settings
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
			config.Server.Interface = fmt.Sprintf(":%d", p)
		}
	}
	if iface := os.Getenv("SERVER_INTERFACE"); iface != "" {
		config.Server.Interface = iface
	}

	// Database settings
	if dbPath := os.Getenv("DB_PATH"); dbPath != "" {
		config.Database.Path = dbPath
	}

	// GitHub settings
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		config.GitHub.Token = token
	}
	if baseURL := os.Getenv("GITHUB_API_BASE_URL"); baseURL != "" {
		config.GitHub.BaseURL = strings.TrimRight(baseURL, "/")
	}

	// OpenAI settings
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}
	if baseURL := os.Getenv("OPENAI_API_BASE_URL"); baseURL != "" {
		config.OpenAI.BaseURL = baseURL
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		config.OpenAI.Model = model
	}

	// Documents settings
	if docsDir := os.Getenv("DOCS_DIR"); docsDir != "" {
		config.Documents.DocsDir = docsDir
	}

	// HTTPS settings
	if httpsEnabled := os.Getenv("ENABLE_HTTPS"); httpsEnabled != "" {
		config.Security.EnableHTTPS = strings.ToLower(httpsEnabled) == "true"
	}
	if certFile := os.Getenv("CERT_FILE"); certFile != "" {
		config.Security.CertFile = certFile
	}
	if keyFile := os.Getenv("KEY_FILE"); keyFile != "" {
		config.Security.KeyFile = keyFile
	}
}

// validateConfig validates the configuration
func validateConfig(config *ServerConfig) error {
	if config.Security.RequireAuth {
		if config.Security.SecretKey == "" {
			return fmt.Errorf("SECRET_KEY is required when authentication is enabled")
		}
		if len(config.Security.SecretKey) < 32 {
			return fmt.Errorf("SECRET_KEY must be at least 32 characters long")
		}
	}

	if config.Security.EnableHTTPS {
		if config.Security.CertFile == "" || config.Security.KeyFile == "" {
			return fmt.Errorf("CERT_FILE and KEY_FILE are required when HTTPS is enabled")
		}
	}

	if config.OpenAI.Timeout <= 0 {
		return fmt.Errorf("openai timeout must be positive")
	}

	return nil
}
