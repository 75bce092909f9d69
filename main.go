// main.go
package main

import (
	"log"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

var (
	db           *gorm.DB
	serverConfig *ServerConfig
	assetStore   *AssetStore
	gitHub       *GitHubClient
	openAI       *OpenAIClient
)

func main() {
	var err error

	// Load server configuration
	serverConfig, err = LoadConfig("config.json")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize the SQLite database connection
	db, err = gorm.Open(sqlite.Open(serverConfig.Database.Path), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Perform automatic schema migration
	if err := db.AutoMigrate(&User{}, &Document{}, &Escalation{}); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	// The asset register lives in memory for the process lifetime
	assetStore = NewAssetStore()

	// External collaborators
	gitHub = NewGitHubClient(serverConfig.GitHub.BaseURL, serverConfig.GitHub.Token)
	openAI = NewOpenAIClient(
		serverConfig.OpenAI.BaseURL,
		serverConfig.OpenAI.APIKey,
		serverConfig.OpenAI.Model,
		time.Duration(serverConfig.OpenAI.Timeout)*time.Second,
	)

	if serverConfig.GitHub.Token == "" {
		log.Println("WARNING: No GitHub token configured; GitHub evidence requests will be rate-limited or rejected.")
	}
	if serverConfig.OpenAI.APIKey == "" {
		log.Println("WARNING: No OpenAI API key configured; AI summaries will fail.")
	}

	// Create a new Gin router for handling HTTP requests
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(SecurityHeadersMiddleware())
	r.Use(CORSMiddleware(serverConfig.Security.AllowedOrigins))
	r.Use(LoggingMiddleware())
	r.Use(RateLimitMiddleware(serverConfig.Security.RateLimitRequests,
		time.Duration(serverConfig.Security.RateLimitWindow)*time.Second))

	// Set up session middleware when a secret key is configured; the auth
	// endpoints refuse to operate without one
	if serverConfig.Security.SecretKey != "" {
		store := cookie.NewStore([]byte(serverConfig.Security.SecretKey))
		store.Options(sessions.Options{
			MaxAge:   serverConfig.Security.SessionMaxAge,
			Path:     "/",
			HttpOnly: true,
			Secure:   serverConfig.Security.EnableHTTPS,
		})
		r.Use(sessions.Sessions("evidence_session", store))
	}

	// Register all the API routes
	registerRoutes(r)

	// Run the Gin server on the configured interface
	if serverConfig.Security.EnableHTTPS && serverConfig.Security.CertFile != "" && serverConfig.Security.KeyFile != "" {
		log.Printf("Starting HTTPS server on %s", serverConfig.Server.Interface)
		if err := r.RunTLS(serverConfig.Server.Interface, serverConfig.Security.CertFile, serverConfig.Security.KeyFile); err != nil {
			log.Fatalf("Failed to run HTTPS server: %v", err)
		}
	} else {
		log.Printf("Starting HTTP server on %s", serverConfig.Server.Interface)
		if err := r.Run(serverConfig.Server.Interface); err != nil {
			log.Fatalf("Failed to run server: %v", err)
		}
	}
}
