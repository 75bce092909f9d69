// auth.go
package main

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// usernamePattern strips anything outside word characters and @.- to prevent
// injection through the username field.
var usernamePattern = regexp.MustCompile(`[^\w@.-]`)

// sanitizeUsername cleans the input string to prevent injection attacks
func sanitizeUsername(input string) string {
	return usernamePattern.ReplaceAllString(strings.TrimSpace(input), "")
}

// authRequired checks for either session cookie or Basic Auth
func authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get("user_id")
		authenticated := session.Get("authenticated")

		if userID != nil && authenticated != nil {
			c.Set("user_id", userID)
			c.Next()
			return
		}

		// If no valid session, check for Basic Auth
		username, password, hasAuth := c.Request.BasicAuth()
		if hasAuth {
			username = sanitizeUsername(username)

			var user User
			if err := db.Where("username = ?", username).First(&user).Error; err != nil {
				RespondUnauthorized(c, "Invalid credentials")
				c.Abort()
				return
			}

			if !user.CheckPassword(password) {
				RespondUnauthorized(c, "Invalid credentials")
				c.Abort()
				return
			}

			c.Set("user_id", user.ID)
			c.Next()
			return
		}

		RespondUnauthorized(c, "Authentication required")
		c.Abort()
	}
}

// registerUser handles the registration of a new user. Registration is gated
// by the server secret key so the endpoint can stay public.
func registerUser(c *gin.Context) {
	if serverConfig.Security.SecretKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Authentication is not configured"})
		return
	}

	secretKey := c.PostForm("secret_key")
	if secretKey != serverConfig.Security.SecretKey {
		c.JSON(http.StatusForbidden, gin.H{"message": "Invalid secret key"})
		return
	}

	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	username = sanitizeUsername(username)

	// Check if username already exists
	var user User
	if err := db.Where("username = ?", username).First(&user).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username already exists"})
		return
	}

	newUser := User{Username: username}
	if err := newUser.SetPassword(password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to set password"})
		return
	}

	if err := db.Create(&newUser).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to register user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User registered successfully"})
}

// login handles user login
func login(c *gin.Context) {
	if serverConfig.Security.SecretKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Authentication is not configured"})
		return
	}

	username := c.PostForm("username")
	password := c.PostForm("password")
	if username == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	username = sanitizeUsername(username)

	var user User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username or password"})
		return
	}

	if !user.CheckPassword(password) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid username or password"})
		return
	}

	session := sessions.Default(c)
	session.Options(sessions.Options{
		MaxAge:   serverConfig.Security.SessionMaxAge,
		Path:     "/",
		HttpOnly: true,
	})
	session.Set("user_id", user.ID)
	session.Set("authenticated", true)
	if err := session.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully"})
}

// logout handles user logout
func logout(c *gin.Context) {
	if serverConfig.Security.SecretKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Authentication is not configured"})
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}
