package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/akimenko/resume-pilot/internal/config"
)

var errInvalidToken = errors.New("invalid token")

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authenticator struct {
	config config.AuthConfig
}

func newAuthenticator(cfg config.AuthConfig) *authenticator {
	return &authenticator{config: cfg}
}

func (a *authenticator) issueToken() (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   a.config.Username,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(a.config.TokenTTLHours) * time.Hour)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.JWTSecret))
}

func (a *authenticator) validateToken(raw string) error {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return []byte(a.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return errInvalidToken
	}
	return nil
}

func (a *authenticator) credentialsMatch(username, password string) bool {
	userOk := subtle.ConstantTimeCompare([]byte(username), []byte(a.config.Username)) == 1
	passOk := subtle.ConstantTimeCompare([]byte(password), []byte(a.config.Password)) == 1
	return userOk && passOk
}

func (s *Server) login(c *gin.Context) {
	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	if !s.auth.credentialsMatch(request.Username, request.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := s.auth.issueToken()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}

	maxAge := s.auth.config.TokenTTLHours * 3600
	c.SetCookie(s.auth.config.CookieName, token, maxAge, "/", "", s.auth.config.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *Server) logout(c *gin.Context) {
	c.SetCookie(s.auth.config.CookieName, "", -1, "/", "", s.auth.config.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// authRequired accepts the session cookie or an Authorization bearer
// token.
func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(s.auth.config.CookieName)
		if err != nil || token == "" {
			header := c.GetHeader("Authorization")
			token = strings.TrimPrefix(header, "Bearer ")
			if token == header {
				token = ""
			}
		}

		if token == "" || s.auth.validateToken(token) != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}
