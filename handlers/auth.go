package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// RequireAdmin guards write endpoints. With a bcrypt hash configured the
// request must carry "Authorization: Bearer <password>"; without one only
// loopback clients are let through.
func RequireAdmin(passwordHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if passwordHash == "" {
			if isLoopback(c.Request.RemoteAddr) {
				c.Next()
				return
			}
			abortV2(c, http.StatusForbidden, CodeForbidden, "Admin API is limited to loopback clients")
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="mortify"`)
			abortV2(c, http.StatusUnauthorized, CodeUnauthorized, "Missing bearer token")
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(token)); err != nil {
			abortV2(c, http.StatusUnauthorized, CodeUnauthorized, "Invalid credentials")
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// isLoopback uses the socket peer address, never forwarded headers.
func isLoopback(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
