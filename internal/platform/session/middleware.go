package session

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// contextKey is the gin context key the middleware stores the session ID under.
const contextKey = "sessionID"

// cookieMaxAge is the session cookie lifetime in seconds.
const cookieMaxAge = 30 * 60

// Middleware ensures every request carries a session ID.
// A missing or empty cookie gets a fresh UUID; the ID is exposed to handlers
// via FromContext.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(CookieName)
		if err != nil || id == "" {
			id = uuid.NewString()
			// HttpOnly: セッションIDはスクリプトから読み取る必要がない
			c.SetCookie(CookieName, id, cookieMaxAge, "/", "", false, true)
		}
		c.Set(contextKey, id)
		c.Next()
	}
}

// FromContext returns the session ID the middleware attached to the request.
func FromContext(c *gin.Context) string {
	return c.GetString(contextKey)
}
