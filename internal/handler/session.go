package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ruanmelo/agenda-api/internal/model"
)

// SessionKey is where the auth middleware stores the caller's session.
const SessionKey = "session"

// SessionFromContext returns the authenticated session, or nil on public
// routes.
func SessionFromContext(c *gin.Context) *model.Session {
	v, ok := c.Get(SessionKey)
	if !ok {
		return nil
	}
	session, ok := v.(*model.Session)
	if !ok {
		return nil
	}
	return session
}
