package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akulbansal1/carelink/internal/model"
	"github.com/akulbansal1/carelink/internal/session"
	apperrors "github.com/akulbansal1/carelink/pkg/errors"
	"github.com/akulbansal1/carelink/pkg/httputil"
)

const contextSession = "session"

type SessionMiddleware struct {
	sessions *session.Service
}

func NewSessionMiddleware(sessions *session.Service) *SessionMiddleware {
	return &SessionMiddleware{sessions: sessions}
}

// RequireSession gates admin routes: without a live session the request
// is rejected with 401 and the client redirects to login.
func (m *SessionMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			httputil.RespondWithError(c, apperrors.ErrAuthRequired)
			c.Abort()
			return
		}

		sess, err := m.sessions.Load(c.Request.Context(), token)
		if err != nil {
			httputil.RespondWithError(c, apperrors.ErrAuthRequired)
			c.Abort()
			return
		}

		c.Set(contextSession, sess)
		c.Next()
	}
}

// CurrentSession returns the session installed by RequireSession.
func CurrentSession(c *gin.Context) (*model.Session, bool) {
	v, ok := c.Get(contextSession)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*model.Session)
	return sess, ok
}

// BearerToken extracts the raw token from the Authorization header.
func BearerToken(c *gin.Context) string {
	return bearerToken(c)
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
