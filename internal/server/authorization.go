package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/royalti/internal/principal"
)

// authorize checks the caller's role against the casbin policy for object and action.
func (s *Server) authorize(object string, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.authorizeWithContext(c, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func (s *Server) authorizeWithContext(c *gin.Context, object string, action string) error {
	p, ok := principal.FromContext(c.Request.Context())
	if !ok {
		return ErrUnauthorized
	}
	if s.authzSvc == nil {
		return ErrForbidden
	}
	return s.authzSvc.Authorize(c.Request.Context(), p.Role, strings.TrimSpace(object), strings.TrimSpace(action))
}
