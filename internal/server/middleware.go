package server

import (
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/royalti/internal/observability/context"
	"github.com/smallbiznis/royalti/internal/principal"
)

const contextUserIDKey = "user_id"

// AuthRequired resolves the session cookie or bearer token and puts the
// caller's principal on the request context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := principal.WithPrincipal(c.Request.Context(), principal.Principal{
			UserID: user.ID,
			Role:   user.Role,
		})
		ctx = obscontext.WithActor(ctx, user.ID.String(), string(user.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextUserIDKey, user.ID.String())
		c.Next()
	}
}

func (s *Server) RequireRole(roles ...principal.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal.FromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}
