package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	songdomain "github.com/smallbiznis/royalti/internal/song/domain"
)

func (s *Server) ListGenres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.reference.Get().Genres})
}

func (s *Server) ListRoles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.reference.Get().Roles})
}

func (s *Server) ListStatuses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": songdomain.Statuses})
}
