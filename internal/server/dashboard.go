package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/royalti/internal/auth/domain"
	"github.com/smallbiznis/royalti/internal/principal"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
)

func (s *Server) GetDashboard(c *gin.Context) {
	resp, err := s.dashboardSvc.UserOverview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetAdminDashboard(c *gin.Context) {
	resp, err := s.dashboardSvc.AdminOverview(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUsers(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.authsvc.ListUsers(c.Request.Context(), authdomain.ListUsersRequest{
		PageToken: query.PageToken,
		PageSize:  pageSize(query.Pagination),
		Search:    strings.TrimSpace(query.Search),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (s *Server) UpdateUserRole(c *gin.Context) {
	userID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	role, ok := principal.ParseRole(req.Role)
	if !ok {
		AbortWithError(c, authdomain.ErrInvalidRole)
		return
	}

	user, err := s.authsvc.UpdateRole(c.Request.Context(), userID, role)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": user})
}
