package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	artistdomain "github.com/smallbiznis/royalti/internal/artist/domain"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
)

type artistRequest struct {
	Name         string `json:"name"`
	StageName    string `json:"stage_name"`
	BirthDate    string `json:"birth_date"`
	TaxID        string `json:"tax_id"`
	SoundOnEmail string `json:"soundon_email"`
	OneRPMEmail  string `json:"onerpm_email"`
	SpotifyURL   string `json:"spotify_url"`
	YouTubeURL   string `json:"youtube_url"`
	TikTokURL    string `json:"tiktok_url"`
	InstagramURL string `json:"instagram_url"`
}

func (r artistRequest) input() artistdomain.ArtistInput {
	return artistdomain.ArtistInput{
		Name:         strings.TrimSpace(r.Name),
		StageName:    strings.TrimSpace(r.StageName),
		BirthDate:    strings.TrimSpace(r.BirthDate),
		TaxID:        strings.TrimSpace(r.TaxID),
		SoundOnEmail: strings.TrimSpace(r.SoundOnEmail),
		OneRPMEmail:  strings.TrimSpace(r.OneRPMEmail),
		SpotifyURL:   strings.TrimSpace(r.SpotifyURL),
		YouTubeURL:   strings.TrimSpace(r.YouTubeURL),
		TikTokURL:    strings.TrimSpace(r.TikTokURL),
		InstagramURL: strings.TrimSpace(r.InstagramURL),
	}
}

func (s *Server) CreateArtist(c *gin.Context) {
	var req artistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.artistSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListArtists(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Search string `form:"search"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.artistSvc.List(c.Request.Context(), artistdomain.ListArtistRequest{
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

func (s *Server) GetArtistByID(c *gin.Context) {
	resp, err := s.artistSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateArtist(c *gin.Context) {
	var req artistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.artistSvc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteArtist(c *gin.Context) {
	if err := s.artistSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) GetArtistCatalog(c *gin.Context) {
	resp, err := s.catalogSvc.Enrich(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ClearArtistCatalog(c *gin.Context) {
	if err := s.catalogSvc.Clear(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
