package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	songdomain "github.com/smallbiznis/royalti/internal/song/domain"
	"github.com/smallbiznis/royalti/pkg/db/pagination"
)

type songRequest struct {
	Title           string                        `json:"title"`
	Genre           string                        `json:"genre"`
	Lyrics          string                        `json:"lyrics"`
	DurationSeconds int                           `json:"duration_seconds"`
	AudioURL        string                        `json:"audio_url"`
	ReleaseDate     string                        `json:"release_date"`
	Participants    []songdomain.ParticipantInput `json:"participants"`
	Metadata        map[string]any                `json:"metadata"`
}

func (r songRequest) input() songdomain.SaveSongRequest {
	return songdomain.SaveSongRequest{
		Title:           strings.TrimSpace(r.Title),
		Genre:           strings.TrimSpace(r.Genre),
		Lyrics:          r.Lyrics,
		DurationSeconds: r.DurationSeconds,
		AudioURL:        strings.TrimSpace(r.AudioURL),
		ReleaseDate:     strings.TrimSpace(r.ReleaseDate),
		Participants:    r.Participants,
		Metadata:        r.Metadata,
	}
}

type previewRequest struct {
	DistributorPercentage *int                          `json:"distributor_percentage"`
	Participants          []songdomain.ParticipantInput `json:"participants"`
}

type listSongQuery struct {
	pagination.Pagination
	Status string `form:"status"`
	Genre  string `form:"genre"`
	Search string `form:"search"`
}

func (s *Server) CreateSong(c *gin.Context) {
	var req songRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.songSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateSong(c *gin.Context) {
	var req songRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.songSvc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSongByID(c *gin.Context) {
	resp, err := s.songSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSongs(c *gin.Context) {
	s.listSongs(c, false)
}

// ListAllSongs lists every user's songs for the review queue.
func (s *Server) ListAllSongs(c *gin.Context) {
	s.listSongs(c, true)
}

func (s *Server) listSongs(c *gin.Context, all bool) {
	var query listSongQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.songSvc.List(c.Request.Context(), songdomain.ListSongRequest{
		PageToken: query.PageToken,
		PageSize:  pageSize(query.Pagination),
		Status:    strings.TrimSpace(query.Status),
		Genre:     strings.TrimSpace(query.Genre),
		Search:    strings.TrimSpace(query.Search),
		All:       all,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) DeleteSong(c *gin.Context) {
	if err := s.songSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) PreviewLedger(c *gin.Context) {
	var req previewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.songSvc.PreviewLedger(c.Request.Context(), songdomain.PreviewRequest{
		DistributorPercentage: req.DistributorPercentage,
		Participants:          req.Participants,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSongPayouts(c *gin.Context) {
	resp, err := s.songSvc.Payouts(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetSongStatement(c *gin.Context) {
	id := c.Param("id")
	doc, err := s.songSvc.Statement(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "royalty-statement-"+id+".pdf"))
	c.Data(http.StatusOK, "application/pdf", doc)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

func (s *Server) UpdateSongStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.songSvc.UpdateStatus(c.Request.Context(), c.Param("id"), songdomain.UpdateStatusRequest{
		Status: strings.TrimSpace(req.Status),
		Notes:  strings.TrimSpace(req.Notes),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordPerformanceRequest struct {
	Streams      int64 `json:"streams"`
	RevenueCents int64 `json:"revenue_cents"`
}

func (s *Server) RecordSongPerformance(c *gin.Context) {
	var req recordPerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.songSvc.RecordPerformance(c.Request.Context(), c.Param("id"), songdomain.RecordPerformanceRequest{
		Streams:      req.Streams,
		RevenueCents: req.RevenueCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
