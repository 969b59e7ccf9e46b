package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/w3wave/social-digest/internal/domain"
	"github.com/w3wave/social-digest/internal/pipeline"
	"github.com/w3wave/social-digest/pkg/logger"
)

type handler struct {
	pipeline      pipeline.Client
	logger        logger.Logger
	minEngagement int
}

type postView struct {
	ExternalID string    `json:"external_id"`
	Author     string    `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	Score      int       `json:"score"`
	URL        string    `json:"url"`
	Content    string    `json:"content"`
}

func (h *handler) day(c *gin.Context, raw string, required bool) (time.Time, bool) {
	if raw == "" && !required {
		return time.Now(), true
	}
	w, err := domain.ParseDay(raw, h.pipeline.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return time.Time{}, false
	}
	return w.Start, true
}

func (h *handler) run(c *gin.Context) {
	date, ok := h.day(c, c.Query("date"), false)
	if !ok {
		return
	}

	// A dropped client connection must not abort a half-delivered digest.
	result, err := h.pipeline.Run(context.WithoutCancel(c.Request.Context()), date)
	switch {
	case errors.Is(err, pipeline.ErrRunInProgress):
		c.JSON(http.StatusConflict, result)
	case err != nil:
		c.JSON(http.StatusInternalServerError, result)
	default:
		c.JSON(http.StatusOK, result)
	}
}

func (h *handler) reset(c *gin.Context) {
	date, ok := h.day(c, c.Query("date"), true)
	if !ok {
		return
	}

	n, err := h.pipeline.Reset(c.Request.Context(), date)
	if err != nil {
		h.logger.Error("Reset failed", "date", c.Query("date"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": c.Query("date"), "reset": n})
}

func (h *handler) reports(c *gin.Context) {
	date, ok := h.day(c, c.Param("date"), true)
	if !ok {
		return
	}

	reports, err := h.pipeline.Reports(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}
	c.JSON(http.StatusOK, reports)
}

func (h *handler) posts(c *gin.Context) {
	date, ok := h.day(c, c.Param("date"), true)
	if !ok {
		return
	}

	threshold := h.minEngagement
	if raw := c.Query("min_engagement"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_engagement must be an integer"})
			return
		}
		threshold = n
	}

	posts, err := h.pipeline.Preview(c.Request.Context(), date, threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]postView, 0, len(posts))
	for _, p := range posts {
		out = append(out, postView{
			ExternalID: p.ExternalID,
			Author:     p.AuthorHandle,
			CreatedAt:  p.CreatedAt,
			Score:      p.Score(),
			URL:        p.SourceURL,
			Content:    p.Content,
		})
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "posts": out})
}
