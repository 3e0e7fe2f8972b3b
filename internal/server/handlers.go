package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jcallahan/reviewd/internal/diffparse"
	"github.com/jcallahan/reviewd/internal/pipeline"
)

// reviewRequest is the body of POST /review: an inline code snippet or raw
// unified-diff text.
type reviewRequest struct {
	Code string `json:"code"`
	Diff string `json:"diff"`
}

func (s *Server) handleReview(c *gin.Context) {
	var body reviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	if strings.TrimSpace(body.Code) == "" && strings.TrimSpace(body.Diff) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no code or diff provided"})
		return
	}
	if s.opts.AIRequired && !s.opts.Engine.AIAvailable() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "ai analysis unavailable"})
		return
	}

	res, err := s.opts.Engine.Review(c.Request.Context(), pipeline.Request{
		Diff: body.Diff,
		Code: body.Code,
	})
	if err != nil {
		if errors.Is(err, diffparse.ErrMalformedDiff) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "review failed"})
		return
	}
	c.JSON(http.StatusOK, res)
}
