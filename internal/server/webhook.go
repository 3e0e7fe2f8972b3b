package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	gh "github.com/google/go-github/v82/github"
	"go.uber.org/zap"

	"github.com/jcallahan/reviewd/internal/diffparse"
	"github.com/jcallahan/reviewd/internal/github"
	"github.com/jcallahan/reviewd/internal/output"
	"github.com/jcallahan/reviewd/internal/pipeline"
)

// Pull request actions that trigger a review.
var reviewedActions = map[string]bool{
	"opened":      true,
	"synchronize": true,
	"reopened":    true,
}

func (s *Server) handleWebhook(c *gin.Context) {
	payload, err := gh.ValidatePayload(c.Request, s.opts.WebhookSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}
	event, err := gh.ParseWebHook(gh.WebHookType(c.Request), payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	pr, ok := event.(*gh.PullRequestEvent)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": "not a pull request event"})
		return
	}
	action := pr.GetAction()
	if !reviewedActions[action] {
		c.JSON(http.StatusOK, gin.H{"status": "ignored", "reason": fmt.Sprintf("action %q not processed", action)})
		return
	}

	owner := pr.GetRepo().GetOwner().GetLogin()
	repo := pr.GetRepo().GetName()
	number := pr.GetPullRequest().GetNumber()
	if owner == "" || repo == "" || number == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payload missing repository identity"})
		return
	}
	if s.opts.SCM == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "source control client not configured"})
		return
	}

	log := s.log.With(
		zap.String("repo", owner+"/"+repo),
		zap.Int("pr", number),
	)
	log.Info("processing pull request event", zap.String("action", action))

	ctx := c.Request.Context()
	diff, err := s.opts.SCM.FetchDiff(ctx, owner, repo, number)
	if err != nil {
		log.Error("fetching pull request diff failed", zap.Error(err))
		switch {
		case errors.Is(err, github.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "pull request not found"})
		case errors.Is(err, github.ErrAuth):
			c.JSON(http.StatusBadGateway, gin.H{"error": "source control authentication failed"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not fetch pull request diff"})
		}
		return
	}

	res, err := s.opts.Engine.Review(ctx, pipeline.Request{
		Diff: diff,
		Repo: owner + "/" + repo,
		PR:   number,
		SHA:  pr.GetPullRequest().GetHead().GetSHA(),
	})
	if err != nil {
		if errors.Is(err, diffparse.ErrMalformedDiff) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "review failed"})
		return
	}

	posted := true
	if err := s.opts.SCM.PostComment(ctx, owner, repo, number, output.Markdown(res)); err != nil {
		// The review itself succeeded; report it even when the comment
		// could not be posted.
		log.Error("posting review comment failed", zap.Error(err))
		posted = false
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "success",
		"repository":   owner + "/" + repo,
		"pull_request": number,
		"posted":       posted,
		"review":       res,
	})
}
