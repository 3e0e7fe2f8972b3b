package analysis

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/jcallahan/reviewd/internal/diffparse"
	"github.com/jcallahan/reviewd/internal/metrics"
	"github.com/jcallahan/reviewd/internal/review"
)

const (
	defaultModel     = "gpt-4o-mini"
	defaultMaxTokens = 2000
	temperature      = 0.3
)

// Options configures the OpenAI-backed analyzer.
type Options struct {
	APIKey       string // defaults to OPENAI_API_KEY
	BaseURL      string // defaults to OPENAI_BASE_URL, then the public API
	Model        string
	MaxRetries   int
	MaxDiffBytes int // prompt payload bound, 0 = unlimited
}

// OpenAI implements Analyzer against an OpenAI-compatible chat endpoint.
type OpenAI struct {
	api  *openai.Client
	opts Options
	log  *zap.Logger
}

// NewOpenAI builds the analyzer. The API key is required; a custom base URL
// allows any OpenAI-compatible endpoint.
func NewOpenAI(opts Options, log *zap.Logger) (*OpenAI, error) {
	if opts.APIKey == "" {
		opts.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if opts.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = os.Getenv("OPENAI_BASE_URL")
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if log == nil {
		log = zap.NewNop()
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return &OpenAI{
		api:  openai.NewClientWithConfig(cfg),
		opts: opts,
		log:  log,
	}, nil
}

// Model returns the configured model name (part of the cache fingerprint).
func (o *OpenAI) Model() string { return o.opts.Model }

// Analyze sends the diff (and rule findings as context) to the LLM and
// returns the validated report. Transient transport failures are retried
// with exponential backoff up to the configured ceiling; the caller's
// context bounds the total wait.
func (o *OpenAI) Analyze(ctx context.Context, hunks []diffparse.Hunk, ruleIssues []review.Issue) (Report, error) {
	prompt := buildPrompt(hunks, ruleIssues, o.opts.MaxDiffBytes)

	content, err := o.complete(ctx, prompt)
	if err != nil {
		o.countFailure(err)
		return Report{}, err
	}

	rep, parseErr := parseReport(content)
	if parseErr == nil {
		metrics.AIRequests.WithLabelValues("ok").Inc()
		return rep, nil
	}

	// One repair pass: ask the model to fix its own malformed output.
	o.log.Warn("ai response failed validation, attempting repair",
		zap.Error(parseErr))
	repair := fmt.Sprintf(
		"Your previous response was not valid. The error was: %s\n\nRespond again with ONLY the JSON object described earlier.\n\nYour previous response was:\n%s",
		parseErr.Error(), content,
	)
	content, err = o.complete(ctx, repair)
	if err != nil {
		o.countFailure(err)
		return Report{}, err
	}
	rep, parseErr = parseReport(content)
	if parseErr != nil {
		metrics.AIRequests.WithLabelValues("malformed").Inc()
		return Report{}, &AIError{Op: "parse", Transient: true, Err: parseErr}
	}
	metrics.AIRequests.WithLabelValues("ok").Inc()
	return rep, nil
}

func (o *OpenAI) complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       o.opts.Model,
		Temperature: temperature,
		MaxTokens:   defaultMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	var content string
	err := retryBounded(ctx, o.opts.MaxRetries, func(attempt int) {
		metrics.AIRetries.Inc()
		o.log.Debug("retrying ai analysis", zap.Int("attempt", attempt))
	}, func() error {
		resp, err := o.api.CreateChatCompletion(ctx, req)
		if err != nil {
			return classify("complete", err)
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
			return &AIError{Op: "complete", Transient: true, Err: fmt.Errorf("empty completion")}
		}
		content = resp.Choices[0].Message.Content
		return nil
	})
	return content, err
}

func (o *OpenAI) countFailure(err error) {
	if IsTerminal(err) {
		metrics.AIRequests.WithLabelValues("terminal").Inc()
		return
	}
	metrics.AIRequests.WithLabelValues("transient").Inc()
}
