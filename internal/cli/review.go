package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jcallahan/reviewd/internal/config"
	"github.com/jcallahan/reviewd/internal/gitdiff"
	"github.com/jcallahan/reviewd/internal/output"
	"github.com/jcallahan/reviewd/internal/pipeline"
	"github.com/jcallahan/reviewd/internal/review"
)

var (
	reviewConfigPath string
	reviewFormat     string
	reviewStaged     bool
	reviewUnstaged   bool
	reviewRange      string
	reviewSnippet    bool
	reviewNoAI       bool
	reviewFailOn     string
)

var reviewCmd = &cobra.Command{
	Use:   "review [file|-]",
	Short: "Review a diff or code snippet once and print the result",
	Long: `Review reads a unified diff (or, with --snippet, raw code) from a file,
stdin, or the local git repository and prints the review result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().StringVar(&reviewConfigPath, "config", "", "path to YAML config file")
	reviewCmd.Flags().StringVar(&reviewFormat, "format", "text", "output format: text, json, markdown")
	reviewCmd.Flags().BoolVar(&reviewStaged, "staged", false, "review staged changes")
	reviewCmd.Flags().BoolVar(&reviewUnstaged, "unstaged", false, "review working tree changes")
	reviewCmd.Flags().StringVar(&reviewRange, "range", "", "review a revision range, e.g. origin/main..HEAD")
	reviewCmd.Flags().BoolVar(&reviewSnippet, "snippet", false, "treat input as raw code instead of a diff")
	reviewCmd.Flags().BoolVar(&reviewNoAI, "no-ai", false, "skip AI analysis, run rules only")
	reviewCmd.Flags().StringVar(&reviewFailOn, "fail-on", "none", "exit non-zero when issues at or above this severity exist")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(reviewConfigPath)
	if err != nil {
		exitCode = ExitUsageError
		return err
	}
	if reviewNoAI {
		cfg.AI.Enabled = false
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	input, err := gatherInput(ctx, args)
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}

	engine, _ := buildEngine(cfg, zap.NewNop())

	req := pipeline.Request{Diff: input}
	if reviewSnippet || !looksLikeDiff(input) {
		req = pipeline.Request{Code: input}
	}

	res, err := engine.Review(ctx, req)
	if err != nil {
		exitCode = ExitUsageError
		return err
	}

	w, err := output.GetWriter(reviewFormat)
	if err != nil {
		exitCode = ExitUsageError
		return err
	}
	if err := w.Write(os.Stdout, res); err != nil {
		exitCode = ExitRuntimeError
		return err
	}

	for _, is := range res.Issues {
		if review.MeetsThreshold(is.Severity, reviewFailOn) {
			exitCode = ExitFindings
			break
		}
	}
	return nil
}

func gatherInput(ctx context.Context, args []string) (string, error) {
	switch {
	case reviewStaged:
		return gitdiff.Staged(ctx)
	case reviewUnstaged:
		return gitdiff.Unstaged(ctx)
	case reviewRange != "":
		return gitdiff.Range(ctx, reviewRange)
	case len(args) == 1 && args[0] != "-":
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("reading input file: %w", err)
		}
		return string(data), nil
	default:
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
}

// looksLikeDiff detects unified-diff input so plain code pasted without
// --snippet still reviews as a snippet.
func looksLikeDiff(input string) bool {
	trimmed := strings.TrimSpace(input)
	return strings.HasPrefix(trimmed, "diff --git") ||
		strings.HasPrefix(trimmed, "--- ") ||
		strings.HasPrefix(trimmed, "Index: ")
}
