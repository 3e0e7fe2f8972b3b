package output

import (
	"fmt"
	"io"

	"github.com/jcallahan/reviewd/internal/review"
)

// Writer renders a review result in a specific format.
type Writer interface {
	Write(w io.Writer, res *review.Result) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "text":
		return &TextWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	case "markdown":
		return &MarkdownWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}
