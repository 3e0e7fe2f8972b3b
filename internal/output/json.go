package output

import (
	"encoding/json"
	"io"

	"github.com/jcallahan/reviewd/internal/review"
)

// JSONWriter outputs the result as indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, res *review.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
