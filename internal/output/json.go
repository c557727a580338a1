package output

import (
	"encoding/json"
	"io"

	"github.com/mergelens/mergelens/internal/review"
)

// JSONWriter outputs the structured review fields as indented JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, rev review.CodeReview) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rev)
}
