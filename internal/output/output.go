// Package output renders structured reviews for delivery: markdown for
// posting, JSON for inspection.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/mergelens/mergelens/internal/review"
)

// Writer writes a review in a specific format.
type Writer interface {
	Write(w io.Writer, rev review.CodeReview) error
}

// GetWriter returns a writer for the specified format.
func GetWriter(format string) (Writer, error) {
	switch format {
	case "markdown", "md":
		return &MarkdownWriter{}, nil
	case "json":
		return &JSONWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteReview writes the review to the given file path, or stdout when
// outPath is empty.
func WriteReview(rev review.CodeReview, format, outPath string) error {
	writer, err := GetWriter(format)
	if err != nil {
		return err
	}

	var w io.Writer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	} else {
		w = os.Stdout
	}

	return writer.Write(w, rev)
}
