package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mergelens/mergelens/internal/review"
)

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	w := &JSONWriter{}
	if err := w.Write(&buf, fullReview()); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var decoded review.CodeReview
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.QualityScore != 8 {
		t.Errorf("quality_score = %d, want 8", decoded.QualityScore)
	}
	if len(decoded.Issues) != 1 || decoded.Issues[0] != "not constant-time" {
		t.Errorf("issues = %v", decoded.Issues)
	}
}

func TestGetWriter(t *testing.T) {
	if _, err := GetWriter("markdown"); err != nil {
		t.Errorf("markdown writer: %v", err)
	}
	if _, err := GetWriter("json"); err != nil {
		t.Errorf("json writer: %v", err)
	}
	if _, err := GetWriter("sarif"); err == nil {
		t.Error("expected error for unsupported format")
	}
}
