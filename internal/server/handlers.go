package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mergelens/mergelens/internal/output"
	"github.com/mergelens/mergelens/internal/review"
	"github.com/mergelens/mergelens/internal/rules"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "mergelens",
	})
}

// handleWebhook receives GitLab merge request events and runs the review
// pipeline, mapping every fatal outcome to a status code and detail
// message.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var ev review.Event
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&ev); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid JSON payload: %v", err)
		return
	}

	res, err := s.pipeline.Handle(r.Context(), ev)
	if err != nil {
		var perr *review.Error
		if errors.As(err, &perr) {
			s.log.Error().
				Str("category", string(perr.Category)).
				Str("request_id", r.Header.Get("X-Request-ID")).
				Msg(perr.Message)
			writeDetail(w, perr.HTTPStatus(), "%s", perr.Message)
			return
		}
		writeDetail(w, http.StatusInternalServerError, "Unexpected error processing webhook: %v", err)
		return
	}

	if res.Skipped {
		writeJSON(w, http.StatusOK, map[string]string{"message": res.Message})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"review": output.Markdown(res.Review),
	})
}

// sampleDiff exercises the full prompt/parse/render path without a
// webhook or GitLab access.
const sampleDiff = `diff --git a/auth.py b/auth.py
index 1234567..abcdefg 100644
--- a/auth.py
+++ b/auth.py
@@ -1,10 +1,15 @@
 import os
 import hashlib

 def authenticate_user(username, password):
-    # Simple authentication
-    if username == "admin" and password == "password":
-        return True
-    return False
+    # Enhanced authentication with hashing
+    stored_hash = get_user_hash(username)
+    if stored_hash:
+        password_hash = hashlib.sha256(password.encode()).hexdigest()
+        return password_hash == stored_hash
+    return False
+
+def get_user_hash(username):
+    # Get user hash from database
+    return os.environ.get(f"USER_{username.upper()}_HASH")
`

// testResponse is the diagnostic endpoint's success payload: the rendered
// report plus the raw structured fields for inspection.
type testResponse struct {
	Status    string            `json:"status"`
	Review    string            `json:"review,omitempty"`
	RawReview review.CodeReview `json:"raw_review,omitempty"`
	Message   string            `json:"message,omitempty"`
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	effective := rules.NewEngine(s.repoPath).Effective()

	rev, err := s.pipeline.ReviewDiff(r.Context(), effective, sampleDiff, "Test context")
	if err != nil {
		writeJSON(w, http.StatusOK, testResponse{
			Status:  "error",
			Message: "Test failed: " + err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, testResponse{
		Status:    "success",
		Review:    output.Markdown(rev),
		RawReview: rev,
	})
}
