package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mergelens/mergelens/internal/config"
	"github.com/mergelens/mergelens/internal/provider"
	"github.com/mergelens/mergelens/internal/review"
)

const modelResponse = `## Summary
Hashing is an improvement over plaintext comparison.

## Issues
- Hash comparison is not constant-time

## Quality Score
8/10
`

// initRepo creates a git working copy for context gathering.
func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(args ...string) {
		t.Helper()
		cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
		cmd.Env = append(os.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v: %v\n%s", args, err, out)
		}
	}
	run("init", "-b", "main")
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	run("add", ".")
	run("commit", "-m", "initial")
	return dir
}

// newTestServer wires a server whose pipeline talks to a stubbed GitLab
// API and a fake completer.
func newTestServer(t *testing.T) (*Server, *provider.Fake) {
	t.Helper()

	gitlabStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/projects/42/merge_requests/5":
			w.Write([]byte(`{"iid":5,"title":"t","source_branch":"feature/auth","target_branch":"main"}`))
		case "/projects/42/merge_requests/5/diffs":
			w.Write([]byte(`[{"old_path":"auth.py","new_path":"auth.py","diff":"@@ -1 +1 @@\n-a\n+b\n"}]`))
		default:
			w.WriteHeader(404)
			w.Write([]byte(`{"message":"404"}`))
		}
	}))
	t.Cleanup(gitlabStub.Close)

	cfg := config.Default()
	cfg.GitLabURL = gitlabStub.URL
	cfg.RepoPath = initRepo(t)
	cfg.Cache.Enabled = false

	fake := &provider.Fake{Content: modelResponse}
	pipeline := review.New(cfg, zerolog.Nop(), fake, nil)
	return New(cfg.ListenAddr, cfg.RepoPath, zerolog.Nop(), pipeline), fake
}

func doRequest(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, "GET", "/health", "")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "healthy" || body["service"] != "mergelens" {
		t.Errorf("body = %v", body)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestWebhook_InvalidJSON(t *testing.T) {
	s, fake := newTestServer(t)
	rec := doRequest(t, s, "POST", "/gitlab", "{not json")
	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid JSON payload") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if fake.Calls != 0 {
		t.Error("malformed payload must not reach the provider")
	}
}

func TestWebhook_NonMergeRequest(t *testing.T) {
	s, fake := newTestServer(t)
	rec := doRequest(t, s, "POST", "/gitlab", `{"object_kind":"push"}`)
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not a merge request event") {
		t.Errorf("body = %s", rec.Body.String())
	}
	if fake.Calls != 0 {
		t.Error("non-MR event must make no provider call")
	}
}

func TestWebhook_MissingIdentifiers(t *testing.T) {
	s, _ := newTestServer(t)
	rec := doRequest(t, s, "POST", "/gitlab",
		`{"object_kind":"merge_request","project":{},"object_attributes":{}}`)
	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing MR IID or project ID") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestWebhook_EndToEnd(t *testing.T) {
	s, fake := newTestServer(t)
	payload := `{
		"object_kind": "merge_request",
		"project": {"id": 42},
		"object_attributes": {"iid": 5, "source_branch": "feature/auth", "target_branch": "main"}
	}`
	rec := doRequest(t, s, "POST", "/gitlab", payload)
	if rec.Code != 200 {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	md := body["review"]
	if !strings.Contains(md, "Quality Score: 8/10") {
		t.Errorf("review missing score line:\n%s", md)
	}
	if !strings.Contains(md, "Hash comparison is not constant-time") {
		t.Errorf("review missing issue:\n%s", md)
	}
	if !strings.Contains(fake.LastReq.UserPrompt, "+b") {
		t.Error("fetched diff not sent to provider")
	}
}

func TestWebhook_UpstreamFailure(t *testing.T) {
	s, _ := newTestServer(t)
	// MR 9 is not stubbed, so the fetch 404s.
	payload := `{
		"object_kind": "merge_request",
		"project": {"id": 42},
		"object_attributes": {"iid": 9}
	}`
	rec := doRequest(t, s, "POST", "/gitlab", payload)
	if rec.Code != 500 {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "failed to fetch MR details") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestTestEndpoint(t *testing.T) {
	s, fake := newTestServer(t)
	rec := doRequest(t, s, "POST", "/test", "")
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}

	var body testResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "success" {
		t.Fatalf("status = %q: %s", body.Status, body.Message)
	}
	if !strings.Contains(body.Review, "Quality Score: 8/10") {
		t.Errorf("rendered review missing score:\n%s", body.Review)
	}
	if body.RawReview.QualityScore != 8 {
		t.Errorf("raw quality_score = %d", body.RawReview.QualityScore)
	}
	if !strings.Contains(fake.LastReq.UserPrompt, "authenticate_user") {
		t.Error("sample diff not sent to provider")
	}
}
