package review

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/mergelens/mergelens/internal/cache"
	"github.com/mergelens/mergelens/internal/config"
	"github.com/mergelens/mergelens/internal/gitctx"
	"github.com/mergelens/mergelens/internal/gitlab"
	"github.com/mergelens/mergelens/internal/provider"
	"github.com/mergelens/mergelens/internal/redact"
	"github.com/mergelens/mergelens/internal/rules"
)

// Event is the inbound GitLab webhook payload shape the pipeline consumes.
type Event struct {
	ObjectKind       string                     `json:"object_kind"`
	Project          Project                    `json:"project"`
	ObjectAttributes ObjectAttributes           `json:"object_attributes"`
	Changes          map[string]json.RawMessage `json:"changes,omitempty"`
}

// Project identifies the project the event belongs to. GitLab sends the id
// as a number but some proxies restringify it, so it is kept as a Number.
type Project struct {
	ID                json.Number `json:"id"`
	Name              string      `json:"name"`
	PathWithNamespace string      `json:"path_with_namespace"`
}

// ObjectAttributes carries the merge request fields of the event.
type ObjectAttributes struct {
	IID          int    `json:"iid"`
	Title        string `json:"title"`
	SourceBranch string `json:"source_branch"`
	TargetBranch string `json:"target_branch"`
	Action       string `json:"action"`
}

// Category labels the terminal outcome of a failed pipeline run.
type Category string

const (
	CategoryMalformedInput    Category = "malformed_input"
	CategoryMissingIdentifier Category = "missing_identifier"
	CategoryInit              Category = "init_failed"
	CategoryUpstreamFetch     Category = "upstream_fetch"
	CategoryProvider          Category = "provider"
)

// Error is a categorized fatal pipeline failure. Exactly one is produced
// per failed run; degraded context gathering never yields one.
type Error struct {
	Category Category
	Message  string
	Err      error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the outcome category onto the response status code.
func (e *Error) HTTPStatus() int {
	switch e.Category {
	case CategoryMalformedInput, CategoryMissingIdentifier:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Fetcher is the upstream MR source. Satisfied by *gitlab.Client.
type Fetcher interface {
	GetMergeRequest(ctx context.Context, iid int) (gitlab.MergeRequest, error)
	GetDiff(ctx context.Context, iid int) (string, error)
}

// Result is a successful pipeline outcome. Skipped results acknowledge
// events the bot does not review.
type Result struct {
	Skipped bool
	Message string
	Review  CodeReview
}

// Pipeline turns one webhook event into a structured review. Safe for
// concurrent use as long as each instance's working copy is not shared.
type Pipeline struct {
	cfg       config.Config
	log       zerolog.Logger
	completer provider.Completer
	cache     *cache.Cache

	// factories, replaceable in tests
	newFetcher func(projectID string) Fetcher
	openRepo   func(path string) (BranchContext, error)
}

// New wires a pipeline with real collaborators. The GitLab token comes
// from the GITLAB_TOKEN environment variable.
func New(cfg config.Config, log zerolog.Logger, completer provider.Completer, c *cache.Cache) *Pipeline {
	return &Pipeline{
		cfg:       cfg,
		log:       log,
		completer: completer,
		cache:     c,
		newFetcher: func(projectID string) Fetcher {
			return gitlab.NewClient(cfg.GitLabURL, projectID, os.Getenv("GITLAB_TOKEN"))
		},
		openRepo: func(path string) (BranchContext, error) {
			return gitctx.Open(path)
		},
	}
}

// Handle runs the full review sequence for one event. Non-merge-request
// events short-circuit without any outbound call. Every fatal failure
// returns a categorized *Error.
func (p *Pipeline) Handle(ctx context.Context, ev Event) (Result, error) {
	if ev.ObjectKind != "merge_request" {
		return Result{Skipped: true, Message: "Not a merge request event"}, nil
	}

	iid := ev.ObjectAttributes.IID
	projectID := ev.Project.ID.String()
	if iid == 0 || projectID == "" || projectID == "0" {
		return Result{}, &Error{
			Category: CategoryMissingIdentifier,
			Message:  "missing MR IID or project ID",
		}
	}

	log := p.log.With().Str("project", projectID).Int("mr_iid", iid).Logger()

	engine := rules.NewEngine(p.cfg.RepoPath)
	fetcher := p.newFetcher(projectID)
	repo, err := p.openRepo(p.cfg.RepoPath)
	if err != nil {
		return Result{}, &Error{
			Category: CategoryInit,
			Message:  "failed to initialize components: " + err.Error(),
			Err:      err,
		}
	}

	effective := engine.Effective()

	mr, err := fetcher.GetMergeRequest(ctx, iid)
	if err != nil {
		return Result{}, &Error{
			Category: CategoryUpstreamFetch,
			Message:  "failed to fetch MR details: " + err.Error(),
			Err:      err,
		}
	}
	diff, err := fetcher.GetDiff(ctx, iid)
	if err != nil {
		return Result{}, &Error{
			Category: CategoryUpstreamFetch,
			Message:  "failed to fetch MR diff: " + err.Error(),
			Err:      err,
		}
	}
	if p.cfg.MaxDiffBytes > 0 && len(diff) > p.cfg.MaxDiffBytes {
		log.Warn().Int("bytes", len(diff)).Msg("diff truncated to configured maximum")
		diff = diff[:p.cfg.MaxDiffBytes]
	}

	sourceBranch := ev.ObjectAttributes.SourceBranch
	if sourceBranch == "" {
		sourceBranch = mr.SourceBranch
	}
	extra := BuildExtraContext(repo, sourceBranch, diff)

	key := cache.Key(projectID, iid, diff)
	rev, err := p.generate(ctx, log, effective, diff, extra, key)
	if err != nil {
		return Result{}, err
	}

	log.Info().Int("score", rev.QualityScore).Int("issues", len(rev.Issues)).Msg("review generated")
	return Result{Review: rev}, nil
}

// ReviewDiff runs the pipeline tail on an already-obtained diff. Used by
// the diagnostic endpoint and the CLI.
func (p *Pipeline) ReviewDiff(ctx context.Context, ruleSet rules.RuleSet, diff, extra string) (CodeReview, error) {
	return p.generate(ctx, p.log, ruleSet, diff, extra, "")
}

// generate redacts the diff, consults the cache, calls the provider, and
// parses the response. An empty cacheKey bypasses the cache.
func (p *Pipeline) generate(ctx context.Context, log zerolog.Logger, ruleSet rules.RuleSet, diff, extra, cacheKey string) (CodeReview, error) {
	if p.cfg.Privacy.RedactSecrets {
		diff = redact.Secrets(diff)
	}

	if cacheKey != "" && p.cache != nil {
		if content, ok := p.cache.Get(cacheKey); ok {
			log.Debug().Msg("completion cache hit")
			return p.parseReview(log, content), nil
		}
	}

	resp, err := p.completer.Complete(ctx, provider.Request{
		SystemPrompt: SystemPrompt(ruleSet, extra),
		UserPrompt:   UserPrompt(diff),
		MaxTokens:    p.cfg.MaxTokens,
		Temperature:  p.cfg.Temperature,
	})
	if err != nil {
		return CodeReview{}, &Error{
			Category: CategoryProvider,
			Message:  "failed to generate review: " + err.Error(),
			Err:      err,
		}
	}

	if cacheKey != "" && p.cache != nil {
		if err := p.cache.Put(cacheKey, resp.Content); err != nil {
			log.Warn().Err(err).Msg("caching completion failed")
		}
	}
	return p.parseReview(log, resp.Content), nil
}

// parseReview parses the response and logs the degradations the
// permissive parser does not surface as errors.
func (p *Pipeline) parseReview(log zerolog.Logger, content string) CodeReview {
	rev := Parse(content)
	if rev.Summary == fallbackSummary {
		log.Warn().Msg("no summary recognized in model response")
	}
	if len(rev.Issues)+len(rev.Suggestions)+len(rev.SecurityConcerns)+len(rev.PerformanceNotes) == 0 {
		log.Debug().Msg("model response contained no list items")
	}
	return rev
}
