package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mergelens/mergelens/internal/config"
	"github.com/mergelens/mergelens/internal/logging"
	"github.com/mergelens/mergelens/internal/output"
	"github.com/mergelens/mergelens/internal/provider"
	"github.com/mergelens/mergelens/internal/review"
	"github.com/mergelens/mergelens/internal/rules"
)

var (
	flagDiffFile string
	flagExtra    string
	flagFormat   string
	flagOut      string
	flagRulesDir string
)

func init() {
	reviewCmd.Flags().StringVar(&flagDiffFile, "diff", "", "Diff file to review, or - for stdin (required)")
	reviewCmd.Flags().StringVar(&flagExtra, "context", "", "Additional context passed to the model")
	reviewCmd.Flags().StringVar(&flagFormat, "format", "markdown", "Output format (markdown, json)")
	reviewCmd.Flags().StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	reviewCmd.Flags().StringVar(&flagRulesDir, "rules-dir", ".", "Directory containing the md.rbot override file")
	reviewCmd.Flags().StringVar(&flagProvider, "provider", "", "LLM provider (openrouter, ollama)")
	reviewCmd.Flags().StringVar(&flagModel, "model", "", "Model name")
}

// reviewCmd runs the pipeline tail on a local diff, bypassing the webhook
// and GitLab fetch steps.
var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review a diff file from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagDiffFile == "" {
			exitCode = ExitUsageError
			return fmt.Errorf("--diff is required")
		}

		diff, err := readDiff(flagDiffFile)
		if err != nil {
			return err
		}

		cfg, err := config.Load(buildOverrides())
		if err != nil {
			return err
		}
		log := logging.New(cfg.LogLevel)

		completer, err := provider.New(cfg.Provider, cfg.Model)
		if err != nil {
			return fmt.Errorf("creating provider: %w", err)
		}

		pipeline := review.New(cfg, log, completer, nil)
		effective := rules.NewEngine(flagRulesDir).Effective()

		rev, err := pipeline.ReviewDiff(context.Background(), effective, diff, flagExtra)
		if err != nil {
			exitCode = ExitRuntimeError
			return err
		}

		return output.WriteReview(rev, flagFormat, flagOut)
	},
}

func readDiff(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading diff file: %w", err)
	}
	return string(data), nil
}
