package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"transcript-analyzer/internal/bootstrap"
	"transcript-analyzer/internal/shared/config"
	"transcript-analyzer/internal/shared/telemetry"
	"transcript-analyzer/internal/transcripts"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootOptions struct {
	provider string
	model    string
	backend  string
	jsonOut  bool
	noColor  bool
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "transcriptctl",
		Short:         "Summarize meeting transcripts and extract action items",
		Long:          "transcriptctl runs transcript analyses against the configured LLM provider\nand storage backend, using the same configuration as the API server.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRun: func(*cobra.Command, []string) {
			if opts.noColor {
				color.NoColor = true
			}
			if !opts.verbose {
				telemetry.SetLogger(zap.NewNop())
			}
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&opts.provider, "provider", "", "LLM provider: openai, anthropic, gemini or offline (overrides LLM_PROVIDER)")
	f.StringVar(&opts.model, "model", "", "LLM model (overrides LLM_MODEL)")
	f.StringVar(&opts.backend, "backend", "", "storage backend: memory, postgres, sqlite or object (overrides REPO_BACKEND)")
	f.BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	f.BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "write structured logs to stderr")

	cmd.AddCommand(newAnalyzeCmd(opts), newGetCmd(opts), newMigrateCmd(opts))
	return cmd
}

// loadConfig reads the shared configuration and applies flag overrides.
func (o *rootOptions) loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if o.provider != "" {
		cfg.LLMProvider = o.provider
	}
	if o.model != "" {
		cfg.LLMModel = o.model
	}
	if o.backend != "" {
		cfg.RepoBackend = o.backend
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// openRepo opens storage only; commands that never call the LLM use it.
func (o *rootOptions) openRepo(ctx context.Context) (transcripts.Repo, func() error, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	repo, sqlDB, err := bootstrap.BuildRepo(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return nil }
	if sqlDB != nil {
		closeFn = sqlDB.Close
	}
	return repo, closeFn, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
