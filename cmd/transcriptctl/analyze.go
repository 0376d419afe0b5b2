package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"transcript-analyzer/internal/bootstrap"
	"transcript-analyzer/internal/extract"
)

const maxTranscriptChars = 100000

func newAnalyzeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Analyze one or more transcript files (use - for stdin)",
		Long: "Analyze reads each FILE (plain text, PDF or DOCX), sends it to the LLM and\n" +
			"stores the result. Several files are analyzed concurrently as one batch;\n" +
			"if any of them fails the command fails.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}
}

func runAnalyze(cmd *cobra.Command, opts *rootOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	texts := make([]string, 0, len(args))
	for _, arg := range args {
		text, err := readTranscript(ctx, cmd.InOrStdin(), arg)
		if err != nil {
			return err
		}
		texts = append(texts, text)
	}

	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	client, err := bootstrap.BuildLLMClient(ctx, cfg)
	if err != nil {
		return err
	}
	app, err := bootstrap.BuildCore(ctx, cfg, client)
	if err != nil {
		return err
	}
	defer app.Close()

	out := cmd.OutOrStdout()
	if len(texts) == 1 {
		analysis, err := app.Service.Analyze(ctx, texts[0])
		if err != nil {
			return err
		}
		return printAnalyses(out, opts.jsonOut, false, analysis)
	}
	results, err := app.Service.AnalyzeBatch(ctx, texts)
	if err != nil {
		return err
	}
	return printAnalyses(out, opts.jsonOut, true, results...)
}

// readTranscript loads a transcript from path, or from stdin when path is "-".
func readTranscript(ctx context.Context, stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
		name = filepath.Base(path)
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
		name = "stdin.txt"
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}

	text, err := extract.TextFromBytes(ctx, data, "", name)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: transcript must not be empty", path)
	}
	if utf8.RuneCountInString(text) > maxTranscriptChars {
		return "", fmt.Errorf("%s: transcript exceeds maximum length of 100,000 characters", path)
	}
	return text, nil
}
