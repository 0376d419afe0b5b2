package main

import (
	"context"

	"github.com/spf13/cobra"

	"transcript-analyzer/internal/transcripts"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get ID",
		Short: "Show a stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			repo, closeRepo, err := opts.openRepo(ctx)
			if err != nil {
				return err
			}
			defer closeRepo()

			svc := transcripts.NewService(nil, repo, nil)
			analysis, err := svc.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printAnalyses(cmd.OutOrStdout(), opts.jsonOut, false, analysis)
		},
	}
}
