package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"livestream-pipeline/ddd/application/app"
	"livestream-pipeline/ddd/application/cqe"
	"livestream-pipeline/pkg/config"
)

func newTranscribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transcribe LIVESTREAM_ID",
		Short: "Transcribe one livestream recording, retrying with backoff",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withResources(cmd, func(*config.Config) error {
				req := &cqe.TriggerCqe{LivestreamID: args[0]}
				if err := app.DefaultPipelineApp().TriggerTranscription(cmd.Context(), req); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Transcription completed for %s\n", req.LivestreamID)
				return nil
			})
		},
	}
	return cmd
}

func newChapterizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapterize LIVESTREAM_ID",
		Short: "Generate chapters from a saved transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			return withResources(cmd, func(*config.Config) error {
				chapters, err := app.DefaultPipelineApp().TriggerChapterization(cmd.Context(), &cqe.TriggerCqe{LivestreamID: args[0]})
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, chapters)
			})
		},
	}
	cmd.Flags().StringP("output", "o", "json", "Output format: json, yaml")
	return cmd
}

func newBatchCmd() *cobra.Command {
	batch := &cobra.Command{
		Use:   "batch",
		Short: "Batch transcription operations",
	}
	batch.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run one batch of transcription candidates now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("output")
			return withResources(cmd, func(*config.Config) error {
				summary, err := app.DefaultBatchTranscriptionApp().RunBatch(cmd.Context())
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, summary)
			})
		},
	})
	batch.PersistentFlags().StringP("output", "o", "json", "Output format: json, yaml")
	return batch
}
