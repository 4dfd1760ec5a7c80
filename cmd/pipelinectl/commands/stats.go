package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"livestream-pipeline/ddd/application/app"
	"livestream-pipeline/ddd/application/cqe"
	"livestream-pipeline/ddd/domain/stats"
)

func newStatsCmd() *cobra.Command {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Livestream statistics tools",
	}
	statsCmd.AddCommand(newStatsDiffCmd())
	return statsCmd
}

// newStatsDiffCmd 离线计算两个快照之间的计数增量，不连接数据库
func newStatsDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Print the counter increments between two user-livestream snapshots",
		Long: `Reads the old and new user-livestream snapshots as JSON files and prints the
increments that would be applied to the livestream and group rollups.
Omit --old for a creation, omit --new for a deletion.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			oldPath, _ := cmd.Flags().GetString("old")
			newPath, _ := cmd.Flags().GetString("new")
			livestreamID, _ := cmd.Flags().GetString("livestream-id")
			groupID, _ := cmd.Flags().GetString("group-id")
			format, _ := cmd.Flags().GetString("output")

			change := &cqe.UserLivestreamChangeCqe{LivestreamID: livestreamID, GroupID: groupID}
			var err error
			if change.Old, err = readSnapshot(oldPath); err != nil {
				return err
			}
			if change.New, err = readSnapshot(newPath); err != nil {
				return err
			}
			if err := change.Validate(); err != nil {
				return err
			}
			increments := app.NewStatsAppWith(nil).ComputeIncrements(change)
			return render(cmd.OutOrStdout(), format, increments)
		},
	}
	cmd.Flags().String("old", "", "JSON file with the previous snapshot")
	cmd.Flags().String("new", "", "JSON file with the current snapshot")
	cmd.Flags().String("livestream-id", "cli", "Livestream rollup id")
	cmd.Flags().String("group-id", "", "Group rollup id; empty skips the group rollup")
	cmd.Flags().StringP("output", "o", "json", "Output format: json, yaml")
	return cmd
}

func readSnapshot(path string) (*stats.UserLivestream, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s stats.UserLivestream
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &s, nil
}
