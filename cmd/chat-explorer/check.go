package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chat-explorer/internal/loader"
)

var checkCmd = &cobra.Command{
	Use:   "check <export.json> [more.json...]",
	Short: "Validate export files and print a load report",
	Long: `Parse each export file the way the server would and report what
would be loaded, without serving anything. Exits non-zero when any file
has a malformed top-level structure.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	var failed int
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: unreadable: %v\n", path, err)
			failed++
			continue
		}
		_, report, err := loader.ParseExport(data)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok: %d conversations, %d messages, %d dropped\n",
			path, report.Conversations, report.Messages, report.DroppedMessages)
		for _, reason := range report.DropReasons {
			fmt.Fprintf(cmd.OutOrStdout(), "  dropped: %s\n", reason)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}
