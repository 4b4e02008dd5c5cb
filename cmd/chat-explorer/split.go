package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chat-explorer/internal/loader"
	"chat-explorer/internal/splitter"
)

var splitCmd = &cobra.Command{
	Use:   "split <export.json> [more.json...]",
	Short: "Split large exports into size-bounded chunks",
	Long: `Merge the given export files, sort conversations newest first, and
write them back out as conversations_NN.json chunks under a size limit,
plus a manifest.json describing the chunks.

Examples:
  # Split a big export into ~45MB chunks under ./data
  chat-explorer split conversations.json

  # Merge several exports with a custom limit
  chat-explorer split --out ./data --max-bytes 10000000 a.json b.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().String("out", "data", "output directory for chunks")
	splitCmd.Flags().Int("max-bytes", splitter.DefaultMaxChunkBytes, "maximum chunk size in bytes")
}

func runSplit(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	maxBytes, _ := cmd.Flags().GetInt("max-bytes")

	var all []loader.Conversation
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		convs, report, err := loader.ParseExport(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		all = append(all, convs...)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d conversations, %d messages (%d dropped)\n",
			path, report.Conversations, report.Messages, report.DroppedMessages)
	}

	chunks, err := splitter.Split(all, maxBytes)
	if err != nil {
		return err
	}
	manifest, err := splitter.WriteChunks(outDir, chunks)
	if err != nil {
		return err
	}

	for _, c := range manifest.Chunks {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %d conversations, %.1fMB\n",
			c.File, c.Count, float64(c.Bytes)/(1024*1024))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d chunks (%d conversations) to %s\n",
		len(manifest.Chunks), manifest.TotalConversations, outDir)
	return nil
}
