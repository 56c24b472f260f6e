// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/internal/research"
	"github.com/pdiddy/deep-research/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research <topic>",
	Short: "Run the full pipeline and print the report",
	Long: `Research generates search queries for the topic, searches the web for each,
writes one learning per query, optionally reviews the learnings for gaps
and searches again, then writes the final report.

A report is always produced. When a stage fails or the timeout expires the
canned fallback report is printed instead and the metadata records why.
Only invalid input or an unknown provider exits non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResearch,
}

func runResearch(cmd *cobra.Command, args []string) error {
	opts := optionsFrom(viper.GetViper(), loadedSecrets)
	req := research.QueryRequest{
		Topic:         strings.Join(args, " "),
		Options:       opts,
		MaxIterations: viper.GetInt("max_iterations"),
		Suggestion:    viper.GetString("suggestion"),
		Requirement:   viper.GetString("requirement"),
		Timeout:       viper.GetDuration("timeout"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := newEngine(opts, os.Stderr).Research(ctx, req)
	if err != nil {
		return err
	}

	if dir := viper.GetString("archive.dir"); dir != "" {
		if err := saveToArchive(ctx, dir, res); err != nil {
			logger.Warn("archiving report failed", zap.Error(err))
		}
	}

	format, _ := cmd.Flags().GetString("format")
	withLearnings, _ := cmd.Flags().GetBool("with-learnings")
	withMetadata, _ := cmd.Flags().GetBool("with-metadata")
	return writeOutput(cmd, func(w io.Writer) error {
		return renderResult(w, res, format, withLearnings, withMetadata)
	})
}

func saveToArchive(ctx context.Context, dir string, res *types.Result) error {
	store, err := archive.Open(types.ArchiveConfig{Dir: dir})
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Save(ctx, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Archived report %s in %s\n", id, store.Dir())
	return nil
}

func init() {
	f := researchCmd.Flags()
	f.Int("max-iterations", research.DefaultMaxIterations, "search passes; 1 skips the review stage")
	f.String("suggestion", "", "direction for the review stage")
	f.String("requirement", "", "writing requirement for the report")
	f.Duration("timeout", 0, "deadline for the whole run (0 = none)")
	f.String("archive-dir", "", "save the result in the report archive under this directory")
	addOutputFlags(researchCmd)
	f.Bool("with-learnings", false, "append the learnings to Markdown output")
	f.Bool("with-metadata", false, "append run metadata to Markdown output")

	bindLocal(researchCmd, "max_iterations", "max-iterations")
	bindLocal(researchCmd, "suggestion", "suggestion")
	bindLocal(researchCmd, "requirement", "requirement")
	bindLocal(researchCmd, "timeout", "timeout")
	bindLocal(researchCmd, "archive.dir", "archive-dir")

	rootCmd.AddCommand(researchCmd)
}
