// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/archive"
	"github.com/pdiddy/deep-research/pkg/types"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Browse reports saved with research --archive-dir",
	Long: `Archive reads the SQLite report archive written by "research --archive-dir".
Reports are indexed with FTS5 over their topic and text.`,
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(ctx context.Context, s *archive.Store) error {
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := s.List(ctx, limit)
			if err != nil {
				return err
			}
			return printEntries(cmd, entries)
		})
	},
}

var archiveSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over archived topics and reports",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(ctx context.Context, s *archive.Store) error {
			limit, _ := cmd.Flags().GetInt("limit")
			entries, err := s.Search(ctx, strings.Join(args, " "), limit)
			if err != nil {
				return err
			}
			return printEntries(cmd, entries)
		})
	},
}

var archiveShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one archived report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(ctx context.Context, s *archive.Store) error {
			res, err := s.Get(ctx, args[0])
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			return writeOutput(cmd, func(w io.Writer) error {
				return renderResult(w, res, format, true, true)
			})
		})
	},
}

var archiveExportCmd = &cobra.Command{
	Use:   "export [query]",
	Short: "Export archived results as YAML or JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withArchive(cmd, func(ctx context.Context, s *archive.Store) error {
			format, _ := cmd.Flags().GetString("format")
			opts := archive.QueryOptions{Query: strings.Join(args, " ")}
			return writeOutput(cmd, func(w io.Writer) error {
				switch format {
				case formatYAML, "":
					return s.ExportYAML(ctx, w, opts)
				case formatJSON:
					return s.ExportJSON(ctx, w, opts)
				}
				return fmt.Errorf("unsupported format %q: use yaml or json", format)
			})
		})
	},
}

// archiveDir prefers --dir and falls back to the archive.dir config key.
func archiveDir(cmd *cobra.Command) string {
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		return dir
	}
	return viper.GetString("archive.dir")
}

func withArchive(cmd *cobra.Command, fn func(context.Context, *archive.Store) error) error {
	dir := archiveDir(cmd)
	if dir == "" {
		return &types.ValidationError{Field: "dir", Reason: "set --dir or archive.dir"}
	}
	s, err := archive.Open(types.ArchiveConfig{Dir: dir, MaxResults: viper.GetInt("archive.max_results")})
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(cmd.Context(), s)
}

func printEntries(cmd *cobra.Command, entries []archive.Entry) error {
	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return nil
	}

	fmt.Fprintf(w, "%-36s  %-20s  %-9s  %-7s  %s\n", "ID", "Finished", "Style", "Sources", "Topic")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, e := range entries {
		topic := e.Topic
		if len(topic) > 40 {
			topic = topic[:37] + "..."
		}
		if e.Fallback {
			topic += " (fallback)"
		}
		finished := "-"
		if !e.FinishedAt.IsZero() {
			finished = e.FinishedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%-36s  %-20s  %-9s  %-7d  %s\n", e.ID, finished, e.ReportStyle, e.Sources, topic)
	}
	fmt.Fprintf(w, "\n%d reports\n", len(entries))
	return nil
}

func init() {
	archiveCmd.PersistentFlags().String("dir", "", "archive directory (default: archive.dir from config)")
	archiveListCmd.Flags().Int("limit", 0, "maximum reports (0 = default)")
	archiveSearchCmd.Flags().Int("limit", 0, "maximum reports (0 = default)")
	addOutputFlags(archiveShowCmd)
	archiveExportCmd.Flags().String("format", formatYAML, "export format: yaml or json")
	archiveExportCmd.Flags().StringP("out", "o", "", "write the export to this file")

	archiveCmd.AddCommand(archiveListCmd, archiveSearchCmd, archiveShowCmd, archiveExportCmd)
	rootCmd.AddCommand(archiveCmd)
}
