// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/deep-research/internal/research"
	"github.com/pdiddy/deep-research/internal/search"
	"github.com/pdiddy/deep-research/pkg/types"
)

// stageSession validates opts through validate and opens a session.
func stageSession(opts *research.Options, validate func() error) (*research.Session, error) {
	if err := validate(); err != nil {
		return nil, err
	}
	return newEngine(*opts, os.Stderr).NewSession(*opts)
}

func stageContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// --- questions ---

var questionsCmd = &cobra.Command{
	Use:   "questions <topic>",
	Short: "Ask the thinking model for clarifying questions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := research.TopicRequest{Topic: strings.Join(args, " "), Options: optionsFrom(viper.GetViper(), loadedSecrets)}
		s, err := stageSession(&req.Options, req.Validate)
		if err != nil {
			return err
		}
		ctx, stop := stageContext()
		defer stop()

		qs, err := s.Questions(ctx, req.Topic)
		if err != nil {
			return err
		}
		for _, q := range qs {
			fmt.Fprintf(cmd.OutOrStdout(), "- %s\n", q)
		}
		return nil
	},
}

// --- queries ---

var queriesCmd = &cobra.Command{
	Use:   "queries <topic>",
	Short: "Generate search tasks for a topic",
	Long: `Queries asks the thinking model for SERP queries with research goals and
writes them as a task file (YAML, or JSON for a .json --out path). Feed the
file to "search --tasks".`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := research.TopicRequest{Topic: strings.Join(args, " "), Options: optionsFrom(viper.GetViper(), loadedSecrets)}
		s, err := stageSession(&req.Options, req.Validate)
		if err != nil {
			return err
		}
		ctx, stop := stageContext()
		defer stop()

		tasks, err := s.Queries(ctx, req.Topic)
		if err != nil {
			return err
		}
		return emitTaskFile(cmd, search.NewTaskFile(req.Topic, tasks, nil, ""))
	},
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a task file through web search and write learnings",
	Long: `Search runs every task in --tasks against the configured search provider,
has the networking model write a learning per task, and writes the tasks
with their results. --csl also writes the collected sources as CSL-YAML.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := readTasksFlag(cmd, "tasks")
		if err != nil {
			return err
		}
		req := research.SearchRequest{Tasks: tf.Tasks, Options: optionsFrom(viper.GetViper(), loadedSecrets)}
		s, err := stageSession(&req.Options, req.Validate)
		if err != nil {
			return err
		}
		ctx, stop := stageContext()
		defer stop()

		results, err := s.Search(ctx, req.Tasks)
		if err != nil {
			return err
		}
		if cslPath, _ := cmd.Flags().GetString("csl"); cslPath != "" {
			if err := writeCSL(cslPath, types.SourcesOf(results)); err != nil {
				return err
			}
		}
		return emitTaskFile(cmd, search.NewTaskFile(tf.Topic, req.Tasks, results, req.Search.Provider))
	},
}

func writeCSL(path string, sources []types.Source) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := search.FormatCSL(sources, time.Now(), f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// --- review ---

var reviewCmd = &cobra.Command{
	Use:   "review <topic>",
	Short: "Ask whether the learnings in a task file need more searching",
	Long: `Review reads the learnings recorded in --learnings (a task file written by
search) and asks the thinking model for follow-up tasks. The new tasks are
written as a task file; an empty list means no further research.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := readTasksFlag(cmd, "learnings")
		if err != nil {
			return err
		}
		suggestion, _ := cmd.Flags().GetString("suggestion")
		req := research.ReviewRequest{
			Topic:      strings.Join(args, " "),
			Learnings:  tf.Learnings(),
			Suggestion: suggestion,
			Options:    optionsFrom(viper.GetViper(), loadedSecrets),
		}
		s, err := stageSession(&req.Options, req.Validate)
		if err != nil {
			return err
		}
		ctx, stop := stageContext()
		defer stop()

		tasks, err := s.Review(ctx, req.Topic, req.Learnings, req.Suggestion)
		if err != nil {
			return err
		}
		return emitTaskFile(cmd, search.NewTaskFile(req.Topic, tasks, nil, ""))
	},
}

// --- report ---

var reportCmd = &cobra.Command{
	Use:   "report <topic>",
	Short: "Write the final report from a task file's learnings and sources",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tf, err := readTasksFlag(cmd, "learnings")
		if err != nil {
			return err
		}
		requirement, _ := cmd.Flags().GetString("requirement")
		req := research.ReportRequest{
			Topic:       strings.Join(args, " "),
			Learnings:   tf.Learnings(),
			Sources:     types.SourcesOf(tf.Results),
			Requirement: requirement,
			Options:     optionsFrom(viper.GetViper(), loadedSecrets),
		}
		s, err := stageSession(&req.Options, req.Validate)
		if err != nil {
			return err
		}
		ctx, stop := stageContext()
		defer stop()

		report, err := s.Report(ctx, research.ReportInput{
			Topic:       req.Topic,
			Learnings:   req.Learnings,
			Sources:     req.Sources,
			Requirement: req.Requirement,
		})
		if err != nil {
			return err
		}
		return writeOutput(cmd, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, strings.TrimRight(report, "\n"))
			return err
		})
	},
}

// --- shared helpers ---

func readTasksFlag(cmd *cobra.Command, flag string) (*search.TaskFile, error) {
	path, _ := cmd.Flags().GetString(flag)
	if path == "" {
		return nil, &types.ValidationError{Field: flag, Reason: "a task file path is required"}
	}
	return search.ReadTaskFile(path)
}

// emitTaskFile writes tf to --out, or as YAML to stdout.
func emitTaskFile(cmd *cobra.Command, tf search.TaskFile) error {
	if path, _ := cmd.Flags().GetString("out"); path != "" {
		if err := search.WriteTaskFile(path, tf); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d tasks to %s\n", len(tf.Tasks), path)
		return nil
	}
	return encode(cmd.OutOrStdout(), formatYAML, tf)
}

func init() {
	queriesCmd.Flags().StringP("out", "o", "", "task file to write (.yaml or .json)")

	searchCmd.Flags().String("tasks", "", "task file to run")
	searchCmd.Flags().StringP("out", "o", "", "task file to write with results")
	searchCmd.Flags().String("csl", "", "also write sources as CSL-YAML to this path")

	reviewCmd.Flags().String("learnings", "", "task file with results from search")
	reviewCmd.Flags().String("suggestion", "", "direction for follow-up research")
	reviewCmd.Flags().StringP("out", "o", "", "task file to write")

	reportCmd.Flags().String("learnings", "", "task file with results from search")
	reportCmd.Flags().String("requirement", "", "writing requirement for the report")
	reportCmd.Flags().StringP("out", "o", "", "write the report to this file")

	rootCmd.AddCommand(questionsCmd, queriesCmd, searchCmd, reviewCmd, reportCmd)
}
