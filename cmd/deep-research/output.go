// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

const (
	formatMarkdown = "markdown"
	formatJSON     = "json"
	formatYAML     = "yaml"
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("format", formatMarkdown, "output format: markdown, json, or yaml")
	cmd.Flags().StringP("out", "o", "", "write output to this file instead of stdout")
}

// writeOutput runs fn against --out, or stdout when it is unset.
func writeOutput(cmd *cobra.Command, fn func(w io.Writer) error) error {
	path, _ := cmd.Flags().GetString("out")
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encode(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported format %q: use markdown, json, or yaml", format)
}

// renderResult writes res. Structured formats always carry the whole
// result; Markdown prints the report and, on request, the learnings and
// metadata after it.
func renderResult(w io.Writer, res *types.Result, format string, withLearnings, withMetadata bool) error {
	if format != formatMarkdown && format != "" {
		return encode(w, format, res)
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(res.Report, "\n"))
	b.WriteString("\n")
	if withLearnings && len(res.Learnings) > 0 {
		b.WriteString("\n## Learnings\n")
		for i, l := range res.Learnings {
			fmt.Fprintf(&b, "\n### Learning %d\n\n%s\n", i+1, strings.TrimSpace(l))
		}
	}
	if withMetadata {
		data, err := yaml.Marshal(res.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling metadata: %w", err)
		}
		b.WriteString("\n## Metadata\n\n```yaml\n")
		b.Write(data)
		b.WriteString("```\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}
