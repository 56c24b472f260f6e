// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deep-research/pkg/types"
)

// TaskFile is the on-disk form of a batch of search tasks and, once the
// batch has run, its results. Stages can be chained through task files
// without re-querying models or search APIs.
//
// The encoding is chosen by extension: .json writes JSON, anything else
// writes YAML.
type TaskFile struct {
	Topic   string               `json:"topic" yaml:"topic"`
	Tasks   []types.SearchTask   `json:"tasks" yaml:"tasks"`
	Results []types.SearchResult `json:"results,omitempty" yaml:"results,omitempty"`
	Summary TaskSummary          `json:"summary" yaml:"summary"`
}

// TaskSummary stores result statistics and a timestamp.
type TaskSummary struct {
	Tasks     int       `json:"tasks" yaml:"tasks"`
	Sources   int       `json:"sources" yaml:"sources"`
	Provider  string    `json:"provider,omitempty" yaml:"provider,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// NewTaskFile fills in the summary for topic, tasks, and results.
func NewTaskFile(topic string, tasks []types.SearchTask, results []types.SearchResult, provider string) TaskFile {
	return TaskFile{
		Topic:   topic,
		Tasks:   tasks,
		Results: results,
		Summary: TaskSummary{
			Tasks:     len(tasks),
			Sources:   len(types.SourcesOf(results)),
			Provider:  provider,
			Timestamp: time.Now().UTC(),
		},
	}
}

// Learnings returns the learnings recorded in the file, in task order.
func (f TaskFile) Learnings() types.Learnings {
	return types.LearningsOf(f.Results)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// WriteTaskFile saves tf to path.
func WriteTaskFile(path string, tf TaskFile) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(&tf, "", "  ")
	} else {
		data, err = yaml.Marshal(&tf)
	}
	if err != nil {
		return fmt.Errorf("marshaling task file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadTaskFile loads a task file from disk. A file holding a bare list of
// tasks is accepted too.
func ReadTaskFile(path string) (*TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading task file: %w", err)
	}
	unmarshal := yaml.Unmarshal
	if isJSON(path) {
		unmarshal = json.Unmarshal
	}

	var tf TaskFile
	if err := unmarshal(data, &tf); err == nil {
		return &tf, nil
	}
	var tasks []types.SearchTask
	if err := unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parsing task file %s: %w", path, err)
	}
	return &TaskFile{Tasks: tasks}, nil
}
