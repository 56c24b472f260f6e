// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Research builds the CLI and runs the full pipeline on $TOPIC. The report
// and metadata are written to runs/<timestamp>.md and archived in archive/.
func Research() error {
	mg.Deps(Build, Init)

	topic := strings.TrimSpace(os.Getenv("TOPIC"))
	if topic == "" {
		return fmt.Errorf("set TOPIC, e.g. TOPIC=\"history of cars\" mage research")
	}
	out := filepath.Join("runs", time.Now().Format("20060102-150405")+".md")
	err := sh.RunV(filepath.Join(binDir, binName), "research", topic,
		"--with-metadata",
		"--archive-dir", "archive",
		"--out", out,
	)
	if err != nil {
		return err
	}
	fmt.Println("Report written to", out)
	return nil
}

// Providers lists the LLM and search providers the CLI knows.
func Providers() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "providers")
}
