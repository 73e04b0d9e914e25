package main

import (
	"fmt"
	"path/filepath"
	"time"
)

// generateTimestampedFileName generates a filename with timestamp suffix
func generateTimestampedFileName(command, extension string) string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("docsim_%s_%s.%s", command, timestamp, extension)
}

// resolveReportPath decides where a report goes. An explicit path wins; a
// configured output directory receives a timestamped file; otherwise the
// report is written to stdout (empty path).
func resolveReportPath(explicit, outputDir, command, extension string) string {
	if explicit != "" {
		return explicit
	}
	if outputDir == "" {
		return ""
	}
	return filepath.Join(outputDir, generateTimestampedFileName(command, extension))
}

// getTargetPathsFromArgs returns the paths to index, defaulting to the current directory
func getTargetPathsFromArgs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return []string{"."}
}
