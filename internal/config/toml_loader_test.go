package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ludo-technologies/docsim/domain"
)

func writeDocsimToml(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, domain.ConfigFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestTomlConfigLoader_LoadsSections(t *testing.T) {
	tempDir := t.TempDir()
	writeDocsimToml(t, tempDir, `[lsh]
num_hashes = 64
num_bands = 8
workers = 2

[shingle]
size = 3

[input]
recursive = false
exclude_patterns = ["archive/**"]
skip_empty = true

[query]
threshold = 0.8
max_results = 10

[log]
level = "debug"
`)

	config, err := NewTomlConfigLoader().LoadConfig(tempDir)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.LSH.NumHashes != 64 || config.LSH.NumBands != 8 || config.LSH.Workers != 2 {
		t.Errorf("Unexpected lsh section: %+v", config.LSH)
	}
	if config.Shingle.Size != 3 {
		t.Errorf("Expected shingle size 3, got %d", config.Shingle.Size)
	}
	// Absent key keeps its default
	if config.Shingle.MinTokenLength != 1 {
		t.Errorf("Expected default min_token_length 1, got %d", config.Shingle.MinTokenLength)
	}
	if config.Input.Recursive {
		t.Error("Expected recursive = false to override the default")
	}
	if !config.Input.SkipEmpty {
		t.Error("Expected skip_empty = true")
	}
	if len(config.Input.IncludePatterns) != 2 {
		t.Errorf("Expected default include patterns, got %v", config.Input.IncludePatterns)
	}
	if config.Query.Threshold != 0.8 || config.Query.MaxResults != 10 {
		t.Errorf("Unexpected query section: %+v", config.Query)
	}
	if config.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", config.Log.Level)
	}
}

func TestTomlConfigLoader_WalksUp(t *testing.T) {
	root := t.TempDir()
	writeDocsimToml(t, root, "[query]\nthreshold = 0.25\n")

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("Failed to create dirs: %v", err)
	}

	loader := NewTomlConfigLoader()
	path, err := loader.FindConfigFile(nested)
	if err != nil {
		t.Fatalf("FindConfigFile failed: %v", err)
	}
	if filepath.Dir(path) != root {
		t.Errorf("Expected config in %s, found %s", root, path)
	}

	config, err := loader.LoadConfig(nested)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Query.Threshold != 0.25 {
		t.Errorf("Expected threshold 0.25, got %v", config.Query.Threshold)
	}
}

func TestTomlConfigLoader_StartFromFile(t *testing.T) {
	root := t.TempDir()
	writeDocsimToml(t, root, "[shingle]\nsize = 4\n")
	file := filepath.Join(root, "doc.txt")
	if err := os.WriteFile(file, []byte("text"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	config, err := NewTomlConfigLoader().LoadConfig(file)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.Shingle.Size != 4 {
		t.Errorf("Expected shingle size 4, got %d", config.Shingle.Size)
	}
}

func TestTomlConfigLoader_NoFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()

	if _, err := NewTomlConfigLoader().FindConfigFile(dir); err != nil && !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Unexpected error: %v", err)
	}

	config, err := NewTomlConfigLoader().LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if config.LSH.NumHashes != DefaultConfig().LSH.NumHashes {
		t.Errorf("Expected defaults when no config file exists")
	}
}

func TestTomlConfigLoader_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		expectError string
	}{
		{"unknown key", "[lsh]\nnum_hash = 64\n", "missing in the target struct"},
		{"syntax error", "[lsh\nnum_hashes = 64\n", "failed to parse"},
		{"invalid values", "[lsh]\nnum_hashes = 10\nnum_bands = 3\n", "invalid configuration"},
		{"wrong type", "[query]\nthreshold = \"high\"\n", "failed to parse"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			writeDocsimToml(t, dir, tc.content)

			_, err := NewTomlConfigLoader().LoadConfig(dir)
			if err == nil {
				t.Fatalf("Expected error containing %q", tc.expectError)
			}
			if !strings.Contains(err.Error(), tc.expectError) {
				t.Errorf("Expected error containing %q, got %v", tc.expectError, err)
			}
		})
	}
}
