package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestGenerateDefaultConfigTOML(t *testing.T) {
	content, err := GenerateDefaultConfigTOML()
	if err != nil {
		t.Fatalf("GenerateDefaultConfigTOML failed: %v", err)
	}

	for _, section := range []string{"[lsh]", "[shingle]", "[input]", "[query]", "[output]", "[log]"} {
		if !strings.Contains(content, section) {
			t.Errorf("Expected section %s in default config", section)
		}
	}

	// The rendered template decodes strictly into the defaults
	config := &Config{}
	dec := toml.NewDecoder(bytes.NewReader([]byte(content)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(config); err != nil {
		t.Fatalf("Default config does not parse: %v", err)
	}

	defaults := DefaultConfig()
	if config.LSH != defaults.LSH {
		t.Errorf("Expected lsh %+v, got %+v", defaults.LSH, config.LSH)
	}
	if config.Shingle != defaults.Shingle {
		t.Errorf("Expected shingle %+v, got %+v", defaults.Shingle, config.Shingle)
	}
	if config.Query != defaults.Query {
		t.Errorf("Expected query %+v, got %+v", defaults.Query, config.Query)
	}
	if strings.Join(config.Input.IncludePatterns, ",") != strings.Join(defaults.Input.IncludePatterns, ",") {
		t.Errorf("Expected include patterns %v, got %v", defaults.Input.IncludePatterns, config.Input.IncludePatterns)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}
