package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kolah/oaslice/internal/golang"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

const DefaultConfigFile = "oaslice.yaml"

type Config struct {
	Source    string         `koanf:"source"`
	OutputDir string         `koanf:"output-dir"`
	Format    string         `koanf:"format"`
	Verify    bool           `koanf:"verify"`
	Strict    bool           `koanf:"strict"`
	Templates TemplateConfig `koanf:"templates"`
	Metadata  MetadataConfig `koanf:"metadata"`
	Subsets   []Subset       `koanf:"subsets"`
}

type TemplateConfig struct {
	Dir string `koanf:"dir"`
}

// MetadataConfig overrides the boilerplate written into every subset.
// Empty fields keep the built-in values.
type MetadataConfig struct {
	OpenAPI  string         `koanf:"openapi"`
	Contact  ContactConfig  `koanf:"contact"`
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
}

type ContactConfig struct {
	Name string `koanf:"name"`
	URL  string `koanf:"url"`
}

type ServerConfig struct {
	URL         string `koanf:"url"`
	Description string `koanf:"description"`
}

type SecurityConfig struct {
	SchemeName   string `koanf:"scheme-name"`
	BearerFormat string `koanf:"bearer-format"`
	Description  string `koanf:"description"`
}

// Subset is one document to extract from the source.
type Subset struct {
	Name        string      `koanf:"name"`
	Prefix      string      `koanf:"prefix"`
	Title       string      `koanf:"title"`
	Description string      `koanf:"description"`
	Version     string      `koanf:"version"`
	Output      string      `koanf:"output"`
	Embed       EmbedConfig `koanf:"embed"`
}

type EmbedConfig struct {
	Package string `koanf:"package"`
	Output  string `koanf:"output"`
}

func defaults() map[string]any {
	return map[string]any{
		"source":     "specs/openapi-source.yaml",
		"output-dir": "specs",
		"format":     "yaml",
		"subsets": []any{
			map[string]any{
				"name":   "v3beta",
				"prefix": "/v3beta/",
				"title":  "CloudBees Unify Public API (v3beta)",
				"description": "Public REST API for external CI/CD systems to report lifecycle events, " +
					"register artifacts, publish test and security scan results, and query " +
					"DORA metrics.\n\n" +
					"This API is in beta. Endpoints are stable but may evolve before GA.",
				"version": "v3beta",
				"output":  "openapi-v3beta.yaml",
			},
			map[string]any{
				"name":   "v3",
				"prefix": "/v3",
				"title":  "CloudBees Unify Platform API (v3)",
				"description": "CloudBees Platform v3 API covering deployments, artifacts, releases, " +
					"organizations, users, endpoints, feature flags, workflows, and the " +
					"v3beta public API for external CI/CD integration.",
				"version": "v3",
				"output":  "openapi-v3.yaml",
			},
		},
	}
}

// BindCommonFlags binds the flags shared by every command
func BindCommonFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()

	flags.StringP("config", "c", "", "Config file path (default: oaslice.yaml)")
	flags.StringP("source", "s", "", "Source OpenAPI document (default: specs/openapi-source.yaml)")
	flags.StringP("output-dir", "o", "", "Output directory (default: specs)")
	flags.StringP("format", "f", "", "Output format: yaml, json")
	flags.String("templates", "", "Custom templates directory")
	flags.Bool("verify", false, "Verify each extracted document with libopenapi before writing")
	flags.Bool("strict", false, "Fail on dangling references or verification issues")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
}

// Load merges built-in defaults, the config file and command-line flags, in
// that order. A non-nil subset replaces the configured subsets.
func Load(cmd *cobra.Command, subset *Subset) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	configFile, _ := cmd.Flags().GetString("config")
	if configFile == "" {
		configFile, _ = cmd.PersistentFlags().GetString("config")
	}
	if configFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configFile = DefaultConfigFile
		}
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	flagsMap := buildFlagsMap(cmd)
	if len(flagsMap) > 0 {
		if err := k.Load(confmap.Provider(flagsMap, "."), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// CLI subset overrides configured subsets
	if subset != nil {
		cfg.Subsets = []Subset{*subset}
	}

	cfg.Subsets = normalizeSubsets(cfg.Subsets)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func normalizeSubsets(subsets []Subset) []Subset {
	result := make([]Subset, 0, len(subsets))
	for _, s := range subsets {
		if s.Name == "" {
			s.Name = s.Version
		}
		if s.Output == "" && s.Version != "" {
			s.Output = "openapi-" + s.Version + ".yaml"
		}
		if s.Embed.Package != "" && s.Embed.Output == "" {
			s.Embed.Output = golang.SnakeCase(s.Name) + "_spec.go"
		}
		result = append(result, s)
	}
	return result
}

func buildFlagsMap(cmd *cobra.Command) map[string]any {
	m := make(map[string]any)

	getString := func(name string) string {
		if v, err := cmd.Flags().GetString(name); err == nil && v != "" {
			return v
		}
		if v, err := cmd.PersistentFlags().GetString(name); err == nil && v != "" {
			return v
		}
		return ""
	}

	flagChanged := func(name string) bool {
		return cmd.Flags().Changed(name) || cmd.PersistentFlags().Changed(name)
	}

	getBool := func(name string) bool {
		if v, err := cmd.Flags().GetBool(name); err == nil {
			return v
		}
		if v, err := cmd.PersistentFlags().GetBool(name); err == nil {
			return v
		}
		return false
	}

	if v := getString("source"); v != "" {
		m["source"] = v
	}
	if v := getString("output-dir"); v != "" {
		m["output-dir"] = v
	}
	if v := getString("format"); v != "" {
		m["format"] = v
	}
	if v := getString("templates"); v != "" {
		m["templates.dir"] = v
	}
	if flagChanged("verify") {
		m["verify"] = getBool("verify")
	}
	if flagChanged("strict") {
		m["strict"] = getBool("strict")
	}

	return m
}

func (c *Config) Validate() error {
	if c.Source == "" {
		return fmt.Errorf("source file is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}

	validFormats := map[string]bool{"": true, "yaml": true, "json": true}
	if !validFormats[c.Format] {
		return fmt.Errorf("invalid format: %s (valid: yaml, json)", c.Format)
	}

	if len(c.Subsets) == 0 {
		return fmt.Errorf("at least one subset is required")
	}

	names := make(map[string]bool)
	outputs := make(map[string]bool)
	for i, s := range c.Subsets {
		if s.Prefix == "" {
			return fmt.Errorf("subset %d: prefix is required", i)
		}
		if s.Title == "" {
			return fmt.Errorf("subset %s: title is required", s.Prefix)
		}
		if s.Version == "" {
			return fmt.Errorf("subset %s: version is required", s.Prefix)
		}
		if names[s.Name] {
			return fmt.Errorf("duplicate subset name: %s", s.Name)
		}
		names[s.Name] = true

		out := c.OutputPath(s.Output)
		if outputs[out] {
			return fmt.Errorf("duplicate output path: %s", out)
		}
		outputs[out] = true

		if s.Embed.Package != "" {
			if !golang.IsPackageName(s.Embed.Package) {
				return fmt.Errorf("subset %s: invalid embed package: %s", s.Name, s.Embed.Package)
			}
			embedOut := c.OutputPath(s.Embed.Output)
			if outputs[embedOut] {
				return fmt.Errorf("duplicate output path: %s", embedOut)
			}
			outputs[embedOut] = true
		}
	}

	return nil
}

// OutputPath resolves a subset output against the output directory.
func (c *Config) OutputPath(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(c.OutputDir, name)
}
