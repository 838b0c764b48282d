package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kolah/oaslice/internal/config"
	"github.com/kolah/oaslice/internal/golang"
	"github.com/kolah/oaslice/internal/loader"
	"github.com/kolah/oaslice/internal/model"
	"github.com/kolah/oaslice/internal/output"
	"github.com/kolah/oaslice/internal/slicer"
	embedtarget "github.com/kolah/oaslice/internal/targets/embed"
	"github.com/kolah/oaslice/internal/templates"
	"github.com/kolah/oaslice/internal/verify"
	"github.com/spf13/cobra"
)

// ErrStrict is returned when strict mode rejects an extracted subset.
var ErrStrict = errors.New("strict mode")

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

func loadSource(cmd *cobra.Command, cfg *config.Config) (*loader.Result, error) {
	result, err := loader.LoadFile(cfg.Source)
	if err != nil {
		if errors.Is(err, loader.ErrSourceNotFound) {
			return nil, fmt.Errorf("%w (run ./serve.sh first to download the spec)", err)
		}
		return nil, fmt.Errorf("loading source: %w", err)
	}

	for _, w := range result.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}
	return result, nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cmd)

	cmd.Println("Loading full spec...")
	result, err := loadSource(cmd, cfg)
	if err != nil {
		return err
	}
	cmd.Printf("  Total paths in source: %d\n", len(result.Document.Paths()))

	r := &runner{cmd: cmd, cfg: cfg, logger: logger}
	for _, subset := range cfg.Subsets {
		cmd.Printf("\nExtracting %s spec...\n", subset.Name)
		if err := r.extract(result.Document, subset); err != nil {
			return fmt.Errorf("subset %s: %w", subset.Name, err)
		}
	}

	cmd.Println("\nDone.")
	return nil
}

type runner struct {
	cmd    *cobra.Command
	cfg    *config.Config
	logger *slog.Logger
	engine templates.Engine
}

func (r *runner) extract(doc *model.Document, subset config.Subset) error {
	logger := r.logger.With("subset", subset.Name)

	res, err := slicer.Extract(doc, slicer.Options{
		Prefix:      subset.Prefix,
		Title:       subset.Title,
		Description: subset.Description,
		Version:     subset.Version,
		Metadata:    metadata(r.cfg.Metadata),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("extracting: %w", err)
	}

	if r.cfg.Strict && len(res.Dangling) > 0 {
		return fmt.Errorf("%w: undefined schemas referenced: %s", ErrStrict, strings.Join(res.Dangling, ", "))
	}

	path := r.cfg.OutputPath(subset.Output)
	format, err := r.formatFor(path)
	if err != nil {
		return err
	}

	data, err := output.Encode(res.Document, format)
	if err != nil {
		return err
	}

	if r.cfg.Verify {
		if err := r.verify(logger, data); err != nil {
			return err
		}
	}

	if err := output.WriteFile(path, data); err != nil {
		return err
	}
	r.cmd.Printf("  %d endpoints, %d schemas\n", res.Paths, res.Schemas)
	r.cmd.Printf("  Written: %s\n", path)

	if subset.Embed.Package != "" {
		if err := r.writeEmbed(subset, path, data); err != nil {
			return err
		}
	}

	return nil
}

func (r *runner) formatFor(path string) (output.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return output.FormatFromPath(path), nil
	}
	return output.ParseFormat(r.cfg.Format)
}

func (r *runner) verify(logger *slog.Logger, data []byte) error {
	report, err := verify.Document(data, logger)
	if err != nil {
		return fmt.Errorf("verifying: %w", err)
	}
	for _, issue := range report.Issues {
		logger.Warn("verification issue", "issue", issue)
	}
	if r.cfg.Strict && !report.Valid() {
		return fmt.Errorf("%w: %d verification issues", ErrStrict, len(report.Issues))
	}
	logger.Debug("verified", "version", report.Version, "paths", report.Paths, "schemas", report.Schemas)
	return nil
}

func (r *runner) writeEmbed(subset config.Subset, docPath string, data []byte) error {
	if r.engine == nil {
		engine, err := templates.NewEngine(templates.Builtin, r.cfg.Templates.Dir, golang.TemplateFuncs())
		if err != nil {
			return fmt.Errorf("creating template engine: %w", err)
		}
		r.engine = engine
	}

	src, err := embedtarget.New().Generate(r.engine, embedtarget.Input{
		Package:  subset.Embed.Package,
		Subset:   subset.Name,
		Title:    subset.Title,
		Source:   filepath.Base(docPath),
		SpecData: data,
	})
	if err != nil {
		return err
	}

	path := r.cfg.OutputPath(subset.Embed.Output)
	if err := output.WriteFile(path, src); err != nil {
		return err
	}
	r.cmd.Printf("  Written: %s\n", path)
	return nil
}

func metadata(m config.MetadataConfig) slicer.Metadata {
	return slicer.Metadata{
		OpenAPI: m.OpenAPI,
		Contact: slicer.Contact{
			Name: m.Contact.Name,
			URL:  m.Contact.URL,
		},
		Server: slicer.Server{
			URL:         m.Server.URL,
			Description: m.Server.Description,
		},
		Security: slicer.SecurityScheme{
			Name:         m.Security.SchemeName,
			BearerFormat: m.Security.BearerFormat,
			Description:  m.Security.Description,
		},
	}
}
