package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reoring/typesitter"
	"github.com/reoring/typesitter/grammar"
	"github.com/reoring/typesitter/i18n"
	"github.com/reoring/typesitter/importer"
	"github.com/reoring/typesitter/internal/logutil"
	"github.com/reoring/typesitter/typegraph"
)

func runGenerate(cmd *cobra.Command, cfg generateConfig) error {
	if cfg.Input == "" {
		return errors.New("--input is required")
	}
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := logutil.NewLogger(cmd.ErrOrStderr(), level)
	i18n.SetLanguage(cfg.Lang)

	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	g, diag, err := importGraph(data, cfg, logger)
	if diag != nil {
		for _, w := range diag.Warnings() {
			logger.Warn(w, "input", cfg.Input)
		}
	}
	if err != nil {
		return err
	}

	opts, err := compileOptions(cfg, logger)
	if err != nil {
		return err
	}
	res, err := typesitter.Compile(g, opts)
	if err != nil {
		if iss, ok := typesitter.AsIssues(err); ok {
			for _, it := range iss {
				logger.Error(it.Message, "code", it.Code, "path", it.Path, "hint", it.Hint)
			}
		}
		return err
	}

	out := cfg.Output
	if out == "" {
		out = "grammar.js"
		if opts.Dialect == grammar.GBNF {
			out = "grammar.gbnf"
		}
	}
	if err := writeOutput(cmd, out, []byte(res.Grammar)); err != nil {
		return err
	}
	logger.Info("wrote grammar", "path", out, "rules", len(res.Rules), "root", g.RootName())

	if cfg.Schema != "" {
		doc, err := res.SchemaJSON()
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		if err := writeOutput(cmd, cfg.Schema, append(doc, '\n')); err != nil {
			return err
		}
		logger.Info("wrote schema", "path", cfg.Schema, "definitions", len(res.Definitions))
	}
	return nil
}

// importGraph picks the importer from --crd-kind and the input extension.
func importGraph(data []byte, cfg generateConfig, logger *slog.Logger) (*typegraph.Graph, importer.Diag, error) {
	opts := importer.Options{Root: cfg.Root, Logger: logger}
	switch {
	case cfg.CRDKind != "":
		return importer.ImportYAMLForCRDKind(data, cfg.CRDKind, opts)
	case isYAML(cfg.Input):
		return importer.ImportYAML(data, opts)
	}
	return importer.ImportJSON(data, opts)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func compileOptions(cfg generateConfig, logger *slog.Logger) (typesitter.Options, error) {
	dialect, err := grammar.DialectByName(cfg.Dialect)
	if err != nil {
		return typesitter.Options{}, err
	}
	opts := typesitter.Options{
		Name:    cfg.Name,
		Dialect: dialect,
		Logger:  logger,
	}
	if opts.Name == "" {
		base := filepath.Base(cfg.Input)
		opts.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if cfg.StrictRequired {
		opts.Required = typesitter.RequiredOrdered
	}
	if cfg.Template != "" {
		text, err := os.ReadFile(cfg.Template)
		if err != nil {
			return typesitter.Options{}, fmt.Errorf("failed to read template: %w", err)
		}
		tmpl, err := grammar.ParseTemplate(string(text))
		if err != nil {
			return typesitter.Options{}, fmt.Errorf("invalid template %s: %w", cfg.Template, err)
		}
		opts.Template = tmpl
	}
	return opts, nil
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
