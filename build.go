package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/docjs/internal/config"
	"github.com/phobologic/docjs/internal/format"
	"github.com/phobologic/docjs/internal/pipeline"
	"github.com/phobologic/docjs/internal/watch"
)

func (a *app) buildCmd() *cobra.Command {
	cfg := config.NewConfig()
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "build [input...]",
		Short: "Generate documentation",
		Long: `Generate documentation for the given files, directories or globs and their
dependencies. With no input the "main" file of ./package.json is used, or
index.js. Use - to read a single source from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Resolve("."); err != nil {
				return err
			}
			formatter, err := format.ByName(cfg.Format)
			if err != nil {
				return err
			}

			if !watchMode {
				_, err := a.build(cmd.Context(), cfg, formatter, args)
				return err
			}
			return watch.Run(cmd.Context(), func(ctx context.Context) ([]string, error) {
				return a.build(ctx, cfg, formatter, args)
			}, watch.Options{Logger: a.logger})
		},
	}

	cfg.RegisterFlags(cmd.Flags())
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "rebuild when a source file changes")
	_ = cmd.RegisterFlagCompletionFunc(cfg.Flags.Format,
		cobra.FixedCompletions(format.Names(), cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// build documents args, writes the rendered output and returns the source
// files it read.
func (a *app) build(ctx context.Context, cfg *config.Config, formatter format.Formatter, args []string) ([]string, error) {
	res, err := a.document(ctx, cfg, args)
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		a.logger.Warn(d.Message, slog.String("file", d.File), slog.Int("line", d.Line))
	}

	root, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	out, err := formatter.Format(res.Entities, format.Options{
		Template: cfg.Template,
		Name:     projectName(".", cfg.Name),
		Root:     root,
		Files:    res.Files,
		Edges:    res.Edges,
	})
	if err != nil {
		return nil, fmt.Errorf("formatting: %w", err)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}

	if cfg.Output == "" || cfg.Output == "-" {
		if _, err := fmt.Fprint(a.stdout, out); err != nil {
			return nil, err
		}
	} else {
		if dir := filepath.Dir(cfg.Output); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating output directory: %w", err)
			}
		}
		if err := os.WriteFile(cfg.Output, []byte(out), 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", cfg.Output, err)
		}
		a.logger.Info("wrote documentation",
			slog.String("path", cfg.Output),
			slog.Int("entities", len(res.Entities)),
		)
	}

	return sourcePaths(res), nil
}

// sourcePaths lists the files of a run that exist on disk.
func sourcePaths(res *pipeline.Result) []string {
	var paths []string
	for _, f := range res.Files {
		if !f.Literal {
			paths = append(paths, f.Path)
		}
	}
	return paths
}
