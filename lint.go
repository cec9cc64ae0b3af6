package main

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phobologic/docjs/internal/config"
	"github.com/phobologic/docjs/internal/graph"
	"github.com/phobologic/docjs/internal/pipeline"
)

// hideFlags hides flags that do not apply to cmd.
func hideFlags(cmd *cobra.Command, names ...string) {
	for _, name := range names {
		_ = cmd.Flags().MarkHidden(name)
	}
}

func (a *app) lintCmd() *cobra.Command {
	cfg := config.NewConfig()

	cmd := &cobra.Command{
		Use:   "lint [input...]",
		Short: "Check documentation comments for errors",
		Long: `Check the documentation comments of the given files and their dependencies.
Every malformed or unknown tag, every file that failed to parse cleanly or
could not be read, and every relative module reference that does not resolve
is reported as file:line: message. The command fails when anything is
reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Resolve("."); err != nil {
				return err
			}
			res, err := a.document(cmd.Context(), cfg, args)
			if err != nil {
				return err
			}

			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			problems := lintProblems(res, root)
			for _, p := range problems {
				fmt.Fprintln(a.stdout, p)
			}
			if len(problems) > 0 {
				return fmt.Errorf("%d problem(s) found", len(problems))
			}
			return nil
		},
	}

	cfg.RegisterFlags(cmd.Flags())
	hideFlags(cmd,
		cfg.Flags.Format,
		cfg.Flags.Output,
		cfg.Flags.Name,
		cfg.Flags.Template,
		cfg.Flags.Sort,
		cfg.Flags.GitHub,
	)
	return cmd
}

// lintProblems collects file diagnostics, unresolved references and tag
// errors, ordered by file and line. Paths under root are shown relative to
// it.
func lintProblems(res *pipeline.Result, root string) []pipeline.Diagnostic {
	problems := slices.Clone(res.Diagnostics)
	for _, e := range graph.Unresolved(res.Edges) {
		problems = append(problems, pipeline.Diagnostic{
			File:    e.From,
			Message: fmt.Sprintf("cannot resolve module %q", e.Specifier),
		})
	}
	for _, e := range res.Entities {
		for _, te := range e.Errors {
			problems = append(problems, pipeline.Diagnostic{
				File:    e.Context.File,
				Line:    te.Line,
				Message: te.Message,
			})
		}
	}

	for i := range problems {
		if rel, err := filepath.Rel(root, problems[i].File); err == nil && !strings.HasPrefix(rel, "..") {
			problems[i].File = filepath.ToSlash(rel)
		}
	}

	slices.SortStableFunc(problems, func(x, y pipeline.Diagnostic) int {
		return cmp.Or(strings.Compare(x.File, y.File), cmp.Compare(x.Line, y.Line))
	})
	return problems
}
