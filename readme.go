package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phobologic/docjs/internal/config"
	"github.com/phobologic/docjs/internal/format"
	"github.com/phobologic/docjs/internal/readme"
)

// errReadmeOutdated is returned by readme --diff-only when the file would
// change.
var errReadmeOutdated = errors.New("README is out of date")

func (a *app) readmeCmd() *cobra.Command {
	cfg := config.NewConfig()
	var (
		file     string
		section  string
		diffOnly bool
		quiet    bool
	)

	cmd := &cobra.Command{
		Use:   "readme [input...]",
		Short: "Inject documentation into a README section",
		Long: `Render the documentation as Markdown and replace the content under a heading
of a README file with it. The replaced content runs up to the next heading of
the same or a higher level. Headings of the generated documentation are
nested under the section.

With --diff-only nothing is written; the pending change is printed as a
unified diff and the command fails if there is one, which suits CI checks.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Resolve("."); err != nil {
				return err
			}
			if !cmd.Flags().Changed("readme-file") && cfg.Readme.File != "" {
				file = cfg.Readme.File
			}
			if !cmd.Flags().Changed("section") && cfg.Readme.Section != "" {
				section = cfg.Readme.Section
			}

			res, err := a.document(cmd.Context(), cfg, args)
			if err != nil {
				return err
			}
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting working directory: %w", err)
			}
			body, err := format.Markdown{}.Format(res.Entities, format.Options{
				Template: cfg.Template,
				Root:     root,
			})
			if err != nil {
				return fmt.Errorf("formatting: %w", err)
			}

			before, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("reading %s: %w", file, err)
			}
			after, err := readme.Inject(string(before), section, body)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}

			if diffOnly {
				return a.readmeDiff(file, string(before), after, quiet)
			}
			if after == string(before) {
				if !quiet {
					fmt.Fprintf(a.stdout, "%s is up to date\n", file)
				}
				return nil
			}
			if err := os.WriteFile(file, []byte(after), 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", file, err)
			}
			if !quiet {
				fmt.Fprintf(a.stdout, "updated %s\n", file)
			}
			return nil
		},
	}

	cfg.RegisterFlags(cmd.Flags())
	hideFlags(cmd,
		cfg.Flags.Format,
		cfg.Flags.Output,
	)
	cmd.Flags().StringVar(&file, "readme-file", "README.md", "README file to update")
	cmd.Flags().StringVarP(&section, "section", "s", "API", "heading whose content is replaced")
	cmd.Flags().BoolVarP(&diffOnly, "diff-only", "d", false, "print the pending change and fail if there is one")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "print nothing unless there is a change")

	return cmd
}

func (a *app) readmeDiff(file, before, after string, quiet bool) error {
	fd, err := readme.Diff(file, before, after)
	if err != nil {
		return err
	}
	if fd == nil {
		if !quiet {
			fmt.Fprintf(a.stdout, "%s is up to date\n", file)
		}
		return nil
	}
	title := fmt.Sprintf("%s needs the following updates:", file)
	if err := readme.Print(a.stdout, title, fd, isTerminal(a.stdout)); err != nil {
		return err
	}
	return fmt.Errorf("%s: %w", file, errReadmeOutdated)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
