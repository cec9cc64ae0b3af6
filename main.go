// docjs generates API documentation from JSDoc comments in JavaScript and
// TypeScript sources.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/phobologic/docjs/internal/config"
	"github.com/phobologic/docjs/internal/github"
	"github.com/phobologic/docjs/internal/log"
	"github.com/phobologic/docjs/internal/pipeline"
	"github.com/phobologic/docjs/internal/resolve"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root, err := newRootCmd(stdout, stderr)
	if err != nil {
		return err
	}
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// app holds what every subcommand shares.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	log    *log.Config
	logger *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, error) {
	a := &app{
		stdin:  os.Stdin,
		stdout: stdout,
		stderr: stderr,
		log:    log.NewConfig(),
		logger: slog.New(slog.DiscardHandler),
	}

	root := &cobra.Command{
		Use:   "docjs",
		Short: "Generate API documentation from JSDoc comments",
		Long: `docjs reads JSDoc-style documentation comments from JavaScript and
TypeScript sources, follows their require and import statements, and renders
the documented entities as JSON, Markdown, HTML or TOON.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := a.log.NewLogger(stderr)
			if err != nil {
				return err
			}
			a.logger = logger
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("docjs {{.Version}}\n")

	a.log.RegisterFlags(root.PersistentFlags())
	if err := a.log.RegisterCompletions(root); err != nil {
		return nil, err
	}

	root.AddCommand(
		a.buildCmd(),
		a.lintCmd(),
		a.readmeCmd(),
		a.schemaCmd(),
	)
	return root, nil
}

// document runs the pipeline over args with the settings in cfg. With no
// args the package entry point of the working directory is used. "-" reads
// a source from stdin.
func (a *app) document(ctx context.Context, cfg *config.Config, args []string) (*pipeline.Result, error) {
	if len(args) == 0 {
		entry, err := defaultEntry(".")
		if err != nil {
			return nil, err
		}
		args = []string{entry}
	}

	var inputs []resolve.Input
	for _, arg := range args {
		if arg != "-" {
			inputs = append(inputs, resolve.Path(arg))
			continue
		}
		source, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		inputs = append(inputs, resolve.Literal("stdin.js", string(source)))
	}

	opts := pipeline.Options{
		Resolve: resolve.Options{
			Shallow:    cfg.Shallow,
			Extensions: cfg.Extensions,
			Logger:     a.logger,
		},
		Access: cfg.Access,
		Sort:   pipeline.SortOrder(cfg.Sort),
		Logger: a.logger,
	}
	if cfg.GitHub {
		opts.Links = github.NewLinker(a.logger)
	}
	return pipeline.Run(ctx, inputs, opts)
}

type packageJSON struct {
	Name string `json:"name"`
	Main string `json:"main"`
}

func readPackage(dir string) (*packageJSON, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &packageJSON{}, nil
		}
		return nil, fmt.Errorf("reading package.json: %w", err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}
	return &pkg, nil
}

// defaultEntry returns the "main" file of dir's package.json, or index.js.
func defaultEntry(dir string) (string, error) {
	pkg, err := readPackage(dir)
	if err != nil {
		return "", err
	}
	if pkg.Main != "" {
		return filepath.Join(dir, pkg.Main), nil
	}
	return filepath.Join(dir, "index.js"), nil
}

// projectName returns name, or the package name of dir when name is empty.
func projectName(dir, name string) string {
	if name != "" {
		return name
	}
	pkg, err := readPackage(dir)
	if err != nil {
		return ""
	}
	return pkg.Name
}
