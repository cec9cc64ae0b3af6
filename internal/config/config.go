// Package config loads run settings from an optional .docjs.yml file and
// merges them with command line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/spf13/pflag"
)

// DefaultFiles are the file names searched for when no config path is
// given.
var DefaultFiles = []string{".docjs.yml", ".docjs.yaml"}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// File is the on-disk configuration.
type File struct {
	Format     string   `yaml:"format" json:"format,omitempty" validate:"omitempty,oneof=json md markdown html toon" jsonschema:"output format"`
	Output     string   `yaml:"output" json:"output,omitempty" jsonschema:"write output to this file instead of stdout"`
	Name       string   `yaml:"name" json:"name,omitempty" jsonschema:"project name used in titles"`
	Template   string   `yaml:"template" json:"template,omitempty" jsonschema:"Markdown template replacing the built-in one"`
	Shallow    bool     `yaml:"shallow" json:"shallow,omitempty" jsonschema:"document only the given files, not their dependencies"`
	Extensions []string `yaml:"extensions" json:"extensions,omitempty" validate:"dive,startswith=." jsonschema:"file extensions to document"`
	Access     []string `yaml:"access" json:"access,omitempty" validate:"dive,oneof=public private protected package" jsonschema:"access levels to include"`
	Sort       string   `yaml:"sort" json:"sort,omitempty" validate:"omitempty,oneof=source alpha" jsonschema:"entity order"`
	GitHub     bool     `yaml:"github" json:"github,omitempty" jsonschema:"link entities to their source on GitHub"`
	Readme     Readme   `yaml:"readme" json:"readme,omitempty"`
}

// Readme configures README injection.
type Readme struct {
	File    string `yaml:"file" json:"file,omitempty" jsonschema:"README file to update"`
	Section string `yaml:"section" json:"section,omitempty" jsonschema:"heading whose content is replaced"`
}

// Load reads and validates the config file at path. An empty path searches
// dir for one of [DefaultFiles]; finding none yields an empty File.
func Load(dir, path string) (*File, error) {
	if path == "" {
		for _, name := range DefaultFiles {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
		if path == "" {
			return &File{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes and validates config data. name is used in error messages.
func Parse(data []byte, name string) (*File, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if err := getValidator().Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return &f, nil
}

// Flags holds CLI flag names for run configuration.
type Flags struct {
	Config     string
	Format     string
	Output     string
	Name       string
	Template   string
	Shallow    string
	Extensions string
	Access     string
	Sort       string
	GitHub     string
}

// NewConfig creates a new [Config] using these flag names.
func (f Flags) NewConfig() *Config {
	return &Config{Flags: f}
}

// Config holds flag values, later merged with a [File].
type Config struct {
	File
	ConfigPath string
	Flags      Flags

	flags *pflag.FlagSet
}

// NewConfig returns a [Config] with the default flag names.
func NewConfig() *Config {
	return Flags{
		Config:     "config",
		Format:     "format",
		Output:     "output",
		Name:       "name",
		Template:   "template",
		Shallow:    "shallow",
		Extensions: "extension",
		Access:     "access",
		Sort:       "sort",
		GitHub:     "github",
	}.NewConfig()
}

// RegisterFlags adds run flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	c.flags = flags
	flags.StringVarP(&c.ConfigPath, c.Flags.Config, "c", "", "config file (default: .docjs.yml if present)")
	flags.StringVarP(&c.Format, c.Flags.Format, "f", "json", "output format: json, md, html or toon")
	flags.StringVarP(&c.Output, c.Flags.Output, "o", "", "write output to file instead of stdout")
	flags.StringVar(&c.Name, c.Flags.Name, "", "project name used in titles")
	flags.StringVar(&c.Template, c.Flags.Template, "", "Markdown template file")
	flags.BoolVar(&c.Shallow, c.Flags.Shallow, false, "document only the given files, not their dependencies")
	flags.StringSliceVar(&c.Extensions, c.Flags.Extensions, nil, "file extension to document (repeatable)")
	flags.StringSliceVarP(&c.Access, c.Flags.Access, "a", nil, "access levels to include (repeatable)")
	flags.StringVar(&c.Sort, c.Flags.Sort, "source", "entity order: source or alpha")
	flags.BoolVarP(&c.GitHub, c.Flags.GitHub, "g", false, "link entities to their source on GitHub")
}

// Resolve loads the config file from dir (or the --config path) and
// applies it underneath any flags set explicitly on the command line. The
// merged settings are validated.
func (c *Config) Resolve(dir string) error {
	file, err := Load(dir, c.ConfigPath)
	if err != nil {
		return err
	}

	set := func(name string) bool {
		return c.flags != nil && c.flags.Changed(name)
	}
	if !set(c.Flags.Format) && file.Format != "" {
		c.Format = file.Format
	}
	if !set(c.Flags.Output) && file.Output != "" {
		c.Output = file.Output
	}
	if !set(c.Flags.Name) && file.Name != "" {
		c.Name = file.Name
	}
	if !set(c.Flags.Template) && file.Template != "" {
		c.Template = resolveRelative(c.ConfigPath, dir, file.Template)
	}
	if !set(c.Flags.Shallow) && file.Shallow {
		c.Shallow = true
	}
	if !set(c.Flags.Extensions) && len(file.Extensions) > 0 {
		c.Extensions = file.Extensions
	}
	if !set(c.Flags.Access) && len(file.Access) > 0 {
		c.Access = file.Access
	}
	if !set(c.Flags.Sort) && file.Sort != "" {
		c.Sort = file.Sort
	}
	if !set(c.Flags.GitHub) && file.GitHub {
		c.GitHub = true
	}
	if c.Readme == (Readme{}) {
		c.Readme = file.Readme
	}

	if err := getValidator().Struct(&c.File); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// resolveRelative interprets a path from the config file relative to the
// file's directory.
func resolveRelative(configPath, dir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	base := dir
	if configPath != "" {
		base = filepath.Dir(configPath)
	}
	return filepath.Join(base, p)
}
