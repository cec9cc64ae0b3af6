package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/spf13/cobra"

	"github.com/phobologic/docjs/internal/config"
)

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the .docjs.yml config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			s, err := jsonschema.For[config.File](nil)
			if err != nil {
				return fmt.Errorf("generating schema: %w", err)
			}
			s.Title = "docjs configuration"

			out, err := json.MarshalIndent(s, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding schema: %w", err)
			}
			_, err = fmt.Fprintln(a.stdout, string(out))
			return err
		},
	}
}
