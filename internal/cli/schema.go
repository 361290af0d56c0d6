package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/whitehall-lang/ffibridge/application/schema"
)

// newSchemaCmd creates the schema command.
func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the manifest format",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := schema.ManifestSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
