package commands

import (
	"github.com/dyluth/mandelmovie/internal/printer"
	"github.com/dyluth/mandelmovie/internal/scaffold"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default mandelmovie.yml into the current directory",
		Long: `Write a commented mandelmovie.yml holding every setting at its default.

Use --force to overwrite an existing file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := scaffold.Initialize(".", force)
			if err != nil {
				return printer.Error("initialization failed", err.Error(), nil)
			}
			printer.Success("Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing mandelmovie.yml")
	return cmd
}
