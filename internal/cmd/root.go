package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the sdkgen command line interface.
func NewRootCommand() *cobra.Command {
	var settings Settings

	root := &cobra.Command{
		Use:          "sdkgen",
		Short:        "Generate Go client bindings from schema files",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if settings.WorkingDir == "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				settings.WorkingDir = wd
			}

			return Run(settings)
		},
	}

	root.Flags().StringVarP(&settings.WorkingDir, "dir", "d", "",
		"project directory holding sdkgen.yaml (defaults to the working directory)")
	root.Flags().BoolVarP(&settings.Verbose, "verbose", "v", false, "enable debug logging")

	return root
}
