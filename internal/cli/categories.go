package cli

import "github.com/spf13/cobra"

// NewCategoriesCmd creates the categories command.
func NewCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		Long:  "List the known categories with their search topics and colors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			registry, err := cfg.Registry()
			if err != nil {
				return err
			}
			return newPrinter(cmd.OutOrStdout(), registry, cfg.Settings.OutputFormat).printCategories()
		},
	}
}
