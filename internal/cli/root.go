package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prefstore",
	Short: "Versioned settings store with portable backup",
	Long: `prefstore persists versioned key-value settings across local users and
produces/consumes the portable backup encoding used to carry those settings
across upgrades and device migrations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (overrides PREFSTORE_DATA_DIR)")
	rootCmd.PersistentFlags().Int("user", 0, "Local user id (overrides PREFSTORE_USER)")
	rootCmd.PersistentFlags().String("policy", "", "Restore policy file (overrides PREFSTORE_POLICY)")
}
