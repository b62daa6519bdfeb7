package cli

import (
	"fmt"

	"github.com/lherron/prefstore/internal/migrate"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a settings store for the selected user",
	Long: `Create the scope tables for the selected user, seed default values,
and stamp the store with the current schema version. Creating an existing
store is a no-op for rows the user already changed: seeding is
insert-if-absent throughout.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

var initDefaultsPath string

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initDefaultsPath, "defaults", "", "YAML file of default-value resources")
}

func runInit(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := loadResources(initDefaultsPath)
	if err != nil {
		return err
	}

	if err := app.Store.Create(res, migrate.TargetVersion); err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	fmt.Printf("Initialized store for user %d at %s (version %d)\n",
		app.Store.UserID(), app.Store.DB().Path(), migrate.TargetVersion)
	return nil
}
