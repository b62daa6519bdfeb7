package cli

import (
	"fmt"

	"github.com/lherron/prefstore/internal/migrate"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Upgrade the store schema to the current version",
	Long: `Walk the store through the ordered chain of version transitions up to
the version this build declares. Steps already reflected in the persisted
version are never re-run; a failed step is logged and the chain continues.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

var migrateDefaultsPath string

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().StringVar(&migrateDefaultsPath, "defaults", "", "YAML file of default-value resources")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	before, err := app.Store.DB().SchemaVersion()
	if err != nil {
		return err
	}

	res, err := loadResources(migrateDefaultsPath)
	if err != nil {
		return err
	}

	engine := migrate.New(app.Log)
	env := migrate.Env{
		Store: app.Store,
		Res:   res,
		Log:   app.Log,
	}
	if err := engine.Upgrade(env, migrate.TargetVersion); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	after, err := app.Store.DB().SchemaVersion()
	if err != nil {
		return err
	}
	fmt.Printf("Migrated store for user %d: version %d -> %d\n", app.Store.UserID(), before, after)
	return nil
}
