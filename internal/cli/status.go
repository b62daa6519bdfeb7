package cli

import (
	"fmt"

	"github.com/lherron/prefstore/internal/migrate"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store path, schema version, and row counts",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	version, err := app.Store.DB().SchemaVersion()
	if err != nil {
		return err
	}

	fmt.Printf("Store:   %s\n", app.Store.DB().Path())
	fmt.Printf("User:    %d\n", app.Store.UserID())
	fmt.Printf("Version: %d (target %d)\n", version, migrate.TargetVersion)

	for _, scope := range app.Store.Scopes() {
		count := 0
		cur, err := app.Store.Rows(scope)
		if err != nil {
			return err
		}
		for {
			_, _, _, ok, err := cur.Next()
			if err != nil {
				cur.Close()
				return err
			}
			if !ok {
				break
			}
			count++
		}
		cur.Close()
		fmt.Printf("%-8s %d settings\n", scope+":", count)
	}
	return nil
}
