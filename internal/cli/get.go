package cli

import (
	"fmt"

	"github.com/lherron/prefstore/internal/store"
	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <scope> <name>",
	Short: "Read a setting",
	Args:  cobra.ExactArgs(2),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	scope, err := store.ParseScope(args[0])
	if err != nil {
		return err
	}

	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	value, ok, err := app.Store.Get(scope, args[1])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%s/%s is not set", scope, args[1])
	}
	fmt.Println(value)
	return nil
}
