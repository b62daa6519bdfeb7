package cli

import (
	"fmt"

	"github.com/lherron/prefstore/internal/store"
	"github.com/spf13/cobra"
)

var putCmd = &cobra.Command{
	Use:   "put <scope> <name> <value>",
	Short: "Write a setting",
	Args:  cobra.ExactArgs(3),
	RunE:  runPut,
}

var putIfAbsent bool

func init() {
	rootCmd.AddCommand(putCmd)
	putCmd.Flags().BoolVar(&putIfAbsent, "if-absent", false, "Only write when the setting is not already set")
}

func runPut(cmd *cobra.Command, args []string) error {
	scope, err := store.ParseScope(args[0])
	if err != nil {
		return err
	}

	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	committed, err := app.Store.Put(scope, args[1], args[2], !putIfAbsent)
	if err != nil {
		return err
	}
	if !committed {
		fmt.Printf("%s/%s already set, ignored\n", scope, args[1])
		return nil
	}
	fmt.Printf("%s/%s = %s\n", scope, args[1], args[2])
	return nil
}
