package cli

import (
	"fmt"
	"os"

	"github.com/lherron/prefstore/internal/restore"
	"github.com/spf13/cobra"
)

var restoreFullCmd = &cobra.Command{
	Use:   "restore-full",
	Short: "Merge a legacy full-backup payload into the store",
	Long: `Decode the legacy full-backup layout (version header followed by the
system, secure, and optionally global blobs in fixed order) and merge it
through the same per-key policy as an incremental restore.`,
	Args: cobra.NoArgs,
	RunE: runRestoreFull,
}

var restoreFullInPath string

func init() {
	rootCmd.AddCommand(restoreFullCmd)
	restoreFullCmd.Flags().StringVar(&restoreFullInPath, "in", "", "Legacy payload file to restore")
	restoreFullCmd.MarkFlagRequired("in")
}

func runRestoreFull(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	f, err := os.Open(restoreFullInPath)
	if err != nil {
		return fmt.Errorf("failed to open payload: %w", err)
	}
	defer f.Close()

	engine := newRestoreEngine(app)
	if err := engine.RestoreFull(f, restore.Options{}); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println("Restore complete")
	return nil
}
