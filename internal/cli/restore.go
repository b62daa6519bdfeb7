package cli

import (
	"fmt"
	"os"

	"github.com/lherron/prefstore/internal/backup"
	"github.com/lherron/prefstore/internal/restore"
	"github.com/spf13/cobra"
)

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Merge an incremental backup payload into the store",
	Long: `Decode a backup payload and merge each section against local policy:
allowlists, per-key validators, blocklists, preserved keys, and scope
redirection. A single key's rejection never stops the rest; an unreadable
payload aborts the whole restore.`,
	Args: cobra.NoArgs,
	RunE: runRestore,
}

var (
	restoreInPath      string
	restoreFromVersion int64
	restoreBlocked     []string
)

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringVar(&restoreInPath, "in", "", "Payload file to restore")
	restoreCmd.Flags().Int64Var(&restoreFromVersion, "from-version", 0, "Software version of the source device")
	restoreCmd.Flags().StringArrayVar(&restoreBlocked, "block", nil, "Qualified scope/name keys to block for this restore")
	restoreCmd.MarkFlagRequired("in")
}

func runRestore(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	f, err := os.Open(restoreInPath)
	if err != nil {
		return fmt.Errorf("failed to open payload: %w", err)
	}
	defer f.Close()

	blocklist := make(map[string]bool, len(restoreBlocked))
	for _, key := range restoreBlocked {
		blocklist[key] = true
	}

	engine := newRestoreEngine(app)
	opts := restore.Options{
		RestoredFromVersion: restoreFromVersion,
		DynamicBlocklist:    blocklist,
	}
	if err := engine.RestorePayload(backup.NewPayloadReader(f), opts); err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}

	fmt.Println("Restore complete")
	return nil
}

func newRestoreEngine(app *App) *restore.Engine {
	return &restore.Engine{
		Store:          app.Store,
		Policy:         app.Policy,
		Device:         app.Device(),
		CurrentVersion: currentSoftwareVersion,
		Log:            app.Log,
	}
}

// currentSoftwareVersion is the version this build reports when deciding
// whether a payload comes from a newer source.
const currentSoftwareVersion = 34
