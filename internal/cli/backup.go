package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/lherron/prefstore/internal/backup"
	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Produce an incremental backup payload",
	Long: `Extract the backup sections for the selected user and write the ones
whose checksum changed since the previous run. The per-section checksums are
kept in the state ledger; on the first run (no ledger yet) every non-empty
section is written.`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

var (
	backupStatePath string
	backupOutPath   string
)

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.Flags().StringVar(&backupStatePath, "state", "", "Checksum ledger file (read and rewritten)")
	backupCmd.Flags().StringVar(&backupOutPath, "out", "", "Payload output file")
	backupCmd.MarkFlagRequired("state")
	backupCmd.MarkFlagRequired("out")
}

func runBackup(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	// A missing ledger reads as all-zero checksums, which forces a full
	// first backup.
	oldState, err := os.ReadFile(backupStatePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read state ledger: %w", err)
	}

	var payload, newState bytes.Buffer
	agent := &backup.Agent{
		Store:  app.Store,
		Policy: app.Policy,
		Device: app.Device(),
		Log:    app.Log,
	}
	if err := agent.Backup(bytes.NewReader(oldState), &payload, &newState); err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}

	if err := os.WriteFile(backupOutPath, payload.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	// The ledger is replaced only after the payload landed.
	if err := os.WriteFile(backupStatePath, newState.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write state ledger: %w", err)
	}

	fmt.Printf("Wrote %d payload bytes to %s\n", payload.Len(), backupOutPath)
	return nil
}
