package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/lherron/prefstore/internal/backup"
	"github.com/lherron/prefstore/internal/store"
	"github.com/lherron/prefstore/internal/wire"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <scope>",
	Short: "Diff a payload section against the live store",
	Long: `Decode one scope's section from a backup payload and show a unified
diff between the values it carries and the values currently in the store.
Useful for previewing what a restore would change.`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

var diffInPath string

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().StringVar(&diffInPath, "in", "", "Payload file to diff against")
	diffCmd.MarkFlagRequired("in")
}

func runDiff(cmd *cobra.Command, args []string) error {
	scope, err := store.ParseScope(args[0])
	if err != nil {
		return err
	}

	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close()

	f, err := os.Open(diffInPath)
	if err != nil {
		return fmt.Errorf("failed to open payload: %w", err)
	}
	defer f.Close()

	section, err := findSection(backup.NewPayloadReader(f), string(scope))
	if err != nil {
		return err
	}

	pairs, err := wire.Decode(section)
	if err != nil {
		return fmt.Errorf("failed to decode %s section: %w", scope, err)
	}

	var payloadLines, storeLines []string
	for _, p := range pairs {
		if !p.HasValue {
			payloadLines = append(payloadLines, p.Name+"=<absent>")
		} else {
			payloadLines = append(payloadLines, p.Name+"="+p.Value)
		}

		value, ok, err := app.Store.Get(scope, p.Name)
		if err != nil {
			return err
		}
		if !ok {
			storeLines = append(storeLines, p.Name+"=<absent>")
		} else {
			storeLines = append(storeLines, p.Name+"="+value)
		}
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(joinLines(storeLines)),
		B:        difflib.SplitLines(joinLines(payloadLines)),
		FromFile: fmt.Sprintf("store/%s", scope),
		ToFile:   fmt.Sprintf("payload/%s", scope),
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("failed to render diff: %w", err)
	}
	if diff == "" {
		fmt.Println("No differences")
		return nil
	}
	fmt.Print(diff)
	return nil
}

func findSection(pr *backup.PayloadReader, want string) ([]byte, error) {
	for {
		section, _, err := pr.NextHeader()
		if err == io.EOF {
			return nil, fmt.Errorf("payload has no %s section", want)
		}
		if err != nil {
			return nil, err
		}
		if section == want {
			return pr.ReadData()
		}
		if err := pr.SkipData(); err != nil {
			return nil, err
		}
	}
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
