package cli

import (
	"fmt"
	"os"

	"github.com/lherron/prefstore/internal/backup"
	"github.com/lherron/prefstore/internal/config"
	"github.com/lherron/prefstore/internal/db"
	"github.com/lherron/prefstore/internal/policy"
	"github.com/lherron/prefstore/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// App bundles everything a command needs: configuration, logger, the open
// store, and the active restore policy.
type App struct {
	Config *config.Config
	Log    *zap.Logger
	Store  *store.Store
	Policy *policy.Policy
}

// Device returns the local device identity from configuration.
func (a *App) Device() backup.Identity {
	return backup.Identity{
		Manufacturer: a.Config.Manufacturer,
		Product:      a.Config.Product,
	}
}

func loadApp(cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if cmd.Flags().Changed("user") {
		cfg.UserID, _ = cmd.Flags().GetInt("user")
	}
	if policyPath, _ := cmd.Flags().GetString("policy"); policyPath != "" {
		cfg.PolicyPath = policyPath
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var pol *policy.Policy
	if cfg.PolicyPath != "" {
		pol, err = policy.Load(cfg.PolicyPath)
	} else {
		pol, err = policy.Default()
	}
	if err != nil {
		return nil, err
	}

	database, err := db.Open(db.PathForUser(cfg.DataDir, cfg.UserID))
	if err != nil {
		return nil, err
	}

	return &App{
		Config: cfg,
		Log:    log,
		Store:  store.New(database, cfg.UserID),
		Policy: pol,
	}, nil
}

// Close releases the app's resources and flushes logs.
func (a *App) Close() {
	a.Store.DB().Close()
	_ = a.Log.Sync()
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

// loadResources reads a defaults file: top-level bools/ints/strings maps
// keyed by symbolic resource id. A missing path yields an empty provider,
// which simply seeds nothing.
func loadResources(path string) (store.Resources, error) {
	res := store.StaticResources{
		Bools:   map[string]bool{},
		Ints:    map[string]int{},
		Strings: map[string]string{},
	}
	if path == "" {
		return res, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read defaults file: %w", err)
	}
	var doc struct {
		Bools   map[string]bool   `yaml:"bools"`
		Ints    map[string]int    `yaml:"ints"`
		Strings map[string]string `yaml:"strings"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse defaults file: %w", err)
	}
	if doc.Bools != nil {
		res.Bools = doc.Bools
	}
	if doc.Ints != nil {
		res.Ints = doc.Ints
	}
	if doc.Strings != nil {
		res.Strings = doc.Strings
	}
	return res, nil
}
