package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindEnvLocal_InCurrentDir(t *testing.T) {
	tmpDir := t.TempDir()
	envPath := filepath.Join(tmpDir, ".env.local")
	if err := os.WriteFile(envPath, []byte("TEST=value"), 0644); err != nil {
		t.Fatal(err)
	}

	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	if result := findEnvLocal(); result == "" {
		t.Error("expected to find .env.local in current directory")
	}
}

func TestFindEnvLocal_InParentDir(t *testing.T) {
	tmpDir := t.TempDir()
	childDir := filepath.Join(tmpDir, "child")
	if err := os.Mkdir(childDir, 0755); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(tmpDir, ".env.local")
	if err := os.WriteFile(envPath, []byte("TEST=parent"), 0644); err != nil {
		t.Fatal(err)
	}

	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(childDir); err != nil {
		t.Fatal(err)
	}

	result := findEnvLocal()
	if result == "" {
		t.Error("expected to find .env.local in parent directory")
	}
	// Resolve symlinks for comparison (macOS /var -> /private/var)
	expectedResolved, _ := filepath.EvalSymlinks(envPath)
	resultResolved, _ := filepath.EvalSymlinks(result)
	if resultResolved != expectedResolved {
		t.Errorf("expected %s, got %s", expectedResolved, resultResolved)
	}
}

func TestFindEnvLocal_ClosestWins(t *testing.T) {
	tmpDir := t.TempDir()
	parentDir := filepath.Join(tmpDir, "parent")
	childDir := filepath.Join(parentDir, "child")
	if err := os.MkdirAll(childDir, 0755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, ".env.local"), []byte("TEST=grandparent"), 0644); err != nil {
		t.Fatal(err)
	}
	parentEnvPath := filepath.Join(parentDir, ".env.local")
	if err := os.WriteFile(parentEnvPath, []byte("TEST=parent"), 0644); err != nil {
		t.Fatal(err)
	}

	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(childDir); err != nil {
		t.Fatal(err)
	}

	result := findEnvLocal()
	expectedResolved, _ := filepath.EvalSymlinks(parentEnvPath)
	resultResolved, _ := filepath.EvalSymlinks(result)
	if resultResolved != expectedResolved {
		t.Errorf("expected closest .env.local (%s), got %s", expectedResolved, resultResolved)
	}
}

func TestFindEnvLocal_NotFound(t *testing.T) {
	tmpDir := t.TempDir()

	oldCwd, _ := os.Getwd()
	defer os.Chdir(oldCwd)
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", tmpDir)

	if result := findEnvLocal(); result != "" {
		t.Errorf("expected empty string when no .env.local found, got %s", result)
	}
}

// isolate pins HOME and cwd inside a temp tree so Load never picks up the
// developer's real config.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	work := filepath.Join(home, "work")
	if err := os.Mkdir(work, 0755); err != nil {
		t.Fatal(err)
	}

	oldCwd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(oldCwd) })
	if err := os.Chdir(work); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HOME", home)

	for _, key := range []string{
		"PREFSTORE_DATA_DIR", "PREFSTORE_POLICY", "PREFSTORE_LOG_LEVEL",
		"PREFSTORE_USER", "PREFSTORE_MANUFACTURER", "PREFSTORE_PRODUCT",
	} {
		// t.Setenv registers the restore; Unsetenv actually clears it so
		// .env.local values are not masked by an empty entry.
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DataDir != filepath.Join(home, ".local", "share", "prefstore") {
		t.Errorf("unexpected default data dir %s", cfg.DataDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.UserID != 0 {
		t.Errorf("expected primary user by default, got %d", cfg.UserID)
	}
}

func TestLoadPrecedence(t *testing.T) {
	home := isolate(t)

	// YAML config is the lowest layer.
	configDir := filepath.Join(home, ".config", "prefstore")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	yamlBody := "data_dir: /from/yaml\nproduct: yaml-product\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(yamlBody), 0644); err != nil {
		t.Fatal(err)
	}

	// .env.local sits above it.
	envBody := "PREFSTORE_MANUFACTURER=acme\n"
	if err := os.WriteFile(filepath.Join(home, "work", ".env.local"), []byte(envBody), 0644); err != nil {
		t.Fatal(err)
	}

	// Real environment variables win.
	t.Setenv("PREFSTORE_DATA_DIR", "/from/env")
	t.Setenv("PREFSTORE_USER", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.DataDir != "/from/env" {
		t.Errorf("expected env to override yaml, got %s", cfg.DataDir)
	}
	if cfg.Product != "yaml-product" {
		t.Errorf("expected yaml product, got %s", cfg.Product)
	}
	if cfg.Manufacturer != "acme" {
		t.Errorf("expected .env.local manufacturer, got %s", cfg.Manufacturer)
	}
	if cfg.UserID != 3 {
		t.Errorf("expected user 3, got %d", cfg.UserID)
	}
}

func TestLoadRejectsBadUser(t *testing.T) {
	isolate(t)
	t.Setenv("PREFSTORE_USER", "primary")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid PREFSTORE_USER to be rejected")
	}
}
