package migrate

import (
	"database/sql"
	"strconv"

	"github.com/lherron/prefstore/internal/store"
	"go.uber.org/zap"
)

// chain is the ordered, append-only transition table. Each step is numbered
// by the version it advances to. Shipped bodies are frozen: old stores
// replay them, so a behavior change here would fork store contents.
func chain() []Step {
	return []Step{
		{To: 2, Run: stepReseedDefaults},
		{To: 3, Run: stepImportPinScrambleLayout},
		{To: 4, Run: stepImportQSTilesToggleable},
		{To: 5, PrimaryOnly: true, Run: stepRestrictedNetworking},
		{To: 6, Run: stepMoveVolumePanelToSecure},
		{To: 7, Run: stepNormalizeVisualizerBoolean},
		{To: 8, Run: stepSeedSwapVolumeKeys},
		{To: 9, Run: stepRetired},
	}
}

// v2Defaults is the default list as it stood when step 2 shipped. Frozen:
// the step replays on old stores, so the list must not track later
// additions to store.DefaultSettings.
var v2Defaults = []store.Default{
	{Scope: store.ScopeSystem, Name: store.KeyForceShowNavbar, Kind: store.DefaultInt, Resource: "def_force_show_navbar"},
	{Scope: store.ScopeSystem, Name: store.KeyQSQuickPulldown, Kind: store.DefaultInt, Resource: "def_qs_quick_pulldown"},
	{Scope: store.ScopeSystem, Name: store.KeyBatteryLightLevel, Kind: store.DefaultInt, Resource: "def_battery_brightness_level"},
	{Scope: store.ScopeSystem, Name: store.KeyBatteryLightLevelZen, Kind: store.DefaultInt, Resource: "def_battery_brightness_level_zen"},
	{Scope: store.ScopeSystem, Name: store.KeyNotificationLightLevel, Kind: store.DefaultInt, Resource: "def_notification_brightness_level"},
	{Scope: store.ScopeSystem, Name: store.KeyNotificationLightLevelZen, Kind: store.DefaultInt, Resource: "def_notification_brightness_level_zen"},
	{Scope: store.ScopeSystem, Name: store.KeyNotificationPulseCustom, Kind: store.DefaultBool, Resource: "def_notification_pulse_custom_enable"},
	{Scope: store.ScopeSystem, Name: store.KeySwapVolumeKeysOnRotation, Kind: store.DefaultBool, Resource: "def_swap_volume_keys_on_rotation"},
	{Scope: store.ScopeSystem, Name: store.KeyBatteryStyle, Kind: store.DefaultInt, Resource: "def_battery_style"},
	{Scope: store.ScopeSystem, Name: store.KeyStatusBarClock, Kind: store.DefaultInt, Resource: "def_clock_position"},
	{Scope: store.ScopeSystem, Name: store.KeyNotificationPulseCustomValue, Kind: store.DefaultString,
		Resource: "def_notification_pulse_custom_value", When: "def_notification_pulse_custom_enable"},
	{Scope: store.ScopeSecure, Name: store.KeyLockscreenVisualizer, Kind: store.DefaultBool, Resource: "def_lockscreen_visualizer"},
	{Scope: store.ScopeSecure, Name: store.KeyVolumePanelOnLeft, Kind: store.DefaultBool, Resource: "def_volume_panel_on_left"},
	{Scope: store.ScopeGlobal, Name: store.KeyPowerNotificationsVibrate, Kind: store.DefaultBool, Resource: "def_power_notifications_vibrate"},
	{Scope: store.ScopeGlobal, Name: store.KeyPowerNotificationsRingtone, Kind: store.DefaultString, Resource: "def_power_notifications_ringtone"},
}

// stepReseedDefaults re-applies the v2-era default seed. Insert-if-absent
// keeps user-changed values intact; rows added to the seed before this step
// shipped get their defaults here.
func stepReseedDefaults(env Env, tx *sql.Tx) error {
	return store.SeedList(tx, env.Res, env.Store.Primary(), v2Defaults)
}

// stepImportPinScrambleLayout moves the scramble-pin layout from the legacy
// host-global namespace into the system scope. A value that was never set
// there imports as the declared default.
func stepImportPinScrambleLayout(env Env, tx *sql.Tx) error {
	return importPlatformInt(env, tx, store.ScopeSystem, store.KeyPinScrambleLayout, 0, false)
}

// stepImportQSTilesToggleable moves the lockscreen QS toggle from the
// legacy host-global namespace into the secure scope. The legacy encoding
// had the opposite sense, so the value is flipped on the way in.
func stepImportQSTilesToggleable(env Env, tx *sql.Tx) error {
	return importPlatformInt(env, tx, store.ScopeSecure, store.KeyQSTilesToggleableOnLock, 0, true)
}

func importPlatformInt(env Env, tx *sql.Tx, scope store.Scope, name string, def int, flip bool) error {
	value := def
	if env.Platform != nil {
		v, ok, err := env.Platform.GlobalInt(name)
		if err != nil {
			return err
		}
		if ok {
			value = v
		}
	}
	if flip {
		if value == 1 {
			value = 0
		} else {
			value = 1
		}
	}
	_, err := tx.Exec(
		"INSERT OR IGNORE INTO "+string(scope)+" (name, value) VALUES (?, ?)",
		name, strconv.Itoa(value))
	return err
}

// stepRestrictedNetworking enables restricted networking mode and asks the
// connectivity service to recompute which uids stay allowed. The recompute
// crosses into another service and all users' package sets, so its failure
// is logged locally and never aborts the chain.
func stepRestrictedNetworking(env Env, tx *sql.Tx) error {
	_, err := tx.Exec(
		"INSERT OR REPLACE INTO global (name, value) VALUES (?, ?)",
		store.KeyRestrictedNetworkingMode, "1")
	if err != nil {
		return err
	}
	if env.Net != nil {
		if err := env.Net.RecomputeAllowedUIDs(); err != nil {
			env.Log.Warn("failed to recompute restricted-network allowlist", zap.Error(err))
		}
	}
	return nil
}

// stepMoveVolumePanelToSecure relocates volume_panel_on_left from the
// system scope, where early releases stored it, into secure. An existing
// secure row wins.
func stepMoveVolumePanelToSecure(env Env, tx *sql.Tx) error {
	name := store.KeyVolumePanelOnLeft
	_, err := tx.Exec(
		"INSERT OR IGNORE INTO secure (name, value) SELECT name, value FROM system WHERE name = ?",
		name)
	if err != nil {
		return err
	}
	_, err = tx.Exec("DELETE FROM system WHERE name = ?", name)
	return err
}

// stepNormalizeVisualizerBoolean rewrites the word-form boolean encoding
// some upgraded stores carried for the lockscreen visualizer into the
// canonical "1"/"0".
func stepNormalizeVisualizerBoolean(env Env, tx *sql.Tx) error {
	if _, err := tx.Exec(
		"UPDATE secure SET value = '1' WHERE name = ? AND value = 'true'",
		store.KeyLockscreenVisualizer); err != nil {
		return err
	}
	_, err := tx.Exec(
		"UPDATE secure SET value = '0' WHERE name = ? AND value = 'false'",
		store.KeyLockscreenVisualizer)
	return err
}

// stepSeedSwapVolumeKeys back-fills the rotation swap default for stores
// created before the setting existed. No resource declared means nothing
// to seed.
func stepSeedSwapVolumeKeys(env Env, tx *sql.Tx) error {
	enabled, err := env.Res.Bool("def_swap_volume_keys_on_rotation")
	if err != nil {
		return nil
	}
	value := "0"
	if enabled {
		value = "1"
	}
	_, err = tx.Exec(
		"INSERT OR IGNORE INTO system (name, value) VALUES (?, ?)",
		store.KeySwapVolumeKeysOnRotation, value)
	return err
}

// stepRetired is a former step whose side effect was withdrawn. It stays in
// the chain as a no-op so the version sequence is unbroken.
func stepRetired(env Env, tx *sql.Tx) error {
	return nil
}
