package store

import (
	"database/sql"
	"fmt"
	"strconv"
)

// Resources yields typed default values by symbolic id. The concrete lookup
// (packaged resources, region-locked overlays) is a collaborator concern;
// the store only asks for a value by id.
type Resources interface {
	Bool(id string) (bool, error)
	Int(id string) (int, error)
	String(id string) (string, error)
}

// DefaultKind selects which typed lookup a default uses. Booleans are
// encoded as "1"/"0", integers in decimal.
type DefaultKind int

const (
	DefaultBool DefaultKind = iota
	DefaultInt
	DefaultString
	// DefaultLiteral seeds a fixed value with no resource lookup; the
	// Resource field holds the literal.
	DefaultLiteral
)

// Default declares one seeded setting. When is an optional boolean resource
// id gating whether the default is seeded at all.
type Default struct {
	Scope    Scope
	Name     string
	Kind     DefaultKind
	Resource string
	When     string
}

// DefaultSettings is the seed applied to a fresh store and re-applied by the
// reseed migration step. Seeding is insert-if-absent throughout, so values a
// user already changed are never clobbered.
var DefaultSettings = []Default{
	{Scope: ScopeSystem, Name: KeyForceShowNavbar, Kind: DefaultInt, Resource: "def_force_show_navbar"},
	{Scope: ScopeSystem, Name: KeyQSQuickPulldown, Kind: DefaultInt, Resource: "def_qs_quick_pulldown"},
	{Scope: ScopeSystem, Name: KeyBatteryLightLevel, Kind: DefaultInt, Resource: "def_battery_brightness_level"},
	{Scope: ScopeSystem, Name: KeyBatteryLightLevelZen, Kind: DefaultInt, Resource: "def_battery_brightness_level_zen"},
	{Scope: ScopeSystem, Name: KeyNotificationLightLevel, Kind: DefaultInt, Resource: "def_notification_brightness_level"},
	{Scope: ScopeSystem, Name: KeyNotificationLightLevelZen, Kind: DefaultInt, Resource: "def_notification_brightness_level_zen"},
	{Scope: ScopeSystem, Name: KeyNotificationPulseCustom, Kind: DefaultBool, Resource: "def_notification_pulse_custom_enable"},
	{Scope: ScopeSystem, Name: KeySwapVolumeKeysOnRotation, Kind: DefaultBool, Resource: "def_swap_volume_keys_on_rotation"},
	{Scope: ScopeSystem, Name: KeyBatteryStyle, Kind: DefaultInt, Resource: "def_battery_style"},
	{Scope: ScopeSystem, Name: KeyStatusBarClock, Kind: DefaultInt, Resource: "def_clock_position"},
	{Scope: ScopeSystem, Name: KeyNotificationPulseCustomValue, Kind: DefaultString,
		Resource: "def_notification_pulse_custom_value", When: "def_notification_pulse_custom_enable"},

	{Scope: ScopeSecure, Name: KeyLockscreenVisualizer, Kind: DefaultBool, Resource: "def_lockscreen_visualizer"},
	{Scope: ScopeSecure, Name: KeyVolumePanelOnLeft, Kind: DefaultBool, Resource: "def_volume_panel_on_left"},

	{Scope: ScopeGlobal, Name: KeyPowerNotificationsVibrate, Kind: DefaultBool, Resource: "def_power_notifications_vibrate"},
	{Scope: ScopeGlobal, Name: KeyPowerNotificationsRingtone, Kind: DefaultString, Resource: "def_power_notifications_ringtone"},

	// Literal baselines keep fresh stores aligned with what the upgrade
	// chain produces for stores that never had these keys set.
	{Scope: ScopeSystem, Name: KeyPinScrambleLayout, Kind: DefaultLiteral, Resource: "0"},
	{Scope: ScopeSecure, Name: KeyQSTilesToggleableOnLock, Kind: DefaultLiteral, Resource: "1"},
	{Scope: ScopeGlobal, Name: KeyRestrictedNetworkingMode, Kind: DefaultLiteral, Resource: "1"},
}

// SeedDefaults inserts the current default rows for each scope, skipping
// the global scope on non-primary stores.
func SeedDefaults(tx *sql.Tx, res Resources, primary bool) error {
	return SeedList(tx, res, primary, DefaultSettings)
}

// SeedList seeds an explicit default list. Migration steps pass the list
// that was current when they shipped; fresh creation passes
// DefaultSettings. A resource the provider does not know is a normal
// outcome and the default is simply not seeded.
func SeedList(tx *sql.Tx, res Resources, primary bool, list []Default) error {
	for _, d := range list {
		if d.Scope == ScopeGlobal && !primary {
			continue
		}
		if d.When != "" {
			enabled, err := res.Bool(d.When)
			if err != nil || !enabled {
				continue
			}
		}

		value, err := resolveDefault(res, d)
		if err != nil {
			// Absent resource: nothing to seed.
			continue
		}

		query := fmt.Sprintf("INSERT OR IGNORE INTO %s (name, value) VALUES (?, ?)", d.Scope)
		if _, err := tx.Exec(query, d.Name, value); err != nil {
			return fmt.Errorf("failed to seed %s/%s: %w", d.Scope, d.Name, err)
		}
	}
	return nil
}

func resolveDefault(res Resources, d Default) (string, error) {
	switch d.Kind {
	case DefaultBool:
		b, err := res.Bool(d.Resource)
		if err != nil {
			return "", err
		}
		if b {
			return "1", nil
		}
		return "0", nil
	case DefaultInt:
		n, err := res.Int(d.Resource)
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	case DefaultString:
		return res.String(d.Resource)
	case DefaultLiteral:
		return d.Resource, nil
	}
	return "", fmt.Errorf("unknown default kind %d for %s", d.Kind, d.Name)
}

// StaticResources is a map-backed resource provider, used by tests and by
// deployments that load their defaults from configuration.
type StaticResources struct {
	Bools   map[string]bool
	Ints    map[string]int
	Strings map[string]string
}

// ErrNoResource reports a resource id the provider does not carry.
var ErrNoResource = fmt.Errorf("no such resource")

// Bool implements Resources.
func (r StaticResources) Bool(id string) (bool, error) {
	v, ok := r.Bools[id]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNoResource, id)
	}
	return v, nil
}

// Int implements Resources.
func (r StaticResources) Int(id string) (int, error) {
	v, ok := r.Ints[id]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrNoResource, id)
	}
	return v, nil
}

// String implements Resources.
func (r StaticResources) String(id string) (string, error) {
	v, ok := r.Strings[id]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoResource, id)
	}
	return v, nil
}
