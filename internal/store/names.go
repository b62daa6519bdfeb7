package store

// Well-known setting names referenced by the migration chain, the default
// seed, and the restore engine. The full set of names a deployment backs up
// lives in its policy file; only names the code itself touches are listed
// here.
const (
	KeyForceShowNavbar              = "force_show_navbar"
	KeyQSQuickPulldown              = "status_bar_quick_qs_pulldown"
	KeyBatteryLightLevel            = "battery_light_brightness_level"
	KeyBatteryLightLevelZen         = "battery_light_brightness_level_zen"
	KeyNotificationLightLevel       = "notification_light_brightness_level"
	KeyNotificationLightLevelZen    = "notification_light_brightness_level_zen"
	KeyNotificationPulseCustom      = "notification_light_pulse_custom_enable"
	KeyNotificationPulseCustomValue = "notification_light_pulse_custom_values"
	KeySwapVolumeKeysOnRotation     = "swap_volume_keys_on_rotation"
	KeyBatteryStyle                 = "status_bar_battery_style"
	KeyStatusBarClock               = "status_bar_clock"
	KeyLockscreenVisualizer         = "lockscreen_visualizer_enabled"
	KeyVolumePanelOnLeft            = "volume_panel_on_left"
	KeyPowerNotificationsVibrate    = "power_notifications_vibrate"
	KeyPowerNotificationsRingtone   = "power_notifications_ringtone"
	KeyPinScrambleLayout            = "lockscreen_pin_scramble_layout"
	KeyQSTilesToggleableOnLock      = "qs_tiles_toggleable_on_lock_screen"
	KeyRestrictedNetworkingMode     = "restricted_networking_mode"
	KeyDisplayDensityForced         = "display_density_forced"

	// KeyNavigationMode is deliberately special-cased during restore: even
	// when marked preserved it is still processed, landing on the shadow
	// name below instead of the live key. Do not extend this treatment to
	// other keys.
	KeyNavigationMode        = "navigation_mode"
	KeyNavigationModeRestore = "navigation_mode_restore"
)
