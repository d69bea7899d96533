// Package key defines the canonical set of configuration identifiers used by the viper registry.
package key

// Playback Controller - these keys tune the overlay timer, gestures and engine selection.
const (
	PlayerEngine                 = "player.engine"
	PlayerAutoplay               = "player.autoplay"
	PlayerHideControlsAfter      = "player.hide_controls_after_ms"
	PlayerDoubleTapWindow        = "player.double_tap_window_ms"
	PlayerSkipStep               = "player.skip_step_ms"
	PlayerSkipPulse              = "player.skip_pulse_ms"
	PlayerOuterTapTogglesOverlay = "player.outer_tap_toggles_overlay"
)

// Watch History - these keys configure the progress persistence loop and its storage backend.
const (
	HistoryEnabled         = "history.enabled"
	HistoryBackend         = "history.backend"
	HistoryPersistInterval = "history.persist_interval_ms"
)

// Streaming API - these keys locate the content resolution service.
const (
	APIBaseURL = "api.base_url"
	APITimeout = "api.timeout_seconds"
)

// Connectivity
const (
	NetworkProbeInterval = "network.probe_interval_seconds"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)

// Icons
const (
	IconsVariant = "icons.variant"
)

// Metrics
const (
	MetricsListen = "metrics.listen"
)
