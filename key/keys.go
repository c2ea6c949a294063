// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// Decoder Process - these keys describe how the external decoder is launched and tuned.
const (
	PlayerBinary     = "player.binary"
	PlayerArgs       = "player.args"
	PlayerVolume     = "player.volume"
	PlayerSpeed      = "player.speed"
	PlayerBrightness = "player.brightness"
	PlayerContrast   = "player.contrast"
	PlayerHue        = "player.hue"
	PlayerSaturation = "player.saturation"
	PlayerGamma      = "player.gamma"
)

// Relay Supervision - these keys govern reconnects and the disconnect protocol against relay nodes.
const (
	RelayDisconnectOnStop  = "relay.disconnect_on_stop"
	RelayDisconnectDelay   = "relay.disconnect_delay"
	RelayReconnectAttempts = "relay.reconnect_attempts"
	RelayControlInterval   = "relay.control_interval"
	RelayRepollInterval    = "relay.repoll_interval"
	RelayRequestTimeout    = "relay.request_timeout"
	RelayStallErrors       = "relay.stall_errors"
)

// History Tracking - these keys configure what is remembered about previously opened channels.
const (
	HistorySaveOnPlay      = "history.save_on_play"
	HistoryRememberDialect = "history.remember_dialect"
)

// Screenshots
const (
	ScreenshotDir = "screenshot.dir"
)

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-TUI application behavior.
const (
	CliColored = "cli.colored"
)
