// Package cmdutil provides shared utilities for CLI command implementations.
package cmdutil

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/dashboard"
	"github.com/endorses/dashsync/internal/pkg/tlsutil"
	"github.com/endorses/dashsync/internal/pkg/transport"
)

// Config keys
const (
	KeyServerURL        = "server.url"
	KeyServerPushPath   = "server.push_path"
	KeyServerTimeout    = "server.timeout"
	KeyTLSCA            = "tls.ca"
	KeyTLSCert          = "tls.cert"
	KeyTLSKey           = "tls.key"
	KeyTLSSkipVerify    = "tls.skip_verify"
	KeyTLSServerName    = "tls.server_name"
	KeyPushMinBackoff   = "push.min_backoff"
	KeyPushMaxBackoff   = "push.max_backoff"
	KeyUpcomingInterval = "tasks.upcoming_interval"
	KeyLookahead        = "tasks.lookahead"
	KeyLedger           = "notifications.ledger"
	KeyExportDir        = "export.dir"
	KeyLocale           = "ui.locale"
	KeySentryDSN        = "observability.sentry_dsn"
	KeyEnvironment      = "observability.environment"
	KeyLogLevel         = "log.level"
)

// SetDefaults registers the default value of every config key
func SetDefaults() {
	viper.SetDefault(KeyServerURL, "http://localhost:8000")
	viper.SetDefault(KeyServerPushPath, constants.DefaultPushPath)
	viper.SetDefault(KeyServerTimeout, constants.DefaultRequestTimeout)
	viper.SetDefault(KeyPushMinBackoff, constants.DefaultReconnectBackoff)
	viper.SetDefault(KeyPushMaxBackoff, constants.MaxReconnectBackoff)
	viper.SetDefault(KeyUpcomingInterval, constants.DefaultUpcomingInterval)
	viper.SetDefault(KeyLookahead, constants.DefaultReminderLookahead)
	viper.SetDefault(KeyExportDir, ".")
	viper.SetDefault(KeyLogLevel, "info")
}

// AddConnectionFlags adds the server and TLS flags to cmd and its children.
// Flags are bound to viper so a flag value beats the config file.
func AddConnectionFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP("server", "s", "", "Dashboard server URL (e.g. https://dash.example.com)")
	flags.Duration("timeout", 0, "Request timeout (default 30s)")
	flags.String("tls-ca", "", "Path to CA certificate file")
	flags.String("tls-cert", "", "Path to client certificate file (mTLS)")
	flags.String("tls-key", "", "Path to client key file (mTLS)")
	flags.Bool("tls-skip-verify", false, "Skip TLS certificate verification (INSECURE - testing only)")
	flags.String("locale", "", "Message language (en, ru)")

	_ = viper.BindPFlag(KeyServerURL, flags.Lookup("server"))
	_ = viper.BindPFlag(KeyServerTimeout, flags.Lookup("timeout"))
	_ = viper.BindPFlag(KeyTLSCA, flags.Lookup("tls-ca"))
	_ = viper.BindPFlag(KeyTLSCert, flags.Lookup("tls-cert"))
	_ = viper.BindPFlag(KeyTLSKey, flags.Lookup("tls-key"))
	_ = viper.BindPFlag(KeyTLSSkipVerify, flags.Lookup("tls-skip-verify"))
	_ = viper.BindPFlag(KeyLocale, flags.Lookup("locale"))
}

// GetStringConfig returns flagValue if set, otherwise the config value for key.
func GetStringConfig(key, flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return viper.GetString(key)
}

// GetDurationConfig returns the config value for key, or fallback when the
// key is unset or not positive.
func GetDurationConfig(key string, fallback time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return fallback
}

// GetClientConfig builds the transport configuration from flags and config
func GetClientConfig() transport.ClientConfig {
	return transport.ClientConfig{
		BaseURL: viper.GetString(KeyServerURL),
		Timeout: GetDurationConfig(KeyServerTimeout, constants.DefaultRequestTimeout),
		TLS: tlsutil.ClientConfig{
			CAFile:             viper.GetString(KeyTLSCA),
			CertFile:           viper.GetString(KeyTLSCert),
			KeyFile:            viper.GetString(KeyTLSKey),
			SkipVerify:         viper.GetBool(KeyTLSSkipVerify),
			ServerNameOverride: viper.GetString(KeyTLSServerName),
		},
	}
}

// GetDashboardConfig builds the full dashboard configuration
func GetDashboardConfig() dashboard.Config {
	return dashboard.Config{
		Server:           GetClientConfig(),
		PushPath:         GetStringConfig(KeyServerPushPath, ""),
		MinBackoff:       GetDurationConfig(KeyPushMinBackoff, constants.DefaultReconnectBackoff),
		MaxBackoff:       GetDurationConfig(KeyPushMaxBackoff, constants.MaxReconnectBackoff),
		UpcomingInterval: GetDurationConfig(KeyUpcomingInterval, constants.DefaultUpcomingInterval),
		Lookahead:        GetDurationConfig(KeyLookahead, constants.DefaultReminderLookahead),
		LedgerPath:       viper.GetString(KeyLedger),
		ExportDir:        viper.GetString(KeyExportDir),
		Locale:           viper.GetString(KeyLocale),
	}
}
