package cmdutil

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/endorses/dashsync/internal/pkg/types"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"validation", &types.ValidationError{Field: "username", Reason: "is required"}, ExitValidationError},
		{"domain", &types.DomainFailure{Message: "User already exists"}, ExitDomainFailure},
		{"no response", fmt.Errorf("%w: POST /api/login: refused", types.ErrNoResponse), ExitConnectionError},
		{"status", &types.TransportError{Endpoint: "/api/login", StatusCode: 502, Status: "Bad Gateway"}, ExitConnectionError},
		{"parse", &types.ParseError{Subject: "command response", Reason: "invalid json"}, ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFor(tt.err))
		})
	}
}

func TestConnectionFlagsBeatConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	viper.Set(KeyTLSCA, "/etc/dashsync/ca.crt")
	cmd := &cobra.Command{Use: "test"}
	AddConnectionFlags(cmd)
	require.NoError(t, cmd.PersistentFlags().Set("server", "https://dash.example.com"))
	require.NoError(t, cmd.PersistentFlags().Set("timeout", "5s"))

	cfg := GetClientConfig()
	assert.Equal(t, "https://dash.example.com", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "/etc/dashsync/ca.crt", cfg.TLS.CAFile)
}

func TestGetDashboardConfig_Defaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	SetDefaults()

	cfg := GetDashboardConfig()
	assert.Equal(t, "http://localhost:8000", cfg.Server.BaseURL)
	assert.Equal(t, "/ws/updates", cfg.PushPath)
	assert.Equal(t, time.Second, cfg.MinBackoff)
	assert.Equal(t, 30*time.Second, cfg.MaxBackoff)
	assert.Equal(t, time.Minute, cfg.UpcomingInterval)
	assert.Equal(t, 15*time.Minute, cfg.Lookahead)
	assert.Empty(t, cfg.LedgerPath)
}

func TestGetStringConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("export.dir", "/tmp/exports")

	assert.Equal(t, "/tmp/exports", GetStringConfig("export.dir", ""))
	assert.Equal(t, "out", GetStringConfig("export.dir", "out"))
}

func TestConsoleFeedback(t *testing.T) {
	var buf bytes.Buffer
	f := ConsoleFeedback{W: &buf}
	f.Success("User bob added")
	f.Failure("User already exists")
	assert.Equal(t, "User bob added\nerror: User already exists\n", buf.String())
}

func TestNewSink_WithoutDSN(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	sink, flush := NewSink()
	assert.NotNil(t, sink)
	flush()
}
