package tlsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildClientConfig_Defaults(t *testing.T) {
	cfg, err := BuildClientConfig(ClientConfig{})
	require.NoError(t, err)
	assert.False(t, cfg.InsecureSkipVerify)
	assert.Nil(t, cfg.RootCAs)
	assert.Empty(t, cfg.Certificates)
}

func TestBuildClientConfig_SkipVerify(t *testing.T) {
	cfg, err := BuildClientConfig(ClientConfig{SkipVerify: true, ServerNameOverride: "dash.local"})
	require.NoError(t, err)
	assert.True(t, cfg.InsecureSkipVerify)
	assert.Equal(t, "dash.local", cfg.ServerName)
}

func TestBuildClientConfig_SkipVerifyBlockedInProduction(t *testing.T) {
	t.Setenv("DASHSYNC_PRODUCTION", "true")

	_, err := BuildClientConfig(ClientConfig{SkipVerify: true})
	assert.Error(t, err)
}

func TestBuildClientConfig_BadCA(t *testing.T) {
	dir := t.TempDir()
	ca := filepath.Join(dir, "ca.pem")
	require.NoError(t, os.WriteFile(ca, []byte("not a certificate"), 0o600))

	_, err := BuildClientConfig(ClientConfig{CAFile: ca})
	assert.ErrorContains(t, err, "failed to parse CA certificate")

	_, err = BuildClientConfig(ClientConfig{CAFile: filepath.Join(dir, "missing.pem")})
	assert.ErrorContains(t, err, "failed to read CA certificate")
}

func TestBuildClientConfig_HalfKeyPair(t *testing.T) {
	_, err := BuildClientConfig(ClientConfig{CertFile: "client.pem"})
	assert.ErrorContains(t, err, "both cert_file and key_file")
}

func TestClientConfig_IsZero(t *testing.T) {
	assert.True(t, ClientConfig{}.IsZero())
	assert.False(t, ClientConfig{SkipVerify: true}.IsZero())
}
