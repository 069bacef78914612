// Package tlsutil builds the client TLS configuration shared by the HTTP
// transport and the websocket push channel.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/endorses/dashsync/internal/pkg/logger"
)

// ClientConfig contains configuration for building a client TLS config
type ClientConfig struct {
	CAFile             string // Path to CA certificate (for server verification)
	CertFile           string // Path to client certificate (for mutual TLS)
	KeyFile            string // Path to client private key (for mutual TLS)
	SkipVerify         bool   // Skip certificate verification (INSECURE - testing only)
	ServerNameOverride string // Override server name for verification
}

// IsZero reports whether no TLS option has been set, in which case callers
// should use the platform defaults
func (c ClientConfig) IsZero() bool {
	return c == ClientConfig{}
}

// BuildClientConfig creates a *tls.Config for dashboard connections.
// Supports optional mutual TLS with a client certificate.
func BuildClientConfig(config ClientConfig) (*tls.Config, error) {
	productionMode := os.Getenv("DASHSYNC_PRODUCTION") == "true"

	// #nosec G402 -- InsecureSkipVerify is user-configurable, documented as testing-only
	tlsConfig := &tls.Config{
		InsecureSkipVerify: config.SkipVerify,
		ServerName:         config.ServerNameOverride,
		MinVersion:         tls.VersionTLS12,
	}

	if config.SkipVerify {
		logger.Warn("TLS certificate verification disabled",
			"security_risk", "vulnerable to man-in-the-middle attacks",
			"recommendation", "only use in testing environments")

		if productionMode {
			return nil, fmt.Errorf("DASHSYNC_PRODUCTION=true blocks tls.skip_verify=true")
		}
	}

	if config.CAFile != "" {
		caCert, err := os.ReadFile(config.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		certPool := x509.NewCertPool()
		if !certPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate")
		}
		tlsConfig.RootCAs = certPool
		logger.Debug("Loaded CA certificate", "file", config.CAFile)
	}

	if config.CertFile != "" && config.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(config.CertFile, config.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	} else if config.CertFile != "" || config.KeyFile != "" {
		return nil, fmt.Errorf("both cert_file and key_file must be provided for mutual TLS")
	}

	return tlsConfig, nil
}
