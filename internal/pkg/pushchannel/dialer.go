package pushchannel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/endorses/dashsync/internal/pkg/constants"
	"github.com/endorses/dashsync/internal/pkg/tlsutil"
	"github.com/endorses/dashsync/internal/pkg/version"
)

// Conn is the inbound half of a push connection. *websocket.Conn satisfies it.
type Conn interface {
	ReadMessage() (messageType int, data []byte, err error)
	Close() error
}

// Dialer opens push connections. Tests substitute a fake.
type Dialer interface {
	Dial(ctx context.Context) (Conn, error)
}

// WebsocketDialer dials the server's updates endpoint
type WebsocketDialer struct {
	url    string
	header http.Header
	dialer *websocket.Dialer
}

// NewWebsocketDialer creates a dialer for the ws:// or wss:// URL
func NewWebsocketDialer(rawURL string, tlsConfig tlsutil.ClientConfig) (*WebsocketDialer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid push URL %q: %w", rawURL, err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("push URL must be ws or wss, got %q", u.Scheme)
	}

	dialer := &websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: constants.DialTimeout,
	}
	if !tlsConfig.IsZero() {
		cfg, err := tlsutil.BuildClientConfig(tlsConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to build TLS config: %w", err)
		}
		dialer.TLSClientConfig = cfg
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	header.Set("X-Client-ID", uuid.NewString())

	return &WebsocketDialer{url: u.String(), header: header, dialer: dialer}, nil
}

// URL returns the endpoint the dialer connects to
func (d *WebsocketDialer) URL() string {
	return d.url
}

// Dial performs the websocket handshake
func (d *WebsocketDialer) Dial(ctx context.Context) (Conn, error) {
	conn, resp, err := d.dialer.DialContext(ctx, d.url, d.header)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: %w (HTTP %d)", d.url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial %s: %w", d.url, err)
	}
	return conn, nil
}

// PushURL derives the push endpoint from the server's http(s) base URL,
// keeping any path prefix
func PushURL(base *url.URL, path string) string {
	u := *base
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(path, "/")
	u.RawQuery = ""
	return u.String()
}
