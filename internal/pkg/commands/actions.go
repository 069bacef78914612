package commands

import (
	"context"
	"strings"

	"github.com/endorses/dashsync/internal/pkg/i18n"
	"github.com/endorses/dashsync/internal/pkg/types"
)

// Credentials is the login form
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
	TOTP       string `json:"totp"`
	Captcha    string `json:"captcha"`
}

// NewUser is the add-user form
type NewUser struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Login submits credentials. After repeated rejections for the same
// username further attempts fail locally until the block expires.
func (h *Handlers) Login(ctx context.Context, c Credentials) error {
	c.Username = strings.TrimSpace(c.Username)
	if c.Username == "" {
		return h.required("username")
	}
	if c.Password == "" {
		return h.required("password")
	}
	if h.throttle.IsBlocked(c.Username) {
		return h.invalid("username", "too many failed logins", h.printer.Sprintf(i18n.MsgLoginThrottled, c.Username))
	}
	err := h.outcome(ctx, EndpointLogin, c, h.printer.Sprintf(i18n.MsgLoggedIn, c.Username))
	switch {
	case err == nil:
		h.throttle.RecordSuccess(c.Username)
	case types.IsDomainFailure(err):
		h.throttle.RecordFailure(c.Username)
	}
	return err
}

// StartAttack asks the server to start the attack
func (h *Handlers) StartAttack(ctx context.Context) error {
	return h.outcome(ctx, EndpointStartAttack, nil, h.printer.Sprintf(i18n.MsgAttackStarted))
}

// StopAttack asks the server to stop the attack
func (h *Handlers) StopAttack(ctx context.Context) error {
	return h.outcome(ctx, EndpointStopAttack, nil, h.printer.Sprintf(i18n.MsgAttackStopped))
}

// AddUser creates a dashboard user
func (h *Handlers) AddUser(ctx context.Context, u NewUser) error {
	u.Username = strings.TrimSpace(u.Username)
	u.Role = strings.TrimSpace(u.Role)
	switch {
	case u.Username == "":
		return h.required("username")
	case u.Password == "":
		return h.required("password")
	case u.Role == "":
		return h.required("role")
	}
	return h.outcome(ctx, EndpointAddUser, u, h.printer.Sprintf(i18n.MsgUserAdded, u.Username))
}

// DeleteUser removes a dashboard user
func (h *Handlers) DeleteUser(ctx context.Context, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return h.required("username")
	}
	body := struct {
		Username string `json:"username"`
	}{username}
	return h.outcome(ctx, EndpointDeleteUser, body, h.printer.Sprintf(i18n.MsgUserDeleted, username))
}
