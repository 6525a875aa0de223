// Package notify is the local alert gateway: a permission-gated,
// fire-and-forget dispatcher. The push implementation posts to an
// ntfy-compatible endpoint; when no endpoint is configured permission is
// simply never granted and every send is a silent no-op, which is exactly
// how a denied browser notification behaves.
package notify

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/financepro/financepro/internal/logger"
)

// Tag groups reminder notifications; re-notifying under the same tag
// replaces the previously visible notification.
const Tag = "financepro-reminder"

// IconURL is the fixed notification icon.
const IconURL = "https://storage.googleapis.com/financepro-public/logo_finance.png"

// Permission mirrors the browser notification permission states.
type Permission string

const (
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Gateway dispatches local notifications. Failures are never reported to
// callers; dispatch is best-effort.
type Gateway interface {
	// RequestPermission reports whether notifications may be dispatched.
	RequestPermission(ctx context.Context) bool

	// Send dispatches one notification. Fire-and-forget.
	Send(ctx context.Context, title, body string)

	// PermissionStatus returns the current permission state.
	PermissionStatus() Permission
}

// PushGateway posts notifications to an ntfy-compatible HTTP endpoint.
type PushGateway struct {
	endpoint string
	client   *http.Client
	log      zerolog.Logger
}

var _ Gateway = (*PushGateway)(nil)

// NewPush creates a gateway from FINANCEPRO_NTFY_URL (a full topic URL,
// e.g. https://ntfy.sh/financepro-lembretes). An empty value yields a
// gateway that never gains permission.
func NewPush(log zerolog.Logger) *PushGateway {
	return NewPushWithEndpoint(os.Getenv("FINANCEPRO_NTFY_URL"), log)
}

// NewPushWithEndpoint creates a gateway for an explicit endpoint.
func NewPushWithEndpoint(endpoint string, log zerolog.Logger) *PushGateway {
	return &PushGateway{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logger.Component(log, "notify"),
	}
}

func (g *PushGateway) RequestPermission(ctx context.Context) bool {
	return g.endpoint != ""
}

func (g *PushGateway) PermissionStatus() Permission {
	if g.endpoint == "" {
		return PermissionDenied
	}
	return PermissionGranted
}

// Send posts one notification. Any failure is swallowed; the reminder loop
// must never crash or stall because an alert could not be delivered.
func (g *PushGateway) Send(ctx context.Context, title, body string) {
	if g.endpoint == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(body))
	if err != nil {
		g.log.Debug().Err(err).Msg("Failed to build notification request")
		return
	}
	req.Header.Set("Title", title)
	req.Header.Set("Tags", Tag)
	req.Header.Set("Icon", IconURL)

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Debug().Err(err).Msg("Failed to dispatch notification")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		g.log.Debug().Int("status", resp.StatusCode).Msg("Notification endpoint rejected dispatch")
	}
}
