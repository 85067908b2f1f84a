// Package matricula is the client for the Matriculación API: person search
// and the temp-token password reset used by the credential-repair flow.
package matricula

import (
	"context"
	"time"

	"unemigw/internal/httpx"
	"unemigw/internal/platform/metrics"
	"unemigw/internal/student/models"
)

const (
	portalOrigin = "https://matriculacion.unemi.edu.ec"

	pathSearch = "/reset_password/reset/otp/search_persona/"
	pathReset  = "/reset_password/reset/otp/reset_password/"
)

type Client struct {
	http    *httpx.Client
	baseURL string
	metrics *metrics.Metrics
}

func New(http *httpx.Client, baseURL string, m *metrics.Metrics) *Client {
	return &Client{http: http, baseURL: baseURL, metrics: m}
}

// Search looks a person up by document number. The response's aData block
// carries username, emails, full name and a temporary reset token.
func (c *Client) Search(ctx context.Context, documento string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.PostJSON(ctx, c.baseURL+pathSearch, map[string]any{
		"documento": documento,
	}, httpx.Options{
		Headers: map[string]string{"Referer": portalOrigin + "/auth/signIn/"},
	})
	c.metrics.ObserveUpstream("matricula", "search", start, err)
	return payload, err
}

// ResetPassword sets a new password using the temporary token from Search as
// bearer auth.
func (c *Client) ResetPassword(ctx context.Context, tempToken, username, newPassword string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.PostJSON(ctx, c.baseURL+pathReset, map[string]any{
		"username":  username,
		"password1": newPassword,
		"password2": newPassword,
	}, httpx.Options{
		BearerToken: tempToken,
		Headers:     map[string]string{"Referer": portalOrigin + "/recover_password/"},
	})
	c.metrics.ObserveUpstream("matricula", "reset_password", start, err)
	return payload, err
}
