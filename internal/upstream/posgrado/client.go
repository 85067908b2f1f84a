// Package posgrado is the client for the Selección Posgrado system. Its only
// operation is the form-encoded person search, which requires a site-issued
// CSRF token and session cookie pair supplied through configuration; both
// expire server-side and have to be rotated operationally.
package posgrado

import (
	"context"
	"net/url"
	"time"

	"unemigw/internal/httpx"
	"unemigw/internal/platform/config"
	"unemigw/internal/platform/metrics"
	"unemigw/internal/student/models"
)

const pathRecover = "/recoverypassword"

type Client struct {
	http    *httpx.Client
	cfg     config.PosgradoConfig
	metrics *metrics.Metrics
}

func New(http *httpx.Client, cfg config.PosgradoConfig, m *metrics.Metrics) *Client {
	return &Client{http: http, cfg: cfg, metrics: m}
}

// Recover searches a person by document number.
func (c *Client) Recover(ctx context.Context, documento string) (models.Payload, error) {
	start := time.Now()
	form := url.Values{}
	form.Set("action", "searchPOSGRADO")
	form.Set("documento", documento)

	payload, err := c.http.PostForm(ctx, c.cfg.BaseURL+pathRecover, form, httpx.Options{
		Headers: map[string]string{
			"Accept":           "application/json, text/javascript, */*; q=0.01",
			"X-CSRFToken":      c.cfg.CSRFToken,
			"X-Requested-With": "XMLHttpRequest",
			"Cookie":           c.cfg.Cookie,
			"Referer":          c.cfg.BaseURL + "/loginpostulacion",
		},
	})
	c.metrics.ObserveUpstream("posgrado", "recover", start, err)
	return payload, err
}
