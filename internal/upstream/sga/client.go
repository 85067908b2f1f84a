// Package sga is the client for the SGA student system, the primary upstream:
// it owns identity search, login, credential repair, career switching and the
// four academic resources.
package sga

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"unemigw/internal/httpx"
	"unemigw/internal/platform/metrics"
	"unemigw/internal/student/models"
)

const (
	studentOrigin = "https://sgaestudiante.unemi.edu.ec"

	pathRecover        = "/token/recoverypassword"
	pathLogin          = "/token/login"
	pathChangePassword = "/changepassword"
	pathChangeCareer   = "/token/change/career"
	pathHojaVida       = "/alumno/hoja_vida"
	pathMalla          = "/alumno/malla"
	pathHorario        = "/alumno/horario"
	pathMaterias       = "/alumno/materias"
)

// Client talks to the SGA JWT API. The origin/referer headers mirror the
// student portal; SGA rejects requests without them.
type Client struct {
	http    *httpx.Client
	baseURL string
	metrics *metrics.Metrics
}

func New(http *httpx.Client, baseURL string, m *metrics.Metrics) *Client {
	return &Client{http: http, baseURL: baseURL, metrics: m}
}

func headers(referer string) map[string]string {
	return map[string]string{
		"Origin":  studentOrigin,
		"Referer": referer,
	}
}

// Recover searches a person by document number through the password-recovery
// action. This is the public identity lookup, no auth required.
func (c *Client) Recover(ctx context.Context, documento string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.PostJSON(ctx, c.baseURL+pathRecover, map[string]any{
		"action":    "searchPerson",
		"documento": documento,
	}, httpx.Options{Headers: headers(studentOrigin + "/login")})
	c.metrics.ObserveUpstream("sga", "recover", start, err)
	return payload, err
}

// Login authenticates a student. The client metadata fields are required by
// the endpoint even though their values are not checked.
func (c *Client) Login(ctx context.Context, username, password string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.PostJSON(ctx, c.baseURL+pathLogin, map[string]any{
		"username":           username,
		"password":           password,
		"clientNavegador":    "Chrome 143",
		"clientOS":           "Linux -",
		"clientScreensize":   "1920 x 1200",
		"otp_verified_token": nil,
	}, httpx.Options{Headers: headers(studentOrigin + "/login")})
	c.metrics.ObserveUpstream("sga", "login", start, err)
	return payload, err
}

// ChangePassword submits a password change for the authenticated student.
func (c *Client) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.PostJSON(ctx, c.baseURL+pathChangePassword, map[string]any{
		"action":    "changePassword",
		"password1": oldPassword,
		"password2": newPassword,
		"password3": newPassword,
	}, httpx.Options{
		BearerToken: accessToken,
		Headers:     headers(studentOrigin + "/changepass"),
	})
	c.metrics.ObserveUpstream("sga", "change_password", start, err)
	return payload, err
}

// ChangeCareer switches the active career of the session and returns a fresh
// access/refresh pair.
func (c *Client) ChangeCareer(ctx context.Context, refreshToken, perfilID string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.PostJSON(ctx, c.baseURL+pathChangeCareer, map[string]any{
		"perfil_id": perfilID,
		"refresh":   refreshToken,
	}, httpx.Options{Headers: map[string]string{"Referer": studentOrigin + "/"}})
	c.metrics.ObserveUpstream("sga", "change_career", start, err)
	return payload, err
}

func (c *Client) hojaVida(ctx context.Context, accessToken string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.GetJSON(ctx, c.baseURL+pathHojaVida, httpx.Options{
		BearerToken: accessToken,
		Params:      map[string]string{"action": "loadDatosPersonales"},
		Headers:     headers(studentOrigin + "/th_hojavida"),
	})
	c.metrics.ObserveUpstream("sga", "hoja_vida", start, err)
	return payload, err
}

func (c *Client) malla(ctx context.Context, accessToken string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.GetJSON(ctx, c.baseURL+pathMalla, httpx.Options{
		BearerToken: accessToken,
		Headers:     headers(studentOrigin + "/alu_malla"),
	})
	c.metrics.ObserveUpstream("sga", "malla", start, err)
	return payload, err
}

func (c *Client) horario(ctx context.Context, accessToken string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.GetJSON(ctx, c.baseURL+pathHorario, httpx.Options{
		BearerToken: accessToken,
		Headers:     headers(studentOrigin + "/alu_horarios"),
	})
	c.metrics.ObserveUpstream("sga", "horario", start, err)
	return payload, err
}

func (c *Client) materias(ctx context.Context, accessToken string) (models.Payload, error) {
	start := time.Now()
	payload, err := c.http.GetJSON(ctx, c.baseURL+pathMaterias, httpx.Options{
		BearerToken: accessToken,
		Headers:     headers(studentOrigin + "/alu_materias"),
	})
	c.metrics.ObserveUpstream("sga", "materias", start, err)
	return payload, err
}

// AcademicData fetches the four academic resources concurrently. Unlike the
// document search, one failure fails the whole bundle: every payload feeds
// the merged record, so a partial bundle is useless.
func (c *Client) AcademicData(ctx context.Context, accessToken string) (models.AcademicData, error) {
	var data models.AcademicData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		data.HojaVida, err = c.hojaVida(gctx, accessToken)
		return err
	})
	g.Go(func() (err error) {
		data.Malla, err = c.malla(gctx, accessToken)
		return err
	})
	g.Go(func() (err error) {
		data.Horario, err = c.horario(gctx, accessToken)
		return err
	})
	g.Go(func() (err error) {
		data.Materias, err = c.materias(gctx, accessToken)
		return err
	})

	if err := g.Wait(); err != nil {
		return models.AcademicData{}, fmt.Errorf("fetch academic data: %w", err)
	}
	return data, nil
}
