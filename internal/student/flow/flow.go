// Package flow drives the authenticated half of a student resolution: login,
// profile discovery, career selection, the academic data fetch, and the two
// credential-repair sub-flows. Every path lands on a tagged Outcome so the
// service layer can enumerate terminal states instead of unwinding nested
// early returns.
package flow

import (
	"context"
	"log/slog"
	"strings"

	"unemigw/internal/audit"
	"unemigw/internal/student/assemble"
	"unemigw/internal/student/models"
	"unemigw/internal/student/token"
)

// Kind tags the terminal state of a flow run.
type Kind string

const (
	// KindPublicOnly: login (or credential repair) did not yield a usable
	// session; only search-derived fields are available.
	KindPublicOnly Kind = "public_only"
	// KindNoProfiles: the session token carries no academic profiles.
	KindNoProfiles Kind = "no_profiles"
	// KindFichaRequired: the student must complete the socioeconomic form
	// before academic data is released.
	KindFichaRequired Kind = "ficha_required"
	// KindChangePassword: a forced password change was performed; the caller
	// must re-request once the credential settles.
	KindChangePassword Kind = "change_password"
	// KindSuccess: authenticated fetch completed.
	KindSuccess Kind = "success"
)

const (
	msgFichaRequired     = "completar/actualizar ficha socioeconomica"
	msgChangePassword    = "cambiar contraseña"
	changeConfirmedReply = "Se ha cambiada correctamente la contraseña"
)

// Outcome is the flow result. Academic and Profiles are populated only for
// KindSuccess.
type Outcome struct {
	Kind            Kind
	Profiles        []token.Profile
	Academic        models.AcademicData
	Password        string // the credential that produced the session
	ResetApplied    bool   // session obtained through the reset sub-flow
	ChangeSucceeded bool   // forced change confirmed by SGA and re-login
}

// Input is everything the flow needs from the request and the search step.
type Input struct {
	Documento string
	Username  string
	Password  *string
	Reset     bool
	Search    models.SearchResult
}

// SGAClient is the slice of the SGA upstream the flow drives.
type SGAClient interface {
	Login(ctx context.Context, username, password string) (models.Payload, error)
	ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) (models.Payload, error)
	ChangeCareer(ctx context.Context, refreshToken, perfilID string) (models.Payload, error)
	AcademicData(ctx context.Context, accessToken string) (models.AcademicData, error)
}

// PasswordResetter is the matriculación reset endpoint.
type PasswordResetter interface {
	ResetPassword(ctx context.Context, tempToken, username, newPassword string) (models.Payload, error)
}

// Orchestrator runs the login state machine.
type Orchestrator struct {
	sga             SGAClient
	matricula       PasswordResetter
	defaultPassword string
	logger          *slog.Logger
	recorder        *audit.Recorder
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

func WithRecorder(recorder *audit.Recorder) Option {
	return func(o *Orchestrator) {
		o.recorder = recorder
	}
}

func New(sga SGAClient, matricula PasswordResetter, defaultPassword string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sga:             sga,
		matricula:       matricula,
		defaultPassword: defaultPassword,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes the state machine. An error return means an upstream the flow
// cannot degrade around (login transport, academic fetch) was unreachable;
// every business condition comes back as an Outcome instead.
func (o *Orchestrator) Run(ctx context.Context, in Input) (Outcome, error) {
	// Default convention: the password is the document number until changed.
	password := in.Documento
	if p := models.Stringify(derefStr(in.Password)); p != "" {
		password = p
	}

	login, err := o.sga.Login(ctx, in.Username, password)
	if err != nil {
		return Outcome{}, err
	}
	access := models.DigStr(login, "access")
	refresh := models.DigStr(login, "refresh")

	if access == "" {
		o.emit(in, audit.ActionLoginFailed, "invalid credentials")
		if in.Reset {
			return o.resetFlow(ctx, in)
		}
		return Outcome{Kind: KindPublicOnly}, nil
	}

	return o.resolveSession(ctx, in, access, refresh, password, false)
}

// resetFlow attempts the matriculación temp-token reset and retries login
// with the default password. The reset call itself is non-fatal; the retried
// login decides the outcome.
func (o *Orchestrator) resetFlow(ctx context.Context, in Input) (Outcome, error) {
	if temp := assemble.TempToken(in.Search); temp != "" {
		if _, err := o.matricula.ResetPassword(ctx, temp, in.Username, o.defaultPassword); err != nil {
			o.logger.Warn("matricula password reset failed", "documento", in.Documento, "error", err)
		} else {
			o.emit(in, audit.ActionPasswordReset, "temp token reset to default password")
		}
	}

	login, err := o.sga.Login(ctx, in.Username, o.defaultPassword)
	if err != nil {
		return Outcome{}, err
	}
	access := models.DigStr(login, "access")
	refresh := models.DigStr(login, "refresh")
	if access == "" {
		return Outcome{Kind: KindPublicOnly}, nil
	}

	return o.resolveSession(ctx, in, access, refresh, o.defaultPassword, true)
}

// resolveSession is states 3 through 7: decode, profile extraction, career
// selection, academic fetch and message inspection.
func (o *Orchestrator) resolveSession(ctx context.Context, in Input, access, refresh, password string, resetApplied bool) (Outcome, error) {
	payload, err := token.DecodePayload(access)
	if err != nil {
		o.logger.Warn("failed to decode access token", "documento", in.Documento, "error", err)
		return Outcome{Kind: KindPublicOnly, ResetApplied: resetApplied}, nil
	}

	profiles := token.ExtractProfiles(payload)
	if len(profiles) == 0 {
		return Outcome{Kind: KindNoProfiles, ResetApplied: resetApplied}, nil
	}

	// With several enrollments the first (highest-priority) profile becomes
	// the active career. Failure keeps the original session; not worth
	// aborting a working login over.
	if len(profiles) > 1 {
		career, err := o.sga.ChangeCareer(ctx, refresh, profiles[0].ID)
		if err != nil {
			o.logger.Warn("career switch failed", "documento", in.Documento, "perfil", profiles[0].ID, "error", err)
			o.emit(in, audit.ActionCareerSwitchFailed, profiles[0].ID)
		} else {
			if a := models.DigStr(career, "access"); a != "" {
				access = a
			}
			if r := models.DigStr(career, "refresh"); r != "" {
				refresh = r
			}
		}
	}

	academic, err := o.sga.AcademicData(ctx, access)
	if err != nil {
		return Outcome{}, err
	}

	if hasMessage(academic, msgFichaRequired) {
		return Outcome{Kind: KindFichaRequired, ResetApplied: resetApplied}, nil
	}
	if hasMessage(academic, msgChangePassword) {
		return o.forcedChange(ctx, in, access, password)
	}

	return Outcome{
		Kind:         KindSuccess,
		Profiles:     profiles,
		Academic:     academic,
		Password:     password,
		ResetApplied: resetApplied,
	}, nil
}

// forcedChange is the forced password-change sub-flow. Academic data is not
// re-fetched even when the change succeeds; the caller re-requests once the
// credential settles.
func (o *Orchestrator) forcedChange(ctx context.Context, in Input, access, oldPassword string) (Outcome, error) {
	change, err := o.sga.ChangePassword(ctx, access, oldPassword, o.defaultPassword)
	if err != nil {
		return Outcome{}, err
	}

	// Re-login with the default password regardless of what the change call
	// reported; SGA sometimes applies the change while replying vaguely.
	relogin, err := o.sga.Login(ctx, in.Username, o.defaultPassword)
	if err != nil {
		return Outcome{}, err
	}

	succeeded := models.DigStr(relogin, "access") != "" &&
		models.DigStr(change, "message") == changeConfirmedReply

	reason := "change not confirmed"
	if succeeded {
		reason = "changed to default password"
	}
	o.emit(in, audit.ActionPasswordChangeForced, reason)

	return Outcome{Kind: KindChangePassword, ChangeSucceeded: succeeded}, nil
}

// hasMessage reports whether any of the four academic payloads carries the
// needle in its message field, case-insensitively.
func hasMessage(academic models.AcademicData, needle string) bool {
	needle = strings.ToLower(needle)
	for _, payload := range []models.Payload{academic.Materias, academic.Horario, academic.Malla, academic.HojaVida} {
		msg, ok := models.Dig(payload, "message").(string)
		if ok && strings.Contains(strings.ToLower(msg), needle) {
			return true
		}
	}
	return false
}

func (o *Orchestrator) emit(in Input, action audit.Action, reason string) {
	if o.recorder == nil {
		return
	}
	o.recorder.Emit(audit.Event{
		Subject: in.Documento,
		Action:  action,
		Reason:  reason,
	})
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
