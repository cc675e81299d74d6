// Package tasks holds the background jobs run by the job manager.
package tasks

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"time"

	"github.com/gatlingbook/gatlingbook/pkg/job"
	"github.com/gatlingbook/gatlingbook/pkg/mailer"
	"github.com/gatlingbook/gatlingbook/pkg/session"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

// Task names.
const (
	ApplicationSubmitted = "application_submitted"
	SessionCleanup       = "session_cleanup"
)

// resumeLinkExpiry is how long the link to a resume in a notification works.
const resumeLinkExpiry = 7 * 24 * time.Hour

//go:embed templates
var templates embed.FS

// Templates returns the e-mail templates for mailer.NewRenderer.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

var (
	_ job.Task[ApplicationPayload] = (*ApplicationSubmittedTask)(nil)
	_ job.ScheduledTask            = (*SessionCleanupTask)(nil)
)

// ApplicationPayload describes a submitted application to its job poster.
type ApplicationPayload struct {
	JobTitle       string `json:"job_title"`
	PosterName     string `json:"poster_name"`
	PosterEmail    string `json:"poster_email"`
	Applicant      string `json:"applicant"`
	ApplicantEmail string `json:"applicant_email"`
	CoverLetter    string `json:"cover_letter"`
	ResumeKey      string `json:"resume_key,omitempty"`
	ApplicationID  int64  `json:"application_id"`
	JobID          int64  `json:"job_id"`
}

// ApplicationSubmittedTask e-mails the job poster about a new application.
type ApplicationSubmittedTask struct {
	mailer  *mailer.Mailer
	storage storage.Storage
	log     *slog.Logger
}

// NewApplicationSubmittedTask creates the task. store may be nil; the
// e-mail then goes out without a resume link.
func NewApplicationSubmittedTask(m *mailer.Mailer, store storage.Storage, log *slog.Logger) *ApplicationSubmittedTask {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &ApplicationSubmittedTask{mailer: m, storage: store, log: log}
}

func (t *ApplicationSubmittedTask) Name() string { return ApplicationSubmitted }

func (t *ApplicationSubmittedTask) Handle(ctx context.Context, p ApplicationPayload) error {
	data := struct {
		ApplicationPayload
		ResumeURL string
	}{ApplicationPayload: p}

	if p.ResumeKey != "" && t.storage != nil {
		url, err := t.storage.URL(ctx, p.ResumeKey, resumeLinkExpiry)
		if err != nil {
			return err
		}
		data.ResumeURL = url
	}

	if err := t.mailer.Send(ctx, mailer.Message{
		To:       p.PosterEmail,
		ReplyTo:  p.ApplicantEmail,
		Template: ApplicationSubmitted,
		Data:     data,
	}); err != nil {
		return err
	}

	t.log.InfoContext(ctx, "application notification sent",
		slog.Int64("application_id", p.ApplicationID),
		slog.Int64("job_id", p.JobID),
	)
	return nil
}

// SessionCleanupTask purges expired sessions every hour.
type SessionCleanupTask struct {
	store session.Store
	log   *slog.Logger
}

// NewSessionCleanupTask creates the task for store.
func NewSessionCleanupTask(store session.Store, log *slog.Logger) *SessionCleanupTask {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &SessionCleanupTask{store: store, log: log}
}

func (t *SessionCleanupTask) Name() string     { return SessionCleanup }
func (t *SessionCleanupTask) Schedule() string { return "0 * * * *" }

func (t *SessionCleanupTask) Handle(ctx context.Context) error {
	n, err := t.store.DeleteExpired(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		t.log.InfoContext(ctx, "expired sessions removed", slog.Int64("count", n))
	}
	return nil
}
