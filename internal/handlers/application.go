package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gatlingbook/gatlingbook/internal"
	"github.com/gatlingbook/gatlingbook/internal/application"
	"github.com/gatlingbook/gatlingbook/internal/auth"
	"github.com/gatlingbook/gatlingbook/internal/tasks"
	"github.com/gatlingbook/gatlingbook/internal/views"
	"github.com/gatlingbook/gatlingbook/pkg/job"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

const submittedMessage = "Your application was submitted"

type applicationForm struct {
	CoverLetter string `form:"cover_letter"`
	JobID       int64  `form:"job"`
}

func (h *Handlers) applicationForm(c internal.Context) (internal.Outcome, error) {
	current, err := auth.GetAuthenticatedUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}

	data := map[string]any{"user": current}
	posting, err := h.applications.Job(c, internal.QueryDefault[int64](c, "job", 0))
	switch {
	case err == nil:
		data["job"] = posting
	case errors.Is(err, application.ErrJobNotFound):
		data["error"] = application.FormMessage(err)
	default:
		return internal.Outcome{}, err
	}
	return internal.View(views.Application, data), nil
}

func (h *Handlers) apply(c internal.Context) (internal.Outcome, error) {
	current, err := auth.GetAuthenticatedUser(c)
	if err != nil {
		return internal.Outcome{}, err
	}
	if current == nil {
		return internal.Redirect("/application"), nil
	}

	var in applicationForm
	if err := c.Bind(&in); err != nil {
		return internal.Outcome{}, err
	}

	sub := application.Submission{Applicant: current, CoverLetter: in.CoverLetter, JobID: in.JobID}
	file, _, err := c.FormFile("resume")
	switch {
	case err == nil:
		defer file.Close()
		sub.Resume = file
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		return internal.Outcome{}, internal.ErrBadRequest("Unreadable resume upload").WithCause(err)
	}

	store, err := c.Storage()
	if err != nil && !errors.Is(err, storage.ErrNotConfigured) {
		return internal.Outcome{}, err
	}

	data := map[string]any{"user": current, "coverLetter": in.CoverLetter}
	app, posting, err := h.applications.Submit(c, store, sub)
	if err != nil {
		msg := application.FormMessage(err)
		if msg == "" {
			return internal.Outcome{}, err
		}
		data["error"] = msg
		if p, _ := h.applications.Job(c, in.JobID); p != nil {
			data["job"] = p
		}
		return internal.View(views.Application, data), nil
	}

	h.notify(c, tasks.ApplicationPayload{
		JobTitle:       posting.Title,
		PosterName:     posting.Author,
		PosterEmail:    posting.Email,
		Applicant:      current.Username,
		ApplicantEmail: current.Email,
		CoverLetter:    app.CoverLetter,
		ResumeKey:      app.ResumeKey,
		ApplicationID:  app.ID,
		JobID:          posting.ID,
	})

	data["job"] = posting
	data["coverLetter"] = ""
	data["message"] = submittedMessage
	return internal.View(views.Application, data), nil
}

// notify queues the poster notification. The application is already
// stored, so a queue failure is logged and not shown to the applicant.
func (h *Handlers) notify(c internal.Context, p tasks.ApplicationPayload) {
	err := c.Enqueue(tasks.ApplicationSubmitted, p)
	switch {
	case err == nil:
	case errors.Is(err, job.ErrNotConfigured):
		c.Logger().WarnContext(c, "job queue not configured, poster not notified",
			slog.Int64("application_id", p.ApplicationID))
	default:
		c.Logger().ErrorContext(c, "enqueue application notification",
			slog.Int64("application_id", p.ApplicationID),
			slog.String("error", err.Error()))
	}
}
