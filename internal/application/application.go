// Package application records job applications and their resumes.
package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gatlingbook/gatlingbook/internal/timeline"
	"github.com/gatlingbook/gatlingbook/internal/user"
	"github.com/gatlingbook/gatlingbook/pkg/storage"
)

// MaxResumeSize is the largest accepted resume upload.
const MaxResumeSize = 5 << 20

// ResumeTypes are the accepted resume MIME types.
var ResumeTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"application/rtf",
	"text/plain",
}

var (
	ErrJobNotFound      = errors.New("application: job not found")
	ErrEmptyCoverLetter = errors.New("application: empty cover letter")
	ErrInvalidResume    = errors.New("application: resume rejected")
	ErrOwnJob           = errors.New("application: cannot apply to own job")
	ErrPersistence      = errors.New("application: store unavailable")
)

// Messages shown on the application form.
var formMessages = map[error]string{
	ErrJobNotFound:      "The job you applied for does not exist",
	ErrEmptyCoverLetter: "You have to write a cover letter",
	ErrInvalidResume:    "The resume must be a PDF, Word or text file up to 5MB",
	ErrOwnJob:           "You cannot apply to your own job posting",
}

// FormMessage returns the message for an input error, or "" when err is
// not caused by the user.
func FormMessage(err error) string {
	for target, msg := range formMessages {
		if errors.Is(err, target) {
			return msg
		}
	}
	return ""
}

// Application is a candidate's answer to a job posting.
type Application struct {
	CreatedAt   time.Time
	CoverLetter string
	ResumeKey   string // object storage key, empty without resume
	ID          int64
	JobID       int64
	ApplicantID int64
}

// Submission is the validated input of one application.
type Submission struct {
	Resume      io.Reader // optional
	Applicant   *user.User
	CoverLetter string
	JobID       int64
}

// Repository persists applications.
type Repository interface {
	Create(ctx context.Context, a *Application) error
	// ByJob lists applications for a job, newest first.
	ByJob(ctx context.Context, jobID int64) ([]Application, error)
}

// Jobs resolves postings.
type Jobs interface {
	Get(ctx context.Context, id int64) (*timeline.Message, error)
}

// Service validates and records applications.
type Service struct {
	repo Repository
	jobs Jobs
	log  *slog.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(repo Repository, jobs Jobs, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, jobs: jobs, log: log}
}

// Job returns the posting with id, or ErrJobNotFound.
func (s *Service) Job(ctx context.Context, id int64) (*timeline.Message, error) {
	if id <= 0 {
		return nil, ErrJobNotFound
	}
	job, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, ErrJobNotFound
	}
	return job, nil
}

// Submit validates sub, uploads the resume to store when both are present
// and records the application. It returns the application together with
// the posting it answers.
func (s *Service) Submit(ctx context.Context, store storage.Storage, sub Submission) (*Application, *timeline.Message, error) {
	job, err := s.Job(ctx, sub.JobID)
	if err != nil {
		return nil, nil, err
	}
	if job.AuthorID == sub.Applicant.ID {
		return nil, nil, ErrOwnJob
	}

	letter := strings.TrimSpace(sub.CoverLetter)
	if letter == "" {
		return nil, nil, ErrEmptyCoverLetter
	}

	a := &Application{JobID: job.ID, ApplicantID: sub.Applicant.ID, CoverLetter: letter}

	if sub.Resume != nil && store != nil {
		upload, err := storage.Inspect(sub.Resume, MaxResumeSize, ResumeTypes...)
		if err != nil {
			return nil, nil, errors.Join(ErrInvalidResume, err)
		}
		key := storage.NewKey("resumes", upload.Extension)
		if err := store.Put(ctx, key, upload); err != nil {
			return nil, nil, err
		}
		a.ResumeKey = key
	}

	if err := s.repo.Create(ctx, a); err != nil {
		if a.ResumeKey != "" {
			_ = store.Delete(ctx, a.ResumeKey)
		}
		return nil, nil, err
	}

	s.log.InfoContext(ctx, "application submitted",
		slog.Int64("application_id", a.ID),
		slog.Int64("job_id", job.ID),
		slog.Bool("resume", a.ResumeKey != ""),
	)
	return a, job, nil
}
