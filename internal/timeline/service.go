package timeline

import (
	"context"
	"log/slog"

	"github.com/gatlingbook/gatlingbook/internal/user"
)

// Service builds timelines and records postings and follows.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(repo Repository, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, log: log}
}

// Public returns the latest messages of everyone.
func (s *Service) Public(ctx context.Context) ([]Message, error) {
	return s.repo.Public(ctx, PageSize)
}

// User returns the messages posted by u.
func (s *Service) User(ctx context.Context, u *user.User) ([]Message, error) {
	return s.repo.ByAuthor(ctx, u.ID, PageSize)
}

// Full returns the messages of u and of everyone u follows.
func (s *Service) Full(ctx context.Context, u *user.User) ([]Message, error) {
	return s.repo.Full(ctx, u.ID, PageSize)
}

// Get returns the message with id or nil.
func (s *Service) Get(ctx context.Context, id int64) (*Message, error) {
	return s.repo.Get(ctx, id)
}

// Post publishes a job posting by author. The body is markdown; it is
// rendered and sanitised once, here.
func (s *Service) Post(ctx context.Context, author *user.User, title, text string) (*Message, error) {
	title, text, ok := normalize(title, text)
	if !ok {
		return nil, ErrEmptyMessage
	}

	html, err := RenderMarkdown(text)
	if err != nil {
		return nil, err
	}

	m := &Message{
		AuthorID: author.ID,
		Author:   author.Username,
		Email:    author.Email,
		Title:    title,
		Text:     text,
		HTML:     html,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "job posted", slog.Int64("message_id", m.ID), slog.Int64("author_id", author.ID))
	return m, nil
}

// Follow makes who follow whom.
func (s *Service) Follow(ctx context.Context, who, whom *user.User) error {
	if who.ID == whom.ID {
		return ErrSelfFollow
	}
	return s.repo.Follow(ctx, who.ID, whom.ID)
}

// Unfollow removes the follow edge; a missing edge is not an error.
func (s *Service) Unfollow(ctx context.Context, who, whom *user.User) error {
	return s.repo.Unfollow(ctx, who.ID, whom.ID)
}

// IsFollowing reports whether who follows whom. A nil who follows nobody.
func (s *Service) IsFollowing(ctx context.Context, who, whom *user.User) (bool, error) {
	if who == nil || whom == nil {
		return false, nil
	}
	return s.repo.IsFollowing(ctx, who.ID, whom.ID)
}
