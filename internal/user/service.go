package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// Service implements login and registration on top of a Repository.
type Service struct {
	repo    Repository
	limiter *Limiter
	log     *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLimiter throttles failed logins.
func WithLimiter(l *Limiter) ServiceOption {
	return func(s *Service) {
		s.limiter = l
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = l
	}
}

// NewService creates a Service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, log: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindByUsername returns the user or nil when there is none.
func (s *Service) FindByUsername(ctx context.Context, username string) (*User, error) {
	return s.repo.FindByUsername(ctx, username)
}

// FindByID returns the user or nil when there is none.
func (s *Service) FindByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// CheckUser authenticates the submitted credentials. Wrong credentials are
// reported in the result; only store failures are returned as errors.
func (s *Service) CheckUser(ctx context.Context, in *User) (LoginResult, error) {
	key := strings.ToLower(strings.TrimSpace(in.Username))
	if s.limiter.Blocked(key) {
		s.log.WarnContext(ctx, "login throttled", slog.String("username", in.Username))
		return LoginResult{Error: MsgTooManyAttempts}, nil
	}

	u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return LoginResult{}, err
	}
	if u == nil {
		s.limiter.Fail(key)
		return LoginResult{Error: MsgInvalidUsername}, nil
	}
	if !CheckPassword(u.PasswordHash, in.Password) {
		s.limiter.Fail(key)
		return LoginResult{Error: MsgInvalidPassword}, nil
	}

	s.limiter.Reset(key)
	return LoginResult{User: u}, nil
}

// Register validates in and creates the account. It returns a
// *ValidationError for bad input and ErrDuplicate for a taken username.
//
// The lookup before Create is not atomic with it; a concurrent registration
// of the same name is caught by the repository as ErrDuplicate.
func (s *Service) Register(ctx context.Context, in *User) error {
	if err := in.Validate(); err != nil {
		return err
	}

	existing, err := s.repo.FindByUsername(ctx, in.Username)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicate
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return err
	}
	in.PasswordHash = hash

	if err := s.repo.Create(ctx, in); err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.log.InfoContext(ctx, "registration lost race", slog.String("username", in.Username))
		}
		return err
	}

	s.log.InfoContext(ctx, "user registered", slog.String("username", in.Username), slog.Int64("user_id", in.ID))
	return nil
}
