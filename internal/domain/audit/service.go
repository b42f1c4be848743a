package audit

import (
	"context"

	"github.com/rs/zerolog"
)

// Recorder records user activity. Writes are best-effort; a failed audit
// write never fails the operation being audited.
type Recorder interface {
	Record(ctx context.Context, username, activity, details string)
}

type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) Record(ctx context.Context, username, activity, details string) {
	if username == "" {
		username = "system"
	}
	e := &Entry{Username: username, Activity: activity, Details: details}
	if err := s.repo.Insert(ctx, e); err != nil {
		s.logger.Error().Err(err).
			Str("username", username).
			Str("activity", activity).
			Msg("audit write failed")
	}
}

func (s *Service) List(ctx context.Context, username string, limit, offset int) ([]*Entry, int, error) {
	if username != "" {
		return s.repo.ListByUsername(ctx, username, limit, offset)
	}
	return s.repo.List(ctx, limit, offset)
}
