package resident

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a resident cannot be resolved by id or name.
var ErrNotFound = errors.New("resident not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validLevel(level string) bool {
	for _, l := range ValidLevelsOfCare {
		if l == level {
			return true
		}
	}
	return false
}

func (s *Service) parseRequest(req *CreateRequest) (*Resident, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("date_of_birth must be YYYY-MM-DD")
	}
	level := req.LevelOfCare
	if level == "" {
		level = LevelSupervisory
	}
	if !validLevel(level) {
		return nil, fmt.Errorf("invalid level_of_care %q", level)
	}
	return &Resident{Name: req.Name, DateOfBirth: dob, LevelOfCare: level}, nil
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Resident, error) {
	res, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Resident, error) {
	res, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

func (s *Service) GetByName(ctx context.Context, name string) (*Resident, error) {
	res, err := s.repo.GetByName(ctx, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return res, err
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Resident, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListNames(ctx context.Context) ([]string, error) {
	return s.repo.ListNames(ctx)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *CreateRequest) (*Resident, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	res, err := s.parseRequest(req)
	if err != nil {
		return nil, err
	}
	res.ID = id
	if err := s.repo.Update(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// Delete removes the resident and everything charted against them. The
// repository deletes charts, medications, and orders in the same
// transaction.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
