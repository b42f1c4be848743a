package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when an order cannot be resolved.
var ErrNotFound = errors.New("order not found")

var yearMonthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Order, error) {
	if req.ResidentID == uuid.Nil {
		return nil, fmt.Errorf("resident_id is required")
	}
	if req.OrderName == "" {
		return nil, fmt.Errorf("order_name is required")
	}

	hasFrequency := req.Frequency != nil && *req.Frequency > 0
	hasDays := req.SpecificDays != ""
	if hasFrequency == hasDays {
		return nil, fmt.Errorf("exactly one of frequency or specific_days must be set")
	}

	o := &Order{
		ResidentID:          req.ResidentID,
		OrderName:           req.OrderName,
		SpecialInstructions: req.SpecialInstructions,
	}
	if hasFrequency {
		o.Frequency = req.Frequency
	} else {
		days := req.SpecificDays
		o.SpecificDays = &days
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return o, err
}

func (s *Service) ListForResident(ctx context.Context, residentID uuid.UUID) ([]*Order, error) {
	return s.repo.ListForResident(ctx, residentID)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Order, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	o := &Order{
		ID:                  id,
		OrderName:           req.OrderName,
		Frequency:           req.Frequency,
		SpecialInstructions: req.SpecialInstructions,
	}
	if req.SpecificDays != "" {
		days := req.SpecificDays
		o.SpecificDays = &days
	}
	if err := s.repo.Update(ctx, o); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Discontinue marks an order discontinued. The first write wins; repeat calls
// return applied=false and no error.
func (s *Service) Discontinue(ctx context.Context, id uuid.UUID, dateStr string) (bool, error) {
	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return false, fmt.Errorf("date must be YYYY-MM-DD")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return false, err
	}
	affected, err := s.repo.Discontinue(ctx, id, date)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// RecordPerformance appends an administration for the order and advances its
// last administered date.
func (s *Service) RecordPerformance(ctx context.Context, id uuid.UUID, req *PerformRequest) (*Administration, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD")
	}
	a := &Administration{
		OrderID:            o.ID,
		ResidentID:         o.ResidentID,
		AdministrationDate: date,
		Notes:              req.Notes,
		Initials:           req.Initials,
	}
	if err := s.repo.RecordAdministration(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) MonthAdministrations(ctx context.Context, id uuid.UUID, yearMonth string) ([]*Administration, error) {
	if !yearMonthPattern.MatchString(yearMonth) {
		return nil, fmt.Errorf("month must be YYYY-MM")
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.MonthAdministrations(ctx, id, yearMonth)
}
