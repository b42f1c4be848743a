package medication

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a medication cannot be resolved.
var ErrNotFound = errors.New("medication not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validSlot(slot string) bool {
	for _, s := range ValidTimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Medication, error) {
	if req.ResidentID == uuid.Nil {
		return nil, fmt.Errorf("resident_id is required")
	}
	if req.MedicationName == "" {
		return nil, fmt.Errorf("medication_name is required")
	}

	medType := req.MedicationType
	if medType == "" {
		medType = TypeScheduled
	}
	switch medType {
	case TypeScheduled:
		if len(req.TimeSlots) == 0 {
			return nil, fmt.Errorf("scheduled medication requires at least one time slot")
		}
		for _, slot := range req.TimeSlots {
			if !validSlot(slot) {
				return nil, fmt.Errorf("invalid time slot %q", slot)
			}
		}
	case TypePRN, TypeControlled:
		// No slots; administrations are recorded per event.
	default:
		return nil, fmt.Errorf("invalid medication_type %q", medType)
	}

	form := req.MedicationForm
	if form == "" {
		form = "Pill"
	}

	m := &Medication{
		ResidentID:     req.ResidentID,
		MedicationName: req.MedicationName,
		Dosage:         req.Dosage,
		Instructions:   req.Instructions,
		MedicationType: medType,
		MedicationForm: form,
		MedCount:       req.MedCount,
		TimeSlots:      req.TimeSlots,
	}
	if medType != TypeScheduled {
		m.TimeSlots = nil
	}
	if err := s.repo.Create(ctx, m, m.TimeSlots); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Medication, error) {
	m, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (s *Service) ListForResident(ctx context.Context, residentID uuid.UUID) ([]*Medication, error) {
	return s.repo.ListForResident(ctx, residentID)
}

// ListActive filters out discontinued medications.
func (s *Service) ListActive(ctx context.Context, residentID uuid.UUID) ([]*Medication, error) {
	all, err := s.repo.ListForResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	var active []*Medication
	for _, m := range all {
		if m.DiscontinuedDate == nil {
			active = append(active, m)
		}
	}
	return active, nil
}

// Grouped organizes a resident's medications the way charting views consume
// them: Scheduled keyed by time slot, PRN and Controlled as flat lists.
func (s *Service) Grouped(ctx context.Context, residentID uuid.UUID) (*Grouped, error) {
	all, err := s.repo.ListForResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	g := &Grouped{Scheduled: make(map[string][]*Medication)}
	for _, m := range all {
		switch m.MedicationType {
		case TypePRN:
			g.PRN = append(g.PRN, m)
		case TypeControlled:
			g.Controlled = append(g.Controlled, m)
		default:
			for _, slot := range m.TimeSlots {
				g.Scheduled[slot] = append(g.Scheduled[slot], m)
			}
		}
	}
	return g, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *UpdateRequest) (*Medication, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.MedicationName != "" {
		m.MedicationName = req.MedicationName
	}
	if req.Dosage != "" {
		m.Dosage = req.Dosage
	}
	if req.Instructions != "" {
		m.Instructions = req.Instructions
	}
	slots := req.TimeSlots
	if slots != nil {
		if m.MedicationType != TypeScheduled {
			return nil, fmt.Errorf("time slots apply only to scheduled medications")
		}
		for _, slot := range slots {
			if !validSlot(slot) {
				return nil, fmt.Errorf("invalid time slot %q", slot)
			}
		}
		m.TimeSlots = slots
	}
	if err := s.repo.Update(ctx, m, slots); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Discontinue marks a medication discontinued as of the given date. The first
// discontinuation wins; repeat calls return applied=false and no error.
func (s *Service) Discontinue(ctx context.Context, req *DiscontinueRequest) (bool, error) {
	if req.ResidentName == "" || req.MedicationName == "" {
		return false, fmt.Errorf("resident_name and medication_name are required")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return false, fmt.Errorf("date must be YYYY-MM-DD")
	}
	affected, err := s.repo.Discontinue(ctx, req.ResidentName, req.MedicationName, date)
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Service) DiscontinuedDates(ctx context.Context, residentID uuid.UUID) (map[string]time.Time, error) {
	return s.repo.DiscontinuedDates(ctx, residentID)
}

// ControlledCount returns the remaining count for a Controlled medication.
func (s *Service) ControlledCount(ctx context.Context, id uuid.UUID) (int, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	if m.MedicationType != TypeControlled {
		return 0, fmt.Errorf("medication %s is not controlled", m.MedicationName)
	}
	if m.MedCount == nil {
		return 0, nil
	}
	return *m.MedCount, nil
}
