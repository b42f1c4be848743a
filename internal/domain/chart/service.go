package chart

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrResidentNotFound   = errors.New("resident not found")
	ErrMedicationNotFound = errors.New("medication not found")
)

var (
	yearMonthPattern  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	datePrefixPattern = regexp.MustCompile(`^\d{4}-\d{2}(-\d{2})?$`)
)

const eventTimeLayout = "2006-01-02 15:04"

// EventRequest records one PRN or Controlled administration.
type EventRequest struct {
	ResidentName   string `json:"resident_name"`
	MedicationName string `json:"medication_name"`
	DateTime       string `json:"date_time"` // YYYY-MM-DD HH:MM
	Initials       string `json:"initials"`
	Notes          string `json:"notes"`
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) resolveResident(ctx context.Context, name string) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, fmt.Errorf("resident name is required")
	}
	id, err := s.repo.ResolveResidentID(ctx, name)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrResidentNotFound
	}
	return id, err
}

// SaveADLMonth saves a batch of ADL cell edits for one month. Edits are
// grouped by day and each touched day is written as a complete row, so a
// save replaces whatever the day held before. Days whose edits are all
// empty are not written. An unknown resident aborts the whole batch.
func (s *Service) SaveADLMonth(ctx context.Context, residentName, yearMonth string, edits []ADLEdit) error {
	if !yearMonthPattern.MatchString(yearMonth) {
		return fmt.Errorf("month must be in YYYY-MM format")
	}
	residentID, err := s.resolveResident(ctx, residentName)
	if err != nil {
		return err
	}

	byDay := make(map[int]map[string]string)
	for _, e := range edits {
		if e.Day < 1 || e.Day > lastProjectionDay {
			continue
		}
		if byDay[e.Day] == nil {
			byDay[e.Day] = make(map[string]string)
		}
		byDay[e.Day][e.Field] = e.Value
	}

	days := make(map[string]map[string]string, len(byDay))
	for day, fields := range byDay {
		empty := true
		for _, v := range fields {
			if v != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}
		values := make(map[string]string, len(ADLFields))
		for _, f := range ADLFields {
			values[f] = fields[f]
		}
		days[fmt.Sprintf("%s-%02d", yearMonth, day)] = values
	}
	if len(days) == 0 {
		return nil
	}
	return s.repo.UpsertADLDays(ctx, residentID, days)
}

// SaveEMARMonth saves a batch of scheduled-medication cell edits. Each cell
// is written on its own; edits whose resident or medication name does not
// resolve are counted as skipped and the batch continues.
func (s *Service) SaveEMARMonth(ctx context.Context, residentName, yearMonth string, edits []EMAREdit) (*SaveResult, error) {
	if !yearMonthPattern.MatchString(yearMonth) {
		return nil, fmt.Errorf("month must be in YYYY-MM format")
	}
	if residentName == "" {
		return nil, fmt.Errorf("resident name is required")
	}
	result := &SaveResult{}
	for _, e := range edits {
		if e.Day < 1 || e.Day > lastProjectionDay {
			continue
		}
		chartDate := fmt.Sprintf("%s-%02d", yearMonth, e.Day)
		n, err := s.repo.UpsertEMAREntry(ctx, residentName, e.Medication, chartDate, e.TimeSlot, e.Value)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			result.Skipped++
			result.SkippedKeys = append(result.SkippedKeys,
				fmt.Sprintf("-%s_%s-%d-", e.Medication, e.TimeSlot, e.Day))
			continue
		}
		result.Saved++
	}
	return result, nil
}

func (s *Service) findMedication(ctx context.Context, residentID uuid.UUID, name string) (*MedicationInfo, error) {
	meds, err := s.repo.MedicationsForResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	for _, m := range meds {
		if m.Name == name {
			return m, nil
		}
	}
	return nil, ErrMedicationNotFound
}

func (s *Service) parseEvent(ctx context.Context, req *EventRequest) (uuid.UUID, *MedicationInfo, error) {
	if req.Initials == "" {
		return uuid.Nil, nil, fmt.Errorf("initials are required")
	}
	if _, err := time.Parse(eventTimeLayout, req.DateTime); err != nil {
		return uuid.Nil, nil, fmt.Errorf("date_time must be in YYYY-MM-DD HH:MM format")
	}
	residentID, err := s.resolveResident(ctx, req.ResidentName)
	if err != nil {
		return uuid.Nil, nil, err
	}
	med, err := s.findMedication(ctx, residentID, req.MedicationName)
	if err != nil {
		return uuid.Nil, nil, err
	}
	return residentID, med, nil
}

// RecordPRN records one as-needed administration as its own timestamped row.
func (s *Service) RecordPRN(ctx context.Context, req *EventRequest) error {
	residentID, med, err := s.parseEvent(ctx, req)
	if err != nil {
		return err
	}
	if med.Type != TypePRN {
		return fmt.Errorf("medication %s is not PRN", med.Name)
	}
	return s.repo.RecordEvent(ctx, &AdministrationEvent{
		ResidentID:   residentID,
		MedicationID: med.ID,
		DateTime:     req.DateTime,
		Administered: req.Initials,
		Notes:        req.Notes,
	})
}

// RecordControlled records one controlled-substance administration and
// decrements the medication's remaining count in the same transaction.
func (s *Service) RecordControlled(ctx context.Context, req *EventRequest) (int, error) {
	residentID, med, err := s.parseEvent(ctx, req)
	if err != nil {
		return 0, err
	}
	if med.Type != TypeControlled {
		return 0, fmt.Errorf("medication %s is not controlled", med.Name)
	}
	if med.MedCount == nil || *med.MedCount <= 0 {
		return 0, fmt.Errorf("medication %s has no remaining count", med.Name)
	}
	newCount := *med.MedCount - 1
	err = s.repo.RecordEvent(ctx, &AdministrationEvent{
		ResidentID:   residentID,
		MedicationID: med.ID,
		DateTime:     req.DateTime,
		Administered: req.Initials,
		Notes:        req.Notes,
		CurrentCount: &newCount,
		NewMedCount:  &newCount,
	})
	return newCount, err
}

// ADLMonth returns the resident's saved ADL rows for a month in date order.
func (s *Service) ADLMonth(ctx context.Context, residentName, yearMonth string) ([]*ADLRow, error) {
	if !yearMonthPattern.MatchString(yearMonth) {
		return nil, fmt.Errorf("month must be in YYYY-MM format")
	}
	residentID, err := s.resolveResident(ctx, residentName)
	if err != nil {
		return nil, err
	}
	return s.repo.ADLMonth(ctx, residentID, yearMonth)
}

// ADLDay returns one resident-day. A day with no saved row comes back with
// every field empty rather than as an error.
func (s *Service) ADLDay(ctx context.Context, residentName, chartDate string) (*ADLRow, error) {
	if _, err := time.Parse("2006-01-02", chartDate); err != nil {
		return nil, fmt.Errorf("date must be in YYYY-MM-DD format")
	}
	residentID, err := s.resolveResident(ctx, residentName)
	if err != nil {
		return nil, err
	}
	row, err := s.repo.ADLDay(ctx, residentID, chartDate)
	if errors.Is(err, pgx.ErrNoRows) {
		blank := &ADLRow{ResidentID: residentID, ChartDate: chartDate, Values: map[string]string{}}
		for _, f := range ADLFields {
			blank.Values[f] = ""
		}
		return blank, nil
	}
	return row, err
}

// Events returns a medication's PRN or Controlled administration rows whose
// chart date starts with the given prefix, either a YYYY-MM month or a
// single YYYY-MM-DD day.
func (s *Service) Events(ctx context.Context, residentName, medicationName, datePrefix string) ([]*EMARRow, error) {
	if !datePrefixPattern.MatchString(datePrefix) {
		return nil, fmt.Errorf("period must be in YYYY-MM or YYYY-MM-DD format")
	}
	residentID, err := s.resolveResident(ctx, residentName)
	if err != nil {
		return nil, err
	}
	med, err := s.findMedication(ctx, residentID, medicationName)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.EMARMonth(ctx, residentID, datePrefix[:7])
	if err != nil {
		return nil, err
	}
	var events []*EMARRow
	for _, r := range rows {
		if r.MedicationID != med.ID || r.TimeSlot != nil {
			continue
		}
		if !strings.HasPrefix(r.ChartDate, datePrefix) {
			continue
		}
		events = append(events, r)
	}
	return events, nil
}

// EMARMonth returns the month's projected marker grid for one resident.
func (s *Service) EMARMonth(ctx context.Context, residentName, yearMonth string) (*MonthProjection, error) {
	if !yearMonthPattern.MatchString(yearMonth) {
		return nil, fmt.Errorf("month must be in YYYY-MM format")
	}
	residentID, err := s.resolveResident(ctx, residentName)
	if err != nil {
		return nil, err
	}
	meds, err := s.repo.MedicationsForResident(ctx, residentID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.EMARMonth(ctx, residentID, yearMonth)
	if err != nil {
		return nil, err
	}
	return ProjectMonth(yearMonth, meds, rows), nil
}
