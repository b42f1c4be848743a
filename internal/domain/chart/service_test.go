package chart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type mockRepo struct {
	residents map[string]uuid.UUID
	meds      map[uuid.UUID][]*MedicationInfo
	adl       map[string]map[string]string // chart date -> values
	emar      []*EMARRow
	events    []*AdministrationEvent
	adlSaves  int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		residents: map[string]uuid.UUID{},
		meds:      map[uuid.UUID][]*MedicationInfo{},
		adl:       map[string]map[string]string{},
	}
}

func (m *mockRepo) addResident(name string) uuid.UUID {
	id := uuid.New()
	m.residents[name] = id
	return id
}

func (m *mockRepo) ResolveResidentID(_ context.Context, name string) (uuid.UUID, error) {
	id, ok := m.residents[name]
	if !ok {
		return uuid.Nil, pgx.ErrNoRows
	}
	return id, nil
}

func (m *mockRepo) UpsertADLDays(_ context.Context, _ uuid.UUID, days map[string]map[string]string) error {
	m.adlSaves++
	for date, values := range days {
		m.adl[date] = values
	}
	return nil
}

func (m *mockRepo) UpsertEMAREntry(_ context.Context, residentName, medicationName, chartDate, timeSlot, value string) (int64, error) {
	residentID, ok := m.residents[residentName]
	if !ok {
		return 0, nil
	}
	var med *MedicationInfo
	for _, mi := range m.meds[residentID] {
		if mi.Name == medicationName {
			med = mi
			break
		}
	}
	if med == nil {
		return 0, nil
	}
	for _, row := range m.emar {
		if row.ResidentID == residentID && row.MedicationID == med.ID &&
			row.ChartDate == chartDate && row.TimeSlot != nil && *row.TimeSlot == timeSlot {
			row.Administered = value
			return 1, nil
		}
	}
	slot := timeSlot
	m.emar = append(m.emar, &EMARRow{
		ID:             uuid.New(),
		ResidentID:     residentID,
		MedicationID:   med.ID,
		MedicationName: med.Name,
		ChartDate:      chartDate,
		TimeSlot:       &slot,
		Administered:   value,
	})
	return 1, nil
}

func (m *mockRepo) RecordEvent(_ context.Context, ev *AdministrationEvent) error {
	m.events = append(m.events, ev)
	m.emar = append(m.emar, &EMARRow{
		ID:           uuid.New(),
		ResidentID:   ev.ResidentID,
		MedicationID: ev.MedicationID,
		ChartDate:    ev.DateTime,
		Administered: ev.Administered,
		CurrentCount: ev.CurrentCount,
		Notes:        ev.Notes,
	})
	if ev.NewMedCount != nil {
		for _, meds := range m.meds {
			for _, mi := range meds {
				if mi.ID == ev.MedicationID {
					count := *ev.NewMedCount
					mi.MedCount = &count
				}
			}
		}
	}
	return nil
}

func (m *mockRepo) ADLMonth(_ context.Context, _ uuid.UUID, yearMonth string) ([]*ADLRow, error) {
	var rows []*ADLRow
	for date, values := range m.adl {
		if len(date) >= 7 && date[:7] == yearMonth {
			rows = append(rows, &ADLRow{ChartDate: date, Values: values})
		}
	}
	return rows, nil
}

func (m *mockRepo) ADLDay(_ context.Context, _ uuid.UUID, chartDate string) (*ADLRow, error) {
	values, ok := m.adl[chartDate]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ADLRow{ChartDate: chartDate, Values: values}, nil
}

func (m *mockRepo) EMARMonth(_ context.Context, residentID uuid.UUID, yearMonth string) ([]*EMARRow, error) {
	var rows []*EMARRow
	for _, row := range m.emar {
		if row.ResidentID == residentID && len(row.ChartDate) >= 7 && row.ChartDate[:7] == yearMonth {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (m *mockRepo) MedicationsForResident(_ context.Context, residentID uuid.UUID) ([]*MedicationInfo, error) {
	return m.meds[residentID], nil
}

func TestSaveADLMonth_FullRowReplace(t *testing.T) {
	repo := newMockRepo()
	repo.addResident("Rosa Soto")
	svc := NewService(repo)

	err := svc.SaveADLMonth(context.Background(), "Rosa Soto", "2023-12", []ADLEdit{
		{Day: 3, Field: "first_shift_sp", Value: "RS"},
		{Day: 3, Field: "breakfast", Value: "100"},
	})
	if err != nil {
		t.Fatal(err)
	}
	row := repo.adl["2023-12-03"]
	if row == nil {
		t.Fatal("day 3 not saved")
	}
	if row["first_shift_sp"] != "RS" || row["breakfast"] != "100" {
		t.Fatalf("unexpected values %v", row)
	}
	if len(row) != len(ADLFields) {
		t.Fatalf("expected a complete row, got %d fields", len(row))
	}

	// A second save of the same day replaces the whole row, so the fields
	// from the first save come back empty.
	err = svc.SaveADLMonth(context.Background(), "Rosa Soto", "2023-12", []ADLEdit{
		{Day: 3, Field: "shower", Value: "x"},
	})
	if err != nil {
		t.Fatal(err)
	}
	row = repo.adl["2023-12-03"]
	if row["shower"] != "x" {
		t.Errorf("shower = %q", row["shower"])
	}
	if row["first_shift_sp"] != "" || row["breakfast"] != "" {
		t.Errorf("old values survived a full-row save: %v", row)
	}
}

func TestSaveBatches_Idempotent(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Rosa Soto")
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Aspirin", Type: TypeScheduled, TimeSlots: []string{"Morning"}},
	}
	svc := NewService(repo)
	ctx := context.Background()

	adl := []ADLEdit{{Day: 5, Field: "breakfast", Value: "100"}, {Day: 5, Field: "shower", Value: "RS"}}
	emar := []EMAREdit{{Medication: "Aspirin", TimeSlot: "Morning", Day: 10, Value: "JD"}}

	for i := 0; i < 2; i++ {
		if err := svc.SaveADLMonth(ctx, "Rosa Soto", "2023-12", adl); err != nil {
			t.Fatal(err)
		}
		if _, err := svc.SaveEMARMonth(ctx, "Rosa Soto", "2023-12", emar); err != nil {
			t.Fatal(err)
		}
	}

	if len(repo.adl) != 1 {
		t.Errorf("adl rows = %d", len(repo.adl))
	}
	row := repo.adl["2023-12-05"]
	if row["breakfast"] != "100" || row["shower"] != "RS" {
		t.Errorf("adl row %v", row)
	}
	if len(repo.emar) != 1 || repo.emar[0].Administered != "JD" {
		t.Errorf("emar rows %+v", repo.emar)
	}
}

func TestSaveADLMonth_UnknownResidentAborts(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo)

	err := svc.SaveADLMonth(context.Background(), "Nobody", "2023-12", []ADLEdit{
		{Day: 1, Field: "breakfast", Value: "50"},
	})
	if !errors.Is(err, ErrResidentNotFound) {
		t.Fatalf("expected ErrResidentNotFound, got %v", err)
	}
	if repo.adlSaves != 0 {
		t.Error("nothing should be written for an unknown resident")
	}
}

func TestSaveADLMonth_SkipsAllEmptyDays(t *testing.T) {
	repo := newMockRepo()
	repo.addResident("Rosa Soto")
	svc := NewService(repo)

	err := svc.SaveADLMonth(context.Background(), "Rosa Soto", "2023-12", []ADLEdit{
		{Day: 4, Field: "breakfast", Value: ""},
		{Day: 4, Field: "shower", Value: ""},
		{Day: 5, Field: "lunch", Value: "75"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := repo.adl["2023-12-04"]; ok {
		t.Error("all-empty day should not be written")
	}
	if _, ok := repo.adl["2023-12-05"]; !ok {
		t.Error("day with data should be written")
	}
}

func TestSaveADLMonth_BadMonth(t *testing.T) {
	svc := NewService(newMockRepo())
	if err := svc.SaveADLMonth(context.Background(), "Rosa Soto", "12/2023", nil); err == nil {
		t.Fatal("expected month format error")
	}
}

func TestSaveEMARMonth_SavedAndSkipped(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Snoop Dawg")
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Aspirin", Type: TypeScheduled, TimeSlots: []string{"Morning", "Evening"}},
	}
	svc := NewService(repo)

	result, err := svc.SaveEMARMonth(context.Background(), "Snoop Dawg", "2023-12", []EMAREdit{
		{Medication: "Aspirin", TimeSlot: "Morning", Day: 1, Value: "SD"},
		{Medication: "Aspirin", TimeSlot: "Evening", Day: 1, Value: "SD"},
		{Medication: "Unknown Med", TimeSlot: "Morning", Day: 1, Value: "SD"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Saved != 2 || result.Skipped != 1 {
		t.Fatalf("saved=%d skipped=%d", result.Saved, result.Skipped)
	}
	if len(result.SkippedKeys) != 1 || result.SkippedKeys[0] != "-Unknown Med_Morning-1-" {
		t.Fatalf("skipped keys %v", result.SkippedKeys)
	}
	if len(repo.emar) != 2 {
		t.Fatalf("expected 2 stored rows, got %d", len(repo.emar))
	}
}

func TestSaveEMARMonth_UpdateOverwritesAdministered(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Snoop Dawg")
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Aspirin", Type: TypeScheduled, TimeSlots: []string{"Morning"}},
	}
	svc := NewService(repo)

	for _, value := range []string{"AB", "CD"} {
		_, err := svc.SaveEMARMonth(context.Background(), "Snoop Dawg", "2023-12", []EMAREdit{
			{Medication: "Aspirin", TimeSlot: "Morning", Day: 2, Value: value},
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if len(repo.emar) != 1 {
		t.Fatalf("expected a single row, got %d", len(repo.emar))
	}
	if repo.emar[0].Administered != "CD" {
		t.Errorf("administered = %q", repo.emar[0].Administered)
	}
}

func TestRecordPRN(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Snoop Dawg")
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Tylenol", Type: TypePRN},
	}
	svc := NewService(repo)

	err := svc.RecordPRN(context.Background(), &EventRequest{
		ResidentName:   "Snoop Dawg",
		MedicationName: "Tylenol",
		DateTime:       "2023-12-05 14:30",
		Initials:       "AB",
		Notes:          "headache",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	ev := repo.events[0]
	if ev.DateTime != "2023-12-05 14:30" || ev.Administered != "AB" || ev.NewMedCount != nil {
		t.Errorf("unexpected event %+v", ev)
	}
}

func TestRecordPRN_WrongType(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Snoop Dawg")
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Aspirin", Type: TypeScheduled},
	}
	svc := NewService(repo)

	err := svc.RecordPRN(context.Background(), &EventRequest{
		ResidentName:   "Snoop Dawg",
		MedicationName: "Aspirin",
		DateTime:       "2023-12-05 14:30",
		Initials:       "AB",
	})
	if err == nil {
		t.Fatal("expected type error")
	}
}

func TestRecordPRN_MedicationNotFound(t *testing.T) {
	repo := newMockRepo()
	repo.addResident("Snoop Dawg")
	svc := NewService(repo)

	err := svc.RecordPRN(context.Background(), &EventRequest{
		ResidentName:   "Snoop Dawg",
		MedicationName: "Mystery",
		DateTime:       "2023-12-05 14:30",
		Initials:       "AB",
	})
	if !errors.Is(err, ErrMedicationNotFound) {
		t.Fatalf("expected ErrMedicationNotFound, got %v", err)
	}
}

func TestRecordControlled_DecrementsCount(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Snoop Dawg")
	count := 10
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Oxycodone", Type: TypeControlled, MedCount: &count},
	}
	svc := NewService(repo)

	remaining, err := svc.RecordControlled(context.Background(), &EventRequest{
		ResidentName:   "Snoop Dawg",
		MedicationName: "Oxycodone",
		DateTime:       "2023-12-05 20:00",
		Initials:       "AB",
	})
	if err != nil {
		t.Fatal(err)
	}
	if remaining != 9 {
		t.Fatalf("remaining = %d", remaining)
	}
	if *repo.meds[id][0].MedCount != 9 {
		t.Errorf("stored count = %d", *repo.meds[id][0].MedCount)
	}
	ev := repo.events[0]
	if ev.CurrentCount == nil || *ev.CurrentCount != 9 {
		t.Errorf("event count %+v", ev.CurrentCount)
	}
}

func TestRecordControlled_NoRemainingCount(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Snoop Dawg")
	count := 0
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Oxycodone", Type: TypeControlled, MedCount: &count},
	}
	svc := NewService(repo)

	_, err := svc.RecordControlled(context.Background(), &EventRequest{
		ResidentName:   "Snoop Dawg",
		MedicationName: "Oxycodone",
		DateTime:       "2023-12-05 20:00",
		Initials:       "AB",
	})
	if err == nil {
		t.Fatal("expected remaining-count error")
	}
}

func TestADLDay_BlankWhenUnsaved(t *testing.T) {
	repo := newMockRepo()
	repo.addResident("Rosa Soto")
	svc := NewService(repo)

	row, err := svc.ADLDay(context.Background(), "Rosa Soto", "2023-12-10")
	if err != nil {
		t.Fatal(err)
	}
	if len(row.Values) != len(ADLFields) {
		t.Fatalf("expected %d blank fields, got %d", len(ADLFields), len(row.Values))
	}
	for f, v := range row.Values {
		if v != "" {
			t.Errorf("field %s = %q, want empty", f, v)
		}
	}
}

func TestEvents_FiltersByMedicationAndPeriod(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Snoop Dawg")
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Tylenol", Type: TypePRN},
		{ID: uuid.New(), Name: "Oxycodone", Type: TypeControlled, MedCount: intPtr(5)},
	}
	svc := NewService(repo)
	ctx := context.Background()

	for _, dt := range []string{"2023-12-05 14:30", "2023-12-09 08:15"} {
		err := svc.RecordPRN(ctx, &EventRequest{
			ResidentName: "Snoop Dawg", MedicationName: "Tylenol",
			DateTime: dt, Initials: "AB",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.RecordControlled(ctx, &EventRequest{
		ResidentName: "Snoop Dawg", MedicationName: "Oxycodone",
		DateTime: "2023-12-05 20:00", Initials: "AB",
	}); err != nil {
		t.Fatal(err)
	}

	events, err := svc.Events(ctx, "Snoop Dawg", "Tylenol", "2023-12")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("month fetch: %d events", len(events))
	}

	events, err = svc.Events(ctx, "Snoop Dawg", "Tylenol", "2023-12-05")
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ChartDate != "2023-12-05 14:30" {
		t.Fatalf("day fetch: %+v", events)
	}

	if _, err := svc.Events(ctx, "Snoop Dawg", "Tylenol", "December 2023"); err == nil {
		t.Error("bad period should be rejected")
	}
}

func intPtr(n int) *int { return &n }

func TestEMARMonth_ProjectionThroughService(t *testing.T) {
	repo := newMockRepo()
	id := repo.addResident("Snoop Dawg")
	repo.meds[id] = []*MedicationInfo{
		{ID: uuid.New(), Name: "Aspirin", Type: TypeScheduled, TimeSlots: []string{"Morning", "Evening"}},
	}
	svc := NewService(repo)

	_, err := svc.SaveEMARMonth(context.Background(), "Snoop Dawg", "2023-12", []EMAREdit{
		{Medication: "Aspirin", TimeSlot: "Morning", Day: 1, Value: "SD"},
		{Medication: "Aspirin", TimeSlot: "Evening", Day: 2, Value: "SD"},
	})
	if err != nil {
		t.Fatal(err)
	}

	proj, err := svc.EMARMonth(context.Background(), "Snoop Dawg", "2023-12")
	if err != nil {
		t.Fatal(err)
	}
	if len(proj.Medications) != 1 {
		t.Fatalf("expected 1 medication, got %d", len(proj.Medications))
	}
	med := proj.Medications[0]
	if len(med.Rows) != 2 {
		t.Fatalf("expected 2 slot rows, got %d", len(med.Rows))
	}
	if med.Rows[0].TimeSlot != "Morning" || med.Rows[0].Days[1] != "SD" {
		t.Errorf("morning row %+v", med.Rows[0])
	}
	if med.Rows[1].TimeSlot != "Evening" || med.Rows[1].Days[2] != "SD" {
		t.Errorf("evening row %+v", med.Rows[1])
	}
}
