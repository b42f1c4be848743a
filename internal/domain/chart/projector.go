package chart

import (
	"strconv"
	"time"
)

// ProjectMonth builds the read-side eMAR grid for one month. Scheduled
// medications get one marker row per time slot carrying the stored initials;
// PRN and Controlled medications get a single row with an ADM marker on any
// day that has at least one administration event. A medication discontinued
// before the month starts is left out entirely; one discontinued during the
// month shows DC from the discontinuation day onward, overriding any other
// marker.
func ProjectMonth(yearMonth string, meds []*MedicationInfo, rows []*EMARRow) *MonthProjection {
	proj := &MonthProjection{YearMonth: yearMonth}
	for _, med := range meds {
		dcFrom := 0
		if med.DiscontinuedDate != nil {
			discYM := med.DiscontinuedDate.Format("2006-01")
			if discYM < yearMonth {
				continue
			}
			if discYM == yearMonth {
				dcFrom = med.DiscontinuedDate.Day()
			}
		}

		pm := &ProjectedMedication{
			MedicationName: med.Name,
			MedicationType: med.Type,
			Dosage:         med.Dosage,
			Instructions:   med.Instructions,
		}
		if med.DiscontinuedDate != nil {
			pm.DiscontinuedDate = med.DiscontinuedDate.Format(time.DateOnly)
		}

		if med.Type == TypeScheduled {
			for _, slot := range med.TimeSlots {
				pm.Rows = append(pm.Rows, scheduledRow(med, slot, rows))
			}
		} else {
			pm.Rows = append(pm.Rows, eventRow(med, rows))
		}

		if dcFrom >= 1 {
			for _, row := range pm.Rows {
				for day := dcFrom; day <= lastProjectionDay; day++ {
					row.Days[day] = MarkerDiscontinued
				}
			}
		}
		proj.Medications = append(proj.Medications, pm)
	}
	return proj
}

func scheduledRow(med *MedicationInfo, slot string, rows []*EMARRow) *ProjectionRow {
	out := &ProjectionRow{TimeSlot: slot, Days: make(map[int]string)}
	for _, r := range rows {
		if r.MedicationID != med.ID || r.TimeSlot == nil || *r.TimeSlot != slot {
			continue
		}
		if r.Administered == "" {
			continue
		}
		if day, ok := chartDay(r.ChartDate); ok {
			out.Days[day] = r.Administered
		}
	}
	return out
}

func eventRow(med *MedicationInfo, rows []*EMARRow) *ProjectionRow {
	out := &ProjectionRow{Days: make(map[int]string)}
	for _, r := range rows {
		if r.MedicationID != med.ID || r.TimeSlot != nil || r.Administered == "" {
			continue
		}
		if day, ok := chartDay(r.ChartDate); ok {
			out.Days[day] = MarkerAdministered
		}
	}
	return out
}

// chartDay extracts the day of month from a stored chart date, which is
// either "YYYY-MM-DD" or "YYYY-MM-DD HH:MM".
func chartDay(chartDate string) (int, bool) {
	if len(chartDate) < 10 {
		return 0, false
	}
	day, err := strconv.Atoi(chartDate[8:10])
	if err != nil || day < 1 || day > lastProjectionDay {
		return 0, false
	}
	return day, true
}
