package chart

import "testing"

func TestParseADLKey(t *testing.T) {
	field, day, ok := ParseADLKey("-first_shift_sp-1-")
	if !ok || field != "first_shift_sp" || day != 1 {
		t.Fatalf("got %q %d %v", field, day, ok)
	}
	field, day, ok = ParseADLKey("-water_intake-31-")
	if !ok || field != "water_intake" || day != 31 {
		t.Fatalf("got %q %d %v", field, day, ok)
	}
}

func TestParseADLKey_Rejects(t *testing.T) {
	bad := []string{
		"",
		"---",
		"-first_shift_sp-",
		"-first_shift_sp-0-",
		"-first_shift_sp-32-",
		"-first_shift_sp-abc-",
		"-not_a_field-3-",
	}
	for _, key := range bad {
		if _, _, ok := ParseADLKey(key); ok {
			t.Errorf("key %q parsed but should not", key)
		}
	}
}

func TestParseEMARKey(t *testing.T) {
	med, slot, day, ok := ParseEMARKey("-Aspirin_Morning-5-")
	if !ok || med != "Aspirin" || slot != "Morning" || day != 5 {
		t.Fatalf("got %q %q %d %v", med, slot, day, ok)
	}
}

func TestParseEMARKey_UnderscoreInMedicationName(t *testing.T) {
	// The slot is the text after the last underscore; earlier underscores
	// belong to the medication name.
	med, slot, day, ok := ParseEMARKey("-Vitamin_D3_Evening-12-")
	if !ok || med != "Vitamin_D3" || slot != "Evening" || day != 12 {
		t.Fatalf("got %q %q %d %v", med, slot, day, ok)
	}
}

func TestParseEMARKey_Rejects(t *testing.T) {
	bad := []string{
		"",
		"-Aspirin-5-",        // no slot separator
		"-Aspirin_-5-",       // empty slot
		"-_Morning-5-",       // empty medication
		"-Aspirin_Morning-0-",
		"-Aspirin_Morning-40-",
		"-Aspirin_Morning-x-",
	}
	for _, key := range bad {
		if _, _, _, ok := ParseEMARKey(key); ok {
			t.Errorf("key %q parsed but should not", key)
		}
	}
}

func TestCollectADLEdits_SkipsMalformedAndSorts(t *testing.T) {
	edits := CollectADLEdits(map[string]string{
		"-shower-2-":         "x",
		"-breakfast-1-":      "100",
		"-bogus_field-1-":    "z",
		"not a key":          "z",
		"-first_shift_sp-1-": "RS",
	})
	if len(edits) != 3 {
		t.Fatalf("expected 3 edits, got %d", len(edits))
	}
	if edits[0].Day != 1 || edits[0].Field != "breakfast" {
		t.Errorf("unexpected first edit %+v", edits[0])
	}
	if edits[2].Day != 2 || edits[2].Field != "shower" {
		t.Errorf("unexpected last edit %+v", edits[2])
	}
}

func TestCollectEMAREdits_SkipsMalformed(t *testing.T) {
	edits := CollectEMAREdits(map[string]string{
		"-Aspirin_Morning-1-": "AB",
		"-Aspirin_Evening-1-": "AB",
		"-garbage-":           "x",
	})
	if len(edits) != 2 {
		t.Fatalf("expected 2 edits, got %d", len(edits))
	}
	for _, e := range edits {
		if e.Medication != "Aspirin" || e.Day != 1 {
			t.Errorf("unexpected edit %+v", e)
		}
	}
}
