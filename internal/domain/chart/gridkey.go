package chart

import (
	"sort"
	"strconv"
	"strings"
)

// Grid keys are how the charting UI addresses cells. ADL cells are keyed
// "-<field>-<day>-" and eMAR cells "-<medication>_<slot>-<day>-". Medication
// names may themselves contain underscores, so the slot is always the text
// after the last underscore.

var adlFieldSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(ADLFields))
	for _, f := range ADLFields {
		s[f] = struct{}{}
	}
	return s
}()

// ParseADLKey parses an ADL grid key. It returns false for malformed keys,
// unknown fields, and out-of-range days.
func ParseADLKey(key string) (field string, day int, ok bool) {
	body := strings.Trim(key, "-")
	idx := strings.LastIndex(body, "-")
	if idx <= 0 {
		return "", 0, false
	}
	field = body[:idx]
	day, err := strconv.Atoi(body[idx+1:])
	if err != nil || day < 1 || day > lastProjectionDay {
		return "", 0, false
	}
	if _, known := adlFieldSet[field]; !known {
		return "", 0, false
	}
	return field, day, true
}

// ParseEMARKey parses an eMAR grid key into medication name, time slot and
// day. It returns false for malformed keys.
func ParseEMARKey(key string) (medication, slot string, day int, ok bool) {
	body := strings.Trim(key, "-")
	idx := strings.LastIndex(body, "-")
	if idx <= 0 {
		return "", "", 0, false
	}
	day, err := strconv.Atoi(body[idx+1:])
	if err != nil || day < 1 || day > lastProjectionDay {
		return "", "", 0, false
	}
	nameSlot := body[:idx]
	us := strings.LastIndex(nameSlot, "_")
	if us <= 0 || us == len(nameSlot)-1 {
		return "", "", 0, false
	}
	return nameSlot[:us], nameSlot[us+1:], day, true
}

// CollectADLEdits converts a raw grid payload into typed edits, ignoring
// keys that do not parse. Output order is deterministic.
func CollectADLEdits(values map[string]string) []ADLEdit {
	edits := make([]ADLEdit, 0, len(values))
	for key, value := range values {
		field, day, ok := ParseADLKey(key)
		if !ok {
			continue
		}
		edits = append(edits, ADLEdit{Day: day, Field: field, Value: value})
	}
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].Day != edits[j].Day {
			return edits[i].Day < edits[j].Day
		}
		return edits[i].Field < edits[j].Field
	})
	return edits
}

// CollectEMAREdits converts a raw grid payload into typed eMAR edits,
// ignoring keys that do not parse. Output order is deterministic.
func CollectEMAREdits(values map[string]string) []EMAREdit {
	edits := make([]EMAREdit, 0, len(values))
	for key, value := range values {
		med, slot, day, ok := ParseEMARKey(key)
		if !ok {
			continue
		}
		edits = append(edits, EMAREdit{Medication: med, TimeSlot: slot, Day: day, Value: value})
	}
	sort.Slice(edits, func(i, j int) bool {
		if edits[i].Medication != edits[j].Medication {
			return edits[i].Medication < edits[j].Medication
		}
		if edits[i].TimeSlot != edits[j].TimeSlot {
			return edits[i].TimeSlot < edits[j].TimeSlot
		}
		return edits[i].Day < edits[j].Day
	})
	return edits
}
