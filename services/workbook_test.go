package services

import (
	"errors"
	"testing"

	"quotegeneration/testhelpers"
)

func openTestWorkbook(t *testing.T) *WorkbookSession {
	t.Helper()
	path := testhelpers.BuildQuoteTemplate(t, t.TempDir())
	s, err := OpenWorkbook(path)
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenWorkbookMissing(t *testing.T) {
	_, err := OpenWorkbook(t.TempDir() + "/missing.xlsx")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// The shell allows a single exclusive writer per workbook.
func TestOpenWorkbookExclusive(t *testing.T) {
	path := testhelpers.BuildQuoteTemplate(t, t.TempDir())

	s1, err := OpenWorkbook(path)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}

	if _, err := OpenWorkbook(path); !errors.Is(err, ErrAlreadyOpen) {
		t.Errorf("second open: expected ErrAlreadyOpen, got %v", err)
	}

	if err := s1.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	s2, err := OpenWorkbook(path)
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	s2.Close()
}

func TestGuardedFieldsStartLocked(t *testing.T) {
	s := openTestWorkbook(t)

	dayRate, _ := ResolveField("day_rate")
	if !s.IsLocked(dayRate.Ref) {
		t.Error("day_rate should start locked")
	}

	name, _ := ResolveField("customer_name")
	if s.IsLocked(name.Ref) {
		t.Error("customer_name should never lock")
	}
}

func TestRunActionUnlocks(t *testing.T) {
	s := openTestWorkbook(t)

	if err := s.RunAction("DualRate"); err != nil {
		t.Fatalf("RunAction: %v", err)
	}

	for _, id := range []string{"day_rate", "night_rate", "standing_charge"} {
		f, _ := ResolveField(id)
		if s.IsLocked(f.Ref) {
			t.Errorf("%s still locked after DualRate", id)
		}
	}

	// The selection marker is written for the workbook's own logic.
	v, err := s.ReadCell(CellRef{"Quote", "D10"})
	if err != nil {
		t.Fatal(err)
	}
	if v != "Dual Rate" {
		t.Errorf("marker cell = %q, want Dual Rate", v)
	}
}

func TestRunActionUnknown(t *testing.T) {
	s := openTestWorkbook(t)
	if err := s.RunAction("NoSuchAction"); !errors.Is(err, ErrActionNotFound) {
		t.Errorf("expected ErrActionNotFound, got %v", err)
	}
}

func TestWriteCellLockedRefused(t *testing.T) {
	s := openTestWorkbook(t)
	night, _ := ResolveField("night_rate")
	if err := s.WriteCell(night.Ref, 0.12); !errors.Is(err, ErrLocked) {
		t.Errorf("expected ErrLocked, got %v", err)
	}
}

// Writing the array count unlocks exactly that many array rows.
func TestArrayCountTrigger(t *testing.T) {
	s := openTestWorkbook(t)

	if err := s.WriteCell(arrayCountRef, 2); err != nil {
		t.Fatalf("write array count: %v", err)
	}

	for n := 1; n <= MaxArrays; n++ {
		for _, f := range ArrayFields(n) {
			locked := s.IsLocked(f.Ref)
			if n <= 2 && locked {
				t.Errorf("array %d field %s locked after count 2", n, f.ID)
			}
			if n > 2 && !locked {
				t.Errorf("array %d field %s unlocked after count 2", n, f.ID)
			}
		}
	}
}

// Enablement is derived state: a saved workbook reopened later reports the
// same editable set its markers imply.
func TestEnablementReplayOnReopen(t *testing.T) {
	path := testhelpers.BuildQuoteTemplate(t, t.TempDir())

	s, err := OpenWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RunAction("SingleRate"); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteCell(arrayCountRef, 3); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := OpenWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	dayRate, _ := ResolveField("day_rate")
	if s2.IsLocked(dayRate.Ref) {
		t.Error("day_rate locked after reopen despite Single Rate marker")
	}
	nightRate, _ := ResolveField("night_rate")
	if !s2.IsLocked(nightRate.Ref) {
		t.Error("night_rate should stay locked under Single Rate")
	}
	for n := 1; n <= 3; n++ {
		for _, f := range ArrayFields(n) {
			if s2.IsLocked(f.Ref) {
				t.Errorf("array %d field %s locked after reopen with count 3", n, f.ID)
			}
		}
	}
	if f := ArrayFields(4)[0]; !s2.IsLocked(f.Ref) {
		t.Error("array 4 should stay locked with count 3")
	}
}

// A guarded cell already holding a value was necessarily unlocked when it
// was written, even without a marker of its own.
func TestMarkerlessReplayFromValue(t *testing.T) {
	path := testhelpers.BuildQuoteTemplate(t, t.TempDir())

	s, err := OpenWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RunAction("BatteryIncluded"); err != nil {
		t.Fatal(err)
	}
	maker, _ := ResolveField("battery_manufacturer")
	if err := s.WriteCell(maker.Ref, "GivEnergy"); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := OpenWorkbook(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	if s2.IsLocked(maker.Ref) {
		t.Error("battery_manufacturer with a value should reopen unlocked")
	}
	model, _ := ResolveField("battery_model")
	if !s2.IsLocked(model.Ref) {
		t.Error("battery_model without a value should reopen locked")
	}
}
