package services

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *VersionStore {
	t.Helper()
	return &VersionStore{Root: filepath.Join(t.TempDir(), "quotes"), Label: "SolarQuote"}
}

func materializeEmpty(t *testing.T, ref VersionRef) {
	t.Helper()
	if err := os.WriteFile(ref.Path, []byte("stub"), 0o644); err != nil {
		t.Fatalf("materialize %s: %v", ref.Path, err)
	}
}

// Sequential allocations must be strictly increasing and gap-free from 1.
func TestAllocateNextMonotonic(t *testing.T) {
	vs := newTestStore(t)

	for want := 1; want <= 5; want++ {
		ref, err := vs.AllocateNext("OPP-1")
		if err != nil {
			t.Fatalf("AllocateNext: %v", err)
		}
		if ref.Version != want {
			t.Fatalf("allocation %d returned version %d", want, ref.Version)
		}
		if vs.Exists(ref) {
			t.Fatal("AllocateNext must not materialize the file")
		}
		materializeEmpty(t, ref)
	}
}

// ResolveLatest after N allocations returns exactly N, however often it is
// asked.
func TestResolveLatestIdempotent(t *testing.T) {
	vs := newTestStore(t)

	for i := 0; i < 3; i++ {
		ref, err := vs.AllocateNext("OPP-2")
		if err != nil {
			t.Fatalf("AllocateNext: %v", err)
		}
		materializeEmpty(t, ref)
	}

	for i := 0; i < 4; i++ {
		ref, err := vs.ResolveLatest("OPP-2")
		if err != nil {
			t.Fatalf("ResolveLatest: %v", err)
		}
		if ref.Version != 3 {
			t.Errorf("ResolveLatest call %d = v%d, want v3", i, ref.Version)
		}
	}
}

func TestResolveLatestNotFound(t *testing.T) {
	vs := newTestStore(t)
	_, err := vs.ResolveLatest("OPP-MISSING")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// A missing storage root is created rather than failing the scan.
func TestScanCreatesMissingRoot(t *testing.T) {
	vs := newTestStore(t)
	if _, err := os.Stat(vs.Root); !os.IsNotExist(err) {
		t.Fatal("precondition: root should not exist yet")
	}
	if _, err := vs.AllocateNext("OPP-3"); err != nil {
		t.Fatalf("AllocateNext: %v", err)
	}
	if info, err := os.Stat(vs.Root); err != nil || !info.IsDir() {
		t.Errorf("storage root was not created: %v", err)
	}
}

// An un-versioned legacy file counts as v0, so the next allocation is v1.
func TestLegacyFileIsVersionZero(t *testing.T) {
	vs := newTestStore(t)
	if err := os.MkdirAll(vs.Root, 0o755); err != nil {
		t.Fatal(err)
	}
	legacy := filepath.Join(vs.Root, "SolarQuote-OPP-4.xlsx")
	if err := os.WriteFile(legacy, []byte("stub"), 0o644); err != nil {
		t.Fatal(err)
	}

	ref, err := vs.ResolveLatest("OPP-4")
	if err != nil {
		t.Fatalf("ResolveLatest: %v", err)
	}
	if ref.Version != 0 || ref.Path != legacy {
		t.Errorf("legacy resolution = v%d at %s", ref.Version, ref.Path)
	}

	next, err := vs.AllocateNext("OPP-4")
	if err != nil {
		t.Fatalf("AllocateNext: %v", err)
	}
	if next.Version != 1 {
		t.Errorf("next after legacy = v%d, want v1", next.Version)
	}
}

// Versions are per opportunity: numbering one never disturbs another.
func TestVersionsIndependentPerOpportunity(t *testing.T) {
	vs := newTestStore(t)

	a, err := vs.AllocateNext("OPP-A")
	if err != nil {
		t.Fatal(err)
	}
	materializeEmpty(t, a)

	b, err := vs.AllocateNext("OPP-B")
	if err != nil {
		t.Fatal(err)
	}
	if b.Version != 1 {
		t.Errorf("first allocation for OPP-B = v%d, want v1", b.Version)
	}
}

func TestMaterializeMissingTemplate(t *testing.T) {
	vs := newTestStore(t)
	ref, err := vs.AllocateNext("OPP-5")
	if err != nil {
		t.Fatal(err)
	}
	err = vs.Materialize(ref, filepath.Join(t.TempDir(), "nope.xlsx"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing template, got %v", err)
	}
}

func TestPDFPathOverwritesPerOpportunity(t *testing.T) {
	vs := newTestStore(t)
	p1, err := vs.PDFPath("OPP-6")
	if err != nil {
		t.Fatalf("PDFPath: %v", err)
	}
	p2, err := vs.PDFPath("OPP-6")
	if err != nil {
		t.Fatalf("PDFPath: %v", err)
	}
	if p1 != p2 {
		t.Errorf("PDF path not stable: %s vs %s", p1, p2)
	}
	if filepath.Base(p1) != "SolarQuote - OPP-6.pdf" {
		t.Errorf("unexpected artifact name %s", filepath.Base(p1))
	}
}
