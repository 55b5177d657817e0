package services

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/xuri/excelize/v2"
)

// Session is the contract of the document-editing shell: one exclusively
// owned open workbook. The quote engine only ever talks to the workbook
// through this interface.
type Session interface {
	IsLocked(ref CellRef) bool
	ReadCell(ref CellRef) (string, error)
	WriteCell(ref CellRef, value any) error
	RunAction(name string) error
	Save() error
	Close() error
}

// openPaths tracks which workbook files are currently held open so a
// second concurrent open of the same path is rejected, matching the
// single-exclusive-writer behavior of the real editing shell.
var (
	openMu    sync.Mutex
	openPaths = map[string]bool{}
)

// WorkbookSession drives one xlsx quote workbook through excelize. Cell
// enablement is derived state: the declared selection/trigger mappings are
// replayed from the workbook's marker cells on open, then extended by
// RunAction and trigger-field writes during the session.
type WorkbookSession struct {
	f        *excelize.File
	path     string
	unlocked map[CellRef]bool
	closed   bool
}

// OpenWorkbook opens the workbook at path for exclusive editing.
func OpenWorkbook(path string) (*WorkbookSession, error) {
	openMu.Lock()
	if openPaths[path] {
		openMu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrAlreadyOpen, path)
	}
	openPaths[path] = true
	openMu.Unlock()

	f, err := excelize.OpenFile(path)
	if err != nil {
		release(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: workbook %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}

	s := &WorkbookSession{
		f:        f,
		path:     path,
		unlocked: make(map[CellRef]bool),
	}
	s.deriveEnablement()
	return s, nil
}

func release(path string) {
	openMu.Lock()
	delete(openPaths, path)
	openMu.Unlock()
}

// deriveEnablement replays the declared unlock mappings from the marker
// values already persisted in the workbook, so a reopened document reports
// the same editable set it had when it was last saved.
func (s *WorkbookSession) deriveEnablement() {
	for ref, byValue := range markerSelections {
		v, err := s.f.GetCellValue(ref.Sheet, ref.Cell)
		if err != nil || v == "" {
			continue
		}
		if name, ok := byValue[strings.TrimSpace(v)]; ok {
			for _, u := range Selections[name].Unlocks {
				s.unlocked[u] = true
			}
		}
	}

	// Array rows unlock off the persisted array count.
	if v, err := s.f.GetCellValue(arrayCountRef.Sheet, arrayCountRef.Cell); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && n > 0 {
			for _, u := range arrayUnlocks(n) {
				s.unlocked[u] = true
			}
		}
	}

	// Markerless selections (battery, extended warranty) are inferred
	// from the values they admitted: a guarded cell holding a value was
	// necessarily unlocked when it was written.
	for _, f := range AllFields() {
		if !f.RequiresEnabled || s.unlocked[f.Ref] {
			continue
		}
		if v, err := s.f.GetCellValue(f.Ref.Sheet, f.Ref.Cell); err == nil && v != "" {
			s.unlocked[f.Ref] = true
		}
	}
}

// IsLocked reports whether a cell is currently non-editable. Only cells
// belonging to RequiresEnabled fields ever lock; everything else on the
// sheet is open for input.
func (s *WorkbookSession) IsLocked(ref CellRef) bool {
	if s.unlocked[ref] {
		return false
	}
	return guardedCells[ref]
}

// ReadCell returns the calculated value of a cell as a string.
func (s *WorkbookSession) ReadCell(ref CellRef) (string, error) {
	v, err := s.f.GetCellValue(ref.Sheet, ref.Cell)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", ref, err)
	}
	return v, nil
}

// WriteCell writes a value to a cell, refusing locked targets. Callers
// are expected to check IsLocked first; the error is for shells that no-op
// instead of failing.
func (s *WorkbookSession) WriteCell(ref CellRef, value any) error {
	if s.IsLocked(ref) {
		return fmt.Errorf("%w: %s", ErrLocked, ref)
	}
	if err := s.f.SetCellValue(ref.Sheet, ref.Cell, value); err != nil {
		return fmt.Errorf("write %s: %w", ref, err)
	}
	s.applyTrigger(ref, value)
	return nil
}

// applyTrigger extends the editable set when a trigger field is written,
// the declared equivalent of the workbook's own unlock-on-write logic.
func (s *WorkbookSession) applyTrigger(ref CellRef, value any) {
	if ref != arrayCountRef {
		return
	}
	n := 0
	switch v := value.(type) {
	case int:
		n = v
	case float64:
		n = int(v)
	case string:
		n, _ = strconv.Atoi(strings.TrimSpace(v))
	}
	if n <= 0 {
		return
	}
	for _, u := range arrayUnlocks(n) {
		s.unlocked[u] = true
	}
	log.Printf("workbook: array count %d unlocked %d array rows", n, min(n, MaxArrays))
}

// RunAction executes a named document action: writes its marker value and
// unlocks its declared cells.
func (s *WorkbookSession) RunAction(name string) error {
	spec, err := SelectionAction(name)
	if err != nil {
		return err
	}
	if spec.Sets.Cell != "" {
		if err := s.f.SetCellValue(spec.Sets.Sheet, spec.Sets.Cell, spec.SetsValue); err != nil {
			return fmt.Errorf("action %s marker: %w", name, err)
		}
	}
	for _, u := range spec.Unlocks {
		s.unlocked[u] = true
	}
	return nil
}

// Save persists the workbook in place.
func (s *WorkbookSession) Save() error {
	if err := s.f.Save(); err != nil {
		return fmt.Errorf("save %s: %w", s.path, err)
	}
	return nil
}

// Close releases the workbook without saving any unsaved changes.
func (s *WorkbookSession) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	release(s.path)
	if err := s.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", s.path, err)
	}
	return nil
}

// File exposes the underlying excelize file for read-side collaborators
// (resolver table scans, the enablement introspector, PDF export).
func (s *WorkbookSession) File() *excelize.File {
	return s.f
}
