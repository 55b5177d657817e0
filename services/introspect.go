package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Enablement reasons reported for each logical field.
const (
	ReasonOpen    = "open"
	ReasonLocked  = "locked"
	ReasonFormula = "formula"
	ReasonHidden  = "hidden"
)

// FieldState is the read-side view of one logical field: its current
// value and whether it is currently eligible for input.
type FieldState struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"currentValue"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason"`
}

// ListEnabledFields walks the whole registry against an open workbook and
// classifies why each field is or is not currently editable. Read-only;
// used to populate input UIs.
func ListEnabledFields(s *WorkbookSession) ([]FieldState, error) {
	f := s.File()
	fields := AllFields()
	states := make([]FieldState, 0, len(fields))

	for _, lf := range fields {
		value, err := f.GetCellValue(lf.Ref.Sheet, lf.Ref.Cell)
		if err != nil {
			return nil, fmt.Errorf("introspect %s: %w", lf.Ref, err)
		}

		state := FieldState{FieldID: lf.ID, Value: value}
		switch {
		case hasFormula(f, lf.Ref):
			state.Reason = ReasonFormula
		case isHidden(f, lf.Ref):
			state.Reason = ReasonHidden
		case s.IsLocked(lf.Ref):
			state.Reason = ReasonLocked
		default:
			state.Enabled = true
			state.Reason = ReasonOpen
		}
		states = append(states, state)
	}
	return states, nil
}

func hasFormula(f *excelize.File, ref CellRef) bool {
	formula, err := f.GetCellFormula(ref.Sheet, ref.Cell)
	return err == nil && formula != ""
}

func isHidden(f *excelize.File, ref CellRef) bool {
	col, row, err := excelize.CellNameToCoordinates(ref.Cell)
	if err != nil {
		return false
	}
	if visible, err := f.GetRowVisible(ref.Sheet, row); err == nil && !visible {
		return true
	}
	colName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return false
	}
	visible, err := f.GetColVisible(ref.Sheet, colName)
	return err == nil && !visible
}
