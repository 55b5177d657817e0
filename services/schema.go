package services

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the quote engine.
var (
	ErrNotFound       = errors.New("not found")
	ErrUnknownField   = errors.New("unknown logical field")
	ErrLocked         = errors.New("cell is locked")
	ErrActionNotFound = errors.New("action not found")
	ErrSessionTimeout = errors.New("document session timed out")
	ErrAlreadyOpen    = errors.New("workbook is already open")
)

// CellRef identifies one physical cell in the quote workbook.
type CellRef struct {
	Sheet string
	Cell  string
}

func (r CellRef) String() string {
	return r.Sheet + "!" + r.Cell
}

// ValueKind is the declared type of a logical field's value.
type ValueKind string

const (
	KindNumber   ValueKind = "number"
	KindText     ValueKind = "text"
	KindDate     ValueKind = "date"
	KindDropdown ValueKind = "dropdown"
)

// Category buckets logical fields into the pipeline's fixed step order.
type Category string

const (
	CategoryCustomer       Category = "customer"
	CategoryTariff         Category = "tariff"
	CategoryExistingSystem Category = "existing_system"
	CategoryArray          Category = "array"
	CategoryEquipment      Category = "equipment"
	CategoryPayment        Category = "payment"
)

// LogicalField describes one named input mapped to a physical workbook cell.
type LogicalField struct {
	ID       string
	Ref      CellRef
	Kind     ValueKind
	Category Category

	// Array is 1-8 for per-array fields, 0 otherwise.
	Array int

	// AliasOf names the canonical field sharing this cell. Aliases are
	// resolved through aliasPrecedence before writing, never by map order.
	AliasOf string

	// RequiresEnabled marks fields that start locked and only become
	// writable after an option selection or trigger field unlocks them.
	RequiresEnabled bool
}

// quoteSheet is the main input sheet of the quote workbook.
const quoteSheet = "Quote"

// QuoteFields is the ordered catalogue of every logical field the engine
// knows about. Order within a category is the write order used by the
// population pipeline.
var QuoteFields = []LogicalField{
	// ── Customer identity ────────────────────────────────────
	{ID: "customer_name", Ref: CellRef{quoteSheet, "D4"}, Kind: KindText, Category: CategoryCustomer},
	{ID: "customer_address", Ref: CellRef{quoteSheet, "D5"}, Kind: KindText, Category: CategoryCustomer},
	{ID: "customer_postcode", Ref: CellRef{quoteSheet, "D6"}, Kind: KindText, Category: CategoryCustomer},
	{ID: "postcode", Ref: CellRef{quoteSheet, "D6"}, Kind: KindText, Category: CategoryCustomer, AliasOf: "customer_postcode"},
	{ID: "quote_date", Ref: CellRef{quoteSheet, "D7"}, Kind: KindDate, Category: CategoryCustomer},

	// ── Tariff ───────────────────────────────────────────────
	{ID: "tariff_type", Ref: CellRef{quoteSheet, "D10"}, Kind: KindDropdown, Category: CategoryTariff},
	{ID: "day_rate", Ref: CellRef{quoteSheet, "D11"}, Kind: KindNumber, Category: CategoryTariff, RequiresEnabled: true},
	{ID: "unit_rate", Ref: CellRef{quoteSheet, "D11"}, Kind: KindNumber, Category: CategoryTariff, AliasOf: "day_rate", RequiresEnabled: true},
	{ID: "night_rate", Ref: CellRef{quoteSheet, "D12"}, Kind: KindNumber, Category: CategoryTariff, RequiresEnabled: true},
	{ID: "standing_charge", Ref: CellRef{quoteSheet, "D13"}, Kind: KindNumber, Category: CategoryTariff, RequiresEnabled: true},
	{ID: "annual_usage_kwh", Ref: CellRef{quoteSheet, "D14"}, Kind: KindNumber, Category: CategoryTariff, RequiresEnabled: true},

	// ── Existing system ──────────────────────────────────────
	{ID: "existing_customer", Ref: CellRef{quoteSheet, "D17"}, Kind: KindDropdown, Category: CategoryExistingSystem},
	{ID: "existing_panel_count", Ref: CellRef{quoteSheet, "D18"}, Kind: KindNumber, Category: CategoryExistingSystem, RequiresEnabled: true},
	{ID: "existing_inverter_model", Ref: CellRef{quoteSheet, "D19"}, Kind: KindText, Category: CategoryExistingSystem, RequiresEnabled: true},

	// ── Equipment ────────────────────────────────────────────
	{ID: "panel_manufacturer", Ref: CellRef{quoteSheet, "D22"}, Kind: KindDropdown, Category: CategoryEquipment},
	{ID: "panel_model", Ref: CellRef{quoteSheet, "D23"}, Kind: KindDropdown, Category: CategoryEquipment},
	{ID: "panel_warranty_years", Ref: CellRef{quoteSheet, "D24"}, Kind: KindNumber, Category: CategoryEquipment, RequiresEnabled: true},
	{ID: "inverter_manufacturer", Ref: CellRef{quoteSheet, "D25"}, Kind: KindDropdown, Category: CategoryEquipment},
	{ID: "inverter_model", Ref: CellRef{quoteSheet, "D26"}, Kind: KindDropdown, Category: CategoryEquipment},
	{ID: "battery_manufacturer", Ref: CellRef{quoteSheet, "D27"}, Kind: KindDropdown, Category: CategoryEquipment, RequiresEnabled: true},
	{ID: "battery_model", Ref: CellRef{quoteSheet, "D28"}, Kind: KindDropdown, Category: CategoryEquipment, RequiresEnabled: true},
	{ID: "battery_warranty_years", Ref: CellRef{quoteSheet, "D29"}, Kind: KindNumber, Category: CategoryEquipment, RequiresEnabled: true},

	// ── Solar arrays (count first, then per-array rows 34-41) ─
	{ID: "array_count", Ref: CellRef{quoteSheet, "D32"}, Kind: KindNumber, Category: CategoryArray},

	// ── Payment ──────────────────────────────────────────────
	{ID: "payment_method", Ref: CellRef{quoteSheet, "D44"}, Kind: KindDropdown, Category: CategoryPayment},
	{ID: "deposit_amount", Ref: CellRef{quoteSheet, "D45"}, Kind: KindNumber, Category: CategoryPayment, RequiresEnabled: true},
	{ID: "finance_term_months", Ref: CellRef{quoteSheet, "D46"}, Kind: KindNumber, Category: CategoryPayment, RequiresEnabled: true},
	{ID: "finance_apr", Ref: CellRef{quoteSheet, "D47"}, Kind: KindNumber, Category: CategoryPayment, RequiresEnabled: true},
}

// arraySubFields is the fixed per-array sub-field write order. Array N
// occupies row 33+N; the column carries the sub-field.
var arraySubFields = []struct {
	Suffix string
	Col    string
	Kind   ValueKind
}{
	{"panels", "C", KindNumber},
	{"orientation", "D", KindNumber},
	{"pitch", "E", KindNumber},
	{"shading", "F", KindNumber},
}

// MaxArrays is the number of array rows the workbook carries.
const MaxArrays = 8

// aliasPrecedence lists, for each aliased cell, the field IDs in winning
// order: the specific name first, the generic alias after it. When both
// appear in one input batch the first non-blank value is written.
var aliasPrecedence = [][]string{
	{"day_rate", "unit_rate"},
	{"customer_postcode", "postcode"},
}

var fieldIndex map[string]LogicalField

// guardedCells holds every cell owned by a RequiresEnabled field; only
// these ever report locked.
var guardedCells map[CellRef]bool

func init() {
	fieldIndex = make(map[string]LogicalField, len(QuoteFields)+MaxArrays*len(arraySubFields))
	for _, f := range QuoteFields {
		fieldIndex[f.ID] = f
	}
	// Per-array fields are generated rather than typed out 32 times.
	for n := 1; n <= MaxArrays; n++ {
		for _, sf := range arraySubFields {
			f := LogicalField{
				ID:              fmt.Sprintf("array%d_%s", n, sf.Suffix),
				Ref:             CellRef{quoteSheet, fmt.Sprintf("%s%d", sf.Col, 33+n)},
				Kind:            sf.Kind,
				Category:        CategoryArray,
				Array:           n,
				RequiresEnabled: true,
			}
			fieldIndex[f.ID] = f
		}
	}
	guardedCells = make(map[CellRef]bool)
	for _, f := range fieldIndex {
		if f.RequiresEnabled {
			guardedCells[f.Ref] = true
		}
	}
}

// ResolveField looks up a logical field by ID.
func ResolveField(id string) (LogicalField, error) {
	f, ok := fieldIndex[id]
	if !ok {
		return LogicalField{}, fmt.Errorf("%w: %q", ErrUnknownField, id)
	}
	return f, nil
}

// Classify returns the pipeline category for a logical field ID.
func Classify(id string) (Category, error) {
	f, err := ResolveField(id)
	if err != nil {
		return "", err
	}
	return f.Category, nil
}

// AllFields returns every logical field in registry order: the static
// catalogue followed by the generated per-array fields, arrays ascending.
func AllFields() []LogicalField {
	out := make([]LogicalField, 0, len(fieldIndex))
	out = append(out, QuoteFields...)
	for n := 1; n <= MaxArrays; n++ {
		for _, sf := range arraySubFields {
			f := fieldIndex[fmt.Sprintf("array%d_%s", n, sf.Suffix)]
			out = append(out, f)
		}
	}
	return out
}

// ArrayFields returns the sub-fields of one array in fixed write order.
func ArrayFields(n int) []LogicalField {
	fields := make([]LogicalField, 0, len(arraySubFields))
	for _, sf := range arraySubFields {
		fields = append(fields, fieldIndex[fmt.Sprintf("array%d_%s", n, sf.Suffix)])
	}
	return fields
}

// ResolveAlias picks the value to write for an aliased cell. It walks the
// fixed precedence list and returns the first field present in the batch
// with a non-blank value, plus the losing IDs so the caller can drop them
// from the batch. Fields without aliases are returned unchanged.
func ResolveAlias(batch map[string]string, id string) (winnerID string, losers []string) {
	for _, group := range aliasPrecedence {
		member := false
		for _, gid := range group {
			if gid == id {
				member = true
				break
			}
		}
		if !member {
			continue
		}
		for _, gid := range group {
			if v, ok := batch[gid]; ok && v != "" && winnerID == "" {
				winnerID = gid
			}
		}
		if winnerID == "" {
			// Every group member present was blank; keep the specific one.
			winnerID = group[0]
		}
		for _, gid := range group {
			if _, ok := batch[gid]; ok && gid != winnerID {
				losers = append(losers, gid)
			}
		}
		return winnerID, losers
	}
	return id, nil
}
