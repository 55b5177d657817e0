package services

import "fmt"

// ActionSpec is the declared effect of one document-native action. The
// source workbook hides this behind macros; here the unlock side effects
// are data so the pipeline's expectations stay test-visible.
type ActionSpec struct {
	// Sets writes the selection marker the workbook's own logic keys off.
	// A zero Sets means the action leaves no marker of its own.
	Sets CellRef
	// SetsValue is the marker value written to Sets.
	SetsValue string
	// Unlocks lists the cells that become editable once the action runs.
	Unlocks []CellRef
}

// Selections is the closed set of mutually exclusive option choices a
// caller may request, keyed by choice name.
var Selections = map[string]ActionSpec{
	"SingleRate": {
		Sets:      CellRef{quoteSheet, "D10"},
		SetsValue: "Single Rate",
		Unlocks: []CellRef{
			{quoteSheet, "D11"}, // day rate
			{quoteSheet, "D13"}, // standing charge
			{quoteSheet, "D14"}, // annual usage
		},
	},
	"DualRate": {
		Sets:      CellRef{quoteSheet, "D10"},
		SetsValue: "Dual Rate",
		Unlocks: []CellRef{
			{quoteSheet, "D11"},
			{quoteSheet, "D12"}, // night rate
			{quoteSheet, "D13"},
			{quoteSheet, "D14"},
		},
	},
	"ExistingCustomerYes": {
		Sets:      CellRef{quoteSheet, "D17"},
		SetsValue: "Yes",
		Unlocks: []CellRef{
			{quoteSheet, "D18"},
			{quoteSheet, "D19"},
		},
	},
	"ExistingCustomerNo": {
		Sets:      CellRef{quoteSheet, "D17"},
		SetsValue: "No",
	},
	// No marker cell: battery and warranty selections are replayed on
	// reopen from the values they let through (see deriveEnablement).
	"BatteryIncluded": {
		Unlocks: []CellRef{
			{quoteSheet, "D27"},
			{quoteSheet, "D28"},
			{quoteSheet, "D29"},
		},
	},
	"PanelWarrantyExtended": {
		Unlocks: []CellRef{
			{quoteSheet, "D24"},
		},
	},
	"PaymentUpfront": {
		Sets:      CellRef{quoteSheet, "D44"},
		SetsValue: "Upfront",
		Unlocks: []CellRef{
			{quoteSheet, "D45"}, // deposit
		},
	},
	"PaymentFinance": {
		Sets:      CellRef{quoteSheet, "D44"},
		SetsValue: "Finance",
		Unlocks: []CellRef{
			{quoteSheet, "D45"},
			{quoteSheet, "D46"}, // term
			{quoteSheet, "D47"}, // APR
		},
	},
	"PaymentLease": {
		Sets:      CellRef{quoteSheet, "D44"},
		SetsValue: "Lease",
		Unlocks: []CellRef{
			{quoteSheet, "D45"},
		},
	},
}

// markerSelections maps trigger-cell values back to selection names so an
// existing workbook's enablement can be replayed on reopen.
var markerSelections = map[CellRef]map[string]string{
	{quoteSheet, "D10"}: {"Single Rate": "SingleRate", "Dual Rate": "DualRate"},
	{quoteSheet, "D17"}: {"Yes": "ExistingCustomerYes", "No": "ExistingCustomerNo"},
	{quoteSheet, "D44"}: {"Upfront": "PaymentUpfront", "Finance": "PaymentFinance", "Lease": "PaymentLease"},
}

// arrayCountRef is the trigger field whose numeric value unlocks that many
// array rows. Writing 3 makes arrays 1-3 editable and leaves 4-8 locked.
var arrayCountRef = CellRef{quoteSheet, "D32"}

// arrayUnlocks returns the cells unlocked by an array count of n.
func arrayUnlocks(n int) []CellRef {
	if n > MaxArrays {
		n = MaxArrays
	}
	var refs []CellRef
	for i := 1; i <= n; i++ {
		for _, f := range ArrayFields(i) {
			refs = append(refs, f.Ref)
		}
	}
	return refs
}

// SelectionAction resolves a selection name to its declared action.
func SelectionAction(name string) (ActionSpec, error) {
	spec, ok := Selections[name]
	if !ok {
		return ActionSpec{}, fmt.Errorf("%w: %q", ErrActionNotFound, name)
	}
	return spec, nil
}

// ── Payment methods ──────────────────────────────────────────

// DefaultPaymentSelection is used when a business payment method has no
// mapping; an unrecognized method degrades rather than failing the run.
const DefaultPaymentSelection = "PaymentUpfront"

// paymentSelections maps business payment-method names to workbook
// selection names.
var paymentSelections = map[string]string{
	"Cash":         "PaymentUpfront",
	"BankTransfer": "PaymentUpfront",
	"Card":         "PaymentUpfront",
	"Finance":      "PaymentFinance",
	"Lease":        "PaymentLease",
}

// PaymentSelection maps a business payment-method name to the workbook's
// selection name, falling back to DefaultPaymentSelection.
func PaymentSelection(method string) string {
	if sel, ok := paymentSelections[method]; ok {
		return sel
	}
	return DefaultPaymentSelection
}
