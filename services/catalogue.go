package services

// EquipmentCategory names one manufacturer reference table in the workbook.
type EquipmentCategory string

const (
	CategoryPanel           EquipmentCategory = "panel"
	CategoryBattery         EquipmentCategory = "battery"
	CategorySolarInverter   EquipmentCategory = "solar_inverter"
	CategoryBatteryInverter EquipmentCategory = "battery_inverter"
)

// CategoryLayout describes where one category's manufacturer reference
// table lives: a header row of manufacturer names with model lists in the
// columns beneath, plus the ordered retry locations the resolver falls
// back through when a template revision has moved things.
type CategoryLayout struct {
	Sheet     string
	AltSheets []string

	// HeaderRow is the 1-based row holding manufacturer names, scanned
	// from FirstCol to LastCol. AltHeaderRows are tried when the primary
	// row yields no match.
	HeaderRow     int
	AltHeaderRows []int
	FirstCol      string
	LastCol       string

	// Model lists occupy DataFirstRow..DataLastRow of the matched
	// manufacturer's column. The two inverter categories share a sheet
	// with disjoint row ranges.
	DataFirstRow int
	DataLastRow  int
}

// categoryLayouts is the per-category table geometry of the current quote
// template, with the fallback locations of earlier template revisions.
var categoryLayouts = map[EquipmentCategory]CategoryLayout{
	CategoryPanel: {
		Sheet:         "Panels",
		AltSheets:     []string{"Panel Data", "PanelData"},
		HeaderRow:     2,
		AltHeaderRows: []int{1, 4},
		FirstCol:      "B",
		LastCol:       "Z",
		DataFirstRow:  3,
		DataLastRow:   40,
	},
	CategoryBattery: {
		Sheet:         "Batteries",
		AltSheets:     []string{"Battery Data", "BatteryData"},
		HeaderRow:     2,
		AltHeaderRows: []int{1, 4},
		FirstCol:      "B",
		LastCol:       "Z",
		DataFirstRow:  3,
		DataLastRow:   40,
	},
	CategorySolarInverter: {
		Sheet:         "Inverters",
		AltSheets:     []string{"Inverter Data", "InverterData"},
		HeaderRow:     2,
		AltHeaderRows: []int{1},
		FirstCol:      "B",
		LastCol:       "Z",
		DataFirstRow:  3,
		DataLastRow:   25,
	},
	CategoryBatteryInverter: {
		Sheet:         "Inverters",
		AltSheets:     []string{"Inverter Data", "InverterData"},
		HeaderRow:     30,
		AltHeaderRows: []int{28},
		FirstCol:      "B",
		LastCol:       "Z",
		DataFirstRow:  31,
		DataLastRow:   50,
	},
}

// fallbackModels is the shipped catalogue used when every layout strategy
// comes up empty, so a known category never yields an empty option set.
// Keys are normalized manufacturer names; the empty key is the
// category-wide default for manufacturers not listed.
var fallbackModels = map[EquipmentCategory]map[string][]string{
	CategoryPanel: {
		"longi": {"Hi-MO 5 LR5-54HPH 405W", "Hi-MO 6 LR5-54HTH 425W"},
		"ja solar": {"JAM54S30 410/MR", "JAM54D40 435/LB"},
		"jinko": {"Tiger Neo N-type 54HL4-B 425W", "Tiger Neo N-type 54HL4R-B 440W"},
		"": {"Standard 400W Mono", "Standard 420W Mono", "Standard 450W Mono"},
	},
	CategoryBattery: {
		"givenergy": {"Giv-Bat 5.2", "Giv-Bat 9.5", "All in One 13.5"},
		"pylontech": {"US3000C", "US5000"},
		"": {"5.2kWh Battery", "9.5kWh Battery", "13.5kWh Battery"},
	},
	CategorySolarInverter: {
		"solaredge": {"SE3500H", "SE5000H", "SE6000H"},
		"solis": {"S6-GR1P3.6K", "S6-GR1P5K"},
		"": {"3.6kW Hybrid", "5kW Hybrid", "6kW Hybrid"},
	},
	CategoryBatteryInverter: {
		"givenergy": {"Giv-HY 3.6", "Giv-HY 5.0"},
		"": {"3kW Battery Inverter", "5kW Battery Inverter"},
	},
}

// structuralWords are header/scaffolding terms the heuristic sheet scan
// refuses to treat as model names.
var structuralWords = map[string]bool{
	"total":        true,
	"sheet":        true,
	"column":       true,
	"row":          true,
	"model":        true,
	"models":       true,
	"manufacturer": true,
	"name":         true,
	"notes":        true,
	"table":        true,
	"header":       true,
	"n/a":          true,
	"tbc":          true,
}

// FallbackModels returns the shipped model list for a category and
// manufacturer: the manufacturer-specific list when one exists, the
// category default otherwise. Unknown categories return nil.
func FallbackModels(category EquipmentCategory, manufacturer string) []string {
	byMaker, ok := fallbackModels[category]
	if !ok {
		return nil
	}
	if models, ok := byMaker[normalizeName(manufacturer)]; ok {
		return models
	}
	return byMaker[""]
}
