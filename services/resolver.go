package services

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// heuristicScanCap bounds the last-resort candidate set returned by a
// full-sheet scan with no manufacturer match.
const heuristicScanCap = 50

// ListModels resolves the valid model names for a manufacturer within one
// equipment category by searching the workbook's reference tables. The
// strategies run precise-to-heuristic and the first hit wins, so a moved
// or reshuffled template degrades gracefully instead of failing the quote:
//
//  1. direct header search on the category's expected sheet and range
//  2. the same search on the category's alternate sheets
//  3. the same search on alternate header rows of the found sheet
//  4. a full-sheet heuristic scan for model-shaped cells
//  5. the shipped fallback catalogue
//
// A known category never yields an empty list; an unknown category is
// ErrNotFound.
func ListModels(f *excelize.File, category EquipmentCategory, manufacturer string) ([]string, error) {
	layout, ok := categoryLayouts[category]
	if !ok {
		return nil, fmt.Errorf("%w: equipment category %q", ErrNotFound, category)
	}

	sheet := ""
	for _, name := range append([]string{layout.Sheet}, layout.AltSheets...) {
		if idx, _ := f.GetSheetIndex(name); idx >= 0 {
			sheet = name
			break
		}
	}

	if sheet != "" {
		// Strategies 1-2: expected header row on whichever sheet exists.
		if models := headerSearch(f, sheet, layout, layout.HeaderRow, manufacturer); len(models) > 0 {
			return models, nil
		}
		// Strategy 3: alternate header rows.
		for _, row := range layout.AltHeaderRows {
			if models := headerSearch(f, sheet, layout, row, manufacturer); len(models) > 0 {
				log.Printf("resolver: %s/%s matched on alternate header row %d", category, manufacturer, row)
				return models, nil
			}
		}
		// Strategy 4: heuristic scan of the whole sheet.
		if models := heuristicScan(f, sheet, manufacturer); len(models) > 0 {
			log.Printf("resolver: %s/%s resolved by heuristic sheet scan (%d candidates)", category, manufacturer, len(models))
			return models, nil
		}
	}

	// Strategy 5: shipped catalogue.
	log.Printf("resolver: %s/%s fell through to static catalogue", category, manufacturer)
	return FallbackModels(category, manufacturer), nil
}

// headerSearch scans one header row for the manufacturer and returns that
// column's model list, or nil when no header matches.
func headerSearch(f *excelize.File, sheet string, layout CategoryLayout, headerRow int, manufacturer string) []string {
	firstCol, err := excelize.ColumnNameToNumber(layout.FirstCol)
	if err != nil {
		return nil
	}
	lastCol, err := excelize.ColumnNameToNumber(layout.LastCol)
	if err != nil {
		return nil
	}

	for c := firstCol; c <= lastCol; c++ {
		colName, _ := excelize.ColumnNumberToName(c)
		header, err := f.GetCellValue(sheet, fmt.Sprintf("%s%d", colName, headerRow))
		if err != nil || strings.TrimSpace(header) == "" {
			continue
		}
		if manufacturerMatch(header, manufacturer) {
			// The data range never reaches back over the header itself,
			// which matters when an alternate header row sits inside it.
			firstRow := layout.DataFirstRow
			if firstRow <= headerRow {
				firstRow = headerRow + 1
			}
			return columnModels(f, sheet, colName, firstRow, layout.DataLastRow)
		}
	}
	return nil
}

// columnModels collects the non-blank cells of one column within the data
// row range, deduplicated with order preserved.
func columnModels(f *excelize.File, sheet, col string, firstRow, lastRow int) []string {
	var models []string
	seen := map[string]bool{}
	for r := firstRow; r <= lastRow; r++ {
		v, err := f.GetCellValue(sheet, fmt.Sprintf("%s%d", col, r))
		if err != nil {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		models = append(models, v)
	}
	return models
}

// manufacturerMatch compares a header cell against the requested
// manufacturer: exact (case-insensitive), substring either direction, then
// prefix-normalized with a single leading marker token stripped from both
// sides (reference tables prefix letters like "B "/"S " to tell battery
// and solar variants of one maker apart).
func manufacturerMatch(header, manufacturer string) bool {
	h := normalizeName(header)
	m := normalizeName(manufacturer)
	if h == "" || m == "" {
		return false
	}
	if h == m {
		return true
	}
	if strings.Contains(h, m) || strings.Contains(m, h) {
		return true
	}
	hs, ms := stripMarkerToken(h), stripMarkerToken(m)
	return hs == ms || strings.Contains(hs, ms) || strings.Contains(ms, hs)
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// stripMarkerToken drops a single short leading token ("B SolarEdge" →
// "solaredge"). Longer first tokens are part of the name and kept.
func stripMarkerToken(s string) string {
	parts := strings.SplitN(s, " ", 2)
	if len(parts) == 2 && len(parts[0]) <= 2 {
		return strings.TrimSpace(parts[1])
	}
	return s
}

// heuristicScan walks every cell of the sheet. When some cell matches the
// manufacturer it is treated as a header and only that column is gathered;
// otherwise every model-shaped cell on the sheet is returned, capped, as a
// last-resort candidate set.
func heuristicScan(f *excelize.File, sheet, manufacturer string) []string {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil
	}

	headerCol := -1
	headerRow := -1
	for r, row := range rows {
		for c, cell := range row {
			if manufacturerMatch(cell, manufacturer) {
				headerCol, headerRow = c, r
				break
			}
		}
		if headerCol >= 0 {
			break
		}
	}

	var candidates []string
	seen := map[string]bool{}
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] || !looksLikeModel(v) {
			return
		}
		seen[v] = true
		candidates = append(candidates, v)
	}

	if headerCol >= 0 {
		for r := headerRow + 1; r < len(rows); r++ {
			if headerCol < len(rows[r]) {
				add(rows[r][headerCol])
			}
		}
		return candidates
	}

	for _, row := range rows {
		for _, cell := range row {
			if len(candidates) >= heuristicScanCap {
				return candidates
			}
			add(cell)
		}
	}
	return candidates
}

var cellRefPattern = regexp.MustCompile(`^[A-Za-z]{1,3}[0-9]+$`)

// looksLikeModel filters heuristic-scan cells: a plausible model name has
// at least one letter, is not a number, date, cell reference, formula or
// structural word, and is 3-100 characters long.
func looksLikeModel(s string) bool {
	if len(s) < 3 || len(s) > 100 {
		return false
	}
	hasLetter := false
	for _, r := range s {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') {
			hasLetter = true
			break
		}
	}
	if !hasLetter {
		return false
	}
	if strings.HasPrefix(s, "=") {
		return false
	}
	if _, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64); err == nil {
		return false
	}
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return false
		}
	}
	if cellRefPattern.MatchString(s) {
		return false
	}
	return !structuralWords[normalizeName(s)]
}
