package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

// workbookExt is the physical file extension of quote workbooks.
const workbookExt = ".xlsx"

// VersionRef identifies one physical document version of an opportunity.
type VersionRef struct {
	OpportunityID string
	Version       int
	Path          string
}

// VersionStore resolves and allocates numbered workbook copies under one
// storage root. Every call scans the directory fresh; there is no cached
// index, so concurrent use across different opportunities is safe. Two
// concurrent allocations for the same opportunity can compute the same
// next version; that race is accepted because callers serialize population
// per opportunity at a higher layer.
type VersionStore struct {
	Root  string
	Label string // template label prefixed onto every file name
}

// fileName builds `<label>-<oppId>-v<N>.xlsx`.
func (vs *VersionStore) fileName(opportunityID string, version int) string {
	return fmt.Sprintf("%s-%s-v%d%s", vs.Label, opportunityID, version, workbookExt)
}

// legacyName builds the un-versioned layout used before numbering, treated
// as version 0 when present.
func (vs *VersionStore) legacyName(opportunityID string) string {
	return fmt.Sprintf("%s-%s%s", vs.Label, opportunityID, workbookExt)
}

// scan returns the highest existing version number for an opportunity, or
// -1 when no file exists at all. A missing storage root is created rather
// than reported.
func (vs *VersionStore) scan(opportunityID string) (int, error) {
	if err := os.MkdirAll(vs.Root, 0o755); err != nil {
		return -1, fmt.Errorf("ensure storage root %s: %w", vs.Root, err)
	}

	entries, err := os.ReadDir(vs.Root)
	if err != nil {
		return -1, fmt.Errorf("scan storage root %s: %w", vs.Root, err)
	}

	pattern := regexp.MustCompile(
		"^" + regexp.QuoteMeta(vs.Label+"-"+opportunityID) + `-v(\d+)` + regexp.QuoteMeta(workbookExt) + "$")

	max := -1
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if m := pattern.FindStringSubmatch(entry.Name()); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil && n > max {
				max = n
			}
		} else if entry.Name() == vs.legacyName(opportunityID) && max < 0 {
			max = 0
		}
	}
	return max, nil
}

// ResolveLatest returns the highest-numbered existing version for an
// opportunity, or ErrNotFound when none exists.
func (vs *VersionStore) ResolveLatest(opportunityID string) (VersionRef, error) {
	max, err := vs.scan(opportunityID)
	if err != nil {
		return VersionRef{}, err
	}
	if max < 0 {
		return VersionRef{}, fmt.Errorf("%w: no document for opportunity %s", ErrNotFound, opportunityID)
	}
	name := vs.fileName(opportunityID, max)
	if max == 0 {
		name = vs.legacyName(opportunityID)
	}
	return VersionRef{
		OpportunityID: opportunityID,
		Version:       max,
		Path:          filepath.Join(vs.Root, name),
	}, nil
}

// AllocateNext returns a handle for the next version without materializing
// the file; the caller copies the template into ref.Path.
func (vs *VersionStore) AllocateNext(opportunityID string) (VersionRef, error) {
	max, err := vs.scan(opportunityID)
	if err != nil {
		return VersionRef{}, err
	}
	next := max + 1
	if next < 1 {
		next = 1
	}
	return VersionRef{
		OpportunityID: opportunityID,
		Version:       next,
		Path:          filepath.Join(vs.Root, vs.fileName(opportunityID, next)),
	}, nil
}

// Exists reports whether the version's file has been materialized.
func (vs *VersionStore) Exists(ref VersionRef) bool {
	info, err := os.Stat(ref.Path)
	return err == nil && !info.IsDir()
}

// Materialize copies the template workbook into the version's path.
func (vs *VersionStore) Materialize(ref VersionRef, templatePath string) error {
	src, err := os.Open(templatePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: template %s", ErrNotFound, templatePath)
		}
		return fmt.Errorf("open template: %w", err)
	}
	defer src.Close()

	dst, err := os.Create(ref.Path)
	if err != nil {
		return fmt.Errorf("create version file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy template to %s: %w", ref.Path, err)
	}
	log.Printf("versions: materialized %s v%d at %s", ref.OpportunityID, ref.Version, ref.Path)
	return nil
}

// PDFDir returns the sibling directory holding exported artifacts,
// creating it when missing.
func (vs *VersionStore) PDFDir() (string, error) {
	dir := filepath.Join(vs.Root, "pdfs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure pdf dir: %w", err)
	}
	return dir, nil
}

// PDFPath returns the export path for an opportunity. One artifact per
// opportunity, overwritten on each export.
func (vs *VersionStore) PDFPath(opportunityID string) (string, error) {
	dir, err := vs.PDFDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fmt.Sprintf("%s - %s.pdf", vs.Label, opportunityID)), nil
}
