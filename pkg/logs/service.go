package logs

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/entrhq/pagekit/pkg/pagination"
)

// Page is one page of a listing.
type Page struct {
	Type       Type
	Entries    []Entry
	Pagination pagination.Descriptor
}

// Service pages and exports logs.
type Service struct {
	store Store
	opts  pagination.Options
	now   func() time.Time
}

// NewService creates a service over store using opts for page sizes.
func NewService(store Store, opts pagination.Options) *Service {
	return &Service{store: store, opts: opts, now: time.Now}
}

// Options returns the pagination options the service enforces.
func (s *Service) Options() pagination.Options {
	return s.opts
}

// Page returns page of t. A per-page size outside the allowed options falls
// back to the default, and a page past the end is clamped to the last one.
func (s *Service) Page(ctx context.Context, t Type, page, perPage int) (Page, error) {
	if _, err := ParseType(string(t)); err != nil || t == "" {
		return Page{}, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	if !s.opts.AllowsPerPage(perPage) {
		perPage = s.opts.DefaultPerPage
	}

	total, err := s.store.Count(ctx, t)
	if err != nil {
		return Page{}, err
	}
	d := pagination.NewDescriptor(page, perPage, total)

	entries, err := s.store.List(ctx, t, d.Offset(), d.PerPage)
	if err != nil {
		return Page{}, err
	}
	return Page{Type: t, Entries: entries, Pagination: d}, nil
}

// Export writes every entry of t as CSV with a header row.
func (s *Service) Export(ctx context.Context, t Type, w io.Writer) error {
	if _, err := ParseType(string(t)); err != nil || t == "" {
		return fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
	entries, err := s.store.All(ctx, t)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Columns(t)); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	now := s.now()
	for _, e := range entries {
		e.Type = t
		if err := cw.Write(e.Row(now)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFilename is the attachment name for an export of t.
func ExportFilename(t Type) string {
	return string(t) + "_export.csv"
}
