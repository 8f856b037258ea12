// Package pagination builds page-link URLs and control markup from a
// server-produced descriptor and turns jump-to-page and per-page input into
// navigation targets.
package pagination

import (
	"errors"
	"fmt"

	"github.com/entrhq/pagekit/pkg/config"
)

// Options tune URL parameter names and control layout.
type Options struct {
	PageParam           string
	PerPageParam        string
	DefaultPerPage      int
	MaxPagesVisible     int
	ShowJumpToPage      bool
	JumpToPageThreshold int
	PerPageOptions      []int
}

// DefaultOptions returns the stock parameter names and thresholds.
func DefaultOptions() Options {
	return Options{
		PageParam:           "page",
		PerPageParam:        "per_page",
		DefaultPerPage:      25,
		MaxPagesVisible:     5,
		ShowJumpToPage:      true,
		JumpToPageThreshold: 10,
		PerPageOptions:      []int{25, 50, 100},
	}
}

// OptionsFromConfig overlays the pagination config section on DefaultOptions.
func OptionsFromConfig(s config.PaginationSettings) Options {
	opts := DefaultOptions()
	if s.DefaultPerPage > 0 {
		opts.DefaultPerPage = s.DefaultPerPage
	}
	if len(s.PerPageOptions) > 0 {
		opts.PerPageOptions = append([]int(nil), s.PerPageOptions...)
	}
	if s.MaxPagesVisible > 0 {
		opts.MaxPagesVisible = s.MaxPagesVisible
	}
	if s.JumpToPageThreshold > 0 {
		opts.JumpToPageThreshold = s.JumpToPageThreshold
	}
	opts.ShowJumpToPage = s.ShowJumpToPage
	return opts
}

// AllowsPerPage reports whether n is one of the selectable page sizes.
func (o Options) AllowsPerPage(n int) bool {
	for _, v := range o.PerPageOptions {
		if v == n {
			return true
		}
	}
	return false
}

// Descriptor is the pagination state rendered by the server.
type Descriptor struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
	PrevNum int  `json:"prev_num,omitempty"`
	NextNum int  `json:"next_num,omitempty"`
}

// NewDescriptor computes a descriptor for total items. page is clamped into
// [1, pages]; a non-positive perPage falls back to 25.
func NewDescriptor(page, perPage, total int) Descriptor {
	if perPage < 1 {
		perPage = DefaultOptions().DefaultPerPage
	}
	if total < 0 {
		total = 0
	}

	pages := (total + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	if pages == 0 {
		page = 1
	}

	d := Descriptor{
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
	if d.HasPrev {
		d.PrevNum = page - 1
	}
	if d.HasNext {
		d.NextNum = page + 1
	}
	return d
}

var errInconsistent = errors.New("inconsistent pagination descriptor")

// Validate checks that the descriptor fields agree. Descriptors with no
// pages are always valid.
func (d Descriptor) Validate() error {
	if d.Pages <= 0 {
		return nil
	}
	if d.Page < 1 || d.Page > d.Pages {
		return fmt.Errorf("%w: page %d outside [1, %d]", errInconsistent, d.Page, d.Pages)
	}
	if d.HasPrev != (d.Page > 1) {
		return fmt.Errorf("%w: has_prev=%v on page %d", errInconsistent, d.HasPrev, d.Page)
	}
	if d.HasNext != (d.Page < d.Pages) {
		return fmt.Errorf("%w: has_next=%v on page %d of %d", errInconsistent, d.HasNext, d.Page, d.Pages)
	}
	return nil
}

// Offset is the index of the first item on the page.
func (d Descriptor) Offset() int {
	return (d.Page - 1) * d.PerPage
}

// Range returns the 1-based positions of the first and last item shown.
func (d Descriptor) Range() (start, end int) {
	start = d.PerPage*(d.Page-1) + 1
	if d.Page < d.Pages {
		end = d.PerPage * d.Page
	} else {
		end = d.Total
	}
	return start, end
}
