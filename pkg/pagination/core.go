package pagination

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// Core builds page URLs.
type Core struct {
	opts Options
}

// NewCore creates a Core.
func NewCore(opts Options) *Core {
	return &Core{opts: opts}
}

// Options returns the options the core was built with.
func (c *Core) Options() Options {
	return c.opts
}

// BuildURL returns base with the non-empty extra parameters set, then the
// page parameter, then per_page. perPage wins over a per_page entry in extra;
// zero values are left out.
func (c *Core) BuildURL(base string, page int, extra map[string]string, perPage int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url %q: %w", base, err)
	}

	q := u.Query()
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if v := extra[k]; v != "" {
			q.Set(k, v)
		}
	}

	if page > 0 {
		q.Set(c.opts.PageParam, strconv.Itoa(page))
	}
	if perPage > 0 {
		q.Set(c.opts.PerPageParam, strconv.Itoa(perPage))
	} else if v := extra[c.opts.PerPageParam]; v != "" {
		q.Set(c.opts.PerPageParam, v)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// URLFunc maps a page number to its link.
type URLFunc func(page int) string

// Linker binds BuildURL to a base and extra parameters. Pages whose URL
// cannot be built link to "#".
func (c *Core) Linker(base string, extra map[string]string) URLFunc {
	return func(page int) string {
		s, err := c.BuildURL(base, page, extra, 0)
		if err != nil {
			return "#"
		}
		return s
	}
}
