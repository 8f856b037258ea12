package pagination

// ItemKind distinguishes page buttons from the collapsed middle range.
type ItemKind int

const (
	KindPage ItemKind = iota
	KindMore
)

// Item is one entry of the desktop page-number strip.
type Item struct {
	Kind   ItemKind
	Page   int
	Active bool

	// Pages lists the pages behind a KindMore item.
	Pages []int
}

// Controls computes the page-number strip.
type Controls struct {
	core *Core
}

// NewControls creates Controls over core.
func NewControls(core *Core) *Controls {
	return &Controls{core: core}
}

// PageItems lists every page when the total fits the visible window.
// Otherwise it keeps pages 1 and 2, the current page when it lies outside
// the first and last pair, a "more" item holding the remaining middle pages,
// and the last two pages.
func (c *Controls) PageItems(d Descriptor) []Item {
	if d.Pages <= 0 {
		return nil
	}

	page := func(n int) Item {
		return Item{Kind: KindPage, Page: n, Active: n == d.Page}
	}

	if d.Pages <= c.core.opts.MaxPagesVisible {
		items := make([]Item, 0, d.Pages)
		for n := 1; n <= d.Pages; n++ {
			items = append(items, page(n))
		}
		return items
	}

	items := []Item{page(1), page(2)}

	inMiddle := d.Page > 2 && d.Page < d.Pages-1
	if inMiddle {
		items = append(items, page(d.Page))
	}

	var rest []int
	for n := 3; n <= d.Pages-2; n++ {
		if inMiddle && n == d.Page {
			continue
		}
		rest = append(rest, n)
	}
	if len(rest) > 0 {
		items = append(items, Item{Kind: KindMore, Pages: rest})
	}

	return append(items, page(d.Pages-1), page(d.Pages))
}
