package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/dropdown"
	"github.com/entrhq/pagekit/pkg/types"
)

var (
	// ErrInvalidPage is returned for non-numeric or non-positive page input.
	ErrInvalidPage = errors.New("invalid page number")

	// ErrPageTooLarge is returned when the requested page is past the last one.
	ErrPageTooLarge = errors.New("page number exceeds page count")
)

// InputError carries the message shown to the user for rejected input.
type InputError struct {
	Message string
	Err     error

	// Clamp is the value the input should be reset to, or 0 to leave it.
	Clamp int
}

func (e *InputError) Error() string { return e.Message }
func (e *InputError) Unwrap() error { return e.Err }

// Interactions turns control input into navigation targets. Every accepted
// or rejected request is emitted as an event so the caller can show a
// loading state or an error toast.
type Interactions struct {
	opts      Options
	emitEvent types.EventEmitter
	mu        sync.RWMutex
}

// NewInteractions creates Interactions. A nil emitter discards events.
func NewInteractions(opts Options, emitEvent types.EventEmitter) *Interactions {
	if emitEvent == nil {
		emitEvent = types.Discard
	}
	return &Interactions{opts: opts, emitEvent: emitEvent}
}

// SetEmitter replaces the event emitter.
func (i *Interactions) SetEmitter(emitEvent types.EventEmitter) {
	if emitEvent == nil {
		emitEvent = types.Discard
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.emitEvent = emitEvent
}

func (i *Interactions) emit(event *types.UIEvent) {
	i.mu.RLock()
	emit := i.emitEvent
	i.mu.RUnlock()
	emit(event)
}

// JumpToPage validates input against pages and returns current with the
// page parameter replaced. Rejections are *InputError values wrapping
// ErrInvalidPage or ErrPageTooLarge.
func (i *Interactions) JumpToPage(current *url.URL, input string, pages int) (*url.URL, error) {
	n, ok := parseInt(input)
	if !ok || n < 1 {
		return nil, i.reject(&InputError{Message: "Please enter a valid page number.", Err: ErrInvalidPage})
	}
	if n > pages {
		return nil, i.reject(&InputError{
			Message: fmt.Sprintf("Page number cannot exceed %d.", pages),
			Err:     ErrPageTooLarge,
			Clamp:   pages,
		})
	}

	next := withQuery(current, func(q url.Values) {
		q.Set(i.opts.PageParam, strconv.Itoa(n))
	})
	i.emit(types.NewNavigateEvent(next.String(), fmt.Sprintf("Jumping to page %d...", n)))
	return next, nil
}

// JumpFromInput reads a jump-to-page input element, using its max attribute
// as the page count. On ErrPageTooLarge the input is reset to max.
func (i *Interactions) JumpFromInput(current *url.URL, input *dom.Element) (*url.URL, error) {
	pages, _ := strconv.Atoi(input.AttrOr("max", "0"))
	next, err := i.JumpToPage(current, input.AttrOr("value", ""), pages)

	var inputErr *InputError
	if errors.As(err, &inputErr) && inputErr.Clamp > 0 {
		input.SetAttr("value", strconv.Itoa(inputErr.Clamp))
	}
	return next, err
}

// ClampInput keeps typed numeric values inside [1, pages]. Non-numeric
// values are returned unchanged.
func (i *Interactions) ClampInput(value string, pages int) string {
	n, ok := parseInt(value)
	if !ok {
		return value
	}
	if n > pages {
		return strconv.Itoa(pages)
	}
	if n < 1 {
		return "1"
	}
	return value
}

// ChangePerPage sets per_page and drops page so the listing restarts at the
// first page.
func (i *Interactions) ChangePerPage(current *url.URL, perPage int) *url.URL {
	next := withQuery(current, func(q url.Values) {
		q.Set(i.opts.PerPageParam, strconv.Itoa(perPage))
		q.Del(i.opts.PageParam)
	})
	i.emit(types.NewNavigateEvent(next.String(), fmt.Sprintf("Changing to %d items per page...", perPage)))
	return next
}

// ChangeFilter sets a listing filter such as the log type and drops page.
func (i *Interactions) ChangeFilter(current *url.URL, key, value string) *url.URL {
	next := withQuery(current, func(q url.Values) {
		q.Set(key, value)
		q.Del(i.opts.PageParam)
	})
	i.emit(types.NewNavigateEvent(next.String(), "Loading..."))
	return next
}

// BindDropdowns registers the "more" menus inside container with dropdowns
// and returns how many were registered.
func (i *Interactions) BindDropdowns(doc *dom.Document, container *dom.Element, dropdowns *dropdown.Manager) int {
	n := 0
	for _, button := range container.QueryAttr(dropdown.ToggleAttr) {
		if !strings.HasPrefix(button.ID(), MenuButtonPrefix) {
			continue
		}
		id := button.AttrOr(dropdown.ToggleAttr, "")
		panel := doc.ByID(id)
		if panel == nil {
			continue
		}
		dropdowns.Register(id, button, panel)
		n++
	}
	return n
}

func (i *Interactions) reject(err *InputError) error {
	i.emit(types.NewNavigateRejectedEvent(err.Message))
	return err
}

func withQuery(current *url.URL, mutate func(url.Values)) *url.URL {
	next := *current
	q := next.Query()
	mutate(q)
	next.RawQuery = q.Encode()
	return &next
}

// parseInt reads a leading optionally signed integer the way number inputs
// are read by browsers, so "12abc" is 12 and "abc" is not a number.
func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
