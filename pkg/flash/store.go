// Package flash carries one-shot notifications from a request that
// redirects to the request that renders the next page.
package flash

import (
	"encoding/gob"
	"fmt"
	"net/http"

	"github.com/entrhq/pagekit/pkg/toast"
	"github.com/gorilla/sessions"
)

// DefaultSessionName is the cookie holding pending flashes.
const DefaultSessionName = "pagekit_flash"

// Message is a pending flash.
type Message struct {
	Category toast.Category
	Text     string
}

func init() {
	gob.Register(Message{})
}

// Store adds and pops flashes on a gorilla session.
type Store struct {
	sessions sessions.Store
	name     string
}

// NewStore wraps an existing session store.
func NewStore(store sessions.Store, name string) *Store {
	if name == "" {
		name = DefaultSessionName
	}
	return &Store{sessions: store, name: name}
}

// NewCookieStore keeps flashes in a signed cookie.
func NewCookieStore(secret []byte, name string, secure bool) *Store {
	cs := sessions.NewCookieStore(secret)
	cs.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return NewStore(cs, name)
}

// Add queues a flash for the next rendered page.
func (s *Store) Add(w http.ResponseWriter, r *http.Request, category toast.Category, text string) error {
	session, err := s.sessions.Get(r, s.name)
	if err != nil && session == nil {
		return fmt.Errorf("failed to load flash session: %w", err)
	}
	session.AddFlash(Message{Category: toast.ParseCategory(string(category)), Text: text})
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("failed to save flash session: %w", err)
	}
	return nil
}

// Pop returns and clears the queued flashes in the order they were added.
// A missing or undecodable session yields no flashes.
func (s *Store) Pop(w http.ResponseWriter, r *http.Request) ([]Message, error) {
	session, err := s.sessions.Get(r, s.name)
	if err != nil {
		if session != nil && session.IsNew {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load flash session: %w", err)
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}
	if err := session.Save(r, w); err != nil {
		return nil, fmt.Errorf("failed to save flash session: %w", err)
	}

	out := make([]Message, 0, len(raw))
	for _, v := range raw {
		if m, ok := v.(Message); ok {
			out = append(out, m)
		}
	}
	return out, nil
}
