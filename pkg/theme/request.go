package theme

import (
	"net/http"
	"strings"
)

// SchemeHintHeader is the client hint carrying prefers-color-scheme.
const SchemeHintHeader = "Sec-CH-Prefers-Color-Scheme"

// FromRequest returns the preference stored in the theme cookie and the
// theme to pre-render, resolved against the colour scheme client hint.
// Without a hint the system preference renders light.
func FromRequest(r *http.Request) (pref, effective Preference) {
	pref = System
	if c, err := r.Cookie(StorageKey); err == nil {
		if p, perr := ParsePreference(c.Value); perr == nil {
			pref = p
		}
	}
	return pref, Resolve(pref, requestScheme(r).Dark())
}

func requestScheme(r *http.Request) Scheme {
	hint := strings.Trim(strings.TrimSpace(r.Header.Get(SchemeHintHeader)), `"`)
	return StaticScheme(strings.EqualFold(hint, "dark"))
}

// Cookie builds the cookie that stores p. System clears the cookie.
func Cookie(p Preference) *http.Cookie {
	c := &http.Cookie{
		Name:     StorageKey,
		Value:    string(p),
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		SameSite: http.SameSiteLaxMode,
	}
	if p == System {
		c.Value = ""
		c.MaxAge = -1
	}
	return c
}
