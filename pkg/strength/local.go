// Package strength estimates password strength. The server scores with
// zxcvbn; browsers ask the server and fall back to a character-class
// heuristic when it cannot be reached.
package strength

import (
	"regexp"
)

// Feedback explains a score.
type Feedback struct {
	Warning     string   `json:"warning"`
	Suggestions []string `json:"suggestions"`
}

// Result is a strength estimate as exchanged with the strength endpoint.
type Result struct {
	Score     int      `json:"score"`
	Strength  string   `json:"strength"`
	CrackTime string   `json:"crack_time"`
	Feedback  Feedback `json:"feedback"`

	// Local is true for results computed by the fallback heuristic. Their
	// Score counts meter bars (0-5) instead of a zxcvbn score.
	Local bool `json:"-"`
}

// Label is the text shown under the meter.
func (r Result) Label() string {
	if r.CrackTime == "" || r.Local {
		return r.Strength
	}
	return r.Strength + " - Crack time: " + r.CrackTime
}

// Bars is how many of the five meter bars to fill.
func (r Result) Bars() int {
	if r.Score < 0 {
		return 0
	}
	if r.Score > 5 {
		return 5
	}
	return r.Score
}

// PromptText is shown while the password field is empty.
const PromptText = "Enter a password"

var localLabels = []string{"Very weak", "Weak", "Fair", "Good", "Very strong"}

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// Local scores pw by counting satisfied character classes and length. It
// never fails, which makes it the fallback for every remote error.
func Local(pw string) Result {
	if pw == "" {
		return Result{Score: 0, Strength: PromptText, Local: true}
	}

	score := 0
	var suggestions []string
	check := func(ok bool, suggestion string) {
		if ok {
			score++
			return
		}
		suggestions = append(suggestions, suggestion)
	}
	check(len([]rune(pw)) >= 8, "Use at least 8 characters")
	check(lowerRe.MatchString(pw), "Add lowercase letters")
	check(upperRe.MatchString(pw), "Add uppercase letters")
	check(digitRe.MatchString(pw), "Add numbers")
	check(specialRe.MatchString(pw), "Add special characters")

	display := score - 1
	if display > 4 {
		display = 4
	}
	label := localLabels[0]
	if display >= 0 {
		label = localLabels[display]
	}

	return Result{
		Score:    display + 1,
		Strength: label,
		Feedback: Feedback{Suggestions: suggestions},
		Local:    true,
	}
}
