package strength

import (
	"fmt"
	"strings"

	"github.com/nbutton23/zxcvbn-go"
)

// MinScore is the lowest zxcvbn score a new password may have.
const MinScore = 2

var labels = map[int]string{
	0: "very weak",
	1: "weak",
	2: "fair",
	3: "good",
	4: "very strong",
}

// Estimator scores passwords with zxcvbn.
type Estimator struct {
	MinScore int
}

// NewEstimator creates an estimator requiring MinScore.
func NewEstimator() *Estimator {
	return &Estimator{MinScore: MinScore}
}

// Estimate scores pw, penalising similarity to userInputs.
func (e *Estimator) Estimate(pw string, userInputs []string) Result {
	if pw == "" {
		return Result{
			Score:     0,
			Strength:  "empty",
			CrackTime: "instantly",
			Feedback:  Feedback{Warning: "Password is required", Suggestions: []string{}},
		}
	}

	m := zxcvbn.PasswordStrength(pw, cleanInputs(userInputs))
	score := m.Score
	if score < 0 {
		score = 0
	}
	if score > 4 {
		score = 4
	}

	return Result{
		Score:     score,
		Strength:  labels[score],
		CrackTime: m.CrackTimeDisplay,
		Feedback:  e.feedback(pw, score, userInputs),
	}
}

func (e *Estimator) feedback(pw string, score int, userInputs []string) Feedback {
	fb := Feedback{Suggestions: []string{}}
	if score >= e.MinScore {
		return fb
	}

	lower := strings.ToLower(pw)
	for _, in := range cleanInputs(userInputs) {
		if len(in) >= 3 && strings.Contains(lower, strings.ToLower(in)) {
			fb.Warning = "Avoid using your name or email in the password."
			break
		}
	}
	if fb.Warning == "" {
		fb.Warning = "This password is easy to guess."
	}

	fb.Suggestions = append(fb.Suggestions, "Add another word or two. Uncommon words are better.")
	fb.Suggestions = append(fb.Suggestions, Local(pw).Feedback.Suggestions...)
	return fb
}

// Validate applies the registration rules: composition first, then the
// minimum zxcvbn score with its warning and at most two suggestions. The
// password is acceptable when no errors are returned.
func (e *Estimator) Validate(pw string, userInputs []string) []string {
	if pw == "" {
		return []string{"Password is required."}
	}

	var errs []string
	if len([]rune(pw)) < 8 {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters long.", 8))
	}
	if !upperRe.MatchString(pw) {
		errs = append(errs, "Password must contain at least one uppercase letter.")
	}
	if !lowerRe.MatchString(pw) {
		errs = append(errs, "Password must contain at least one lowercase letter.")
	}
	if !digitRe.MatchString(pw) {
		errs = append(errs, "Password must contain at least one digit.")
	}
	if !specialRe.MatchString(pw) {
		errs = append(errs, "Password must contain at least one special character.")
	}

	r := e.Estimate(pw, userInputs)
	if r.Score < e.MinScore {
		switch r.Score {
		case 0:
			errs = append(errs, "Password is too weak (very easy to crack).")
		case 1:
			errs = append(errs, "Password is weak (easy to crack).")
		default:
			errs = append(errs, "Password is too weak.")
		}
		if r.Feedback.Warning != "" {
			errs = append(errs, "Warning: "+r.Feedback.Warning)
		}
		for i, s := range r.Feedback.Suggestions {
			if i == 2 {
				break
			}
			errs = append(errs, "Suggestion: "+s)
		}
	}
	return errs
}

func cleanInputs(inputs []string) []string {
	out := make([]string, 0, len(inputs))
	for _, in := range inputs {
		if in = strings.TrimSpace(in); in != "" {
			out = append(out, in)
		}
	}
	return out
}
