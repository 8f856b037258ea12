package strength

import (
	"strconv"

	"github.com/entrhq/pagekit/pkg/dom"
)

// Meter class names.
const (
	BarClass      = "strength-bar"
	LabelClass    = "strength-label"
	FeedbackClass = "password-feedback"
	LevelAttr     = "data-level"
	emptyBarClass = "bg-gray-200"
	maxFeedback   = 3
)

var barColors = []string{"bg-red-500", "bg-orange-500", "bg-yellow-500", "bg-blue-500", "bg-purple-500"}

var labelColors = []string{"text-red-600", "text-orange-600", "text-yellow-600", "text-blue-600", "text-purple-600"}

// UpdateMeter renders r into the meter inside container: filled bars, the
// label and up to three feedback lines.
func UpdateMeter(container *dom.Element, r Result) {
	if container == nil {
		return
	}
	filled := r.Bars()
	color := colorIndex(r)

	for i, bar := range container.QueryClass(BarClass) {
		index := i
		if v, ok := bar.Attr(LevelAttr); ok {
			if n, err := strconv.Atoi(v); err == nil {
				index = n
			}
		}
		bar.RemoveClass(barColors...)
		bar.RemoveClass(emptyBarClass)
		if index < filled {
			bar.AddClass(barColors[color])
		} else {
			bar.AddClass(emptyBarClass)
		}
	}

	for _, label := range container.QueryClass(LabelClass) {
		label.SetText(r.Label())
		label.RemoveClass(labelColors...)
		if filled > 0 {
			label.AddClass(labelColors[color])
		}
	}

	for _, fb := range container.QueryClass(FeedbackClass) {
		fb.SetText("")
		for _, line := range feedbackLines(r) {
			p := dom.NewElement("p")
			p.SetText(line)
			fb.AppendChild(p)
		}
		fb.ToggleClass("hidden", len(feedbackLines(r)) == 0)
	}
}

func colorIndex(r Result) int {
	i := r.Score
	if r.Local {
		i = r.Bars() - 1
	}
	if i < 0 {
		i = 0
	}
	if i >= len(barColors) {
		i = len(barColors) - 1
	}
	return i
}

func feedbackLines(r Result) []string {
	var lines []string
	if r.Feedback.Warning != "" {
		lines = append(lines, r.Feedback.Warning)
	}
	for i, s := range r.Feedback.Suggestions {
		if i == maxFeedback {
			break
		}
		lines = append(lines, s)
	}
	return lines
}
