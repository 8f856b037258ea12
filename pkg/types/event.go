package types

// UIEventType defines the type of event emitted by a page component.
type UIEventType string

const (
	EventTypeDropdownOpen      UIEventType = "dropdown_open"      // EventTypeDropdownOpen indicates a dropdown panel was opened.
	EventTypeDropdownClose     UIEventType = "dropdown_close"     // EventTypeDropdownClose indicates a dropdown panel was closed.
	EventTypeToastShown        UIEventType = "toast_shown"        // EventTypeToastShown indicates a toast or flash message became visible.
	EventTypeToastDismissed    UIEventType = "toast_dismissed"    // EventTypeToastDismissed indicates a toast was removed, manually or by timer.
	EventTypeThemeChange       UIEventType = "theme_change"       // EventTypeThemeChange indicates the theme preference was set explicitly.
	EventTypeSchemeChange      UIEventType = "scheme_change"      // EventTypeSchemeChange indicates the OS color scheme changed while tracking system.
	EventTypeTabSwitch         UIEventType = "tab_switch"         // EventTypeTabSwitch indicates a different tab became active.
	EventTypeNavigate          UIEventType = "navigate"           // EventTypeNavigate indicates a full page navigation was requested.
	EventTypeNavigateRejected  UIEventType = "navigate_rejected"  // EventTypeNavigateRejected indicates a navigation request failed validation.
	EventTypeCaptchaSolved     UIEventType = "captcha_solved"     // EventTypeCaptchaSolved indicates a captcha widget produced a token.
	EventTypeCaptchaReset      UIEventType = "captcha_reset"      // EventTypeCaptchaReset indicates a captcha token expired or errored.
	EventTypeSubmitBlocked     UIEventType = "submit_blocked"     // EventTypeSubmitBlocked indicates a form submission was refused.
	EventTypeStrengthEstimated UIEventType = "strength_estimated" // EventTypeStrengthEstimated indicates a password strength result is available.
)

// UIEvent represents an event emitted by a component while handling user input.
type UIEvent struct {
	// Metadata holds optional additional information about the event.
	Metadata map[string]interface{}

	// Type indicates the kind of event.
	Type UIEventType

	// Source names the component that emitted the event (dropdown, toast, ...).
	Source string

	// TargetID is the identifier of the element or entity the event concerns.
	TargetID string

	// Toast carries the notification for toast events.
	Toast *ToastInfo

	// Theme carries the preference and resolved theme for theme events.
	Theme *ThemeInfo

	// URL is the navigation target for navigate events.
	URL string

	// Message is the user-visible text for rejected or blocked events.
	Message string
}

// ToastInfo describes a notification in a toast event.
type ToastInfo struct {
	ID       string
	Text     string
	Category string

	// Manual is true when the toast was dismissed by the user rather than a timer.
	Manual bool
}

// ThemeInfo describes a theme change.
type ThemeInfo struct {
	// Preference is the stored tri-state value (light, dark, system).
	Preference string

	// Effective is the theme actually applied (light or dark).
	Effective string
}

// EventEmitter is a function type for emitting events.
type EventEmitter func(event *UIEvent)

// Discard is an EventEmitter that drops every event.
func Discard(*UIEvent) {}

// NewDropdownOpenEvent creates a dropdown open event.
func NewDropdownOpenEvent(id string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeDropdownOpen,
		Source:   "dropdown",
		TargetID: id,
		Metadata: make(map[string]interface{}),
	}
}

// NewDropdownCloseEvent creates a dropdown close event.
func NewDropdownCloseEvent(id string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeDropdownClose,
		Source:   "dropdown",
		TargetID: id,
		Metadata: make(map[string]interface{}),
	}
}

// NewToastShownEvent creates a toast shown event.
func NewToastShownEvent(id, text, category string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeToastShown,
		Source:   "toast",
		TargetID: id,
		Toast:    &ToastInfo{ID: id, Text: text, Category: category},
		Metadata: make(map[string]interface{}),
	}
}

// NewToastDismissedEvent creates a toast dismissed event.
func NewToastDismissedEvent(id, text, category string, manual bool) *UIEvent {
	return &UIEvent{
		Type:     EventTypeToastDismissed,
		Source:   "toast",
		TargetID: id,
		Toast:    &ToastInfo{ID: id, Text: text, Category: category, Manual: manual},
		Metadata: make(map[string]interface{}),
	}
}

// NewThemeChangeEvent creates a theme change event.
func NewThemeChangeEvent(preference, effective string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeThemeChange,
		Source:   "theme",
		Theme:    &ThemeInfo{Preference: preference, Effective: effective},
		Metadata: make(map[string]interface{}),
	}
}

// NewSchemeChangeEvent creates a scheme change event.
func NewSchemeChangeEvent(effective string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeSchemeChange,
		Source:   "theme",
		Theme:    &ThemeInfo{Preference: "system", Effective: effective},
		Metadata: make(map[string]interface{}),
	}
}

// NewTabSwitchEvent creates a tab switch event.
func NewTabSwitchEvent(name string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeTabSwitch,
		Source:   "tabs",
		TargetID: name,
		Metadata: make(map[string]interface{}),
	}
}

// NewNavigateEvent creates a navigate event. message is the loading text shown
// while the browser leaves the page.
func NewNavigateEvent(url, message string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeNavigate,
		Source:   "pagination",
		URL:      url,
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// NewNavigateRejectedEvent creates a navigate rejected event.
func NewNavigateRejectedEvent(message string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeNavigateRejected,
		Source:   "pagination",
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// NewCaptchaSolvedEvent creates a captcha solved event.
func NewCaptchaSolvedEvent(formID string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeCaptchaSolved,
		Source:   "captcha",
		TargetID: formID,
		Metadata: make(map[string]interface{}),
	}
}

// NewCaptchaResetEvent creates a captcha reset event. reason is "expired", "error" or "reset".
func NewCaptchaResetEvent(formID, reason string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeCaptchaReset,
		Source:   "captcha",
		TargetID: formID,
		Metadata: map[string]interface{}{"reason": reason},
	}
}

// NewSubmitBlockedEvent creates a submit blocked event.
func NewSubmitBlockedEvent(source, formID, message string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeSubmitBlocked,
		Source:   source,
		TargetID: formID,
		Message:  message,
		Metadata: make(map[string]interface{}),
	}
}

// NewStrengthEstimatedEvent creates a strength estimated event.
func NewStrengthEstimatedEvent(score int, label string) *UIEvent {
	return &UIEvent{
		Type:     EventTypeStrengthEstimated,
		Source:   "strength",
		Message:  label,
		Metadata: map[string]interface{}{"score": score},
	}
}
