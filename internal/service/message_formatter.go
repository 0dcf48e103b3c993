package service

import (
	"github.com/microcosm-cc/bluemonday"

	"github.com/noah-isme/admin-audit-api/internal/models"
)

// MessageFormatter builds the Spanish, grammatically gendered
// descriptions attached to lifecycle activity records.
type MessageFormatter struct {
	sanitizer *bluemonday.Policy
}

// NewMessageFormatter constructs the formatter. Display names are
// user-supplied, so they are stripped of markup before being embedded
// into messages the viewer renders.
func NewMessageFormatter() *MessageFormatter {
	return &MessageFormatter{sanitizer: bluemonday.StrictPolicy()}
}

type genderForm struct {
	article string
	suffix  string
}

func formFor(gender models.Gender) genderForm {
	switch gender {
	case models.GenderMasculine:
		return genderForm{article: "El usuario ", suffix: "o"}
	case models.GenderFeminine:
		return genderForm{article: "La usuaria ", suffix: "a"}
	default:
		return genderForm{article: "Le usuarie ", suffix: "e"}
	}
}

// FormatLifecycle renders "article + name + predicate" for a lifecycle
// action, e.g. "La usuaria Ana fue creada". An action outside the known
// set is appended verbatim — that is the extensibility escape hatch for
// callers recording custom events, not an error.
func (f *MessageFormatter) FormatLifecycle(action, name string, gender models.Gender) string {
	form := formFor(gender)
	return form.article + f.sanitizer.Sanitize(name) + predicate(action, form.suffix)
}

func predicate(action, suffix string) string {
	switch action {
	case models.ActivityEventCreated:
		return " fue cread" + suffix
	case models.ActivityEventUpdated:
		return " fue actualizad" + suffix
	case models.ActivityEventDeleted:
		return " fue eliminad" + suffix
	case models.ActivityEventRestored:
		return " fue restaurad" + suffix
	case models.ActivityEventForceDeleted:
		return " fue eliminad" + suffix + " permanentemente"
	default:
		return action
	}
}
