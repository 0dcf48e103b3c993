package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/admin-audit-api/internal/models"
)

func TestFormatLifecycle(t *testing.T) {
	formatter := NewMessageFormatter()

	cases := []struct {
		name     string
		action   string
		display  string
		gender   models.Gender
		expected string
	}{
		{"created feminine", models.ActivityEventCreated, "Ana", models.GenderFeminine, "La usuaria Ana fue creada"},
		{"deleted masculine", models.ActivityEventDeleted, "Luis", models.GenderMasculine, "El usuario Luis fue eliminado"},
		{"updated neutral", models.ActivityEventUpdated, "Sam", models.GenderNeutral, "Le usuarie Sam fue actualizade"},
		{"restored feminine", models.ActivityEventRestored, "Ana", models.GenderFeminine, "La usuaria Ana fue restaurada"},
		{"force deleted masculine", models.ActivityEventForceDeleted, "Luis", models.GenderMasculine, "El usuario Luis fue eliminado permanentemente"},
		{"unknown gender falls back to neutral", models.ActivityEventCreated, "Sam", models.Gender("other"), "Le usuarie Sam fue creade"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, formatter.FormatLifecycle(tc.action, tc.display, tc.gender))
		})
	}
}

func TestFormatLifecycleUnknownActionPassesThrough(t *testing.T) {
	formatter := NewMessageFormatter()

	message := formatter.FormatLifecycle("archived", "Luis", models.GenderMasculine)
	require.Equal(t, "El usuario Luisarchived", message)
}

func TestFormatLifecycleSanitizesDisplayName(t *testing.T) {
	formatter := NewMessageFormatter()

	message := formatter.FormatLifecycle(models.ActivityEventCreated, "<b>Ana</b>", models.GenderFeminine)
	require.Equal(t, "La usuaria Ana fue creada", message)
}
