package scheduling

import (
	"fmt"
	"time"

	"hms/clinical/internal/models"
)

var statuses = []string{
	models.StatusScheduled,
	models.StatusCompleted,
	models.StatusCancelled,
	models.StatusNoShow,
}

// ValidStatus reports whether status is in the fixed appointment
// vocabulary. Any status may follow any other; only the vocabulary is
// enforced.
func ValidStatus(status string) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

// StatusVocabulary lists the allowed statuses for error messages.
func StatusVocabulary() []string {
	out := make([]string, len(statuses))
	copy(out, statuses)
	return out
}

// CheckStartTime rejects start instants strictly before now. Applied on
// create and full update only, never on a status-only change.
func CheckStartTime(start, now time.Time) error {
	if start.Before(now) {
		return fmt.Errorf("appointment start %s is in the past", start.Format(time.RFC3339))
	}
	return nil
}
