package okr

import "okrproject/models"

// StatusFromProgress maps a progress percentage to a lifecycle status.
func StatusFromProgress(progress int) string {
	switch {
	case progress <= 0:
		return models.StatusNotStarted
	case progress >= 100:
		return models.StatusCompleted
	default:
		return models.StatusInProgress
	}
}

var Statuses = []string{models.StatusNotStarted, models.StatusInProgress, models.StatusCompleted}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}
