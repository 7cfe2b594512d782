package okr

import (
	"fmt"
	"math"
	"strings"

	"okrproject/errs"
	"okrproject/models"
)

// KeyResultProgress returns round(current/target*100) clamped to [0, 100].
// A zero target yields 0 rather than dividing by zero.
func KeyResultProgress(current, target float64) int {
	if target <= 0 {
		return 0
	}
	return clampPercent(int(math.Round(current / target * 100)))
}

// Average returns the rounded mean of values, or 0 for an empty slice.
func Average(values []int) int {
	if len(values) == 0 {
		return 0
	}
	sum := 0
	for _, v := range values {
		sum += v
	}
	return int(math.Round(float64(sum) / float64(len(values))))
}

// ObjectiveProgress is the rounded mean of the key result progress values.
func ObjectiveProgress(keyResults []models.KeyResult) int {
	values := make([]int, 0, len(keyResults))
	for _, kr := range keyResults {
		values = append(values, KeyResultProgress(kr.CurrentValue, kr.TargetValue))
	}
	return Average(values)
}

// ValidateKeyResults rejects key results that cannot produce a progress value.
func ValidateKeyResults(keyResults []models.KeyResult) error {
	for i, kr := range keyResults {
		field := fmt.Sprintf("key_results[%d]", i)
		if strings.TrimSpace(kr.Title) == "" {
			return errs.Validation(field+".title", "title is required")
		}
		if !finite(kr.CurrentValue) || !finite(kr.TargetValue) {
			return errs.Validation(field, "values must be finite numbers")
		}
		if kr.TargetValue < 0 {
			return errs.Validation(field+".target_value", "target value cannot be negative")
		}
		if kr.CurrentValue < 0 {
			return errs.Validation(field+".current_value", "current value cannot be negative")
		}
		if kr.CurrentValue > kr.TargetValue {
			return errs.Validation(field+".current_value", "current value cannot be greater than target value")
		}
	}
	return nil
}

// Recalculate validates the key results of o and refreshes every derived
// field: per key result progress, objective progress and status.
func Recalculate(o *models.Objective) error {
	if err := ValidateKeyResults(o.KeyResults); err != nil {
		return err
	}
	for i := range o.KeyResults {
		kr := &o.KeyResults[i]
		kr.Progress = KeyResultProgress(kr.CurrentValue, kr.TargetValue)
	}
	o.Progress = ObjectiveProgress(o.KeyResults)
	o.Status = StatusFromProgress(o.Progress)
	return nil
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
