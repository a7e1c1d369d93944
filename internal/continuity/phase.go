package continuity

import (
	"math"

	"github.com/patchc/compiler/internal/schedule"
)

// ReconcilePhaseOffset computes the new TimeModel's ResetEpoch so that
// the phase rail it produces at swap time (nowMs) matches the phase the
// old TimeModel was producing an instant before the swap (spec.md 4.K
// step 3). Both epochs and nowMs are caller-supplied milliseconds on
// the same monotonic clock; this function is pure so it can be tested
// without a live clock.
func ReconcilePhaseOffset(oldModel, newModel schedule.TimeModel, nowMs int64) int64 {
	if oldModel.PeriodMs <= 0 || newModel.PeriodMs <= 0 {
		return nowMs
	}
	elapsed := float64(nowMs - oldModel.ResetEpoch)
	oldPhase := math.Mod(elapsed, oldModel.PeriodMs) / oldModel.PeriodMs
	if oldPhase < 0 {
		oldPhase += 1
	}
	targetOffset := oldPhase * newModel.PeriodMs
	return int64(math.Round(float64(nowMs) - targetOffset))
}
