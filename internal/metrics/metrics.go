package metrics

import (
	"sync/atomic"
)

// Metrics tracks work done during a run.
type Metrics struct {
	DiffsRun          uint64 `json:"diffs_run"`
	SubmodulesWalked  uint64 `json:"submodules_walked"`
	SubmodulesSkipped uint64 `json:"submodules_skipped"`
	TwoDotFallbacks   uint64 `json:"two_dot_fallbacks"`
	APIPagesFetched   uint64 `json:"api_pages_fetched"`
	FilesClassified   uint64 `json:"files_classified"`
}

var global = &Metrics{}

// DiffRun increments the count of git diff invocations.
func DiffRun() { atomic.AddUint64(&global.DiffsRun, 1) }

// SubmoduleWalked increments the count of submodules diffed.
func SubmoduleWalked() { atomic.AddUint64(&global.SubmodulesWalked, 1) }

// SubmoduleSkipped increments the count of submodules with an unresolved range.
func SubmoduleSkipped() { atomic.AddUint64(&global.SubmodulesSkipped, 1) }

// TwoDotFallback increments the count of three-dot to two-dot downgrades.
func TwoDotFallback() { atomic.AddUint64(&global.TwoDotFallbacks, 1) }

// APIPageFetched increments the count of hosted API pages read.
func APIPageFetched() { atomic.AddUint64(&global.APIPagesFetched, 1) }

// FilesClassified adds n to the count of classified files.
func FilesClassified(n int) { atomic.AddUint64(&global.FilesClassified, uint64(n)) }

// Get returns a snapshot of the current metrics.
func Get() Metrics {
	return Metrics{
		DiffsRun:          atomic.LoadUint64(&global.DiffsRun),
		SubmodulesWalked:  atomic.LoadUint64(&global.SubmodulesWalked),
		SubmodulesSkipped: atomic.LoadUint64(&global.SubmodulesSkipped),
		TwoDotFallbacks:   atomic.LoadUint64(&global.TwoDotFallbacks),
		APIPagesFetched:   atomic.LoadUint64(&global.APIPagesFetched),
		FilesClassified:   atomic.LoadUint64(&global.FilesClassified),
	}
}

// Reset resets all metrics to zero (useful for testing).
func Reset() {
	atomic.StoreUint64(&global.DiffsRun, 0)
	atomic.StoreUint64(&global.SubmodulesWalked, 0)
	atomic.StoreUint64(&global.SubmodulesSkipped, 0)
	atomic.StoreUint64(&global.TwoDotFallbacks, 0)
	atomic.StoreUint64(&global.APIPagesFetched, 0)
	atomic.StoreUint64(&global.FilesClassified, 0)
}
