package vantage

import (
	"fmt"
	"os"
	"time"
)

// debugStats holds per-render timing and pipeline metrics.
// Only populated when Widget.debug is true.
type debugStats struct {
	renderTime  time.Duration
	extractTime time.Duration
	syncTime    time.Duration
	path        RenderPath
	width       int
	height      int
	effectCount int
}

// debugLog prints render timing and pipeline stats to stderr.
func (w *Widget) debugLog(stats debugStats) {
	if !w.debug {
		return
	}
	total := stats.renderTime + stats.extractTime + stats.syncTime
	_, _ = fmt.Fprintf(os.Stderr,
		"[vantage] render: %v | extract: %v | sync: %v | total: %v\n",
		stats.renderTime, stats.extractTime, stats.syncTime, total)
	_, _ = fmt.Fprintf(os.Stderr,
		"[vantage] path: %s | size: %dx%d | effects: %d\n",
		stats.path, stats.width, stats.height, stats.effectCount)
}

// debugCheckResolution warns on stderr when an output dimension exceeds
// the threshold; oversized extractions dominate sync time long before
// they fail.
const debugMaxDimension = 4096

func (w *Widget) debugCheckResolution(width, height int) {
	if !w.debug {
		return
	}
	if width > debugMaxDimension || height > debugMaxDimension {
		_, _ = fmt.Fprintf(os.Stderr, "[vantage] warning: resolution %dx%d exceeds %d\n",
			width, height, debugMaxDimension)
	}
}
