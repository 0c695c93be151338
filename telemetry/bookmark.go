package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkCaptureBurst BookmarkType = "capture_burst"
	BookmarkSaturation   BookmarkType = "force_saturation"
	BookmarkBecalmed     BookmarkType = "becalmed"
	BookmarkSteadyCruise BookmarkType = "steady_cruise"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentSpeedPeak    float64 // peak mean speed in recent history
	stableWindowsCount int     // consecutive windows with steady motion
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for steady cruise detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Capture burst: captures > 2x rolling average
		if b := bd.checkCaptureBurst(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Force saturation: clamp rate > 2x rolling average
		if b := bd.checkSaturation(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Becalmed: mean speed dropped >70% from recent peak
		if b := bd.checkBecalmed(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Steady cruise: low speed/force variance over 5+ windows
		if b := bd.checkSteadyCruise(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	// Update history
	bd.addToHistory(stats)

	// Track speed peak
	if stats.SpeedMean > bd.recentSpeedPeak {
		bd.recentSpeedPeak = stats.SpeedMean
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkCaptureBurst(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	// Calculate rolling average captures per window
	var totalCaptures int
	for _, h := range history {
		totalCaptures += h.Captures
	}
	if totalCaptures == 0 {
		return nil
	}

	avgCaptures := float64(totalCaptures) / float64(len(history))
	if float64(stats.Captures) > avgCaptures*2.0 && stats.Captures >= 3 {
		return &Bookmark{
			Type:        BookmarkCaptureBurst,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d captures is %.1fx average (%.1f)", stats.Captures, float64(stats.Captures)/avgCaptures, avgCaptures),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSaturation(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	// Calculate rolling average saturation rate
	var totalSaturation float64
	for _, h := range history {
		totalSaturation += h.SaturationRate
	}
	avgSaturation := totalSaturation / float64(len(history))

	if avgSaturation == 0 {
		return nil
	}

	if stats.SaturationRate > avgSaturation*2.0 && stats.SaturationRate > 0.5 {
		return &Bookmark{
			Type:        BookmarkSaturation,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Saturation rate %.2f is %.1fx average (%.2f)", stats.SaturationRate, stats.SaturationRate/avgSaturation, avgSaturation),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkBecalmed(stats WindowStats) *Bookmark {
	if bd.recentSpeedPeak < 0.5 {
		return nil
	}

	dropPercent := 1.0 - stats.SpeedMean/bd.recentSpeedPeak
	if dropPercent > 0.70 {
		// Reset peak after triggering
		oldPeak := bd.recentSpeedPeak
		bd.recentSpeedPeak = stats.SpeedMean

		return &Bookmark{
			Type:        BookmarkBecalmed,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Mean speed dropped %.0f%% from peak %.2f to %.2f", dropPercent*100, oldPeak, stats.SpeedMean),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkSteadyCruise(stats WindowStats) *Bookmark {
	// Need a real fleet in motion
	if stats.ActiveCount < 8 || stats.SpeedMean <= 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	// Check variance in recent windows
	var speedSum, forceSum float64
	for _, h := range history[len(history)-4:] {
		speedSum += h.SpeedMean
		forceSum += h.ForceMean
	}
	speedMean := speedSum / 4
	forceMean := forceSum / 4

	var speedVar, forceVar float64
	for _, h := range history[len(history)-4:] {
		speedDiff := h.SpeedMean - speedMean
		forceDiff := h.ForceMean - forceMean
		speedVar += speedDiff * speedDiff
		forceVar += forceDiff * forceDiff
	}
	speedVar /= 4
	forceVar /= 4

	// Low variance: coefficient of variation < 20%
	speedCV := 0.0
	if speedMean > 0 {
		speedCV = speedVar / (speedMean * speedMean)
	}
	forceCV := 0.0
	if forceMean > 0 {
		forceCV = forceVar / (forceMean * forceMean)
	}

	if speedCV < 0.04 && forceCV < 0.04 { // CV^2 < 0.04 means CV < 0.2
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkSteadyCruise,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Steady cruise at mean speed %.2f with %d active vehicles over 5+ windows", stats.SpeedMean, stats.ActiveCount),
		}
	}

	return nil
}
