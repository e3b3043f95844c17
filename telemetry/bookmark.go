package telemetry

import (
	"fmt"
	"log/slog"
	"math"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkGridGrowth  BookmarkType = "grid_growth"
	BookmarkSteadyState BookmarkType = "steady_state"
	BookmarkMassCrash   BookmarkType = "mass_crash"
)

// steadyWindows is the number of consecutive quiet windows that make a
// steady state.
const steadyWindows = 3

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Substance   string       `csv:"substance"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"substance", b.Substance,
		"description", b.Description,
	)
}

// substanceHistory is the detector state of one substance.
type substanceHistory struct {
	lastMass     float64
	seen         bool
	peakMass     float64
	quietWindows int
}

// BookmarkDetector detects notable moments in the substance windows.
type BookmarkDetector struct {
	// SteadyTolerance is the relative mass change per window below which a
	// window counts as quiet.
	SteadyTolerance float64

	history map[string]*substanceHistory
}

// NewBookmarkDetector creates a detector with the given steady tolerance.
func NewBookmarkDetector(steadyTolerance float64) *BookmarkDetector {
	if steadyTolerance <= 0 {
		steadyTolerance = 0.005
	}
	return &BookmarkDetector{
		SteadyTolerance: steadyTolerance,
		history:         make(map[string]*substanceHistory),
	}
}

// Check analyzes one window of stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(window []SubstanceStats) []Bookmark {
	var bookmarks []Bookmark
	for _, s := range window {
		h, ok := bd.history[s.Substance]
		if !ok {
			h = &substanceHistory{}
			bd.history[s.Substance] = h
		}

		if s.Growths > 0 {
			bookmarks = append(bookmarks, bookmark(s, BookmarkGridGrowth,
				fmt.Sprintf("Grid grew %d time(s) to resolution %d, extent [%.1f, %.1f]", s.Growths, s.Resolution, s.Min, s.Max)))
		}

		if h.seen {
			if b := bd.checkSteadyState(h, s); b != nil {
				bookmarks = append(bookmarks, *b)
			}
			if b := bd.checkMassCrash(h, s); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}

		h.lastMass = s.TotalMass
		h.peakMass = math.Max(h.peakMass, s.TotalMass)
		h.seen = true
	}
	return bookmarks
}

func (bd *BookmarkDetector) checkSteadyState(h *substanceHistory, s SubstanceStats) *Bookmark {
	if s.TotalMass <= 0 {
		h.quietWindows = 0
		return nil
	}

	change := math.Abs(s.TotalMass-h.lastMass) / s.TotalMass
	if change < bd.SteadyTolerance {
		h.quietWindows++
	} else {
		h.quietWindows = 0
	}

	if h.quietWindows == steadyWindows { // trigger exactly once per quiet stretch
		b := bookmark(s, BookmarkSteadyState,
			fmt.Sprintf("Total mass %.4f changed less than %.2f%% over %d windows", s.TotalMass, bd.SteadyTolerance*100, steadyWindows))
		return &b
	}
	return nil
}

func (bd *BookmarkDetector) checkMassCrash(h *substanceHistory, s SubstanceStats) *Bookmark {
	if h.peakMass <= 0 {
		return nil
	}

	drop := 1 - s.TotalMass/h.peakMass
	if drop > 0.30 {
		// Reset peak after crash
		oldPeak := h.peakMass
		h.peakMass = s.TotalMass

		b := bookmark(s, BookmarkMassCrash,
			fmt.Sprintf("Total mass dropped %.0f%% from peak %.4f to %.4f", drop*100, oldPeak, s.TotalMass))
		return &b
	}
	return nil
}

func bookmark(s SubstanceStats, t BookmarkType, desc string) Bookmark {
	return Bookmark{
		RunID:       s.RunID,
		Type:        t,
		Tick:        s.WindowEndTick,
		Substance:   s.Substance,
		Description: desc,
	}
}
