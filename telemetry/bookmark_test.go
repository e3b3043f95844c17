package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, t BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == t {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_GridGrowth(t *testing.T) {
	bd := NewBookmarkDetector(0)

	bookmarks := bd.Check([]SubstanceStats{
		{Substance: "Kalium", WindowEndTick: 10, Growths: 1, Resolution: 11},
		{Substance: "Chemokine", WindowEndTick: 10},
	})

	if len(bookmarks) != 1 || bookmarks[0].Type != BookmarkGridGrowth {
		t.Fatalf("expected one grid_growth bookmark, got %+v", bookmarks)
	}
	if bookmarks[0].Substance != "Kalium" || bookmarks[0].Tick != 10 {
		t.Errorf("unexpected bookmark identity: %+v", bookmarks[0])
	}
}

func TestBookmarkDetector_SteadyStateOnce(t *testing.T) {
	bd := NewBookmarkDetector(0.01)

	masses := []float64{10, 50, 90, 100, 100.5, 100.6, 100.6, 100.6, 100.6}
	count := 0
	for i, m := range masses {
		bookmarks := bd.Check([]SubstanceStats{{Substance: "Kalium", WindowEndTick: int32(i), TotalMass: m}})
		if hasBookmark(bookmarks, BookmarkSteadyState) {
			count++
			if i != 6 {
				t.Errorf("steady_state triggered at window %d, want 6", i)
			}
		}
	}
	if count != 1 {
		t.Errorf("expected steady_state exactly once, got %d", count)
	}
}

func TestBookmarkDetector_MassCrash(t *testing.T) {
	bd := NewBookmarkDetector(0)

	for i := 0; i < 3; i++ {
		bd.Check([]SubstanceStats{{Substance: "Kalium", WindowEndTick: int32(i), TotalMass: 100}})
	}

	bookmarks := bd.Check([]SubstanceStats{{Substance: "Kalium", WindowEndTick: 3, TotalMass: 60}})
	if !hasBookmark(bookmarks, BookmarkMassCrash) {
		t.Error("expected mass_crash bookmark")
	}

	// Peak was reset, so a small further drop doesn't trigger again.
	bookmarks = bd.Check([]SubstanceStats{{Substance: "Kalium", WindowEndTick: 4, TotalMass: 55}})
	if hasBookmark(bookmarks, BookmarkMassCrash) {
		t.Error("mass_crash should not repeat after peak reset")
	}
}
