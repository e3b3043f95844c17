package diffusion

import "testing"

func TestIndexRoundTrip(t *testing.T) {
	ix := NewIndex(4)
	if ix.Boxes() != 64 {
		t.Fatalf("expected 64 boxes, got %d", ix.Boxes())
	}

	seen := make(map[int]bool)
	for k := 0; k < 4; k++ {
		for j := 0; j < 4; j++ {
			for i := 0; i < 4; i++ {
				off := ix.Offset(i, j, k)
				if seen[off] {
					t.Fatalf("offset %d assigned twice", off)
				}
				seen[off] = true

				ci, cj, ck := ix.Coords(off)
				if ci != i || cj != j || ck != k {
					t.Errorf("Coords(%d) = (%d,%d,%d), want (%d,%d,%d)", off, ci, cj, ck, i, j, k)
				}
			}
		}
	}
}

func TestIndexXFastest(t *testing.T) {
	ix := NewIndex(5)
	if got := ix.Offset(1, 0, 0); got != 1 {
		t.Errorf("Offset(1,0,0) = %d, want 1", got)
	}
	if got := ix.Offset(0, 1, 0); got != 5 {
		t.Errorf("Offset(0,1,0) = %d, want 5", got)
	}
	if got := ix.Offset(0, 0, 1); got != 25 {
		t.Errorf("Offset(0,0,1) = %d, want 25", got)
	}
}

func TestIndexOutOfRangePanics(t *testing.T) {
	ix := NewIndex(3)
	cases := [][3]int{{-1, 0, 0}, {0, 3, 0}, {0, 0, 7}}
	for _, c := range cases {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for %v", c)
				}
			}()
			ix.Offset(c[0], c[1], c[2])
		}()
	}
}
