package grid

import "testing"

func countTargets(g Grid) int {
	n := 0
	for _, s := range g {
		if s == Target {
			n++
		}
	}
	return n
}

func TestGenerateKeepsSingleTarget(t *testing.T) {
	b := NewWithSeed(1)
	for i := 0; i < 500; i++ {
		b.Generate()
		cells := b.Cells()
		if n := countTargets(cells); n != 1 {
			t.Fatalf("iteration %d: expected 1 target, got %d", i, n)
		}
		for j, s := range cells {
			if s < Up || s > Right {
				t.Fatalf("iteration %d: cell %d has invalid symbol %v", i, j, s)
			}
		}
	}
}

func TestGenerateUsesAllNonTargetSymbols(t *testing.T) {
	b := NewWithSeed(7)
	seen := map[Symbol]bool{}
	for i := 0; i < 50; i++ {
		b.Generate()
		for _, s := range b.Cells() {
			seen[s] = true
		}
	}
	for _, s := range []Symbol{Up, Down, Left, Right} {
		if !seen[s] {
			t.Fatalf("expected %s to appear", s)
		}
	}
}

func TestResolveTapHitRegenerates(t *testing.T) {
	b := NewWithSeed(42)
	for i := 0; i < 100; i++ {
		idx := b.TargetIndex()
		if idx < 0 {
			t.Fatalf("no target on board")
		}
		if !b.ResolveTap(idx) {
			t.Fatalf("expected hit on target cell %d", idx)
		}
		if n := countTargets(b.Cells()); n != 1 {
			t.Fatalf("expected 1 target after regenerate, got %d", n)
		}
	}
}

func TestResolveTapMissLeavesGrid(t *testing.T) {
	b := NewWithSeed(3)
	before := b.Cells()
	target := b.TargetIndex()
	for i := 0; i < Cells; i++ {
		if i == target {
			continue
		}
		if b.ResolveTap(i) {
			t.Fatalf("expected miss on cell %d", i)
		}
		if b.Cells() != before {
			t.Fatalf("grid changed after miss on cell %d", i)
		}
	}
}

func TestResolveTapOutOfRangePanics(t *testing.T) {
	for _, idx := range []int{-1, Cells, 100} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for index %d", idx)
				}
			}()
			NewWithSeed(1).ResolveTap(idx)
		}()
	}
}

func TestIndex(t *testing.T) {
	if got := Index(2, 3); got != 11 {
		t.Fatalf("expected 11, got %d", got)
	}
}
