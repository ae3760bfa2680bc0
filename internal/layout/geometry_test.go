package layout

import (
	"testing"

	"watchtower/dashd/internal/graphview"
)

func TestBoundingBox_padsNodeFootprint(t *testing.T) {
	n := graphview.Node{ID: "c1", Kind: graphview.KindCluster, X: 100, Y: 200}
	b := BoundingBox(n)

	if b.MinX != 100-Padding || b.MinY != 200-Padding {
		t.Fatalf("expected padded min corner, got (%v,%v)", b.MinX, b.MinY)
	}
	if b.MaxX != 100+180+Padding || b.MaxY != 200+120+Padding {
		t.Fatalf("expected padded max corner, got (%v,%v)", b.MaxX, b.MaxY)
	}
}

func TestOverlap_touchingBoxesDoNotOverlap(t *testing.T) {
	a := Box{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	b := Box{MinX: 10, MinY: 0, MaxX: 20, MaxY: 10}

	if Overlap(a, b) {
		t.Fatalf("expected touching boxes to not overlap")
	}
	b.MinX = 9
	if !Overlap(a, b) {
		t.Fatalf("expected intersecting boxes to overlap")
	}
}

func TestPushVector_leastOverlapAxis(t *testing.T) {
	a := Box{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	// Deep vertical overlap, shallow horizontal: push along X.
	b := Box{MinX: 90, MinY: 10, MaxX: 190, MaxY: 110}

	dx, dy := PushVector(a, b)
	if dy != 0 {
		t.Fatalf("expected pure horizontal push, got dy=%v", dy)
	}
	if dx != 10+Padding {
		t.Fatalf("expected push of overlap+padding, got dx=%v", dx)
	}
}

func TestPushVector_signedTowardCentroid(t *testing.T) {
	a := Box{MinX: 0, MinY: 0, MaxX: 100, MaxY: 100}
	// b sits left of a's centroid: push must be negative.
	b := Box{MinX: -90, MinY: 10, MaxX: 10, MaxY: 110}

	dx, dy := PushVector(a, b)
	if dy != 0 {
		t.Fatalf("expected pure horizontal push, got dy=%v", dy)
	}
	if dx >= 0 {
		t.Fatalf("expected negative push away from a, got dx=%v", dx)
	}
}
