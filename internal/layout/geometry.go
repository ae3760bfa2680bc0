// Package layout separates overlapping graph nodes with a bounded iterative
// push-apart pass. It is a heuristic, not a planar layout: convergence within
// the pass bound is expected for typical graph sizes (tens of clusters and
// devices) but not guaranteed.
package layout

import "watchtower/dashd/internal/graphview"

// Padding is the collision margin added around every node box, and the extra
// distance a push moves the pushed node beyond the overlap.
const Padding = 24

type size struct {
	w, h float64
}

// nodeSizes is the per-kind footprint used for collision boxes.
var nodeSizes = map[graphview.NodeKind]size{
	graphview.KindCluster:   {w: 180, h: 120},
	graphview.KindDevice:    {w: 140, h: 90},
	graphview.KindExternal:  {w: 150, h: 80},
	graphview.KindVLANGroup: {w: 200, h: 140},
}

// Box is an axis-aligned bounding rectangle.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Union returns the smallest box covering both boxes.
func (b Box) Union(o Box) Box {
	if o.MinX < b.MinX {
		b.MinX = o.MinX
	}
	if o.MinY < b.MinY {
		b.MinY = o.MinY
	}
	if o.MaxX > b.MaxX {
		b.MaxX = o.MaxX
	}
	if o.MaxY > b.MaxY {
		b.MaxY = o.MaxY
	}
	return b
}

func (b Box) centerX() float64 { return (b.MinX + b.MaxX) / 2 }
func (b Box) centerY() float64 { return (b.MinY + b.MaxY) / 2 }

// BoundingBox computes the padded collision box for one node. The node
// position is the box's top-left corner before padding.
func BoundingBox(n graphview.Node) Box {
	sz, ok := nodeSizes[n.Kind]
	if !ok {
		sz = nodeSizes[graphview.KindDevice]
	}
	return Box{
		MinX: n.X - Padding,
		MinY: n.Y - Padding,
		MaxX: n.X + sz.w + Padding,
		MaxY: n.Y + sz.h + Padding,
	}
}

// Overlap reports whether two boxes intersect. Boxes that merely touch do
// not overlap.
func Overlap(a, b Box) bool {
	return a.MinX < b.MaxX && a.MaxX > b.MinX &&
		a.MinY < b.MaxY && a.MaxY > b.MinY
}

// PushVector computes the displacement that moves b away from a along the
// axis of least overlap, by the overlap distance plus one padding unit,
// signed toward b's centroid relative to a's.
func PushVector(a, b Box) (dx, dy float64) {
	overlapX := minf(a.MaxX, b.MaxX) - maxf(a.MinX, b.MinX)
	overlapY := minf(a.MaxY, b.MaxY) - maxf(a.MinY, b.MinY)

	if overlapX < overlapY {
		dx = overlapX + Padding
		if b.centerX() < a.centerX() {
			dx = -dx
		}
		return dx, 0
	}
	dy = overlapY + Padding
	if b.centerY() < a.centerY() {
		dy = -dy
	}
	return 0, dy
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
