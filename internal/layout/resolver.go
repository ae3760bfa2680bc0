package layout

import "watchtower/dashd/internal/graphview"

// MaxPasses bounds the relaxation loop. Graphs that have not converged by
// then are left as-is; the next structural change gets another chance.
const MaxPasses = 50

// unit is one collision participant: a single free node, or the rigid member
// group of an expanded cluster behind its aggregate box.
type unit struct {
	box     Box
	members []int
}

// Resolve returns a copy of nodes with overlaps pushed apart. Member devices
// of an expanded cluster collide as one aggregate box and move as a rigid
// group; they are never pushed individually. The input slice is not mutated.
// The second return value is the number of passes executed, including the
// final zero-push pass.
func Resolve(nodes []graphview.Node, expanded map[string]bool) ([]graphview.Node, int) {
	out := make([]graphview.Node, len(nodes))
	copy(out, nodes)

	passes := 0
	for pass := 0; pass < MaxPasses; pass++ {
		passes++
		units := buildUnits(out, expanded)

		// Boxes are computed once per pass; pushes within a pass accumulate
		// on positions and take effect on the next pass's boxes.
		pushes := 0
		for i := 0; i < len(units); i++ {
			for j := i + 1; j < len(units); j++ {
				if !Overlap(units[i].box, units[j].box) {
					continue
				}
				dx, dy := PushVector(units[i].box, units[j].box)
				for _, idx := range units[j].members {
					out[idx].X += dx
					out[idx].Y += dy
				}
				pushes++
			}
		}
		if pushes == 0 {
			break
		}
	}
	return out, passes
}

func buildUnits(nodes []graphview.Node, expanded map[string]bool) []unit {
	clusterUnit := make(map[string]int)
	units := make([]unit, 0, len(nodes))

	for i, n := range nodes {
		if n.ClusterID != "" && expanded[n.ClusterID] {
			if ui, ok := clusterUnit[n.ClusterID]; ok {
				units[ui].box = units[ui].box.Union(BoundingBox(n))
				units[ui].members = append(units[ui].members, i)
				continue
			}
			clusterUnit[n.ClusterID] = len(units)
			units = append(units, unit{box: BoundingBox(n), members: []int{i}})
			continue
		}
		units = append(units, unit{box: BoundingBox(n), members: []int{i}})
	}
	return units
}
