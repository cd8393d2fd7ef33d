package viz

import (
	"fmt"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/mbtree/internal/tree"
)

// RenderTopology draws the body tree as an indented listing, one line per
// node, with joint type and slot layout. names maps body names to node
// numbers; nodes without a name fall back to "body<num>".
func RenderTopology(t *tree.Tree, names map[string]int) string {
	byNum := make(map[int]string, len(names))
	for name, num := range names {
		byNum[num] = name
	}

	var b strings.Builder
	for i := 0; i < t.NumBodies(); i++ {
		n := t.Node(i)
		name, ok := byNum[i]
		if !ok {
			name = fmt.Sprintf("body%d", i)
		}

		indent := strings.Repeat("  ", n.Level())
		branch := ""
		if n.Level() > 0 {
			branch = Subtle.Render("└─ ")
		}

		b.WriteString(indent + branch + Header.Render(name))
		if n.Joint() == tree.Ground {
			b.WriteString(Subtle.Render("  (ground)"))
		} else {
			mode := ""
			if n.Joint() == tree.Orientation || n.Joint() == tree.Free {
				if n.UseEuler() {
					mode = ", euler"
				} else {
					mode = ", quaternion"
				}
			}
			b.WriteString(Label.Render(fmt.Sprintf("  %s%s  dof=%d nq=%d  q[%d] u[%d]  m=%.3g",
				n.Joint(), mode, n.DOF(), n.NQ(), n.QIndex(), n.UIndex(), n.Mass())))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// PlotSeries renders a captioned line plot of ys.
func PlotSeries(ys []float64, caption string) string {
	return asciigraph.Plot(ys,
		asciigraph.Height(12),
		asciigraph.Width(72),
		asciigraph.Caption(caption),
	)
}
