package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/paulmach/orb"

	"github.com/aredtech/floormap/internal/overlay"
)

// renderMap draws the footprint layer, then the composited floor-plan cells,
// then the selection accent on top.
func (m Model) renderMap(w, h int) string {
	br := newBrailleBuf(w, h)
	var selBr *brailleBuf

	if m.showFoots {
		for i := range m.footprints {
			fp := &m.footprints[i]
			mic := m.projectRingMicro(fp.Ring)
			if len(mic) < 3 {
				continue
			}
			br.fillRing(mic)
			if fp.ID == m.selectedID {
				if selBr == nil {
					selBr = newBrailleBuf(w, h)
				}
				selBr.drawRing(mic)
			} else {
				br.drawRing(mic)
			}
		}
	}

	var cells [][]overlay.Cell
	if m.ov.Attached() {
		cells = overlay.Render(m.ov.State(), m.transform, m.vp, w, h)
	}

	braLines := br.toLines()
	var selLines []string
	if selBr != nil {
		selLines = selBr.toLines()
	}

	out := make([]string, h)
	for y := 0; y < h; y++ {
		base := []rune(braLines[y])
		var sel []rune
		if selLines != nil {
			sel = []rune(selLines[y])
		}
		var b strings.Builder
		for x := 0; x < w; x++ {
			if sel != nil && sel[x] != ' ' {
				b.WriteString(accentStyle.Render(string(sel[x])))
				continue
			}
			if cells != nil && cells[y][x].Rune != 0 {
				c := cells[y][x]
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.FG)).Render(string(c.Rune)))
				continue
			}
			b.WriteRune(base[x])
		}
		out[y] = b.String()
	}
	return strings.Join(out, "\n")
}

// projectRingMicro maps a geographic ring into micro-pixel coordinates.
func (m Model) projectRingMicro(ring orb.Ring) [][2]int {
	pts := make([][2]int, 0, len(ring))
	for _, p := range ring {
		px := m.vp.Project(p)
		pts = append(pts, [2]int{int(px.X), int(px.Y)})
	}
	return pts
}
