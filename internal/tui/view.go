package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	sbw, _, _, mapW, mapH := m.layout()
	contentHeight := m.contentHeight()
	contentWidth := max(10, m.width)

	if m.pickerOpen {
		m.l.SetSize(sidebarWidth-2, contentHeight-2)
	}

	// Header
	header := titleStyle.Render(" floormap ─ floor plans on building footprints ")
	header = lipgloss.NewStyle().Width(contentWidth).Padding(0).Render(header)

	// Sidebar (floor-plan picker)
	var sidebar string
	if m.pickerOpen {
		sidebar = lipgloss.NewStyle().Width(sbw).Render(m.l.View())
	}

	// Map viewport
	m.mapW = max(8, mapW)
	m.mapH = max(4, mapH)
	var mapView string
	if m.popupOpen && m.selectedFootprint() != nil {
		// attachment popup is modal over the map area
		box := m.popupBox()
		mapView = lipgloss.Place(mapW, mapH, lipgloss.Center, lipgloss.Center, box)
	} else {
		ascii := m.renderMap(m.mapW, m.mapH)
		// plain map canvas: no border, no background highlight
		mapView = lipgloss.NewStyle().Width(mapW).Height(mapH).Render(ascii)
	}

	// Body row
	var body string
	if m.pickerOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	} else {
		body = mapView
	}

	// Footer / help
	help := m.renderHelp()
	status := dimStyle.Render(" " + m.status + " ")
	info := fmt.Sprintf("  z=%.1f  bldgs=%d", m.vp.Zoom, len(m.footprints))
	if m.fetching {
		info = "  fetching…" + info
	}
	if m.hoverHasGeo {
		info += fmt.Sprintf("  lon=%.5f lat=%.5f", m.hoverLon, m.hoverLat)
	}
	coords := dimStyle.Render(info + "  ")
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, help)
	spacerW := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.NewStyle().Width(contentWidth).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

// popupBox renders the attachment dialog for the selected footprint.
func (m Model) popupBox() string {
	fp := m.selectedFootprint()
	if fp == nil {
		return ""
	}
	name := fp.Tags["name"]
	if name == "" {
		name = "building"
	}
	lines := []string{
		titleStyle.Render(name),
		fmt.Sprintf("way %d  building=%s", fp.ID, fp.Tags["building"]),
		fmt.Sprintf("bbox: [%.5f, %.5f, %.5f, %.5f]",
			fp.Bound.Min[0], fp.Bound.Min[1], fp.Bound.Max[0], fp.Bound.Max[1]),
		fmt.Sprintf("vertices: %d", len(fp.Ring)),
	}
	if m.ov.Attached() {
		st := m.ov.State()
		lines = append(lines, "",
			fmt.Sprintf("plan: %.1fx  %.0f°  %.0f%%", st.Scale, st.RotationDeg, st.Opacity*100))
	}
	lines = append(lines, "", dimStyle.Render("a attach plan  esc close"))
	maxW := min(48, max(20, m.width/2))
	return boxStyle.MaxWidth(maxW).Render(strings.Join(lines, "\n"))
}

// popupRect reports where the modal popup lands within the screen, in cells.
func (m Model) popupRect() (x, y, w, h int, ok bool) {
	box := m.popupBox()
	if box == "" {
		return 0, 0, 0, 0, false
	}
	w = lipgloss.Width(box)
	h = lipgloss.Height(box)
	_, mapX, mapY, mapW, mapH := m.layout()
	x = mapX + (mapW-w)/2
	y = mapY + (mapH-h)/2
	return x, y, w, h, true
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"click select",
		"a attach",
		"</> scale",
		"[/] rotate",
		"o/O opacity",
		"m mask",
		"x remove",
		"f layer",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
