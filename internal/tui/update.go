package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/aredtech/floormap/internal/geo"
	"github.com/aredtech/floormap/internal/overlay"
	"github.com/aredtech/floormap/internal/overpass"
)

const (
	sidebarWidth = 30
	headerHeight = 1
	footerHeight = 2

	minMapZoom = 3
	maxMapZoom = 19
)

// settleMsg fires when the viewport has been quiet for the debounce window.
// A seq older than the current generation means the view moved again after
// this timer was armed, so the settle is void.
type settleMsg struct{ seq int }

// footprintsMsg carries a fetch result tagged with the request it answers.
type footprintsMsg struct {
	req   int
	feats []overpass.Footprint
	err   error
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := m.width == 0
		m.width = msg.Width
		m.height = msg.Height
		m.syncViewportSize()
		if m.pickerOpen {
			m.l.SetSize(sidebarWidth-2, m.contentHeight()-2)
		}
		if first {
			// initial mount: fetch immediately, no debounce
			cmd := m.fireFetch()
			return m, cmd
		}
		cmd := m.viewportChanged()
		return m, cmd

	case settleMsg:
		if msg.seq != m.viewSeq {
			return m, nil
		}
		cmd := m.fireFetch()
		return m, cmd

	case footprintsMsg:
		if msg.req != m.reqSeq {
			// a newer request was issued while this one was in flight
			return m, nil
		}
		m.fetching = false
		if msg.err != nil {
			slog.Warn("footprint fetch failed", "error", msg.err)
			m.status = "footprint fetch failed; keeping previous set"
			return m, nil
		}
		m.footprints = msg.feats
		if m.selectedID != 0 && m.selectedFootprint() == nil {
			m.selectedID = 0
			m.popupOpen = false
			m.pickerOpen = false
			m.syncViewportSize()
		}
		m.status = fmt.Sprintf("footprints: %d", len(m.footprints))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)
	}
	if m.pickerOpen {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The picker owns the keyboard while open; only esc/enter/quit escape it.
	if m.pickerOpen {
		if m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "ctrl+c":
			m.ov.Close()
			return m, tea.Quit
		case "esc":
			m.pickerOpen = false
			m.syncViewportSize()
			return m, nil
		case "enter":
			return m.attachSelected()
		}
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.ov.Close()
		return m, tea.Quit
	case "up":
		return m.pan(0, -4)
	case "down":
		return m.pan(0, 4)
	case "left":
		return m.pan(-4, 0)
	case "right":
		return m.pan(4, 0)
	case "+", "=":
		return m.zoomBy(1)
	case "-", "_":
		return m.zoomBy(-1)
	case "f":
		m.showFoots = !m.showFoots
		m.status = fmt.Sprintf("footprints layer: %v", m.showFoots)
	case "h":
		m.helpVisible = !m.helpVisible
	case "esc":
		if m.popupOpen {
			m.popupOpen = false
			m.selectedID = 0
		}
	case "a":
		if m.popupOpen && m.selectedFootprint() != nil {
			m.refreshDir()
			m.pickerOpen = true
			m.syncViewportSize()
			m.l.SetSize(sidebarWidth-2, m.contentHeight()-2)
		}
	case "[":
		return m.rotateBy(-5)
	case "]":
		return m.rotateBy(5)
	case "{":
		return m.rotateBy(-45)
	case "}":
		return m.rotateBy(45)
	case "<":
		return m.scaleBy(-0.1)
	case ">":
		return m.scaleBy(0.1)
	case "o":
		return m.opacityBy(-0.1)
	case "O":
		return m.opacityBy(0.1)
	case "m":
		if m.ov.Attached() {
			m.ov.ToggleMask()
			m.syncOverlay()
			m.status = fmt.Sprintf("mask: %v", m.ov.State().Masked)
		}
	case "x":
		if m.ov.Attached() {
			m.ov.Remove()
			m.transform = overlay.Transform{}
			m.status = "floor plan removed"
		}
	case "shift+up":
		return m.nudge(0, 1)
	case "shift+down":
		return m.nudge(0, -1)
	case "shift+left":
		return m.nudge(-1, 0)
	case "shift+right":
		return m.nudge(1, 0)
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// hover coords for the footer
	_, mapX, mapY, mapW, mapH := m.layout()
	if msg.X >= mapX && msg.X < mapX+mapW && msg.Y >= mapY && msg.Y < mapY+mapH {
		p := m.cellToLonLat(msg.X-mapX, msg.Y-mapY)
		m.hoverHasGeo = true
		m.hoverLon, m.hoverLat = p[0], p[1]
	} else {
		m.hoverHasGeo = false
	}

	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return m.zoomBy(0.5)
	case tea.MouseButtonWheelDown:
		return m.zoomBy(-0.5)
	case tea.MouseButtonLeft:
		return m.click(msg.X, msg.Y)
	}
	return m, nil
}

// click resolves a left press. While the attachment popup is open it acts as
// a modal: presses inside it are swallowed, presses outside dismiss it.
func (m Model) click(x, y int) (tea.Model, tea.Cmd) {
	if m.popupOpen {
		if px, py, pw, ph, ok := m.popupRect(); ok &&
			x >= px && x < px+pw && y >= py && y < py+ph {
			return m, nil
		}
		m.popupOpen = false
		m.pickerOpen = false
		m.syncViewportSize()
		return m, nil
	}
	_, mapX, mapY, mapW, mapH := m.layout()
	if x < mapX || x >= mapX+mapW || y < mapY || y >= mapY+mapH {
		return m, nil
	}
	if !m.showFoots {
		return m, nil
	}
	p := m.cellToLonLat(x-mapX, y-mapY)
	for i := range m.footprints {
		fp := &m.footprints[i]
		if planar.PolygonContains(orb.Polygon{fp.Ring}, p) {
			m.selectedID = fp.ID
			m.popupOpen = true
			m.status = "selected way " + strconv.FormatInt(fp.ID, 10)
			return m, nil
		}
	}
	m.selectedID = 0
	return m, nil
}

func (m Model) attachSelected() (tea.Model, tea.Cmd) {
	it, ok := m.l.SelectedItem().(planItem)
	if !ok {
		m.status = "no floor plan selected"
		return m, nil
	}
	fp := m.selectedFootprint()
	if fp == nil {
		m.status = "no footprint selected"
		m.pickerOpen = false
		m.syncViewportSize()
		return m, nil
	}
	h, err := overlay.OpenImage(it.path)
	if err != nil {
		slog.Warn("floor plan load failed", "path", it.path, "error", err)
		m.status = "image error: " + err.Error()
		return m, nil
	}
	m.ov.Attach(h, fp.Ring)
	m.pickerOpen = false
	m.popupOpen = false
	m.syncViewportSize()
	m.syncOverlay()
	m.status = "attached " + filepath.Base(it.path) + "  </> scale  [/] rotate  o/O opacity  m mask  x remove"
	return m, nil
}

func (m Model) pan(dx, dy float64) (tea.Model, tea.Cmd) {
	m.vp = m.vp.Pan(dx, dy)
	cmd := m.viewportChanged()
	return m, cmd
}

func (m Model) zoomBy(d float64) (tea.Model, tea.Cmd) {
	z := m.vp.Zoom + d
	if z < minMapZoom {
		z = minMapZoom
	}
	if z > maxMapZoom {
		z = maxMapZoom
	}
	if z == m.vp.Zoom {
		return m, nil
	}
	m.vp.Zoom = z
	m.status = fmt.Sprintf("zoom: %.1f", z)
	cmd := m.viewportChanged()
	return m, cmd
}

func (m Model) rotateBy(deg float64) (tea.Model, tea.Cmd) {
	if !m.ov.Attached() {
		return m, nil
	}
	m.ov.Rotate(deg)
	m.syncOverlay()
	m.status = fmt.Sprintf("rotation: %.0f°", m.ov.State().RotationDeg)
	return m, nil
}

func (m Model) scaleBy(d float64) (tea.Model, tea.Cmd) {
	if !m.ov.Attached() {
		return m, nil
	}
	m.ov.SetScale(m.ov.State().Scale + d)
	m.syncOverlay()
	m.status = fmt.Sprintf("scale: %.1fx", m.ov.State().Scale)
	return m, nil
}

func (m Model) opacityBy(d float64) (tea.Model, tea.Cmd) {
	if !m.ov.Attached() {
		return m, nil
	}
	m.ov.SetOpacity(m.ov.State().Opacity + d)
	m.syncOverlay()
	m.status = fmt.Sprintf("opacity: %.0f%%", m.ov.State().Opacity*100)
	return m, nil
}

// nudge shifts the attached plan by two cells worth of geography.
func (m Model) nudge(ex, ny float64) (tea.Model, tea.Cmd) {
	if !m.ov.Attached() {
		return m, nil
	}
	p0 := m.vp.Unproject(geo.Pixel{X: 0, Y: 0})
	p1 := m.vp.Unproject(geo.Pixel{X: 4, Y: 4})
	m.ov.Nudge(ex*(p1[0]-p0[0]), ny*(p0[1]-p1[1]))
	m.syncOverlay()
	m.status = "floor plan nudged"
	return m, nil
}

// viewportChanged recomputes the presentation transform and arms a fresh
// debounce timer, voiding any timer armed for an earlier generation.
func (m *Model) viewportChanged() tea.Cmd {
	m.syncOverlay()
	m.viewSeq++
	seq := m.viewSeq
	return tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return settleMsg{seq: seq}
	})
}

// fireFetch issues a footprint request for the current bounds, or clears the
// layer when zoomed out past the gate. Responses are matched by request
// number so only the latest issued fetch can land.
func (m *Model) fireFetch() tea.Cmd {
	if m.vp.Zoom < m.minZoom {
		// void any request still in flight so its response cannot land
		// after the gate cleared the layer
		m.reqSeq++
		m.fetching = false
		if len(m.footprints) > 0 {
			m.footprints = nil
			m.selectedID = 0
			m.popupOpen = false
			m.pickerOpen = false
			m.syncViewportSize()
		}
		m.status = fmt.Sprintf("zoom to %.0f+ to load footprints", m.minZoom)
		return nil
	}
	m.reqSeq++
	req := m.reqSeq
	bounds := m.vp.Bounds()
	f := m.fetcher
	m.fetching = true
	return func() tea.Msg {
		feats, err := f.FetchFootprints(context.Background(), bounds)
		return footprintsMsg{req: req, feats: feats, err: err}
	}
}

func (m *Model) syncOverlay() {
	if m.ov.Attached() {
		m.transform = m.ov.Transform(m.vp)
	} else {
		m.transform = overlay.Transform{}
	}
}

func (m *Model) syncViewportSize() {
	_, _, _, mapW, mapH := m.layout()
	m.mapW, m.mapH = mapW, mapH
	m.vp.Width = mapW * 2
	m.vp.Height = mapH * 4
}

func (m Model) contentHeight() int {
	h := m.height - headerHeight - footerHeight
	if h < 4 {
		h = 4
	}
	return h
}

// layout returns the sidebar width and the map rectangle in screen cells.
// Update and View must agree on it for hit-testing to line up.
func (m Model) layout() (sbw, mapX, mapY, mapW, mapH int) {
	contentWidth := max(10, m.width)
	if m.pickerOpen {
		sbw = sidebarWidth
	}
	mapW = contentWidth - sbw
	if sbw > 0 {
		mapW--
	}
	if mapW < 10 {
		mapW = 10
	}
	mapH = m.contentHeight()
	mapX = sbw
	if sbw > 0 {
		mapX++
	}
	mapY = headerHeight
	return
}

// cellToLonLat converts a map cell (relative to the map origin) to
// geographic coordinates through the cell's micro-pixel center.
func (m Model) cellToLonLat(cx, cy int) orb.Point {
	return m.vp.Unproject(geo.Pixel{X: float64(cx*2) + 1, Y: float64(cy*4) + 2})
}
