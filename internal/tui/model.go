package tui

import (
	"context"
	"os"
	"time"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"github.com/aredtech/floormap/internal/geo"
	"github.com/aredtech/floormap/internal/overlay"
	"github.com/aredtech/floormap/internal/overpass"
)

// Fetcher is the slice of the overpass client the map needs; tests
// substitute a stub.
type Fetcher interface {
	FetchFootprints(ctx context.Context, b orb.Bound) ([]overpass.Footprint, error)
}

// Options configure the initial view and the fetch policy.
type Options struct {
	Center   orb.Point
	Zoom     float64
	MinZoom  float64 // below this no footprints are fetched
	Debounce time.Duration
}

type Model struct {
	width  int
	height int

	helpVisible bool

	vp       geo.Viewport
	minZoom  float64
	debounce time.Duration

	status string

	// footprint layer
	fetcher    Fetcher
	footprints []overpass.Footprint
	showFoots  bool
	fetching   bool
	viewSeq    int // debounce generation; only the latest settle fires
	reqSeq     int // fetch sequencing; only the latest issued response applies

	// selection + attachment popup
	selectedID int64
	popupOpen  bool

	// floor-plan picker, owned by the open popup
	pickerOpen bool
	cwd        string
	l          list.Model

	// overlay
	ov        *overlay.Controller
	transform overlay.Transform

	// hover state
	hoverHasGeo bool
	hoverLon    float64
	hoverLat    float64

	// last rendered map size (cells)
	mapW int
	mapH int
}

func New(f Fetcher, opts Options) Model {
	if opts.Zoom == 0 {
		opts.Zoom = 16
	}
	if opts.MinZoom == 0 {
		opts.MinZoom = 15
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 500 * time.Millisecond
	}
	m := Model{
		helpVisible: true,
		vp:          geo.Viewport{Center: opts.Center, Zoom: opts.Zoom},
		minZoom:     opts.MinZoom,
		debounce:    opts.Debounce,
		status:      "floormap ready",
		fetcher:     f,
		showFoots:   true,
		ov:          overlay.NewController(),
	}
	m.cwd, _ = os.Getwd()
	// picker list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Floor plans"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// selectedFootprint resolves the selection against the current footprint
// set. The set is replaced wholesale on every fetch, so lookup is by way id.
func (m Model) selectedFootprint() *overpass.Footprint {
	if m.selectedID == 0 {
		return nil
	}
	for i := range m.footprints {
		if m.footprints[i].ID == m.selectedID {
			return &m.footprints[i]
		}
	}
	return nil
}
