package overpass

import "github.com/paulmach/orb"

// Footprint is one building outline: a closed ring of geographic vertices
// plus the source's opaque tags. Immutable once built.
type Footprint struct {
	ID    int64
	Ring  orb.Ring
	Bound orb.Bound
	Tags  map[string]string
}

// response is the graph-style Overpass JSON envelope.
type response struct {
	Elements []element `json:"elements"`
}

// element is a node or way. Ways either carry inline geometry (out geom) or
// reference nodes by id.
type element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat"`
	Lon      float64           `json:"lon"`
	Nodes    []int64           `json:"nodes"`
	Geometry []coordinate      `json:"geometry"`
	Tags     map[string]string `json:"tags"`
}

type coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// normalize flattens the node/way graph into polygon footprints. Ways with
// unresolved node refs, open rings or fewer than three distinct vertices
// are dropped.
func normalize(raw response) []Footprint {
	nodes := make(map[int64]orb.Point)
	for _, el := range raw.Elements {
		if el.Type == "node" {
			nodes[el.ID] = orb.Point{el.Lon, el.Lat}
		}
	}

	out := make([]Footprint, 0, len(raw.Elements))
	for _, el := range raw.Elements {
		if el.Type != "way" {
			continue
		}
		ring, ok := wayRing(el, nodes)
		if !ok {
			continue
		}
		out = append(out, Footprint{
			ID:    el.ID,
			Ring:  ring,
			Bound: ring.Bound(),
			Tags:  el.Tags,
		})
	}
	return out
}

func wayRing(el element, nodes map[int64]orb.Point) (orb.Ring, bool) {
	var ring orb.Ring
	if len(el.Geometry) > 0 {
		ring = make(orb.Ring, 0, len(el.Geometry))
		for _, c := range el.Geometry {
			ring = append(ring, orb.Point{c.Lon, c.Lat})
		}
	} else {
		ring = make(orb.Ring, 0, len(el.Nodes))
		for _, id := range el.Nodes {
			p, ok := nodes[id]
			if !ok {
				return nil, false
			}
			ring = append(ring, p)
		}
	}
	// closed ring: first == last, at least a triangle
	if len(ring) < 4 || !ring.Closed() {
		return nil, false
	}
	return ring, true
}
