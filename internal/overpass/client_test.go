package overpass

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"
)

var scenarioBound = orb.Bound{
	Min: orb.Point{-74.02, 40.70},
	Max: orb.Point{-74.00, 40.72},
}

func TestBuildQuery(t *testing.T) {
	q := BuildQuery(scenarioBound, 25)

	if !strings.Contains(q, "[out:json]") || !strings.Contains(q, "[timeout:25]") {
		t.Errorf("query missing header settings: %s", q)
	}
	if !strings.Contains(q, `"building"~"^(residential|commercial|office|retail)$"`) {
		t.Errorf("query missing building tag whitelist: %s", q)
	}
	// bbox embedded as (south, west, north, east)
	if !strings.Contains(q, "(40.700000,-74.020000,40.720000,-74.000000)") {
		t.Errorf("query missing viewport bbox in s,w,n,e order: %s", q)
	}
	if !strings.Contains(q, "out geom;") {
		t.Errorf("query missing geometry output: %s", q)
	}
}

// Scenario: a viewport with no qualifying buildings yields an empty,
// non-error footprint set.
func TestFetchNoBuildings(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotQuery = r.PostForm.Get("data")
		w.Write([]byte(`{"elements":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 25)
	feats, err := c.FetchFootprints(context.Background(), scenarioBound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feats) != 0 {
		t.Fatalf("expected no footprints, got %d", len(feats))
	}
	if !strings.Contains(gotQuery, "(40.700000,-74.020000,40.720000,-74.000000)") {
		t.Errorf("posted query missing viewport bbox: %s", gotQuery)
	}
}

func TestFetchInlineGeometry(t *testing.T) {
	body := `{"elements":[
		{"type":"way","id":42,
		 "geometry":[
			{"lat":40.710,"lon":-74.010},
			{"lat":40.710,"lon":-74.008},
			{"lat":40.712,"lon":-74.008},
			{"lat":40.712,"lon":-74.010},
			{"lat":40.710,"lon":-74.010}],
		 "tags":{"building":"office","name":"Harborview"}}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 25)
	feats, err := c.FetchFootprints(context.Background(), scenarioBound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feats) != 1 {
		t.Fatalf("expected 1 footprint, got %d", len(feats))
	}
	fp := feats[0]
	if fp.ID != 42 {
		t.Errorf("id = %d, want 42", fp.ID)
	}
	if len(fp.Ring) != 5 || !fp.Ring.Closed() {
		t.Errorf("ring not a closed 5-vertex ring: %v", fp.Ring)
	}
	if fp.Bound.Min != (orb.Point{-74.010, 40.710}) || fp.Bound.Max != (orb.Point{-74.008, 40.712}) {
		t.Errorf("bound = %v", fp.Bound)
	}
	if fp.Tags["name"] != "Harborview" {
		t.Errorf("tags not preserved: %v", fp.Tags)
	}
}

func TestFetchNodeRefGeometry(t *testing.T) {
	body := `{"elements":[
		{"type":"node","id":1,"lat":40.710,"lon":-74.010},
		{"type":"node","id":2,"lat":40.710,"lon":-74.008},
		{"type":"node","id":3,"lat":40.712,"lon":-74.008},
		{"type":"way","id":7,"nodes":[1,2,3,1],"tags":{"building":"retail"}},
		{"type":"way","id":8,"nodes":[1,2,99,1],"tags":{"building":"retail"}}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 25)
	feats, err := c.FetchFootprints(context.Background(), scenarioBound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// way 8 references a node the response does not carry and must be dropped
	if len(feats) != 1 || feats[0].ID != 7 {
		t.Fatalf("expected only way 7, got %+v", feats)
	}
	if feats[0].Ring[0] != (orb.Point{-74.010, 40.710}) {
		t.Errorf("node refs not resolved: %v", feats[0].Ring)
	}
}

func TestFetchDropsOpenWays(t *testing.T) {
	body := `{"elements":[
		{"type":"way","id":9,
		 "geometry":[
			{"lat":40.710,"lon":-74.010},
			{"lat":40.710,"lon":-74.008},
			{"lat":40.712,"lon":-74.008}]}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 25)
	feats, err := c.FetchFootprints(context.Background(), scenarioBound)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feats) != 0 {
		t.Fatalf("open way should be dropped, got %+v", feats)
	}
}

func TestFetchMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>rate limited</html>`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 25)
	if _, err := c.FetchFootprints(context.Background(), scenarioBound); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too busy", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, 25)
	if _, err := c.FetchFootprints(context.Background(), scenarioBound); err == nil {
		t.Fatal("expected status error")
	}
}

func TestFetchContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewClient(srv.URL, time.Second, 25)
	if _, err := c.FetchFootprints(ctx, scenarioBound); err == nil {
		t.Fatal("expected context error")
	}
}
