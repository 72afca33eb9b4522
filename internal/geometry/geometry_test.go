package geometry

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/twpayne/go-geos"
)

func rectangle(w, h float64) orb.Polygon {
	return orb.Polygon{{{0, 0}, {w, 0}, {w, h}, {0, h}, {0, 0}}}
}

func TestQuantize(t *testing.T) {
	if Quantize(orb.Point{1.0001, 2.0004}) != Quantize(orb.Point{1.0, 2.0}) {
		t.Error("points within a quantization unit should share a key")
	}
	if SamePoint(orb.Point{1, 2}, orb.Point{1.002, 2}) {
		t.Error("points two units apart should differ")
	}
	if Quantize(orb.Point{-0.0004, 0}) != Quantize(orb.Point{0, 0}) {
		t.Error("negative rounding should collapse onto zero")
	}
}

func TestAngleDegrees(t *testing.T) {
	tests := []struct {
		b    orb.Point
		want float64
	}{
		{orb.Point{1, 0}, 0},
		{orb.Point{0, 1}, 90},
		{orb.Point{-1, 0}, 180},
		{orb.Point{0, -1}, -90},
		{orb.Point{1, 1}, 45},
	}
	for _, tt := range tests {
		if got := AngleDegrees(orb.Point{0, 0}, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("AngleDegrees(0, %v) = %v, want %v", tt.b, got, tt.want)
		}
	}
}

func TestProjectAway(t *testing.T) {
	p := ProjectAway(orb.Point{1, 1}, 90, 2)
	if math.Abs(p[0]-1) > 1e-9 || math.Abs(p[1]-3) > 1e-9 {
		t.Errorf("ProjectAway 90° = %v, want [1 3]", p)
	}
	p = ProjectAway(orb.Point{0, 0}, -45, math.Sqrt2)
	if math.Abs(p[0]-1) > 1e-9 || math.Abs(p[1]+1) > 1e-9 {
		t.Errorf("ProjectAway -45° = %v, want [1 -1]", p)
	}
}

func mustShape(t *testing.T, poly orb.Polygon) *Shape {
	t.Helper()
	s, err := NewShape(poly)
	if err != nil {
		t.Fatalf("NewShape: %v", err)
	}
	return s
}

func mustLine(t *testing.T, ls orb.LineString) *Line {
	t.Helper()
	l, err := NewLine(ls)
	if err != nil {
		t.Fatalf("NewLine: %v", err)
	}
	return l
}

func TestToGEOSClosesRings(t *testing.T) {
	ctx := geos.NewContext()
	g, err := ToGEOS(ctx, orb.Polygon{{{0, 0}, {4, 0}, {4, 3}, {0, 3}}})
	if err != nil {
		t.Fatalf("ToGEOS: %v", err)
	}
	back, err := FromGEOS(g)
	if err != nil {
		t.Fatalf("FromGEOS: %v", err)
	}
	poly, ok := back.(orb.Polygon)
	if !ok {
		t.Fatalf("round trip gave %T", back)
	}
	if len(poly[0]) != 5 || poly[0][0] != poly[0][4] {
		t.Errorf("ring = %v, want it closed", poly[0])
	}
}

func TestNewShapeRejectsDegenerateRing(t *testing.T) {
	if _, err := NewShape(orb.Polygon{{{0, 0}, {1, 0}}}); err == nil {
		t.Error("a two-point ring should not parse")
	}
	if _, err := NewShape(nil); err == nil {
		t.Error("an empty polygon should not parse")
	}
}

func TestBoundaryHits(t *testing.T) {
	withHole := mustShape(t, orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	})

	hits, err := withHole.BoundaryHits(orb.LineString{{-5, 5}, {15, 5}})
	if err != nil {
		t.Fatalf("BoundaryHits: %v", err)
	}
	xs := make(map[float64]bool)
	for _, h := range hits {
		if math.Abs(h[1]-5) > 1e-9 {
			t.Errorf("hit %v is off the line", h)
		}
		xs[math.Round(h[0]*1e6)/1e6] = true
	}
	for _, x := range []float64{0, 4, 6, 10} {
		if !xs[x] {
			t.Errorf("missing hit at x=%v in %v", x, hits)
		}
	}

	hits, err = withHole.BoundaryHits(orb.LineString{{-5, 20}, {15, 20}})
	if err != nil || len(hits) != 0 {
		t.Errorf("line outside the polygon hit %v (err %v)", hits, err)
	}

	// Running along the bottom edge reports both ends of the overlap.
	hits, err = withHole.BoundaryHits(orb.LineString{{2, 0}, {20, 0}})
	if err != nil {
		t.Fatalf("BoundaryHits: %v", err)
	}
	var found2, found10 bool
	for _, h := range hits {
		found2 = found2 || SamePoint(h, orb.Point{2, 0})
		found10 = found10 || SamePoint(h, orb.Point{10, 0})
	}
	if !found2 || !found10 {
		t.Errorf("overlap hits = %v, want both ends", hits)
	}
}

func TestLocateAndInterpolate(t *testing.T) {
	l := mustLine(t, orb.LineString{{0, 0}, {10, 0}, {10, 10}})

	if got := l.Length(); got != 20 {
		t.Errorf("Length = %v, want 20", got)
	}
	if got := l.Locate(orb.Point{4, 3}); math.Abs(got-4) > 1e-9 {
		t.Errorf("Locate = %v, want 4", got)
	}
	if got := l.Locate(orb.Point{12, 5}); math.Abs(got-15) > 1e-9 {
		t.Errorf("Locate = %v, want 15", got)
	}
	if got := l.Locate(orb.Point{-3, 0}); got != 0 {
		t.Errorf("Locate before start = %v, want 0", got)
	}

	p, err := l.Interpolate(13)
	if err != nil {
		t.Fatalf("Interpolate: %v", err)
	}
	if math.Abs(p[0]-10) > 1e-9 || math.Abs(p[1]-3) > 1e-9 {
		t.Errorf("Interpolate(13) = %v, want [10 3]", p)
	}
	if p, _ := l.Interpolate(100); p != (orb.Point{10, 10}) {
		t.Errorf("Interpolate past end = %v, want last vertex", p)
	}
	if p, _ := l.Interpolate(-1); p != (orb.Point{0, 0}) {
		t.Errorf("Interpolate before start = %v, want first vertex", p)
	}
}

func TestNewLineNeedsTwoPoints(t *testing.T) {
	if _, err := NewLine(orb.LineString{{0, 0}}); err == nil {
		t.Error("a single point is not a line")
	}
}

func TestSubLine(t *testing.T) {
	l := mustLine(t, orb.LineString{{0, 0}, {10, 0}, {10, 10}})

	sub, ok := l.SubLine(5, 15)
	if !ok {
		t.Fatal("expected a slice")
	}
	want := orb.LineString{{5, 0}, {10, 0}, {10, 5}}
	if len(sub) != len(want) {
		t.Fatalf("slice = %v, want %v", sub, want)
	}
	for i := range want {
		if !SamePoint(sub[i], want[i]) {
			t.Errorf("slice[%d] = %v, want %v", i, sub[i], want[i])
		}
	}

	reversed, ok := l.SubLine(15, 5)
	if !ok || len(reversed) != 3 || !SamePoint(reversed[0], orb.Point{5, 0}) {
		t.Errorf("reversed offsets should give the same slice, got %v", reversed)
	}

	if _, ok := l.SubLine(7, 7); ok {
		t.Error("zero-length slice should be rejected")
	}
}

func TestContainsLine(t *testing.T) {
	// U shape: notch from x=4..6 cut down to y=2.
	u := mustShape(t, orb.Polygon{{{0, 0}, {10, 0}, {10, 10}, {6, 10}, {6, 2}, {4, 2}, {4, 10}, {0, 10}, {0, 0}}})

	if !u.ContainsLine(orb.LineString{{1, 1}, {9, 1}}) {
		t.Error("line along the base should be inside")
	}
	if u.ContainsLine(orb.LineString{{2, 8}, {8, 8}}) {
		t.Error("line across the notch should be outside")
	}
	if u.ContainsLine(orb.LineString{{2, 8}, {20, 8}}) {
		t.Error("line leaving the polygon should be outside")
	}
	if !u.ContainsLine(orb.LineString{{0, 0}, {2, 5}}) {
		t.Error("a line may start on the boundary")
	}
	if u.ContainsLine(orb.LineString{{1, 1}}) {
		t.Error("a single point is not a line")
	}

	withHole := mustShape(t, orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	})
	if withHole.ContainsLine(orb.LineString{{1, 5}, {9, 5}}) {
		t.Error("line through a hole should be outside")
	}
	if !withHole.ContainsLine(orb.LineString{{1, 1}, {9, 1}}) {
		t.Error("line beside the hole should be inside")
	}
}

func TestCovers(t *testing.T) {
	s := mustShape(t, rectangle(10, 10))
	if !s.Covers(orb.Point{5, 5}) {
		t.Error("centre should be covered")
	}
	if !s.Covers(orb.Point{0, 5}) {
		t.Error("boundary should be covered")
	}
	if s.Covers(orb.Point{11, 5}) {
		t.Error("outside point should not be covered")
	}
}

func TestDistanceToBoundary(t *testing.T) {
	s := mustShape(t, orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	})
	if d := s.DistanceToBoundary(orb.Point{1, 5}); math.Abs(d-1) > 1e-9 {
		t.Errorf("distance = %v, want 1", d)
	}
	if d := s.DistanceToBoundary(orb.Point{3, 5}); math.Abs(d-1) > 1e-9 {
		t.Errorf("distance to hole = %v, want 1", d)
	}
}

func TestPolygonArea(t *testing.T) {
	withHole := orb.Polygon{
		{{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0}},
		{{4, 4}, {6, 4}, {6, 6}, {4, 6}, {4, 4}},
	}
	if a := PolygonArea(withHole); math.Abs(a-96) > 1e-9 {
		t.Errorf("area = %v, want 96", a)
	}
	if a := PolygonArea(nil); a != 0 {
		t.Errorf("empty area = %v, want 0", a)
	}
}

func TestUnsignedArea(t *testing.T) {
	ring := rectangle(4, 3)[0]
	if a := UnsignedArea(ring); math.Abs(a-12) > 1e-9 {
		t.Errorf("area = %v, want 12", a)
	}
	ring.Reverse()
	if a := UnsignedArea(ring); math.Abs(a-12) > 1e-9 {
		t.Errorf("reversed area = %v, want 12", a)
	}
}

func TestClosed(t *testing.T) {
	open := orb.Ring{{0, 0}, {1, 0}, {1, 1}}
	closed := Closed(open)
	if len(closed) != 4 || closed[3] != closed[0] {
		t.Errorf("Closed = %v", closed)
	}
	if len(open) != 3 {
		t.Error("Closed must not modify its input")
	}
	again := Closed(closed)
	if len(again) != 4 {
		t.Errorf("closing a closed ring changed it: %v", again)
	}
}
