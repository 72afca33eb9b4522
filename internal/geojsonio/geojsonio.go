// Package geojsonio reads input polygons from GeoJSON and writes the batch
// outputs back out as GeoJSON feature collections.
package geojsonio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/dabreegster/polygon-width/internal/fsutil"
	"github.com/dabreegster/polygon-width/internal/pipeline"
)

// ErrUnexpectedGeometry is returned for input geometries other than
// Polygon and MultiPolygon.
var ErrUnexpectedGeometry = errors.New("unexpected geometry type")

// Output file names written by WriteOutputs.
const (
	InputPolygonsFile   = "input_polygons.geojson"
	SkeletonsFile       = "skeletons.geojson"
	PerpsFile           = "perps.geojson"
	ThickenedFile       = "thickened.geojson"
	CenterWithWidthFile = "center_with_width.geojson"
)

// ReadPolygons parses a FeatureCollection, a single Feature or a bare
// geometry. MultiPolygons are split into their polygons.
func ReadPolygons(r io.Reader) ([]orb.Polygon, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading GeoJSON: %w", err)
	}

	var header struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return nil, fmt.Errorf("parsing GeoJSON: %w", err)
	}

	var geometries []orb.Geometry
	switch header.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("parsing feature collection: %w", err)
		}
		for _, f := range fc.Features {
			geometries = append(geometries, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("parsing feature: %w", err)
		}
		geometries = append(geometries, f.Geometry)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("parsing geometry: %w", err)
		}
		geometries = append(geometries, g.Geometry())
	}

	var polygons []orb.Polygon
	for i, g := range geometries {
		switch g := g.(type) {
		case orb.Polygon:
			polygons = append(polygons, g)
		case orb.MultiPolygon:
			polygons = append(polygons, g...)
		case nil:
			return nil, fmt.Errorf("feature %d: %w: null", i, ErrUnexpectedGeometry)
		default:
			return nil, fmt.Errorf("feature %d: %w: %s", i, ErrUnexpectedGeometry, g.GeoJSONType())
		}
	}
	return polygons, nil
}

// ReadPolygonsFile is ReadPolygons on a file.
func ReadPolygonsFile(path string) ([]orb.Polygon, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPolygons(f)
}

// WriteOutputs writes every output collection of res, reprojected to WGS84,
// into dir. The directory is created if needed.
func WriteOutputs(dir string, res *pipeline.Result) error {
	return WriteOutputsTo(fsutil.OSFileSystem{}, dir, res)
}

// WriteOutputsTo is WriteOutputs on an arbitrary filesystem.
func WriteOutputsTo(fsys fsutil.FileSystem, dir string, res *pipeline.Result) error {
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out := res.Geodetic()

	polygons := geojson.NewFeatureCollection()
	for _, p := range out.Polygons {
		polygons.Append(geojson.NewFeature(p))
	}

	skeletons := geojson.NewFeatureCollection()
	for _, ls := range out.Skeletons {
		skeletons.Append(geojson.NewFeature(ls))
	}

	perps := geojson.NewFeatureCollection()
	for _, ls := range out.PerpLines {
		perps.Append(geojson.NewFeature(ls))
	}

	thickened := geojson.NewFeatureCollection()
	for _, th := range out.Thickened {
		f := geojson.NewFeature(th.Polygon)
		f.Properties["width1"] = th.Width1
		f.Properties["width2"] = th.Width2
		thickened.Append(f)
	}

	centers := geojson.NewFeatureCollection()
	for _, seg := range out.CenterWithWidth {
		f := geojson.NewFeature(seg.Line)
		f.Properties["min_width"] = seg.MinWidth
		f.Properties["max_width"] = seg.MaxWidth
		centers.Append(f)
	}

	files := []struct {
		name string
		fc   *geojson.FeatureCollection
	}{
		{InputPolygonsFile, polygons},
		{SkeletonsFile, skeletons},
		{PerpsFile, perps},
		{ThickenedFile, thickened},
		{CenterWithWidthFile, centers},
	}
	for _, file := range files {
		if err := writeCollection(fsys, filepath.Join(dir, file.name), file.fc); err != nil {
			return err
		}
	}
	return nil
}

func writeCollection(fsys fsutil.FileSystem, path string, fc *geojson.FeatureCollection) error {
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := fsys.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
