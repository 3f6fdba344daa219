// Package geo parses KML/KMZ marker exports into site records.
//
// The files come from an external mapping tool and are only partially
// trusted: malformed placemarks are skipped and counted instead of failing
// the whole load.
package geo

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/willslawrence/sfla-tracker/internal/core/domain"
)

// Point is a single GPS placemark.
type Point struct {
	Name   string
	Coords domain.Coordinates
}

// Shape is a polygon placemark; Center is the vertex centroid used to place
// the site marker.
type Shape struct {
	Name    string
	Outline []domain.Coordinates
	Center  domain.Coordinates
}

// Route is a line placemark.
type Route struct {
	Name string
	Path []domain.Coordinates
}

// Document holds everything extracted from one KML file, in input order.
// Skipped counts placemarks dropped for malformed or out-of-range coordinates.
type Document struct {
	Points  []Point
	Shapes  []Shape
	Routes  []Route
	Skipped int
}

type kmlPlacemark struct {
	Name  string `xml:"name"`
	Point *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
	Polygon *struct {
		Coordinates string `xml:"outerBoundaryIs>LinearRing>coordinates"`
	} `xml:"Polygon"`
	LineString *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"LineString"`
}

type kmlContainer struct {
	Folders    []kmlContainer `xml:"Folder"`
	Documents  []kmlContainer `xml:"Document"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlRoot struct {
	XMLName xml.Name `xml:"kml"`
	kmlContainer
}

// Parse reads a KML document and extracts points, shapes, and routes.
func Parse(r io.Reader) (*Document, error) {
	var root kmlRoot
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&root); err != nil {
		return nil, fmt.Errorf("geo: parse kml: %w", err)
	}

	doc := &Document{}
	collect(&root.kmlContainer, doc)
	return doc, nil
}

// collect walks nested Document/Folder containers depth-first so placemark
// order matches the file.
func collect(c *kmlContainer, doc *Document) {
	for _, p := range c.Placemarks {
		addPlacemark(p, doc)
	}
	for i := range c.Documents {
		collect(&c.Documents[i], doc)
	}
	for i := range c.Folders {
		collect(&c.Folders[i], doc)
	}
}

func addPlacemark(p kmlPlacemark, doc *Document) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		name = "unnamed"
	}

	switch {
	case p.Point != nil:
		coords, err := parseTuple(strings.TrimSpace(p.Point.Coordinates))
		if err != nil {
			doc.Skipped++
			return
		}
		doc.Points = append(doc.Points, Point{Name: name, Coords: coords})

	case p.Polygon != nil:
		outline := parseTuples(p.Polygon.Coordinates)
		if len(outline) == 0 {
			doc.Skipped++
			return
		}
		doc.Shapes = append(doc.Shapes, Shape{
			Name:    name,
			Outline: outline,
			Center:  centroid(outline),
		})

	case p.LineString != nil:
		path := parseTuples(p.LineString.Coordinates)
		if len(path) == 0 {
			doc.Skipped++
			return
		}
		doc.Routes = append(doc.Routes, Route{Name: name, Path: path})

	default:
		doc.Skipped++
	}
}

// parseTuple parses one KML coordinate tuple: "lng,lat[,alt]".
func parseTuple(s string) (domain.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return domain.Coordinates{}, fmt.Errorf("geo: short coordinate tuple %q", s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geo: bad longitude %q: %w", parts[0], err)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("geo: bad latitude %q: %w", parts[1], err)
	}
	c := domain.Coordinates{Lat: lat, Lng: lng}
	if !c.Valid() {
		return domain.Coordinates{}, fmt.Errorf("geo: coordinates out of range: %v", c)
	}
	return c, nil
}

// parseTuples parses a whitespace-separated coordinate list, dropping bad tuples.
func parseTuples(s string) []domain.Coordinates {
	var out []domain.Coordinates
	for _, tuple := range strings.Fields(s) {
		c, err := parseTuple(tuple)
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out
}

// centroid returns the vertex mean rounded to 6 decimal places, matching
// the sync diff's coordinate tolerance.
func centroid(coords []domain.Coordinates) domain.Coordinates {
	var lat, lng float64
	for _, c := range coords {
		lat += c.Lat
		lng += c.Lng
	}
	n := float64(len(coords))
	return domain.Coordinates{
		Lat: round6(lat / n),
		Lng: round6(lng / n),
	}
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
