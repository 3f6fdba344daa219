package geo

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"testing"
)

func placemarkPoint(name, coords string) string {
	return fmt.Sprintf("<Placemark><name>%s</name><Point><coordinates>%s</coordinates></Point></Placemark>", name, coords)
}

func kmlDoc(placemarks ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2"><Document>` +
		strings.Join(placemarks, "\n") + `</Document></kml>`
}

func TestParse_PointsInInputOrder(t *testing.T) {
	doc, err := Parse(strings.NewReader(kmlDoc(
		placemarkPoint("SFLA 3", "46.70,24.65,0"),
		placemarkPoint("SFLA 1", "46.67,24.71,0"),
		placemarkPoint("SFLA 2", "46.80,24.70,0"),
	)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(doc.Points))
	}
	got := []string{doc.Points[0].Name, doc.Points[1].Name, doc.Points[2].Name}
	want := []string{"SFLA 3", "SFLA 1", "SFLA 2"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order not preserved: got %v, want %v", got, want)
			break
		}
	}
	if doc.Points[0].Coords.Lat != 24.65 || doc.Points[0].Coords.Lng != 46.70 {
		t.Errorf("lng,lat tuple parsed wrong: %+v", doc.Points[0].Coords)
	}
}

func TestParse_SkipsMalformedAndCounts(t *testing.T) {
	valid := make([]string, 10)
	for i := range valid {
		valid[i] = placemarkPoint(fmt.Sprintf("S%d", i), fmt.Sprintf("46.%d,24.7,0", i))
	}
	malformed := []string{
		placemarkPoint("short", "46.7"),      // missing latitude
		placemarkPoint("garbage", "abc,def"), // non-numeric
	}
	doc, err := Parse(strings.NewReader(kmlDoc(append(valid, malformed...)...)))
	if err != nil {
		t.Fatalf("partial failure must not abort the load: %v", err)
	}
	if len(doc.Points) != 10 {
		t.Errorf("expected 10 valid records, got %d", len(doc.Points))
	}
	if doc.Skipped != 2 {
		t.Errorf("expected 2 skipped, got %d", doc.Skipped)
	}
}

func TestParse_RejectsOutOfRangeCoordinates(t *testing.T) {
	doc, err := Parse(strings.NewReader(kmlDoc(
		placemarkPoint("ok", "46.7,24.7"),
		placemarkPoint("bad lat", "46.7,91.0"),
		placemarkPoint("bad lng", "181.0,24.7"),
	)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Points) != 1 || doc.Skipped != 2 {
		t.Errorf("expected 1 point / 2 skipped, got %d / %d", len(doc.Points), doc.Skipped)
	}
}

func TestParse_PolygonCentroid(t *testing.T) {
	kml := kmlDoc(`<Placemark><name>Pad A</name><Polygon><outerBoundaryIs><LinearRing>
<coordinates>46.0,24.0,0 46.2,24.0,0 46.2,24.2,0 46.0,24.2,0</coordinates>
</LinearRing></outerBoundaryIs></Polygon></Placemark>`)

	doc, err := Parse(strings.NewReader(kml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Shapes) != 1 {
		t.Fatalf("expected 1 shape, got %d", len(doc.Shapes))
	}
	s := doc.Shapes[0]
	if len(s.Outline) != 4 {
		t.Errorf("expected 4 outline vertices, got %d", len(s.Outline))
	}
	if s.Center.Lat != 24.1 || s.Center.Lng != 46.1 {
		t.Errorf("centroid wrong: %+v", s.Center)
	}
}

func TestParse_RoutesAndNestedFolders(t *testing.T) {
	kml := `<?xml version="1.0"?><kml><Document><Folder>
<Placemark><name>Transit</name><LineString><coordinates>46.0,24.0 46.1,24.1</coordinates></LineString></Placemark>
<Folder>` + placemarkPoint("Deep", "46.5,24.5") + `</Folder>
</Folder></Document></kml>`

	doc, err := Parse(strings.NewReader(kml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Routes) != 1 || len(doc.Routes[0].Path) != 2 {
		t.Errorf("route not extracted: %+v", doc.Routes)
	}
	if len(doc.Points) != 1 || doc.Points[0].Name != "Deep" {
		t.Errorf("nested folder placemark missing: %+v", doc.Points)
	}
}

func TestParse_UnnamedPlacemark(t *testing.T) {
	kml := kmlDoc(`<Placemark><Point><coordinates>46.7,24.7</coordinates></Point></Placemark>`)
	doc, err := Parse(strings.NewReader(kml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Points) != 1 || doc.Points[0].Name != "unnamed" {
		t.Errorf("expected unnamed fallback, got %+v", doc.Points)
	}
}

func TestParseKMZ(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("doc.kml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte(kmlDoc(placemarkPoint("Zipped", "46.7,24.7")))); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	doc, err := ParseKMZ(buf.Bytes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Points) != 1 || doc.Points[0].Name != "Zipped" {
		t.Errorf("kmz entry not parsed: %+v", doc.Points)
	}
}

func TestParseKMZ_NoKMLEntry(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("readme.txt")
	_, _ = w.Write([]byte("nothing here"))
	_ = zw.Close()

	if _, err := ParseKMZ(buf.Bytes()); err != ErrNoKML {
		t.Fatalf("expected ErrNoKML, got %v", err)
	}
}
