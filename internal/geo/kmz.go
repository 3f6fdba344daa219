package geo

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoKML = errors.New("geo: no .kml entry in archive")

// ParseKMZ extracts the first .kml entry from a KMZ archive and parses it.
func ParseKMZ(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("geo: open kmz: %w", err)
	}

	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("geo: open kmz entry %s: %w", f.Name, err)
		}
		defer rc.Close()
		return Parse(rc)
	}
	return nil, ErrNoKML
}

// ParseFile loads a .kml or .kmz file from disk.
func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geo: read %s: %w", path, err)
	}
	if strings.HasSuffix(strings.ToLower(path), ".kmz") {
		return ParseKMZ(data)
	}
	return Parse(bytes.NewReader(data))
}
