// Package ingest reads raw pyroprint measurements and assembles them into
// the isolate → region → pyroprint hierarchy used for clustering.
package ingest

import (
	"context"
	"fmt"
	"os"

	"github.com/TrevorS/ohclust"
)

// Record is one flat measurement row: a single dispensation of a pyroprint.
type Record struct {
	Isolate    string
	Region     string
	Pyroprint  int
	Well       string
	Nucleotide string
	Height     float64
}

// Source produces measurement rows and isolate labels. Records must be
// returned grouped by isolate, region and pyroprint, with each pyroprint's
// dispensations in order.
type Source interface {
	Records(ctx context.Context, isolateIDs []string) ([]Record, error)
	Labels(ctx context.Context, isolateIDs []string) (map[string][]string, error)
	Close() error
}

// Open returns the source for driver ("sqlite" or "csv") at path.
func Open(driver, path string) (Source, error) {
	switch driver {
	case "sqlite":
		src, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return src, nil
	case "csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening csv source: %w", err)
		}
		defer f.Close()
		src, err := NewCSVSource(f)
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, fmt.Errorf("unknown source driver %q", driver)
	}
}

// Load reads isolateIDs (all isolates if empty) from src and assembles them.
func Load(ctx context.Context, src Source, isolateIDs []string) ([]*ohclust.Isolate, error) {
	records, err := src.Records(ctx, isolateIDs)
	if err != nil {
		return nil, err
	}
	labels, err := src.Labels(ctx, isolateIDs)
	if err != nil {
		return nil, err
	}
	return Assemble(records, labels), nil
}

// Assemble groups flat records into isolates, keeping the order in which
// isolates, regions and pyroprints first appear. labels maps isolate IDs to
// their taxonomy labels.
func Assemble(records []Record, labels map[string][]string) []*ohclust.Isolate {
	type pyroKey struct {
		isolate, region string
		pyroprint       int
		well            string
	}

	var isolates []*ohclust.Isolate
	byID := make(map[string]*ohclust.Isolate)
	pyros := make(map[pyroKey]*ohclust.Pyroprint)

	for _, rec := range records {
		iso, ok := byID[rec.Isolate]
		if !ok {
			iso = &ohclust.Isolate{ID: rec.Isolate, Labels: labels[rec.Isolate]}
			byID[rec.Isolate] = iso
			isolates = append(isolates, iso)
		}

		key := pyroKey{rec.Isolate, rec.Region, rec.Pyroprint, rec.Well}
		pyro, ok := pyros[key]
		if !ok {
			region := iso.Region(rec.Region)
			pyro = ohclust.NewPyroprint(rec.Pyroprint, rec.Well)
			region.Pyroprints = append(region.Pyroprints, pyro)
			pyros[key] = pyro
		}
		pyro.AddDispensation(rec.Nucleotide, rec.Height)
	}
	return isolates
}
