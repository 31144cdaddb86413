package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
)

var csvColumns = []string{"isolate", "region", "pyroprint", "well", "nucleotide", "height"}

// CSVSource serves measurements parsed from a CSV file. The header must name
// the columns isolate, region, pyroprint, well, nucleotide and height, in
// any order; an optional labels column holds ';'-separated isolate labels.
// Rows of one pyroprint must be contiguous and in dispensation order.
type CSVSource struct {
	records []Record
	labels  map[string][]string
}

// NewCSVSource reads all of r.
func NewCSVSource(r io.Reader) (*CSVSource, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading csv header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range csvColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", name)
		}
	}
	labelCol, hasLabels := col["labels"]

	src := &CSVSource{labels: make(map[string][]string)}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading csv line %d: %w", line, err)
		}

		pyro, err := strconv.Atoi(row[col["pyroprint"]])
		if err != nil {
			return nil, fmt.Errorf("csv line %d: invalid pyroprint: %w", line, err)
		}
		height, err := strconv.ParseFloat(row[col["height"]], 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: invalid height: %w", line, err)
		}
		rec := Record{
			Isolate:    row[col["isolate"]],
			Region:     row[col["region"]],
			Pyroprint:  pyro,
			Well:       row[col["well"]],
			Nucleotide: row[col["nucleotide"]],
			Height:     height,
		}
		src.records = append(src.records, rec)

		if hasLabels {
			for _, l := range strings.Split(row[labelCol], ";") {
				l = strings.TrimSpace(l)
				if l != "" && !slices.Contains(src.labels[rec.Isolate], l) {
					src.labels[rec.Isolate] = append(src.labels[rec.Isolate], l)
				}
			}
		}
	}
	return src, nil
}

func (s *CSVSource) Records(_ context.Context, isolateIDs []string) ([]Record, error) {
	if len(isolateIDs) == 0 {
		return s.records, nil
	}
	var out []Record
	for _, r := range s.records {
		if slices.Contains(isolateIDs, r.Isolate) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *CSVSource) Labels(_ context.Context, isolateIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(s.labels))
	for id, ls := range s.labels {
		if len(isolateIDs) == 0 || slices.Contains(isolateIDs, id) {
			out[id] = ls
		}
	}
	return out, nil
}

func (s *CSVSource) Close() error { return nil }
