package ohclust

import (
	"fmt"
	"slices"
)

// Pyroprint is a single pyrosequencing measurement: a sequence of peak
// heights, one per dispensed nucleotide.
type Pyroprint struct {
	ID           int
	Well         string
	Dispensation []string
	Peaks        []float64
}

// NewPyroprint returns an empty pyroprint ready for AddDispensation.
func NewPyroprint(id int, well string) *Pyroprint {
	return &Pyroprint{ID: id, Well: well}
}

func (p *Pyroprint) Name() string { return fmt.Sprintf("%d (%s)", p.ID, p.Well) }

// Len is the number of dispensations.
func (p *Pyroprint) Len() int { return len(p.Peaks) }

// AddDispensation appends one nucleotide and its peak height.
func (p *Pyroprint) AddDispensation(nucleotide string, height float64) {
	p.Dispensation = append(p.Dispensation, nucleotide)
	p.Peaks = append(p.Peaks, height)
}

// SameProtocol reports whether p and o can be compared peak by peak: same
// length and, when both record it, the same dispensation order.
func (p *Pyroprint) SameProtocol(o *Pyroprint) bool {
	if p.Len() != o.Len() {
		return false
	}
	if len(p.Dispensation) == 0 || len(o.Dispensation) == 0 {
		return true
	}
	return slices.Equal(p.Dispensation, o.Dispensation)
}

// Region groups the pyroprints taken of one ITS region of an isolate.
type Region struct {
	Name       string
	Pyroprints []*Pyroprint
}

func (r *Region) Pyroprint(name string) *Pyroprint {
	for _, p := range r.Pyroprints {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Isolate is a bacterial isolate: the unit that gets clustered.
// Labels carry the taxonomy values (host species, collection date, ...)
// used for ontology routing.
type Isolate struct {
	ID      string
	Regions []*Region
	Labels  []string
}

func (i *Isolate) Name() string { return i.ID }

// HasLabel implements Labeled.
func (i *Isolate) HasLabel(label string) bool { return slices.Contains(i.Labels, label) }

// Region returns the named region, creating it if needed.
func (i *Isolate) Region(name string) *Region {
	for _, r := range i.Regions {
		if r.Name == name {
			return r
		}
	}
	r := &Region{Name: name}
	i.Regions = append(i.Regions, r)
	return r
}
