package ohclust

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnroutable is returned when data matches no partition of the ontology.
	ErrUnroutable = errors.New("ohclust: data matches no ontology partition")

	// ErrDuplicateTerm is returned when two sibling partitions share a name.
	ErrDuplicateTerm = errors.New("ohclust: duplicate ontology term")
)

// TermSpec declares one node of a taxonomy. Partitions are kept in
// declaration order, which is also the order children are folded in when
// the node is time-sensitive.
type TermSpec struct {
	Name          string     `yaml:"name" json:"name" validate:"required"`
	TimeSensitive bool       `yaml:"time_sensitive" json:"time_sensitive"`
	Partitions    []TermSpec `yaml:"partitions" json:"partitions" validate:"dive"`
}

// Term is a node of the ontology tree. A term either has child partitions
// or, as a leaf, collects raw data; never both.
type Term struct {
	name          string
	timeSensitive bool

	children []*Term
	index    map[string]int

	data     []*Cluster
	dirty    bool
	clusters []*Cluster
}

func (t *Term) Name() string { return t.name }

func (t *Term) IsTimeSensitive() bool { return t.timeSensitive }

func (t *Term) IsLeaf() bool { return len(t.children) == 0 }

// Partitions returns the child terms in declaration order.
func (t *Term) Partitions() []*Term { return t.children }

// Partition returns the named child.
func (t *Term) Partition(name string) (*Term, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.children[i], true
}

// Data returns the unclustered input assigned to a leaf.
func (t *Term) Data() []*Cluster { return t.data }

// HasNewData reports whether data was added at or below t since t was last clustered.
func (t *Term) HasNewData() bool { return t.dirty }

// Clusters returns the cached result of the last clustering pass, or nil if
// t has never been clustered.
func (t *Term) Clusters() []*Cluster { return t.clusters }

// Ontology is a taxonomy of named partitions used to bucket data before
// clustering. It is not safe for concurrent use; data assignment must finish
// before a clustering pass starts.
type Ontology struct {
	root *Term
}

// NewOntology builds the tree described by spec.
func NewOntology(spec TermSpec) (*Ontology, error) {
	root, err := buildTerm(spec, nil)
	if err != nil {
		return nil, err
	}
	return &Ontology{root: root}, nil
}

func buildTerm(spec TermSpec, path []string) (*Term, error) {
	path = append(slices.Clip(path), spec.Name)
	if spec.Name == "" {
		return nil, fmt.Errorf("ohclust: ontology term at %q has no name", strings.Join(path, "/"))
	}

	t := &Term{name: spec.Name, timeSensitive: spec.TimeSensitive}
	if len(spec.Partitions) == 0 {
		return t, nil
	}

	t.children = make([]*Term, 0, len(spec.Partitions))
	t.index = make(map[string]int, len(spec.Partitions))
	for _, ps := range spec.Partitions {
		if _, dup := t.index[ps.Name]; dup {
			return nil, fmt.Errorf("%w: %q under %q", ErrDuplicateTerm, ps.Name, strings.Join(path, "/"))
		}
		child, err := buildTerm(ps, path)
		if err != nil {
			return nil, err
		}
		t.index[ps.Name] = len(t.children)
		t.children = append(t.children, child)
	}
	return t, nil
}

func (o *Ontology) Root() *Term { return o.root }

// Find follows path from the root, which is not part of the path.
func (o *Ontology) Find(path ...string) (*Term, bool) {
	t := o.root
	for _, name := range path {
		child, ok := t.Partition(name)
		if !ok {
			return nil, false
		}
		t = child
	}
	return t, true
}

// Walk visits every term in pre-order with its depth (root = 0).
func (o *Ontology) Walk(fn func(t *Term, depth int)) {
	var visit func(*Term, int)
	visit = func(t *Term, depth int) {
		fn(t, depth)
		for _, c := range t.children {
			visit(c, depth+1)
		}
	}
	visit(o.root, 0)
}

// AddData routes c to its leaf partition. At each level the first child,
// in declaration order, whose name is a label carried by every element of c
// is followed. The leaf and all its ancestors are marked as having new data.
func (o *Ontology) AddData(c *Cluster) error {
	path, err := o.route(c)
	if err != nil {
		return err
	}
	commit(c, path)
	return nil
}

// AddAll routes every cluster before assigning any of them. If one cluster
// is unroutable the ontology is left unchanged.
func (o *Ontology) AddAll(clusters []*Cluster) error {
	paths := make([][]*Term, len(clusters))
	for i, c := range clusters {
		path, err := o.route(c)
		if err != nil {
			return err
		}
		paths[i] = path
	}
	for i, c := range clusters {
		commit(c, paths[i])
	}
	return nil
}

// route returns the terms from the root down to c's leaf.
func (o *Ontology) route(c *Cluster) ([]*Term, error) {
	path := []*Term{o.root}
	t := o.root
	for !t.IsLeaf() {
		next := slices.IndexFunc(t.children, func(child *Term) bool {
			return c.HasLabel(child.name)
		})
		if next < 0 {
			return nil, fmt.Errorf("%w: %s has no label matching a partition of %q", ErrUnroutable, c.Name(), t.name)
		}
		t = t.children[next]
		path = append(path, t)
	}
	return path, nil
}

func commit(c *Cluster, path []*Term) {
	leaf := path[len(path)-1]
	leaf.data = append(leaf.data, c)
	for _, p := range path {
		p.dirty = true
	}
}

// Reset drops all assigned data and cached clusters.
func (o *Ontology) Reset() {
	o.Walk(func(t *Term, _ int) {
		t.data = nil
		t.clusters = nil
		t.dirty = false
	})
}
