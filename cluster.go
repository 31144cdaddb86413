package ohclust

// Element is anything that can be clustered.
type Element interface {
	Name() string
}

// Labeled elements carry taxonomy labels and can be routed through an Ontology.
type Labeled interface {
	HasLabel(label string) bool
}

// Cluster is a named, non-empty group of elements together with the
// dendrogram recording how it was formed.
type Cluster struct {
	name       string
	elements   []Element
	dendrogram *Dendrogram
}

// NewCluster wraps a single element in a singleton cluster named after it.
func NewCluster(e Element) *Cluster {
	return &Cluster{
		name:       e.Name(),
		elements:   []Element{e},
		dendrogram: &Dendrogram{Element: e},
	}
}

// Singletons wraps every element in its own cluster, preserving order.
func Singletons[E Element](elems []E) []*Cluster {
	out := make([]*Cluster, len(elems))
	for i, e := range elems {
		out[i] = NewCluster(e)
	}
	return out
}

// merge builds the cluster formed by joining a and b at score.
// Ownership of the elements moves to the new cluster; a and b survive
// only as dendrogram history.
func merge(name string, a, b *Cluster, score float64) *Cluster {
	elems := make([]Element, 0, len(a.elements)+len(b.elements))
	elems = append(elems, a.elements...)
	elems = append(elems, b.elements...)
	return &Cluster{
		name:     name,
		elements: elems,
		dendrogram: &Dendrogram{
			Left:  a.dendrogram,
			Right: b.dendrogram,
			Score: score,
		},
	}
}

func (c *Cluster) Name() string { return c.name }

// Elements returns the cluster members. The slice must not be modified.
func (c *Cluster) Elements() []Element { return c.elements }

func (c *Cluster) Size() int { return len(c.elements) }

func (c *Cluster) Dendrogram() *Dendrogram { return c.dendrogram }

// HasLabel reports whether every element of c carries label.
func (c *Cluster) HasLabel(label string) bool {
	for _, e := range c.elements {
		l, ok := e.(Labeled)
		if !ok || !l.HasLabel(label) {
			return false
		}
	}
	return len(c.elements) > 0
}
