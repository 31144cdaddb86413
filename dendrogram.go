package ohclust

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Dendrogram is a binary merge tree. A leaf holds one original element; an
// internal node holds the two subtrees that were merged and the metric score
// at which the merge happened. Ownership flows strictly parent to child and a
// dendrogram is never modified after construction.
type Dendrogram struct {
	Element Element

	Left  *Dendrogram
	Right *Dendrogram
	Score float64
}

func (d *Dendrogram) IsLeaf() bool { return d.Left == nil && d.Right == nil }

// Size is the number of leaves.
func (d *Dendrogram) Size() int {
	if d.IsLeaf() {
		return 1
	}
	return d.Left.Size() + d.Right.Size()
}

// Depth is the length of the longest root-to-leaf path; a leaf has depth 0.
func (d *Dendrogram) Depth() int {
	if d.IsLeaf() {
		return 0
	}
	return 1 + max(d.Left.Depth(), d.Right.Depth())
}

// Leaves returns the leaf elements left to right.
func (d *Dendrogram) Leaves() []Element {
	var out []Element
	d.walk(func(n *Dendrogram) {
		if n.IsLeaf() {
			out = append(out, n.Element)
		}
	})
	return out
}

// Scores returns the merge scores of the internal nodes in post-order, which
// is the order the merges happened in for any single subtree.
func (d *Dendrogram) Scores() []float64 {
	var out []float64
	d.walk(func(n *Dendrogram) {
		if !n.IsLeaf() {
			out = append(out, n.Score)
		}
	})
	return out
}

// walk visits nodes in post-order.
func (d *Dendrogram) walk(fn func(*Dendrogram)) {
	if !d.IsLeaf() {
		d.Left.walk(fn)
		d.Right.walk(fn)
	}
	fn(d)
}

// String renders the tree as indented text, one node per line.
func (d *Dendrogram) String() string {
	var b strings.Builder
	d.render(&b, 0)
	return b.String()
}

func (d *Dendrogram) render(b *strings.Builder, depth int) {
	indent := strings.Repeat("  ", depth)
	if d.IsLeaf() {
		fmt.Fprintf(b, "%s%s\n", indent, d.Element.Name())
		return
	}
	fmt.Fprintf(b, "%s+ %.4f\n", indent, d.Score)
	d.Left.render(b, depth+1)
	d.Right.render(b, depth+1)
}

type xmlDendrogram struct {
	XMLName  xml.Name
	Name     string           `xml:"name,attr,omitempty"`
	Score    string           `xml:"correlation,attr,omitempty"`
	Children []*xmlDendrogram `xml:",any"`
}

func (d *Dendrogram) toXML() *xmlDendrogram {
	if d.IsLeaf() {
		return &xmlDendrogram{XMLName: xml.Name{Local: "Leaf"}, Name: d.Element.Name()}
	}
	return &xmlDendrogram{
		XMLName:  xml.Name{Local: "Tree"},
		Score:    fmt.Sprintf("%.4f", d.Score),
		Children: []*xmlDendrogram{d.Left.toXML(), d.Right.toXML()},
	}
}

// MarshalXML writes the tree as nested <Tree correlation="..."> and
// <Leaf name="..."> elements.
func (d *Dendrogram) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	return e.Encode(d.toXML())
}
