package ohclust

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// Stage is the partition produced at one threshold.
type Stage struct {
	Threshold float64
	Clusters  []*Cluster
}

// Results maps each threshold of a run to the clusters produced at it, in
// the order the thresholds were applied. Results are read-only.
type Results struct {
	stages []Stage
}

// Stages returns the stages in application order. The slice must not be modified.
func (r *Results) Stages() []Stage { return r.stages }

// Thresholds returns the thresholds in application order.
func (r *Results) Thresholds() []float64 {
	out := make([]float64, len(r.stages))
	for i, s := range r.stages {
		out[i] = s.Threshold
	}
	return out
}

// At returns the clusters recorded for threshold. If the same threshold was
// applied more than once, the last stage wins.
func (r *Results) At(threshold float64) ([]*Cluster, bool) {
	for i := len(r.stages) - 1; i >= 0; i-- {
		if r.stages[i].Threshold == threshold {
			return r.stages[i].Clusters, true
		}
	}
	return nil, false
}

// Largest returns the biggest cluster at threshold. Ties go to the cluster
// listed first.
func (r *Results) Largest(threshold float64) (*Cluster, bool) {
	clusters, _ := r.At(threshold)
	l := largest(clusters)
	return l, l != nil
}

func largest(clusters []*Cluster) *Cluster {
	if len(clusters) == 0 {
		return nil
	}
	l := clusters[0]
	for _, c := range clusters[1:] {
		if c.Size() > l.Size() {
			l = c
		}
	}
	return l
}

// String renders membership grouped by threshold, followed by the largest
// cluster at each threshold.
func (r *Results) String() string {
	var b strings.Builder
	for _, s := range r.stages {
		fmt.Fprintf(&b, "Threshold %.4f: %d clusters\n", s.Threshold, len(s.Clusters))
		for _, c := range s.Clusters {
			fmt.Fprintf(&b, "Cluster %s:\n", c.Name())
			for _, e := range c.Elements() {
				fmt.Fprintf(&b, "\t%s\n", e.Name())
			}
		}
		if l := largest(s.Clusters); l != nil {
			fmt.Fprintf(&b, "Largest cluster: %s (%d)\n", l.Name(), l.Size())
		}
		b.WriteString("\n")
	}
	return b.String()
}

type jsonCluster struct {
	Name     string       `json:"name"`
	Size     int          `json:"size"`
	Elements []string     `json:"elements"`
	Linkage  [][4]float64 `json:"linkage"`
	Tree     string       `json:"dendrogram"`
}

type jsonStage struct {
	Threshold float64       `json:"threshold"`
	Largest   string        `json:"largest,omitempty"`
	Clusters  []jsonCluster `json:"clusters"`
}

// MarshalJSON encodes the stages with each cluster's members, scipy-style
// linkage rows, and an indented dendrogram.
func (r *Results) MarshalJSON() ([]byte, error) {
	out := make([]jsonStage, 0, len(r.stages))
	for _, s := range r.stages {
		js := jsonStage{Threshold: s.Threshold, Clusters: make([]jsonCluster, 0, len(s.Clusters))}
		if l := largest(s.Clusters); l != nil {
			js.Largest = l.Name()
		}
		for _, c := range s.Clusters {
			rows, leaves := c.Dendrogram().Linkage()
			names := make([]string, len(leaves))
			for i, e := range leaves {
				names[i] = e.Name()
			}
			js.Clusters = append(js.Clusters, jsonCluster{
				Name:     c.Name(),
				Size:     c.Size(),
				Elements: names,
				Linkage:  rows,
				Tree:     c.Dendrogram().String(),
			})
		}
		out = append(out, js)
	}
	return json.Marshal(out)
}

type xmlCluster struct {
	Name       string      `xml:"name,attr"`
	Size       int         `xml:"size,attr"`
	Dendrogram *Dendrogram `xml:"Dendrogram"`
}

type xmlStage struct {
	Threshold float64      `xml:"threshold,attr"`
	Clusters  []xmlCluster `xml:"Cluster"`
}

// WriteXML writes every stage's dendrograms as
// <Clusters threshold="..."><Cluster name=".." size=".."><Tree ...>.
func (r *Results) WriteXML(w io.Writer) error {
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	for _, s := range r.stages {
		xs := xmlStage{Threshold: s.Threshold}
		for _, c := range s.Clusters {
			xs.Clusters = append(xs.Clusters, xmlCluster{Name: c.Name(), Size: c.Size(), Dendrogram: c.Dendrogram()})
		}
		if err := enc.EncodeElement(xs, xml.StartElement{Name: xml.Name{Local: "Clusters"}}); err != nil {
			return fmt.Errorf("ohclust: writing xml: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("ohclust: writing xml: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}
