package ohclust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostSpec() TermSpec {
	return TermSpec{
		Name: "root",
		Partitions: []TermSpec{
			{Name: "Cow", Partitions: []TermSpec{{Name: "2011"}, {Name: "2012"}}},
			{Name: "Human"},
		},
	}
}

func labeled(id string, labels ...string) *Cluster {
	return NewCluster(&Isolate{ID: id, Labels: labels})
}

func TestNewOntology_Structure(t *testing.T) {
	o, err := NewOntology(hostSpec())
	require.NoError(t, err)

	root := o.Root()
	assert.Equal(t, "root", root.Name())
	assert.False(t, root.IsLeaf())
	require.Len(t, root.Partitions(), 2)
	assert.Equal(t, "Cow", root.Partitions()[0].Name())

	leaf, ok := o.Find("Cow", "2012")
	require.True(t, ok)
	assert.True(t, leaf.IsLeaf())
	assert.Equal(t, "2012", leaf.Name())

	_, ok = o.Find("Cow", "2013")
	assert.False(t, ok)

	self, ok := o.Find()
	require.True(t, ok)
	assert.Same(t, root, self)
}

func TestNewOntology_Errors(t *testing.T) {
	_, err := NewOntology(TermSpec{
		Name:       "root",
		Partitions: []TermSpec{{Name: "Cow"}, {Name: "Cow"}},
	})
	assert.ErrorIs(t, err, ErrDuplicateTerm)

	_, err = NewOntology(TermSpec{
		Name:       "root",
		Partitions: []TermSpec{{Name: "Cow", Partitions: []TermSpec{{Name: ""}}}},
	})
	assert.ErrorContains(t, err, "root/Cow")

	// The same name under different parents is fine.
	_, err = NewOntology(TermSpec{
		Name: "root",
		Partitions: []TermSpec{
			{Name: "Cow", Partitions: []TermSpec{{Name: "2011"}}},
			{Name: "Pig", Partitions: []TermSpec{{Name: "2011"}}},
		},
	})
	assert.NoError(t, err)
}

func TestOntology_Walk(t *testing.T) {
	o, err := NewOntology(hostSpec())
	require.NoError(t, err)

	var visited []string
	var depths []int
	o.Walk(func(term *Term, depth int) {
		visited = append(visited, term.Name())
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"root", "Cow", "2011", "2012", "Human"}, visited)
	assert.Equal(t, []int{0, 1, 2, 2, 1}, depths)
}

func TestOntology_AddDataRoutes(t *testing.T) {
	o, err := NewOntology(hostSpec())
	require.NoError(t, err)

	require.NoError(t, o.AddData(labeled("i1", "Cow", "2012")))
	require.NoError(t, o.AddData(labeled("i2", "Human")))

	leaf, _ := o.Find("Cow", "2012")
	require.Len(t, leaf.Data(), 1)
	assert.Equal(t, "i1", leaf.Data()[0].Name())

	cow, _ := o.Find("Cow")
	other, _ := o.Find("Cow", "2011")
	human, _ := o.Find("Human")
	assert.True(t, o.Root().HasNewData())
	assert.True(t, cow.HasNewData())
	assert.True(t, leaf.HasNewData())
	assert.False(t, other.HasNewData())
	assert.True(t, human.HasNewData())
	assert.Empty(t, cow.Data(), "inner terms hold no raw data")
}

func TestOntology_AddDataFirstMatchingPartition(t *testing.T) {
	o, err := NewOntology(TermSpec{
		Name:       "root",
		Partitions: []TermSpec{{Name: "Cow"}, {Name: "Human"}},
	})
	require.NoError(t, err)

	require.NoError(t, o.AddData(labeled("both", "Human", "Cow")))
	cow, _ := o.Find("Cow")
	assert.Len(t, cow.Data(), 1, "declaration order decides, not label order")
}

func TestOntology_AddDataUnroutable(t *testing.T) {
	o, err := NewOntology(hostSpec())
	require.NoError(t, err)

	err = o.AddData(labeled("pig", "Pig"))
	assert.ErrorIs(t, err, ErrUnroutable)

	err = o.AddData(labeled("cow-no-year", "Cow"))
	assert.ErrorIs(t, err, ErrUnroutable)

	err = o.AddData(NewCluster(label("unlabeled")))
	assert.ErrorIs(t, err, ErrUnroutable)

	assert.False(t, o.Root().HasNewData(), "failed routing marks nothing")
}

func TestOntology_AddAllIsAtomic(t *testing.T) {
	o, err := NewOntology(hostSpec())
	require.NoError(t, err)

	err = o.AddAll([]*Cluster{labeled("i1", "Cow", "2011"), labeled("i2", "Human"), labeled("pig", "Pig")})
	require.ErrorIs(t, err, ErrUnroutable)
	o.Walk(func(term *Term, _ int) {
		assert.Empty(t, term.Data(), term.Name())
		assert.False(t, term.HasNewData(), term.Name())
	})

	require.NoError(t, o.AddAll([]*Cluster{labeled("i1", "Cow", "2011"), labeled("i2", "Human")}))
	leaf, _ := o.Find("Cow", "2011")
	human, _ := o.Find("Human")
	assert.Len(t, leaf.Data(), 1)
	assert.Len(t, human.Data(), 1)
	assert.True(t, o.Root().HasNewData())
}

func TestOntology_AddDataMergedCluster(t *testing.T) {
	o, err := NewOntology(TermSpec{
		Name:       "root",
		Partitions: []TermSpec{{Name: "Cow"}, {Name: "Human"}},
	})
	require.NoError(t, err)

	mixed := merge("m", labeled("a", "Cow"), labeled("b", "Human"), 0.9)
	assert.ErrorIs(t, o.AddData(mixed), ErrUnroutable, "every element must carry the label")

	cows := merge("c", labeled("a", "Cow"), labeled("b", "Cow", "Human"), 0.9)
	assert.NoError(t, o.AddData(cows))
}

func TestOntology_SingleTermAcceptsEverything(t *testing.T) {
	o, err := NewOntology(TermSpec{Name: "all"})
	require.NoError(t, err)

	require.NoError(t, o.AddData(NewCluster(label("x"))))
	assert.Len(t, o.Root().Data(), 1)
}

func TestOntology_Reset(t *testing.T) {
	o, err := NewOntology(hostSpec())
	require.NoError(t, err)
	require.NoError(t, o.AddData(labeled("i2", "Human")))

	o.Reset()

	human, _ := o.Find("Human")
	assert.Empty(t, human.Data())
	assert.Nil(t, human.Clusters())
	assert.False(t, o.Root().HasNewData())
}
