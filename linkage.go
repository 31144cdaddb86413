package ohclust

// Linkage converts the dendrogram into scipy linkage format.
// Returns rows [left, right, score, mergedSize] and the leaf elements in
// index order. Leaves are numbered 0..n-1 left to right; the node created
// by row k gets ID n+k. Rows are emitted in post-order, so every row only
// references IDs defined before it, matching scipy's linkage output.
func (d *Dendrogram) Linkage() ([][4]float64, []Element) {
	leaves := d.Leaves()
	n := len(leaves)
	rows := make([][4]float64, 0, n-1)

	nextLeaf := 0
	var visit func(*Dendrogram) (id, size int)
	visit = func(node *Dendrogram) (int, int) {
		if node.IsLeaf() {
			id := nextLeaf
			nextLeaf++
			return id, 1
		}
		left, leftSize := visit(node.Left)
		right, rightSize := visit(node.Right)
		size := leftSize + rightSize
		rows = append(rows, [4]float64{float64(left), float64(right), node.Score, float64(size)})
		return n + len(rows) - 1, size
	}
	visit(d)

	return rows, leaves
}
