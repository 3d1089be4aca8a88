// Package grid holds the index/cell math for laying memory words out in
// two dimensions.
package grid

// GetGridCoords converts a linear index into (x, y) cell coordinates for
// a grid with the given number of columns.
func GetGridCoords(index int, cols int) (int, int) {
	x := index % cols
	y := index / cols
	return x, y
}

// GetCellOrigin returns the top-left pixel of a cell for cells of
// cellW x cellH pixels.
func GetCellOrigin(index, cols, cellW, cellH int) (int, int) {
	x, y := GetGridCoords(index, cols)
	return x * cellW, y * cellH
}
