package board

// moveItem returns a copy of items with the element at src moved to dst,
// using splice semantics: remove first, then insert, so a forward move lands
// at dst in the shortened slice.
func moveItem[T any](items []T, src, dst int) ([]T, error) {
	if src < 0 || src >= len(items) || dst < 0 || dst >= len(items) {
		return nil, ErrInvalidIndex
	}
	out := make([]T, 0, len(items))
	out = append(out, items[:src]...)
	out = append(out, items[src+1:]...)

	moved := items[src]
	out = append(out, moved)
	copy(out[dst+1:], out[dst:len(out)-1])
	out[dst] = moved
	return out, nil
}

// columnPositions lists the flat indices of tasks belonging to columnID, in
// display order.
func columnPositions(tasks []Task, columnID uint64) []int {
	var positions []int
	for i := range tasks {
		if tasks[i].ColumnID == columnID {
			positions = append(positions, i)
		}
	}
	return positions
}

// moveTask relocates the srcIndex-th task of srcColumn so that it becomes the
// dstIndex-th task of dstColumn. Tasks are kept in one flat sequence; a
// column's view is the subsequence sharing its column id.
func moveTask(tasks []Task, srcColumn uint64, srcIndex int, dstColumn uint64, dstIndex int) ([]Task, Task, error) {
	srcPositions := columnPositions(tasks, srcColumn)
	if srcIndex < 0 || srcIndex >= len(srcPositions) {
		return nil, Task{}, ErrInvalidIndex
	}
	from := srcPositions[srcIndex]
	moved := tasks[from].clone()

	rest := make([]Task, 0, len(tasks))
	rest = append(rest, tasks[:from]...)
	rest = append(rest, tasks[from+1:]...)

	dstPositions := columnPositions(rest, dstColumn)
	if dstIndex < 0 || dstIndex > len(dstPositions) {
		return nil, Task{}, ErrInvalidIndex
	}

	var at int
	switch {
	case dstIndex < len(dstPositions):
		at = dstPositions[dstIndex]
	case len(dstPositions) > 0:
		at = dstPositions[len(dstPositions)-1] + 1
	default:
		at = len(rest)
	}

	moved.ColumnID = dstColumn
	out := make([]Task, 0, len(tasks))
	out = append(out, rest[:at]...)
	out = append(out, moved)
	out = append(out, rest[at:]...)
	return out, moved, nil
}
