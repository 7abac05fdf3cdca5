package spatialgrid

// custom quicksort that sorts items alongside their cell keys.
// Order within one cell is unspecified.
func sortCellsAndItems[TItem any](cells []int, items []TItem, left, right int) {
	for left < right {
		pivot := cells[(left+right)>>1]
		i := left - 1
		j := right + 1

		for {
			i++
			for cells[i] < pivot {
				i++
			}
			j--
			for cells[j] > pivot {
				j--
			}
			if i >= j {
				break
			}
			cells[i], cells[j] = cells[j], cells[i]
			items[i], items[j] = items[j], items[i]
		}

		// recurse into the smaller half and loop on the larger one
		if j-left < right-j {
			sortCellsAndItems(cells, items, left, j)
			left = j + 1
		} else {
			sortCellsAndItems(cells, items, j+1, right)
			right = j
		}
	}
}
