package pairwise

// Row is one test pattern: the chosen setting index for every Item, in the
// same order as the CoveringArray's Items slice.
type Row []int

// CoveringArray is a set of Rows that together cover every pair of settings
// across every two distinct Items at least once.
type CoveringArray struct {
	Items []Item
	Rows  []Row
}

type pairKey struct {
	i, j, si, sj int
}

// BuildCoveringArray runs a deterministic greedy pairwise construction over
// items: each row is built column by column, choosing for every item the
// setting that covers the most pairs against the settings already fixed
// earlier in the row, breaking ties by which setting still touches the most
// globally-uncovered pairs. No randomness is used — ties resolve to the
// lowest setting index, and re-running BuildCoveringArray on the same items
// always produces the same array.
func BuildCoveringArray(items []Item) *CoveringArray {
	n := len(items)
	if n == 0 {
		return &CoveringArray{Items: items}
	}
	if n == 1 {
		rows := make([]Row, len(items[0].Settings))
		for s := range items[0].Settings {
			rows[s] = Row{s}
		}
		return &CoveringArray{Items: items, Rows: rows}
	}

	uncovered := make(map[pairKey]bool)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			for si := range items[i].Settings {
				for sj := range items[j].Settings {
					uncovered[pairKey{i, j, si, sj}] = true
				}
			}
		}
	}

	var rows []Row
	for len(uncovered) > 0 {
		counts := make(map[[2]int]int)
		for key := range uncovered {
			counts[[2]int{key.i, key.si}]++
			counts[[2]int{key.j, key.sj}]++
		}

		row := make(Row, n)
		for k := 0; k < n; k++ {
			bestSetting, bestGain, bestWeight := 0, -1, -1
			for s := range items[k].Settings {
				gain := 0
				for j := 0; j < k; j++ {
					if uncovered[pairKey{j, k, row[j], s}] {
						gain++
					}
				}
				weight := counts[[2]int{k, s}]
				if gain > bestGain || (gain == bestGain && weight > bestWeight) {
					bestSetting, bestGain, bestWeight = s, gain, weight
				}
			}
			row[k] = bestSetting
		}

		newCovered := 0
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				key := pairKey{i, j, row[i], row[j]}
				if uncovered[key] {
					delete(uncovered, key)
					newCovered++
				}
			}
		}
		rows = append(rows, row)
		if newCovered == 0 {
			break // every remaining pair is unreachable; avoid spinning forever
		}
	}

	return &CoveringArray{Items: items, Rows: rows}
}
