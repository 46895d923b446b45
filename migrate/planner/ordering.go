package planner

import (
	"sort"

	"github.com/satishbabariya/sequel-go/migrate/domain"
)

// OrderCreates sorts table creations so that a table is created after every
// other created table it references. Whenever several tables are ready, the
// one earliest in the input goes next. Reference
// cycles cannot be satisfied by ordering alone; the tables involved keep their
// input order after the rest.
func OrderCreates(creates []*domain.CreateTable) []*domain.CreateTable {
	if len(creates) < 2 {
		return creates
	}

	index := make(map[string]int, len(creates))
	for i, c := range creates {
		index[c.Table.Name] = i
	}

	// graph: step index -> dependent step indices
	inDegree := make([]int, len(creates))
	graph := make([][]int, len(creates))
	for j, c := range creates {
		seen := make(map[int]bool)
		for _, col := range c.Table.Columns {
			if col.References == nil {
				continue
			}
			i, ok := index[col.References.Table]
			if !ok || i == j || seen[i] {
				continue
			}
			seen[i] = true
			graph[i] = append(graph[i], j)
			inDegree[j]++
		}
	}

	// Kahn's algorithm
	var queue []int
	for i := range creates {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	added := make([]bool, len(creates))
	result := make([]*domain.CreateTable, 0, len(creates))
	for len(queue) > 0 {
		sort.Ints(queue)
		current := queue[0]
		queue = queue[1:]

		result = append(result, creates[current])
		added[current] = true

		for _, dependent := range graph[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	for i, c := range creates {
		if !added[i] {
			result = append(result, c)
		}
	}
	return result
}
