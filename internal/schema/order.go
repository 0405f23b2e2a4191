package schema

// CreationOrder returns table indexes ordered so that every table comes
// after the tables its relations point to. Ties keep schema order. Tables
// caught in a reference cycle are appended in schema order.
func (s *Schema) CreationOrder() []int {
	index := make(map[string]int, len(s.Tables))
	for i, t := range s.Tables {
		index[t.Name] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(s.Tables))
	order := make([]int, 0, len(s.Tables))

	var visit func(i int)
	visit = func(i int) {
		if state[i] != unvisited {
			return
		}
		state[i] = visiting
		for _, rel := range s.Tables[i].Relations {
			if j, ok := index[rel.TargetTable]; ok && j != i && state[j] == unvisited {
				visit(j)
			}
		}
		state[i] = done
		order = append(order, i)
	}
	for i := range s.Tables {
		visit(i)
	}
	return order
}
