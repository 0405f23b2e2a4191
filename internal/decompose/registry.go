package decompose

import "slices"

// KeyRegistry records, for every column used as a determinant key, the
// table that holds it as a primary key and the tables that reference it.
type KeyRegistry struct {
	order   []string
	primary map[string]int
	foreign map[string][]int
}

func newKeyRegistry() *KeyRegistry {
	return &KeyRegistry{
		primary: make(map[string]int),
		foreign: make(map[string][]int),
	}
}

// register records col as a key of table idx. The first table to register a
// column owns its primary key.
func (r *KeyRegistry) register(col string, idx int) {
	if _, ok := r.primary[col]; ok {
		return
	}
	r.primary[col] = idx
	r.order = append(r.order, col)
}

func (r *KeyRegistry) addForeign(col string, idx int) {
	if !slices.Contains(r.foreign[col], idx) {
		r.foreign[col] = append(r.foreign[col], idx)
	}
}

// Keys returns every registered key column in registration order.
func (r *KeyRegistry) Keys() []string {
	return slices.Clone(r.order)
}

// IsKey reports whether col was registered.
func (r *KeyRegistry) IsKey(col string) bool {
	_, ok := r.primary[col]
	return ok
}

// PrimaryTable returns the index of the table holding col as primary key.
func (r *KeyRegistry) PrimaryTable(col string) (int, bool) {
	idx, ok := r.primary[col]
	return idx, ok
}

// ForeignTables returns the indexes of the tables that carry col as a
// foreign key, in table order.
func (r *KeyRegistry) ForeignTables(col string) []int {
	return slices.Clone(r.foreign[col])
}
