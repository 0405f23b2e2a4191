// Package sample holds the small denormalized pet adoption dataset used by
// the sample command, examples and tests.
package sample

import "github.com/tordrt/tablenorm/internal/table"

// PetColumns are the columns of the pet dataset, in order.
var PetColumns = []string{
	"state", "state-code", "city", "city-code", "animal", "legs",
	"name", "fee", "id", "state_id", "alive", "date",
}

var petRows = [][]any{
	{"CO", 0, "denver", 0, "cat", 4, "Boots", 150, 0, "C1", true, "1/1/2020"},
	{"CO", 0, "denver", 0, "dog", 4, "Fluffy", 300, 1, "C2", true, "1/2/2020"},
	{"CO", 0, "boulder", 1, "fish", 0, "Swimbo", 30, 2, "C3", true, "1/3/2020"},
	{"PA", 1, "york", 2, "cat", 4, "Fluffy", 200, 3, "P1", true, "1/4/2020"},
	{"PA", 1, "york", 2, "cat", 4, "Charles", 200, 4, "P2", true, "1/5/2020"},
	{"PA", 1, "york", 2, "fish", 0, "Fluffy", 40, 5, "P3", true, "1/6/2020"},
	{"PA", 1, "dover", 3, "lizard", 4, "Waldo", 30, 6, "P4", true, "1/6/2020"},
	{"FL", 2, "miami", 4, "lizard", 4, "Dizzy", 35, 7, "F1", true, "1/6/2020"},
	{"FL", 2, "miami", 4, "fish", 0, "Blub", 40, 8, "F2", true, "1/7/2020"},
	{"FL", 2, "miami", 4, "crab", 6, "Pynch", 40, 9, "F3", true, "1/8/2020"},
	{"PA", 1, "york", 2, "cat", 4, "Elmo", 200, 10, "P5", true, "1/8/2020"},
	{"CO", 0, "boulder", 1, "dog", 4, "Scraps", 300, 11, "C4", true, "1/8/2020"},
}

// Pets returns a fresh copy of the 12-row pet dataset.
func Pets() *table.Table {
	t, err := table.FromRows(PetColumns, petRows)
	if err != nil {
		panic(err)
	}
	return t
}
