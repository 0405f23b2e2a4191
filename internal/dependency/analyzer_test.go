package dependency

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tordrt/tablenorm/internal/sample"
	"github.com/tordrt/tablenorm/internal/table"
)

func TestClassify_Pets(t *testing.T) {
	pets := sample.Pets()

	tests := []struct {
		x, y string
		want Relationship
	}{
		{x: "city", y: "state", want: Identifies},
		{x: "state", y: "city", want: Injective},
		{x: "animal", y: "legs", want: Identifies},
		{x: "legs", y: "animal", want: Injective},
		{x: "animal", y: "state", want: Independent},
		{x: "state", y: "name", want: Independent},
		{x: "state", y: "id", want: Independent},
		{x: "state_id", y: "id", want: Independent},
		{x: "animal", y: "fee", want: Independent},
		{x: "state", y: "fee", want: Independent},
		{x: "state", y: "state-code", want: Identifies},
		{x: "state-code", y: "state", want: Identifies},
	}
	for _, tt := range tests {
		t.Run(tt.x+"->"+tt.y, func(t *testing.T) {
			got, err := Classify(pets, tt.x, tt.y)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestClassify_InvalidColumns(t *testing.T) {
	pets := sample.Pets()

	_, err := Classify(pets, "state", "state")
	require.ErrorIs(t, err, table.ErrInvalidColumnReference)

	_, err = Classify(pets, "state", "zip")
	require.ErrorIs(t, err, table.ErrInvalidColumnReference)
}

func TestAnalyze_Pets(t *testing.T) {
	rel, err := Analyze(sample.Pets())
	require.NoError(t, err)

	require.Equal(t, []string{"city", "animal", "name", "fee", "date"}, rel.Independent)
	require.Equal(t, []string{"alive"}, rel.Constant)
	require.Equal(t, []string{"id", "state_id"}, rel.Unique)
	require.Equal(t, []Pair{
		{Determinant: "city", Dependent: "state"},
		{Determinant: "animal", Dependent: "legs"},
	}, rel.Identifies)
	require.Equal(t, [][]string{{"state", "state-code"}, {"city", "city-code"}}, rel.Bijective)
}

func TestAnalyze_CardinalityCategories(t *testing.T) {
	pets := sample.Pets()
	rel, err := Analyze(pets)
	require.NoError(t, err)

	for _, c := range rel.Unique {
		n, err := pets.DistinctCount(c)
		require.NoError(t, err)
		require.Equal(t, pets.NumRows(), n, "unique column %s", c)
	}
	for _, c := range rel.Constant {
		n, err := pets.DistinctCount(c)
		require.NoError(t, err)
		require.Equal(t, 1, n, "constant column %s", c)
	}
}

func TestAnalyze_BijectiveIffMutualIdentification(t *testing.T) {
	pets := sample.Pets()
	rel, err := Analyze(pets)
	require.NoError(t, err)

	var candidates []string
	for _, c := range pets.Columns() {
		if !slices.Contains(rel.Unique, c) && !slices.Contains(rel.Constant, c) {
			candidates = append(candidates, c)
		}
	}

	for _, x := range candidates {
		for _, y := range candidates {
			if x == y {
				continue
			}
			forward, err := Classify(pets, x, y)
			require.NoError(t, err)
			backward, err := Classify(pets, y, x)
			require.NoError(t, err)
			mutual := forward == Identifies && backward == Identifies

			gx, okx := rel.GroupOf(x)
			gy, oky := rel.GroupOf(y)
			sameGroup := okx && oky && gx[0] == gy[0]

			require.Equal(t, mutual, sameGroup, "%s <-> %s", x, y)
		}
	}
}

func TestAnalyze_TransitiveBijectiveGroup(t *testing.T) {
	tbl, err := table.FromRows(
		[]string{"a", "b", "noise", "c", "d"},
		[][]any{
			{1, "x", 10, "p", "u"},
			{1, "x", 11, "p", "u"},
			{2, "y", 12, "q", "u"},
			{3, "z", 12, "r", "v"},
		},
	)
	require.NoError(t, err)

	rel, err := Analyze(tbl)
	require.NoError(t, err)

	require.Equal(t, [][]string{{"a", "b", "c"}}, rel.Bijective)
	require.Equal(t, []Pair{{Determinant: "a", Dependent: "d"}}, rel.Identifies)
	require.Equal(t, []string{"a", "noise"}, rel.Independent)
}

func TestAnalyze_WithIgnored(t *testing.T) {
	rel, err := NewAnalyzer(WithIgnored("city", "alive", "id")).Analyze(sample.Pets())
	require.NoError(t, err)

	require.Empty(t, rel.Constant)
	require.Equal(t, []string{"state_id"}, rel.Unique)
	require.NotContains(t, rel.Independent, "city")
	for _, p := range rel.Identifies {
		require.NotEqual(t, "city", p.Determinant)
		require.NotEqual(t, "city", p.Dependent)
	}
	// with city ignored, city-code takes its place as the determinant of state
	require.Equal(t, []Pair{
		{Determinant: "city-code", Dependent: "state"},
		{Determinant: "animal", Dependent: "legs"},
	}, rel.Identifies)
	require.Equal(t, [][]string{{"state", "state-code"}}, rel.Bijective)
}

func TestAnalyze_EmptyTable(t *testing.T) {
	noRows, err := table.New("a", "b")
	require.NoError(t, err)
	_, err = Analyze(noRows)
	require.ErrorIs(t, err, table.ErrEmptyTable)

	noColumns, err := table.New()
	require.NoError(t, err)
	_, err = Analyze(noColumns)
	require.ErrorIs(t, err, table.ErrEmptyTable)
}

func TestAnalyze_IncomparableValue(t *testing.T) {
	tbl, err := table.FromRows([]string{"a", "b"}, [][]any{{1, []string{"x"}}, {2, []string{"y"}}})
	require.NoError(t, err)

	_, err = Analyze(tbl)
	require.ErrorIs(t, err, table.ErrIncomparableValue)
}

func TestColumnRelationships(t *testing.T) {
	got, err := ColumnRelationships(sample.Pets(), "city")
	require.NoError(t, err)
	require.Len(t, got, 11)
	require.Equal(t, ColumnRelationship{Column: "state", Relationship: Identifies}, got[0])
	require.Equal(t, ColumnRelationship{Column: "city-code", Relationship: Identifies}, got[2])

	_, err = ColumnRelationships(sample.Pets(), "zip")
	require.ErrorIs(t, err, table.ErrInvalidColumnReference)
}

func TestUniquePairs(t *testing.T) {
	pairs, err := UniquePairs(sample.Pets(), "city", "state")
	require.NoError(t, err)
	require.Equal(t, [][]any{
		{"denver", "CO"},
		{"boulder", "CO"},
		{"york", "PA"},
		{"dover", "PA"},
		{"miami", "FL"},
	}, pairs.Rows())
}

func TestAnalyze_DependentsKeepDetermining(t *testing.T) {
	// x depends on w but is still compared against z, so chains and
	// bijections behind a dependent column are found
	tests := []struct {
		name          string
		z             []any
		wantIdentify  []Pair
		wantBijective [][]string
	}{
		{
			name: "chain",
			z:    []any{"p", "p", "p", "q"},
			wantIdentify: []Pair{
				{Determinant: "w", Dependent: "x"},
				{Determinant: "w", Dependent: "z"},
				{Determinant: "x", Dependent: "z"},
			},
		},
		{
			name:          "bijection behind a dependent",
			z:             []any{"p", "p", "q", "r"},
			wantIdentify:  []Pair{{Determinant: "w", Dependent: "x"}},
			wantBijective: [][]string{{"x", "z"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := []any{"a", "b", "c", "d"}
			x := []any{1, 1, 2, 3}
			var rows [][]any
			for range 2 {
				for i := range w {
					rows = append(rows, []any{w[i], x[i], tt.z[i]})
				}
			}
			tbl, err := table.FromRows([]string{"w", "x", "z"}, rows)
			require.NoError(t, err)

			rel, err := Analyze(tbl)
			require.NoError(t, err)
			require.Equal(t, tt.wantIdentify, rel.Identifies)
			if tt.wantBijective == nil {
				require.Empty(t, rel.Bijective)
			} else {
				require.Equal(t, tt.wantBijective, rel.Bijective)
			}
			require.Equal(t, []string{"w"}, rel.Independent)
		})
	}
}
