package engine

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func set(chars string) map[byte]struct{} {
	m := make(map[byte]struct{}, len(chars))
	for i := 0; i < len(chars); i++ {
		m[chars[i]] = struct{}{}
	}
	return m
}

func positions(ps ...Position) map[Position]struct{} {
	m := make(map[Position]struct{}, len(ps))
	for _, p := range ps {
		m[p] = struct{}{}
	}
	return m
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name string
		pool []string
		c    Constraints
		want []string
	}{
		{
			name: "no constraints",
			pool: []string{"hello", "world", "rust"},
			c:    Constraints{Current: "manor"},
			want: []string{"hello", "world", "rust"},
		},
		{
			name: "all filtered",
			pool: []string{"hello", "world"},
			c:    Constraints{Current: "manor", Excluded: set("o")},
			want: []string{},
		},
		{
			name: "excluded letter",
			pool: []string{"hello", "world", "rust"},
			c:    Constraints{Current: "manor", Excluded: set("l")},
			want: []string{"rust"},
		},
		{
			name: "forbidden position",
			pool: []string{"hello", "helps", "world"},
			c:    Constraints{Current: "manor", Forbidden: positions(Position{'e', 1})},
			want: []string{"world"},
		},
		{
			name: "forbidden and excluded",
			pool: []string{"hello", "helps", "world", "great"},
			c: Constraints{
				Current:   "manor",
				Forbidden: positions(Position{'e', 1}),
				Excluded:  set("l"),
			},
			want: []string{"great"},
		},
		{
			name: "several forbidden positions",
			pool: []string{"abcde", "aecdb", "fghij"},
			c:    Constraints{Current: "manor", Forbidden: positions(Position{'a', 0}, Position{'e', 4})},
			want: []string{"fghij"},
		},
		{
			name: "required with forbidden position",
			pool: []string{"bread", "great", "heart"},
			c: Constraints{
				Current:   "manor",
				Forbidden: positions(Position{'e', 1}),
				Required:  set("ea"),
			},
			want: []string{"bread", "great"},
		},
		{
			name: "required letters",
			pool: []string{"hello", "world", "bread", "great"},
			c:    Constraints{Current: "manor", Required: set("ea")},
			want: []string{"bread", "great"},
		},
		{
			name: "same letter elsewhere survives",
			pool: []string{"erase", "bread"},
			c:    Constraints{Current: "doger", Forbidden: positions(Position{'e', 0})},
			want: []string{"bread"},
		},
		{
			name: "drops current guess",
			pool: []string{"crane", "slate"},
			c:    Constraints{Current: "crane"},
			want: []string{"slate"},
		},
		{
			name: "resolved slots must match",
			pool: []string{"crane", "crate", "slate", "grace"},
			c:    Constraints{Current: "trace", Resolved: [5]byte{0, 'r', 'a', 0, 'e'}},
			want: []string{"crane", "crate", "grace"},
		},
		{
			name: "empty pool",
			pool: nil,
			c:    Constraints{Current: "manor"},
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filter(tt.pool, tt.c))
		})
	}
}

func TestFilterIsPureAndOrderIndependent(t *testing.T) {
	pool := []string{"crane", "slate", "fling", "grasp", "thing", "blame", "pride", "slope", "drink", "plant"}
	c := Constraints{
		Current:   "crane",
		Required:  set("l"),
		Forbidden: positions(Position{'l', 2}),
		Excluded:  set("s"),
	}
	original := append([]string(nil), pool...)

	first := Filter(pool, c)
	second := Filter(pool, c)
	assert.Equal(t, first, second)
	assert.Equal(t, original, pool, "pool must not be modified")

	shuffled := append([]string(nil), pool...)
	rand.New(rand.NewSource(7)).Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	got := Filter(shuffled, c)
	sort.Strings(first)
	sort.Strings(got)
	assert.Equal(t, first, got)
	assert.Equal(t, []string{"blame", "fling", "plant"}, got)
}

func TestConstraintsAccessorsAreSorted(t *testing.T) {
	c := Constraints{
		Required:  set("zae"),
		Excluded:  set("qb"),
		Forbidden: positions(Position{'z', 3}, Position{'b', 0}, Position{'a', 3}),
	}
	assert.Equal(t, "aez", c.RequiredLetters())
	assert.Equal(t, "bq", c.ExcludedLetters())
	assert.Equal(t, []Position{{'b', 0}, {'a', 3}, {'z', 3}}, c.ForbiddenPositions())
}
