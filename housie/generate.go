package housie

import (
	"math/rand"
)

// GenerateAttempts bounds how many times NewGrid retries generation
// before giving up. A single attempt almost always succeeds; the
// balancing passes can occasionally leave a short row.
const GenerateAttempts = 10

// NewGrid generates a ticket grid and validates it, retrying up to
// GenerateAttempts times. Callers treat an error as fatal for the
// purchase, not for the process.
func NewGrid() (Grid, error) {
	for attempt := 0; attempt < GenerateAttempts; attempt++ {
		g := generate()
		if err := g.Validate(); err == nil {
			return g, nil
		}
	}
	return Grid{}, ErrGeneration
}

// generate builds a candidate grid. The result usually satisfies all
// invariants but is not guaranteed to; NewGrid validates and retries.
func generate() Grid {
	var g Grid

	// Decide how many of the 15 numbers each column holds (1-3),
	// by repeated accept/reject until the total reaches 15.
	perColumn := make([]int, Cols)
	total := 0
	for total < TotalNumbers {
		for col := 0; col < Cols && total < TotalNumbers; col++ {
			if perColumn[col] < Rows && rand.Float64() > 0.3 {
				perColumn[col]++
				total++
			}
		}
	}
	for total > TotalNumbers {
		col := rand.Intn(Cols)
		if perColumn[col] > 0 {
			perColumn[col]--
			total--
		}
	}

	// Fill each column with distinct values from its range, each in a
	// distinct random row.
	for col := 0; col < Cols; col++ {
		if perColumn[col] == 0 {
			continue
		}

		pool := columnPool(col, g)
		rand.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		rows := []int{0, 1, 2}
		for _, v := range pool[:perColumn[col]] {
			i := rand.Intn(len(rows))
			g[rows[i]][col] = v
			rows = append(rows[:i], rows[i+1:]...)
		}
	}

	// Balance rows: trim rows holding more than 5, then top up rows
	// holding fewer, preferring columns still blank in that row.
	for row := 0; row < Rows; row++ {
		for count(g, row) > NumbersPerRow {
			filled := []int{}
			for col := 0; col < Cols; col++ {
				if g[row][col] != 0 {
					filled = append(filled, col)
				}
			}
			g[row][filled[rand.Intn(len(filled))]] = 0
		}

		for count(g, row) < NumbersPerRow {
			type candidate struct {
				col  int
				pool []int
			}
			candidates := []candidate{}
			for col := 0; col < Cols; col++ {
				if g[row][col] != 0 {
					continue
				}
				if pool := columnPool(col, g); len(pool) > 0 {
					candidates = append(candidates, candidate{col, pool})
				}
			}
			if len(candidates) == 0 {
				break // validation will reject the short row
			}
			c := candidates[rand.Intn(len(candidates))]
			g[row][c.col] = c.pool[rand.Intn(len(c.pool))]
		}
	}

	return g
}

// columnPool lists the values of a column's range not yet used on the grid.
func columnPool(col int, g Grid) []int {
	min, max := ColumnRange(col)
	used := make(map[int]bool, Rows)
	for row := 0; row < Rows; row++ {
		if g[row][col] != 0 {
			used[g[row][col]] = true
		}
	}

	pool := make([]int, 0, max-min+1)
	for v := min; v <= max; v++ {
		if !used[v] {
			pool = append(pool, v)
		}
	}
	return pool
}

func count(g Grid, row int) int {
	n := 0
	for col := 0; col < Cols; col++ {
		if g[row][col] != 0 {
			n++
		}
	}
	return n
}
