package housie

// Category is a win pattern a ticket can satisfy.
type Category string

const (
	EarlyFive  Category = "Early Five"
	TopLine    Category = "Top Line"
	MiddleLine Category = "Middle Line"
	BottomLine Category = "Bottom Line"
	FullHouse  Category = "Full House"
)

// Categories lists every win pattern in display order.
var Categories = []Category{EarlyFive, TopLine, MiddleLine, BottomLine, FullHouse}

var lineForRow = [Rows]Category{TopLine, MiddleLine, BottomLine}

// Valid reports whether c names a known win category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CategorySet is the set of categories a ticket currently satisfies.
type CategorySet map[Category]bool

// Has reports membership.
func (s CategorySet) Has(c Category) bool { return s[c] }

// List returns the satisfied categories in display order.
func (s CategorySet) List() []Category {
	out := []Category{}
	for _, c := range Categories {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}

// Evaluate returns every category the grid satisfies against the called
// numbers. Only membership of the called sequence matters, not order.
// Several categories can hold at once; ranking them is the caller's job.
func Evaluate(g Grid, called []int) CategorySet {
	drawn := make(map[int]bool, len(called))
	for _, n := range called {
		drawn[n] = true
	}

	wins := CategorySet{}

	matched := 0
	for _, v := range g.Values() {
		if drawn[v] {
			matched++
		}
	}
	if matched >= NumbersPerRow {
		wins[EarlyFive] = true
	}

	full := true
	for row := 0; row < Rows; row++ {
		rowDone := true
		for _, v := range g.RowValues(row) {
			if !drawn[v] {
				rowDone = false
				full = false
				break
			}
		}
		if rowDone {
			wins[lineForRow[row]] = true
		}
	}
	if full {
		wins[FullHouse] = true
	}

	return wins
}
