package housie

import "fmt"

const (
	// Rows and Cols describe the classic housie ticket layout:
	// 3 rows x 9 columns, 5 numbers per row, 0 marks a blank cell.
	Rows = 3
	Cols = 9

	// NumbersPerRow is the number of non-blank cells each row must hold.
	NumbersPerRow = 5

	// TotalNumbers is the number of non-blank cells on a full ticket.
	TotalNumbers = Rows * NumbersPerRow

	// MaxNumber is the highest callable number.
	MaxNumber = 99
)

// Grid is a housie ticket layout. Cell value 0 is a blank.
type Grid [Rows][Cols]int

// ColumnRange returns the inclusive value range for a column: 1-9,
// 11-19, 21-29, ... and 90-99 for the last. Multiples of ten below 90
// belong to no column and never appear on a ticket.
func ColumnRange(col int) (min, max int) {
	if col == Cols-1 {
		return 90, 99
	}
	if col == 0 {
		return 1, 9
	}
	return col*10 + 1, col*10 + 9
}

// Validate checks every ticket invariant: exactly 5 numbers per row,
// all values inside their column range, and no value repeated anywhere.
func (g Grid) Validate() error {
	seen := make(map[int]bool, TotalNumbers)

	for row := 0; row < Rows; row++ {
		filled := 0
		for col := 0; col < Cols; col++ {
			v := g[row][col]
			if v == 0 {
				continue
			}
			filled++

			min, max := ColumnRange(col)
			if v < min || v > max {
				return fmt.Errorf("%w: value %d out of range for column %d", ErrInvalidGrid, v, col)
			}
			if seen[v] {
				return fmt.Errorf("%w: duplicate value %d", ErrInvalidGrid, v)
			}
			seen[v] = true
		}
		if filled != NumbersPerRow {
			return fmt.Errorf("%w: row %d has %d numbers, want %d", ErrInvalidGrid, row, filled, NumbersPerRow)
		}
	}
	return nil
}

// Values returns every non-blank value on the ticket, row by row.
func (g Grid) Values() []int {
	out := make([]int, 0, TotalNumbers)
	for row := 0; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if g[row][col] != 0 {
				out = append(out, g[row][col])
			}
		}
	}
	return out
}

// RowValues returns the non-blank values of one row.
func (g Grid) RowValues(row int) []int {
	out := make([]int, 0, NumbersPerRow)
	for col := 0; col < Cols; col++ {
		if g[row][col] != 0 {
			out = append(out, g[row][col])
		}
	}
	return out
}
