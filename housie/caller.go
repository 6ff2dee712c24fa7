package housie

import "math/rand"

// Caller owns the authoritative called sequence for one game. It is the
// only thing allowed to add numbers: Draw picks uniformly from the
// numbers not yet called, so a client can never feed the sequence.
// Not safe for concurrent use; the owning session serializes access.
type Caller struct {
	called []int
	drawn  map[int]bool
}

// NewCaller returns a caller resuming from an already-called sequence
// (empty for a fresh game). Duplicates in prior are ignored.
func NewCaller(prior []int) *Caller {
	c := &Caller{
		called: make([]int, 0, MaxNumber),
		drawn:  make(map[int]bool, MaxNumber),
	}
	for _, n := range prior {
		if n >= 1 && n <= MaxNumber && !c.drawn[n] {
			c.called = append(c.called, n)
			c.drawn[n] = true
		}
	}
	return c
}

// Pick selects one uniformly random uncalled number without advancing
// the sequence, so the owner can persist it before committing. Returns
// ErrExhausted once all 99 numbers have been called.
func (c *Caller) Pick() (int, error) {
	remaining := make([]int, 0, MaxNumber-len(c.called))
	for n := 1; n <= MaxNumber; n++ {
		if !c.drawn[n] {
			remaining = append(remaining, n)
		}
	}
	if len(remaining) == 0 {
		return 0, ErrExhausted
	}
	return remaining[rand.Intn(len(remaining))], nil
}

// Commit appends a picked number to the called sequence. Numbers
// already called or out of range are ignored.
func (c *Caller) Commit(n int) {
	if n < 1 || n > MaxNumber || c.drawn[n] {
		return
	}
	c.called = append(c.called, n)
	c.drawn[n] = true
}

// Draw picks and commits in one step.
func (c *Caller) Draw() (int, error) {
	n, err := c.Pick()
	if err != nil {
		return 0, err
	}
	c.Commit(n)
	return n, nil
}

// Current returns a copy of the called sequence and the last number
// drawn (0 if nothing has been drawn yet).
func (c *Caller) Current() (called []int, last int) {
	called = append([]int(nil), c.called...)
	if len(c.called) > 0 {
		last = c.called[len(c.called)-1]
	}
	return called, last
}

// Count returns the length of the called sequence.
func (c *Caller) Count() int { return len(c.called) }
