package scoring

// SeededRand is a Park-Miller linear congruential generator. The same
// seed always yields the same draw sequence, which the daily challenge
// relies on for its date-stable shuffle.
type SeededRand struct {
	state int64
}

const (
	lcgMultiplier = 16807
	lcgModulus    = 2147483647
)

// NewSeededRand returns a generator for the given seed. Seeds are
// normalized into (0, modulus) so zero and negative seeds still work.
func NewSeededRand(seed int64) *SeededRand {
	s := seed % lcgModulus
	if s <= 0 {
		s += lcgModulus - 1
	}
	return &SeededRand{state: s}
}

// Float64 draws the next value in [0, 1).
func (r *SeededRand) Float64() float64 {
	r.state = r.state * lcgMultiplier % lcgModulus
	return float64(r.state) / lcgModulus
}

// Intn draws a value in [0, n). n must be positive.
func (r *SeededRand) Intn(n int) int {
	return int(r.Float64() * float64(n))
}

// Shuffle runs a Fisher-Yates pass using the generator.
func (r *SeededRand) Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		swap(i, j)
	}
}
