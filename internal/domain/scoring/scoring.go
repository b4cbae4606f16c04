// Package scoring converts finishing positions into league points.
package scoring

// Points table for Seniors/U23 and Veteran Open 40/50.
const (
	lastTabledPosition = 12
	lastTabledPoints   = 69
)

var table = [...]int{0, 100, 94, 90, 86, 83, 80, 78, 76, 74, 72, 70, 69}

// Points returns the league points for a finishing position.
// Past 12th place every position is worth one point less, down to zero.
// Non-positive positions score nothing.
func Points(position int) int {
	switch {
	case position <= 0:
		return 0
	case position <= lastTabledPosition:
		return table[position]
	default:
		return max(0, lastTabledPoints-(position-lastTabledPosition))
	}
}
