package layout

import "github.com/vanshika/wealthnet/internal/domain"

// circular spaces n points evenly on the circle inscribed in b. Edge
// structure is ignored.
func circular(n int, b box) []domain.Point {
	points := make([]domain.Point, n)
	c := b.center()
	if n == 1 {
		points[0] = c
		return points
	}
	r := b.radius()
	for i := range points {
		points[i] = onCircle(c, r, i, n)
	}
	return points
}
