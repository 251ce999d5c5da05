// README: Per-driver rating aggregate (running sum and count).
package rating

import "errors"

const (
	MinStars = 1
	MaxStars = 5
)

var ErrInvalidRating = errors.New("rating must be between 1 and 5")

type Summary struct {
	Sum   int64 `json:"sum"`
	Count int64 `json:"count"`
}

// Average is 0 for a driver nobody has rated yet.
func (s Summary) Average() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

func Valid(stars int) bool {
	return stars >= MinStars && stars <= MaxStars
}
