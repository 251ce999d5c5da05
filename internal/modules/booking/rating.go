// README: Later rating path for completed rides.
package booking

import (
	"context"
	"errors"
	"fmt"

	"citycab/internal/modules/history"
	"citycab/internal/modules/rating"
)

// SubmitRating rates a completed ride once. The history slot is claimed
// first so a lost race never double counts the driver aggregate.
func (s *Service) SubmitRating(ctx context.Context, bookingID string, stars int) error {
	if !rating.Valid(stars) {
		return ErrInvalidRating
	}
	rec, err := s.history.Find(ctx, bookingID)
	if errors.Is(err, history.ErrNotFound) {
		return fmt.Errorf("booking %s: %w: %w", bookingID, ErrNotFound, err)
	}
	if err != nil {
		return err
	}
	if rec.Rated() {
		return ErrAlreadyRated
	}
	if err := s.history.SetRating(ctx, bookingID, stars); err != nil {
		if errors.Is(err, history.ErrNotFound) {
			return fmt.Errorf("booking %s: %w: %w", bookingID, ErrNotFound, err)
		}
		return err
	}
	if s.ratings == nil {
		return nil
	}
	if err := s.ratings.AddRating(ctx, rec.VehicleID, stars); err != nil {
		return fmt.Errorf("update driver rating: %w", err)
	}
	s.logger.Info("ride rated", "booking_id", bookingID, "vehicle_id", rec.VehicleID, "stars", stars)
	return nil
}
