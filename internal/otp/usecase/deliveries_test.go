package usecase

import (
	"context"
	"net/http"
	"testing"
)

func TestListDeliveries(t *testing.T) {
	ctx := context.Background()

	t.Run("FiltersByDestination", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")
		issue(t, f, testNumber)
		issue(t, f, "+442070313000")
		f.wait(t)

		// Act
		out, err := f.uc.ListDeliveries(ctx, ListDeliveriesInput{Number: testNumber})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(out.Deliveries) != 1 || out.Deliveries[0].Destination != testNumber {
			t.Fatalf("expected one delivery for %s, got %+v", testNumber, out.Deliveries)
		}
	})

	t.Run("DefaultsAndCapsLimit", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")

		// Act
		out, err := f.uc.ListDeliveries(ctx, ListDeliveriesInput{Limit: 100000})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Deliveries == nil {
			// Empty history is fine; the call itself must succeed.
			return
		}
	})

	t.Run("RejectsInvalidFilterNumber", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")

		// Act
		_, err := f.uc.ListDeliveries(ctx, ListDeliveriesInput{Number: "12", Country: "DE"})

		// Assert
		assertBusinessError(t, err, "Invalid phone number", http.StatusBadRequest)
	})
}
