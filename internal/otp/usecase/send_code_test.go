package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestSendCode(t *testing.T) {
	ctx := context.Background()

	t.Run("IssuesAndDispatches", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")

		// Act
		out, err := f.uc.SendCode(ctx, SendCodeInput{Number: "650-253-0000", Country: "US"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Destination != testNumber {
			t.Fatalf("expected destination %s, got %s", testNumber, out.Destination)
		}
		if !out.CodeExposed || len(out.Code) != 4 {
			t.Fatalf("expected exposed 4-digit code, got %+v", out)
		}
		if f.gateway.lastDest != testNumber {
			t.Fatalf("expected dispatch to %s, got %s", testNumber, f.gateway.lastDest)
		}

		wantBody := fmt.Sprintf("%s is your verification code\n\n@example.com #%s", out.Code, out.Code)
		if f.gateway.lastBody != wantBody {
			t.Fatalf("unexpected sms body:\n got %q\nwant %q", f.gateway.lastBody, wantBody)
		}

		ch, err := f.store.Lookup(ctx, testNumber)
		if err != nil {
			t.Fatalf("expected stored challenge: %v", err)
		}
		if want := f.clk.T.Add(f.uc.codeTTL()); !ch.ExpiresAt.Equal(want) {
			t.Fatalf("expected expiry %v, got %v", want, ch.ExpiresAt)
		}

		f.wait(t)
		if len(f.repoDB.deliveries) != 1 || f.repoDB.deliveries[0].MessageSID == "" {
			t.Fatalf("expected one sent delivery record, got %+v", f.repoDB.deliveries)
		}
		if len(f.repoMsg.issued) != 1 || f.repoMsg.issued[0].Destination != testNumber {
			t.Fatalf("expected one issued event, got %+v", f.repoMsg.issued)
		}
	})

	t.Run("HidesCodeByDefault", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, `
modules:
  otp:
    code_ttl_seconds: 120
    origin: "example.com"
    expose_code: false
    rate:
      limit: 100
      window_seconds: 60
`)

		// Act
		out, err := f.uc.SendCode(ctx, SendCodeInput{Number: testNumber})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.CodeExposed || out.Code != "" {
			t.Fatalf("expected code hidden, got %+v", out)
		}
	})

	t.Run("RejectsInvalidPhone", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")

		// Act
		_, err := f.uc.SendCode(ctx, SendCodeInput{Number: "12", Country: "DE"})

		// Assert
		assertBusinessError(t, err, "Invalid phone number", http.StatusBadRequest)
		if f.gateway.calls != 0 {
			t.Fatal("expected no dispatch for invalid number")
		}
		if _, lerr := f.store.Lookup(ctx, testNumber); lerr == nil {
			t.Fatal("expected no challenge issued for invalid number")
		}
	})

	t.Run("ReportsDeliveryFailure", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")
		f.gateway.err = errors.New("provider unavailable")

		// Act
		_, err := f.uc.SendCode(ctx, SendCodeInput{Number: testNumber})

		// Assert
		assertBusinessError(t, err, "Failed to send message", http.StatusInternalServerError)

		f.wait(t)
		if len(f.repoDB.deliveries) != 1 || f.repoDB.deliveries[0].Status.String() != "failed" {
			t.Fatalf("expected one failed delivery record, got %+v", f.repoDB.deliveries)
		}
	})

	t.Run("RateLimitsPerDestination", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, `
modules:
  otp:
    code_ttl_seconds: 120
    origin: "example.com"
    expose_code: true
    rate:
      limit: 1
      window_seconds: 60
`)

		if _, err := f.uc.SendCode(ctx, SendCodeInput{Number: testNumber}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Act
		_, err := f.uc.SendCode(ctx, SendCodeInput{Number: testNumber})

		// Assert
		assertBusinessError(t, err, "Too many requests", http.StatusTooManyRequests)
	})

	t.Run("ValidationError", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")

		// Act
		_, err := f.uc.SendCode(ctx, SendCodeInput{Number: "", Country: "USA"})

		// Assert
		assertBusinessError(t, err, "Validation error", http.StatusUnprocessableEntity)
	})
}
