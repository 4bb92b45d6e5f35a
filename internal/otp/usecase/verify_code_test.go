package usecase

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
)

// issue runs a send and returns the exposed code.
func issue(t *testing.T, f *fixtures, number string) string {
	t.Helper()

	out, err := f.uc.SendCode(context.Background(), SendCodeInput{Number: number})
	if err != nil {
		t.Fatalf("failed to issue code: %v", err)
	}
	if out.Code == "" {
		t.Fatal("fixtures must expose the issued code")
	}

	return out.Code
}

func TestVerifyCode(t *testing.T) {
	ctx := context.Background()

	t.Run("MatchConsumesChallenge", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")
		code := issue(t, f, testNumber)

		// Act
		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: code, Source: entity.SourceManual})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result != entity.ResultValid {
			t.Fatalf("expected Valid, got %s", out.Result)
		}

		// A replay of the winning code observes the consumed challenge.
		out, err = f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: code, Source: entity.SourceAuto})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result != entity.ResultExpired {
			t.Fatalf("expected replay Expired, got %s", out.Result)
		}

		f.wait(t)
		if len(f.repoDB.attempts) != 2 {
			t.Fatalf("expected two attempt records, got %d", len(f.repoDB.attempts))
		}
		if len(f.repoMsg.verified) != 2 {
			t.Fatalf("expected two verified events, got %d", len(f.repoMsg.verified))
		}
	})

	t.Run("MismatchKeepsChallengeLive", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")
		code := issue(t, f, testNumber)
		wrong := "0000"
		if wrong == code {
			wrong = "0001"
		}

		// Act
		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: wrong})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result != entity.ResultInvalid {
			t.Fatalf("expected Invalid, got %s", out.Result)
		}

		out, _ = f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: code})
		if out.Result != entity.ResultValid {
			t.Fatalf("expected Valid after mismatch, got %s", out.Result)
		}
	})

	t.Run("LeadingZerosAreSignificant", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")
		codeHash, err := f.uc.hmac.Hash("0092")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		now := f.clk.Now()
		_ = f.store.Put(ctx, entity.Challenge{
			Destination: testNumber,
			CodeHash:    string(codeHash),
			IssuedAt:    now,
			ExpiresAt:   now.Add(2 * time.Minute),
		})

		// Act
		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: "92"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result != entity.ResultInvalid {
			t.Fatalf(`expected "92" to mismatch "0092", got %s`, out.Result)
		}

		out, _ = f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: "0092"})
		if out.Result != entity.ResultValid {
			t.Fatalf("expected exact match Valid, got %s", out.Result)
		}
	})

	t.Run("ExpiredAfterTTL", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")
		code := issue(t, f, testNumber)
		f.clk.T = f.clk.T.Add(3 * time.Minute)

		// Act
		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: code})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result != entity.ResultExpired {
			t.Fatalf("expected Expired, got %s", out.Result)
		}
	})

	t.Run("ReissueInvalidatesOldCode", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")
		oldCode := issue(t, f, testNumber)
		newCode := issue(t, f, testNumber)
		if oldCode == newCode {
			t.Skip("generator produced identical codes")
		}

		// Act
		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: oldCode})

		// Assert: the superseded code must never verify.
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result == entity.ResultValid {
			t.Fatalf("expected superseded code rejection, got %s", out.Result)
		}

		out, _ = f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: newCode})
		if out.Result != entity.ResultValid {
			t.Fatalf("expected new code Valid, got %s", out.Result)
		}
	})

	t.Run("NoChallengeIssued", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")

		// Act
		out, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: "1234"})

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if out.Result != entity.ResultNotFound {
			t.Fatalf("expected NotFound, got %s", out.Result)
		}
	})

	t.Run("RejectsInvalidPhone", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")

		// Act
		_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Number: "12", Country: "DE", Code: "1234"})

		// Assert
		assertBusinessError(t, err, "Invalid phone number", http.StatusBadRequest)
	})

	t.Run("ValidationError", func(t *testing.T) {

		// Arrange
		f := newFixtures(t, "")

		// Act
		_, err := f.uc.VerifyCode(ctx, VerifyCodeInput{Number: testNumber, Code: "12ab"})

		// Assert
		assertBusinessError(t, err, "Validation error", http.StatusUnprocessableEntity)
	})
}
