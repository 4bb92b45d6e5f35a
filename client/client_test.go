package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAPISend(t *testing.T) {

	t.Run("Success", func(t *testing.T) {

		// Arrange
		var gotPath string
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decode request: %v", err)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true,"code":"0417"}`))
		}))
		defer srv.Close()

		api := NewAPI(srv.URL, nil)

		// Act
		res, err := api.Send(context.Background(), "+16502530000", "US")

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPath != "/sms/send" {
			t.Fatalf("expected path /sms/send, got %s", gotPath)
		}
		if gotBody["number"] != "+16502530000" || gotBody["country"] != "US" {
			t.Fatalf("unexpected request body: %v", gotBody)
		}
		if !res.Success || res.Code != "0417" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("OmitsEmptyCountry", func(t *testing.T) {

		// Arrange
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decode request: %v", err)
			}
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer srv.Close()

		api := NewAPI(srv.URL, nil)

		// Act
		if _, err := api.Send(context.Background(), "+16502530000", ""); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Assert
		if _, ok := gotBody["country"]; ok {
			t.Fatalf("expected country omitted, got %v", gotBody)
		}
	})

	t.Run("ServiceError", func(t *testing.T) {

		// Arrange
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"Invalid phone number"}`))
		}))
		defer srv.Close()

		api := NewAPI(srv.URL, nil)

		// Act
		_, err := api.Send(context.Background(), "12", "")

		// Assert
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "Invalid phone number") {
			t.Fatalf("expected service message in error, got %v", err)
		}
	})

	t.Run("NonJSONError", func(t *testing.T) {

		// Arrange
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream down"))
		}))
		defer srv.Close()

		api := NewAPI(srv.URL, nil)

		// Act
		_, err := api.Send(context.Background(), "+16502530000", "")

		// Assert
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.Contains(err.Error(), "502") {
			t.Fatalf("expected status in error, got %v", err)
		}
	})
}

func TestAPIVerify(t *testing.T) {

	t.Run("Valid", func(t *testing.T) {

		// Arrange
		var gotPath string
		var gotBody map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
				t.Errorf("decode request: %v", err)
			}
			_, _ = w.Write([]byte(`{"valid":true,"status":"Valid"}`))
		}))
		defer srv.Close()

		api := NewAPI(srv.URL, nil)

		// Act
		res, err := api.Verify(context.Background(), "+16502530000", "", "0417", "manual")

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if gotPath != "/sms/verify" {
			t.Fatalf("expected path /sms/verify, got %s", gotPath)
		}
		if gotBody["code"] != "0417" || gotBody["source"] != "manual" {
			t.Fatalf("unexpected request body: %v", gotBody)
		}
		if !res.Valid || res.Status != "Valid" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("ExpiredOutcomeIsNotAnError", func(t *testing.T) {

		// Arrange
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"valid":false,"status":"Expired"}`))
		}))
		defer srv.Close()

		api := NewAPI(srv.URL, nil)

		// Act
		res, err := api.Verify(context.Background(), "+16502530000", "", "0417", "auto")

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Valid || res.Status != "Expired" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})
}
