package providers

import (
	"context"
	"strings"
	"testing"

	"tripgate_backend/internal/travel"
	"tripgate_backend/platform/config"
	"tripgate_backend/platform/logger"
)

func newTestTerraTours(baseURL string) *TerraTours {
	creds := config.VendorCredentials{BaseURL: baseURL, ClientID: "id", ClientSecret: "secret"}
	return NewTerraTours(creds, testProviderConfig{}, logger.New("development"))
}

func TestTerraToursBookingReturnsRedirect(t *testing.T) {
	adapter := newTestTerraTours("https://vendor.example")

	conf, err := adapter.CreateBooking(context.Background(), travel.BookingRequest{OfferID: "ACT-42"})
	if err != nil {
		t.Fatalf("booking failed: %v", err)
	}
	if conf.Status != travel.BookingRedirect {
		t.Fatalf("expected redirect status, got %s", conf.Status)
	}
	if !strings.HasSuffix(conf.RedirectURL, "/book/ACT-42") {
		t.Fatalf("unexpected redirect url %s", conf.RedirectURL)
	}
	if conf.Reference != "" {
		t.Fatal("redirect bookings carry no supplier reference")
	}
}

func TestTerraToursCancelAlwaysRejected(t *testing.T) {
	adapter := newTestTerraTours("https://vendor.example")

	_, err := adapter.CancelBooking(context.Background(), "any-ref", "changed plans")
	if !IsKind(err, ErrKindRejected) {
		t.Fatalf("expected rejected error, got %v", err)
	}
}
