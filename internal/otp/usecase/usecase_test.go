package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/outbound/store"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goerror"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/limiter"
	"github.com/shandysiswandi/otpgate/internal/pkg/otpcode"
	"github.com/shandysiswandi/otpgate/internal/pkg/phone"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
)

const testNumber = "+16502530000"

type fakeGateway struct {
	mu       sync.Mutex
	err      error
	calls    int
	lastDest string
	lastBody string
}

func (g *fakeGateway) Send(_ context.Context, destination, body string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.calls++
	g.lastDest = destination
	g.lastBody = body

	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("SM%06d", g.calls), nil
}

type fakeRepoDB struct {
	mu         sync.Mutex
	deliveries []entity.Delivery
	attempts   []entity.Attempt
}

func (r *fakeRepoDB) CreateDelivery(_ context.Context, in entity.Delivery) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, in)
	return nil
}

func (r *fakeRepoDB) CreateAttempt(_ context.Context, in entity.Attempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, in)
	return nil
}

func (r *fakeRepoDB) ListDeliveries(_ context.Context, destination string, limit int32) ([]entity.Delivery, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]entity.Delivery, 0, len(r.deliveries))
	for _, d := range r.deliveries {
		if destination != "" && d.Destination != destination {
			continue
		}
		if int32(len(out)) >= limit {
			break
		}
		out = append(out, d)
	}
	return out, nil
}

type fakeRepoMessaging struct {
	mu       sync.Mutex
	issued   []OTPIssuedEvent
	verified []OTPVerifiedEvent
}

func (m *fakeRepoMessaging) PublishOTPIssued(_ context.Context, msg OTPIssuedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued = append(m.issued, msg)
	return nil
}

func (m *fakeRepoMessaging) PublishOTPVerified(_ context.Context, msg OTPVerifiedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.verified = append(m.verified, msg)
	return nil
}

type fixtures struct {
	uc      *Usecase
	store   *store.Memory
	gateway *fakeGateway
	repoDB  *fakeRepoDB
	repoMsg *fakeRepoMessaging
	clk     *clock.StaticClocker
	gm      *goroutine.Manager
}

// wait flushes the async audit and event writes.
func (f *fixtures) wait(t *testing.T) {
	t.Helper()
	if err := f.gm.Wait(); err != nil {
		t.Fatalf("unexpected goroutine error: %v", err)
	}
}

func newFixtures(t *testing.T, yaml string) *fixtures {
	t.Helper()

	if yaml == "" {
		yaml = `
modules:
  otp:
    code_ttl_seconds: 120
    origin: "example.com"
    expose_code: true
    rate:
      limit: 100
      window_seconds: 60
`
	}

	cfg, err := config.NewViperFromBytes("yaml", []byte(yaml))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}

	v10, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("failed to build validator: %v", err)
	}

	snow, err := uid.NewSnowflake()
	if err != nil {
		t.Fatalf("failed to build snowflake: %v", err)
	}

	clk := clock.NewStatic(time.Now())
	st := store.NewMemory(clk)
	t.Cleanup(func() { _ = st.Close() })

	gw := &fakeGateway{}
	repoDB := &fakeRepoDB{}
	repoMsg := &fakeRepoMessaging{}
	gm := goroutine.NewManager(16)

	uc := New(Dependency{
		Store:      st,
		Gateway:    gw,
		RepoDB:     repoDB,
		RepoMsg:    repoMsg,
		Normalizer: phone.NewNormalizer("US"),
		CodeGen:    otpcode.NewNumeric(4),
		Limiter: limiter.NewMemoryFixedWindow(clk, limiter.Config{
			Limit:  cfg.GetInt64("modules.otp.rate.limit"),
			Window: cfg.GetSecond("modules.otp.rate.window_seconds"),
		}),
		Validator:  v10,
		Config:     cfg,
		HMAC:       hash.NewHMACSHA256("test-secret"),
		UID:        snow,
		Clock:      clk,
		Instrument: instrument.NewNoop(),
		Goroutine:  gm,
	})

	return &fixtures{
		uc:      uc,
		store:   st,
		gateway: gw,
		repoDB:  repoDB,
		repoMsg: repoMsg,
		clk:     clk,
		gm:      gm,
	}
}

func assertBusinessError(t *testing.T, err error, msg string, status int) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected goerror, got %v", err)
	}
	if gerr.Msg() != msg {
		t.Fatalf("expected message %q, got %q", msg, gerr.Msg())
	}
	if gerr.StatusCode() != status {
		t.Fatalf("expected status %d, got %d", status, gerr.StatusCode())
	}
}
