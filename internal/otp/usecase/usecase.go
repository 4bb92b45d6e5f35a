package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/pkg/clock"
	"github.com/shandysiswandi/otpgate/internal/pkg/config"
	"github.com/shandysiswandi/otpgate/internal/pkg/goroutine"
	"github.com/shandysiswandi/otpgate/internal/pkg/hash"
	"github.com/shandysiswandi/otpgate/internal/pkg/instrument"
	"github.com/shandysiswandi/otpgate/internal/pkg/limiter"
	"github.com/shandysiswandi/otpgate/internal/pkg/otpcode"
	"github.com/shandysiswandi/otpgate/internal/pkg/phone"
	"github.com/shandysiswandi/otpgate/internal/pkg/uid"
	"github.com/shandysiswandi/otpgate/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

type OTPIssuedEvent struct {
	Destination string
	MessageSID  string
	ExpiresAt   time.Time
}

type OTPVerifiedEvent struct {
	Destination string
	Outcome     entity.VerificationResult
	Source      entity.AttemptSource
	VerifiedAt  time.Time
}

type repoMessaging interface {
	PublishOTPIssued(ctx context.Context, msg OTPIssuedEvent) error
	PublishOTPVerified(ctx context.Context, msg OTPVerifiedEvent) error
}

type repoDB interface {
	CreateDelivery(ctx context.Context, in entity.Delivery) error
	CreateAttempt(ctx context.Context, in entity.Attempt) error
	ListDeliveries(ctx context.Context, destination string, limit int32) ([]entity.Delivery, error)
}

type challengeStore interface {
	Put(ctx context.Context, ch entity.Challenge) error
	Lookup(ctx context.Context, destination string) (*entity.Challenge, error)
	Consume(ctx context.Context, destination, codeHash string) (entity.VerificationResult, error)
}

type smsGateway interface {
	Send(ctx context.Context, destination, body string) (string, error)
}

type normalizer interface {
	Normalize(raw, region string) (*phone.Canonical, error)
}

type Usecase struct {
	store      challengeStore
	gateway    smsGateway
	repoDB     repoDB
	repoMsg    repoMessaging
	normalizer normalizer
	codegen    otpcode.Generator
	limiter    limiter.Limiter
	validator  validator.Validator
	cfg        config.Config
	hmac       hash.Hash
	uid        uid.NumberID
	clock      clock.Clocker
	ins        instrument.Instrumentation
	goroutine  *goroutine.Manager
}

type Dependency struct {
	Store      challengeStore
	Gateway    smsGateway
	RepoDB     repoDB
	RepoMsg    repoMessaging
	Normalizer normalizer
	CodeGen    otpcode.Generator
	Limiter    limiter.Limiter
	Validator  validator.Validator
	Config     config.Config
	HMAC       hash.Hash
	UID        uid.NumberID
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		store:      dep.Store,
		gateway:    dep.Gateway,
		repoDB:     dep.RepoDB,
		repoMsg:    dep.RepoMsg,
		normalizer: dep.Normalizer,
		codegen:    dep.CodeGen,
		limiter:    dep.Limiter,
		validator:  dep.Validator,
		cfg:        dep.Config,
		hmac:       dep.HMAC,
		uid:        dep.UID,
		clock:      dep.Clock,
		ins:        dep.Instrument,
		goroutine:  dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

// smsBody builds the message text. The trailing "@origin #code" line is the
// binding token recognized by platform auto-retrieval heuristics; auto
// retrieval only surfaces messages carrying the origin of the requesting app.
func (s *Usecase) smsBody(code string) string {
	origin := s.cfg.GetString("modules.otp.origin")
	return fmt.Sprintf("%s is your verification code\n\n@%s #%s", code, origin, code)
}

func (s *Usecase) codeTTL() time.Duration {
	return s.cfg.GetSecond("modules.otp.code_ttl_seconds")
}
