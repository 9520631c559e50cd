package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/assetly/internal/otp/entity"
	"github.com/shandysiswandi/assetly/internal/pkg/clock"
	"github.com/shandysiswandi/assetly/internal/pkg/config"
	"github.com/shandysiswandi/assetly/internal/pkg/goroutine"
	"github.com/shandysiswandi/assetly/internal/pkg/hash"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/otp"
	"github.com/shandysiswandi/assetly/internal/pkg/uid"
	"github.com/shandysiswandi/assetly/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// GenericIssueMessage is returned for every accepted issuance request,
// whether or not the email belongs to an account.
const GenericIssueMessage = "If this email exists, an OTP has been sent."

const (
	defaultTTL            = 10 * time.Minute
	defaultRateWindow     = 60 * time.Minute
	defaultMaxRequests    = 3
	defaultMaxAttempts    = 5
	defaultResetWindow    = 5 * time.Minute
	defaultRetention      = 24 * time.Hour
	defaultPreviewLimit   = 100
	defaultEmailTimeout   = 15 * time.Second
	maxSourceIPLength     = 45
	auditPublishTaskLabel = "otp.audit.publish"
)

// OTPMail is what the email collaborator needs to deliver a code.
type OTPMail struct {
	To       string
	FullName string
	Code     string
	TTL      time.Duration
}

type repoDB interface {
	// Atomic runs fn as one unit serialized per account.
	Atomic(ctx context.Context, accountID int64, fn func(ctx context.Context) error) error

	GetAccountByEmail(ctx context.Context, email string) (*entity.Account, error)
	UpdateAccountPassword(ctx context.Context, accountID int64, passwordHash string) error

	CountOTPCreatedSince(ctx context.Context, accountID int64, since time.Time) (int64, error)
	GetLatestUnusedOTP(ctx context.Context, accountID int64) (*entity.OTP, error)
	GetLatestUsedOTP(ctx context.Context, accountID int64) (*entity.OTP, error)
	SaveOTP(ctx context.Context, o *entity.OTP) error
	DeleteExpiredOTP(ctx context.Context, cutoff time.Time) (int64, error)
	FindUnusedExpiredOTP(ctx context.Context, cutoff time.Time, limit int) ([]entity.OTP, error)
	DeleteUsedOTP(ctx context.Context, accountID int64) (int64, error)
}

type repoEmail interface {
	SendOTP(ctx context.Context, msg OTPMail) error
}

type repoMessaging interface {
	PublishAudit(ctx context.Context, ev entity.AuditEvent) error
}

type Usecase struct {
	repoDB        repoDB
	repoEmail     repoEmail
	repoMessaging repoMessaging
	validator     validator.Validator
	cfg           config.Config
	otpHash       hash.Hash
	passwordHash  hash.Hash
	generator     otp.Generator
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	goroutine     *goroutine.Manager

	issuedCounter      metric.Int64Counter
	rateLimitedCounter metric.Int64Counter
	validationCounter  metric.Int64Counter
	cleanupCounter     metric.Int64Counter
}

type Dependency struct {
	RepoDB        repoDB
	RepoEmail     repoEmail
	RepoMessaging repoMessaging
	Validator     validator.Validator
	Config        config.Config
	OTPHash       hash.Hash
	PasswordHash  hash.Hash
	Generator     otp.Generator
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Goroutine     *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	s := &Usecase{
		repoDB:        dep.RepoDB,
		repoEmail:     dep.RepoEmail,
		repoMessaging: dep.RepoMessaging,
		validator:     dep.Validator,
		cfg:           dep.Config,
		otpHash:       dep.OTPHash,
		passwordHash:  dep.PasswordHash,
		generator:     dep.Generator,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		goroutine:     dep.Goroutine,
	}

	meter := s.ins.Meter("otp.usecase")
	s.issuedCounter = newCounter(meter, "otp.issued", "Number of OTP codes issued")
	s.rateLimitedCounter = newCounter(meter, "otp.rate_limited", "Number of OTP requests rejected by the rate limit")
	s.validationCounter = newCounter(meter, "otp.validations", "Number of OTP validations by outcome")
	s.cleanupCounter = newCounter(meter, "otp.cleanup.deleted", "Number of expired OTP records deleted")

	return s
}

func newCounter(meter metric.Meter, name, desc string) metric.Int64Counter {
	c, err := meter.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		slog.Error("failed to create counter", "name", name, "error", err)
		return nil
	}
	return c
}

func addCount(ctx context.Context, c metric.Int64Counter, n int64, opts ...metric.AddOption) {
	if c != nil {
		c.Add(ctx, n, opts...)
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("otp.usecase").Start(ctx, name)
}

// policy is the set of limits in effect for one call. Non-positive config
// values fall back to the defaults.
type policy struct {
	ttl          time.Duration
	rateWindow   time.Duration
	maxRequests  int64
	maxAttempts  int
	resetWindow  time.Duration
	retention    time.Duration
	previewLimit int
	emailTimeout time.Duration
}

func (s *Usecase) policy() policy {
	p := policy{
		ttl:          s.cfg.GetMinute("modules.otp.ttl_minutes"),
		rateWindow:   s.cfg.GetMinute("modules.otp.rate_window_minutes"),
		maxRequests:  s.cfg.GetInt64("modules.otp.max_requests"),
		maxAttempts:  s.cfg.GetInt("modules.otp.max_attempts"),
		resetWindow:  s.cfg.GetMinute("modules.otp.reset_window_minutes"),
		retention:    s.cfg.GetHour("modules.otp.cleanup_retention_hours"),
		previewLimit: s.cfg.GetInt("modules.otp.cleanup_preview_limit"),
		emailTimeout: s.cfg.GetSecond("modules.otp.email_timeout_seconds"),
	}

	if p.ttl <= 0 {
		p.ttl = defaultTTL
	}
	if p.rateWindow <= 0 {
		p.rateWindow = defaultRateWindow
	}
	if p.maxRequests <= 0 {
		p.maxRequests = defaultMaxRequests
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = defaultMaxAttempts
	}
	if p.resetWindow <= 0 {
		p.resetWindow = defaultResetWindow
	}
	// an explicit 0 is honored and sweeps everything already expired.
	if p.retention < 0 || s.cfg.GetString("modules.otp.cleanup_retention_hours") == "" {
		p.retention = defaultRetention
	}
	if p.previewLimit <= 0 {
		p.previewLimit = defaultPreviewLimit
	}
	if p.emailTimeout <= 0 {
		p.emailTimeout = defaultEmailTimeout
	}

	return p
}

// publishAudit hands ev to the broker in the background. Publishing never
// affects the outcome returned to the caller.
func (s *Usecase) publishAudit(ctx context.Context, ev entity.AuditEvent) {
	if s.repoMessaging == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = s.clock.Now()
	}

	s.goroutine.Go(context.WithoutCancel(ctx), auditPublishTaskLabel, func(ctx context.Context) error {
		return s.repoMessaging.PublishAudit(ctx, ev)
	})
}
