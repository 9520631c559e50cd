package otp

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/shandysiswandi/assetly/internal/otp/inbound"
	"github.com/shandysiswandi/assetly/internal/otp/outbound/db"
	"github.com/shandysiswandi/assetly/internal/otp/outbound/email"
	"github.com/shandysiswandi/assetly/internal/otp/outbound/mq"
	"github.com/shandysiswandi/assetly/internal/otp/usecase"
	"github.com/shandysiswandi/assetly/internal/pkg/clock"
	"github.com/shandysiswandi/assetly/internal/pkg/config"
	"github.com/shandysiswandi/assetly/internal/pkg/goroutine"
	"github.com/shandysiswandi/assetly/internal/pkg/hash"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/locker"
	"github.com/shandysiswandi/assetly/internal/pkg/mail"
	"github.com/shandysiswandi/assetly/internal/pkg/messaging"
	"github.com/shandysiswandi/assetly/internal/pkg/otp"
	"github.com/shandysiswandi/assetly/internal/pkg/router"
	"github.com/shandysiswandi/assetly/internal/pkg/uid"
	"github.com/shandysiswandi/assetly/internal/pkg/validator"
)

type Dependency struct {
	DBConn       *pgxpool.Pool              `validate:"required"`
	Goroutine    *goroutine.Manager         `validate:"required"`
	Router       *router.Router             `validate:"required"`
	Cron         *cron.Cron                 `validate:"required"`
	Locker       locker.Locker              `validate:"required"`
	Mail         mail.Mail                  `validate:"required"`
	Messaging    messaging.Publisher        `validate:"required"`
	Config       config.Config              `validate:"required"`
	Instrument   instrument.Instrumentation `validate:"required"`
	UID          uid.NumberID               `validate:"required"`
	UUID         uid.StringID               `validate:"required"`
	OTPHash      hash.Hash                  `validate:"required"`
	PasswordHash hash.Hash                  `validate:"required"`
	Generator    otp.Generator              `validate:"required"`
	Clock        clock.Clocker              `validate:"required"`
	Validator    validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoDB := db.NewDB(dep.DBConn, dep.Instrument, db.Config{
		Timeout: dep.Config.GetSecond("modules.otp.store_timeout_seconds"),
	})
	repoEmail := email.New(dep.Mail, dep.Instrument)
	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument, dep.Config.GetString("modules.otp.audit_destination"))

	uc := usecase.New(usecase.Dependency{
		RepoDB:        repoDB,
		RepoEmail:     repoEmail,
		RepoMessaging: repoMsg,
		Validator:     dep.Validator,
		Config:        dep.Config,
		OTPHash:       dep.OTPHash,
		PasswordHash:  dep.PasswordHash,
		Generator:     dep.Generator,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	job := inbound.NewCleanupJob(uc, dep.Locker, dep.Config, dep.UUID)
	if _, err := inbound.RegisterCronJob(dep.Cron, job, dep.Config); err != nil {
		return err
	}

	return nil
}
