package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/assetly/internal/otp"
)

func (a *App) initModules() {
	if a.config.GetBool("modules.otp.enabled") {
		if err := otp.New(otp.Dependency{
			DBConn:       a.dbConn,
			Goroutine:    a.goroutine,
			Router:       a.router,
			Cron:         a.scheduler,
			Locker:       a.locker,
			Mail:         a.mail,
			Messaging:    a.messaging,
			Config:       a.config,
			Instrument:   a.ins,
			UID:          a.uid,
			UUID:         a.uuid,
			OTPHash:      a.otpHash,
			PasswordHash: a.passwordHash,
			Generator:    a.generator,
			Clock:        a.clock,
			Validator:    a.validator,
		}); err != nil {
			slog.Error("failed to init module otp", "error", err)
			os.Exit(1)
		}
	}
}
