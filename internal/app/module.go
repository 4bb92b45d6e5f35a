package app

import (
	"log/slog"
	"os"

	"github.com/shandysiswandi/otpgate/internal/otp"
)

func (a *App) initModules() {
	if err := otp.New(otp.Dependency{
		DBConn:     a.dbConn,
		Store:      a.store,
		Gateway:    a.gateway,
		Limiter:    a.limiter,
		Goroutine:  a.goroutine,
		Router:     a.router,
		Messaging:  a.messaging,
		Config:     a.config,
		Instrument: a.ins,
		Normalizer: a.normalizer,
		CodeGen:    a.codegen,
		UID:        a.uid,
		HMAC:       a.hmac,
		Clock:      a.clock,
		Validator:  a.validator,
	}); err != nil {
		slog.Error("failed to init module otp", "error", err)
		os.Exit(1)
	}
}
