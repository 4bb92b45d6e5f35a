package inbound

import (
	"context"

	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

type uc interface {
	SendCode(ctx context.Context, in usecase.SendCodeInput) (*usecase.SendCodeOutput, error)
	VerifyCode(ctx context.Context, in usecase.VerifyCodeInput) (*usecase.VerifyCodeOutput, error)
	ListDeliveries(ctx context.Context, in usecase.ListDeliveriesInput) (*usecase.ListDeliveriesOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/sms/send", end.Send)
	r.POST("/sms/verify", end.Verify)
	r.GET("/sms/deliveries", end.Deliveries)
}
