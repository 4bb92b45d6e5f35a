package inbound

import (
	"github.com/samber/lo"
	"github.com/shandysiswandi/otpgate/internal/otp/entity"
	"github.com/shandysiswandi/otpgate/internal/otp/usecase"
	"github.com/shandysiswandi/otpgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the verification-code workflows.
type HTTPEndpoint struct {
	uc uc
}

// Send issues a fresh verification code and dispatches it over SMS.
// @Summary Send verification code
// @Description Normalizes the phone number, issues a challenge and sends the code via SMS.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body SendRequest true "Send payload"
// @Success 200 {object} SendResponse "Dispatch result"
// @Failure 400 {object} router.errorResponse "Invalid phone number"
// @Failure 429 {object} router.errorResponse "Too many requests"
// @Failure 500 {object} router.errorResponse "Failed to send message"
// @Router /sms/send [post]
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	var req SendRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.SendCode(r.Context(), usecase.SendCodeInput{
		Number:  req.Number,
		Country: req.Country,
	})
	if err != nil {
		return nil, err
	}

	out := SendResponse{Success: true}
	if resp.CodeExposed {
		out.Code = resp.Code
	}

	return out, nil
}

// Verify submits a candidate code for the destination number.
// @Summary Verify a code
// @Description Atomically checks the candidate against the live challenge and consumes it on a match.
// @Tags OTP
// @Accept json
// @Produce json
// @Param request body VerifyRequest true "Verify payload"
// @Success 200 {object} VerifyResponse "Verification outcome"
// @Failure 400 {object} router.errorResponse "Invalid phone number"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /sms/verify [post]
func (h *HTTPEndpoint) Verify(r *router.Request) (any, error) {
	var req VerifyRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyCode(r.Context(), usecase.VerifyCodeInput{
		Number:  req.Number,
		Country: req.Country,
		Code:    req.Code,
		Source:  entity.AttemptSourceFromString(req.Source),
	})
	if err != nil {
		return nil, err
	}

	return VerifyResponse{
		Valid:  resp.Result == entity.ResultValid,
		Status: resp.Result.String(),
	}, nil
}

// Deliveries lists the dispatch audit trail.
// @Summary List deliveries
// @Description Returns recent dispatch records, optionally filtered by destination number.
// @Tags OTP
// @Produce json
// @Param number query string false "Destination number filter"
// @Param country query string false "Region hint for the number filter"
// @Param limit query int false "Maximum records to return"
// @Success 200 {object} DeliveriesResponse "Dispatch records"
// @Failure 400 {object} router.errorResponse "Invalid phone number"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /sms/deliveries [get]
func (h *HTTPEndpoint) Deliveries(r *router.Request) (any, error) {
	limit, err := r.GetQueryInt32("limit")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.ListDeliveries(r.Context(), usecase.ListDeliveriesInput{
		Number:  r.GetQuery("number"),
		Country: r.GetQuery("country"),
		Limit:   limit,
	})
	if err != nil {
		return nil, err
	}

	return DeliveriesResponse{
		Deliveries: lo.Map(resp.Deliveries, func(d entity.Delivery, _ int) DeliveryModel {
			return DeliveryModel{
				ID:          d.ID,
				Destination: d.Destination,
				MessageSID:  d.MessageSID,
				Status:      d.Status.String(),
				IssuedAt:    d.IssuedAt,
				ExpiresAt:   d.ExpiresAt,
			}
		}),
	}, nil
}
