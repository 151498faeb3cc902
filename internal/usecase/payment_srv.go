package usecase

import (
	"context"
	"errors"

	"kalamkart/internal/data/entity"
	"kalamkart/internal/dto/request"
	"kalamkart/internal/dto/response"
	"kalamkart/pkg/payment"
	"kalamkart/pkg/utils"

	"go.uber.org/zap"
)

type PaymentService interface {
	ESewaSuccess(ctx context.Context, orderID string) (*response.OrderSummaryResponse, error)
	VerifyKhalti(ctx context.Context, req *request.KhaltiVerifyRequest) (*response.OrderSummaryResponse, error)
}

type paymentService struct {
	orders OrderService
	khalti payment.KhaltiVerifier
	log    *zap.Logger
}

func NewPaymentService(orders OrderService, khalti payment.KhaltiVerifier, log *zap.Logger) PaymentService {
	return &paymentService{
		orders: orders,
		khalti: khalti,
		log:    log.With(zap.String("service", "payment")),
	}
}

func (s *paymentService) ESewaSuccess(ctx context.Context, orderID string) (*response.OrderSummaryResponse, error) {
	if orderID == "" {
		return nil, utils.ErrValidation("Order id is required")
	}

	order, err := s.orders.SettlePayment(ctx, orderID, entity.PaymentESewa, nil)
	if err != nil {
		return nil, err
	}

	s.log.Info("eSewa payment recorded", zap.String("order_id", orderID))
	summary := response.OrderToSummary(order)
	return &summary, nil
}

func (s *paymentService) VerifyKhalti(ctx context.Context, req *request.KhaltiVerifyRequest) (*response.OrderSummaryResponse, error) {
	// 1. Gateway confirms the token
	verification, err := s.khalti.Verify(ctx, req.Token, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrVerificationFailed):
			s.log.Warn("Khalti verification rejected", zap.String("order_id", req.OrderID))
			return nil, utils.ErrValidation("Payment verification failed")
		case errors.Is(err, payment.ErrUnavailable):
			s.log.Error("Khalti unavailable", zap.Error(err), zap.String("order_id", req.OrderID))
			return nil, utils.ErrUpstream("Payment gateway unavailable", err)
		default:
			return nil, utils.ErrInternal("Payment verification failed", err)
		}
	}

	// 2. Record; the confirmed amount must cover the order exactly
	order, err := s.orders.SettlePayment(ctx, req.OrderID, entity.PaymentKhalti, &verification.Amount)
	if err != nil {
		return nil, err
	}

	s.log.Info("Khalti payment recorded",
		zap.String("order_id", req.OrderID),
		zap.String("idx", verification.IDX),
		zap.Int64("amount", verification.Amount),
	)
	summary := response.OrderToSummary(order)
	return &summary, nil
}
