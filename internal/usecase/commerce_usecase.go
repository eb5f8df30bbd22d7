package usecase

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"storefront/internal/clients"
	"storefront/internal/domain"
	"storefront/internal/validation"
)

var _ domain.CommerceUseCase = (*commerceUseCase)(nil)

type commerceUseCase struct {
	orderRepo domain.OrderRepository
	payments  clients.PaymentGateway
	shipping  clients.ShippingCarrier
	log       *logrus.Logger
}

func NewCommerceUseCase(orders domain.OrderRepository, payments clients.PaymentGateway, shipping clients.ShippingCarrier, logger *logrus.Logger) domain.CommerceUseCase {
	return &commerceUseCase{
		orderRepo: orders,
		payments:  payments,
		shipping:  shipping,
		log:       logger,
	}
}

// Pay charges the gateway. When the payment names an order, the payer must
// own it, it must still be open and the amount must match its total.
func (uc *commerceUseCase) Pay(ctx context.Context, payer *domain.User, in domain.PaymentCreate) (*domain.PaymentResult, error) {
	uc.log.Infof("Use Case: User %d paying %.2f via %s", payer.ID, in.Amount, in.Method)

	if in.OrderID > 0 {
		order, err := uc.orderRepo.GetOrderByID(ctx, in.OrderID)
		if err != nil {
			return nil, err
		}
		if order.UserID != payer.ID && !payer.IsStaff() {
			return nil, domain.NewForbidden("Not authorized to pay for this order")
		}
		if order.Status == domain.StatusCancelled {
			return nil, domain.NewConflict("Order %s is cancelled", order.Number())
		}
		if total := order.TotalAmount(); domain.RoundMoney(in.Amount) != total {
			return nil, domain.NewFieldValidation("amount",
				fmt.Sprintf("Payment amount %.2f does not match order total %.2f", in.Amount, total))
		}
	}

	result, err := uc.payments.Charge(ctx, in)
	if err != nil {
		uc.log.Warnf("Use Case: Payment by user %d failed: %v", payer.ID, err)
		return nil, err
	}
	uc.log.Infof("Use Case: Payment %s accepted (%s)", result.PaymentID, result.Status)
	return result, nil
}

func (uc *commerceUseCase) ShippingRates(ctx context.Context, zipCode string) ([]domain.ShippingRate, error) {
	if !validation.IsZipCode(zipCode) {
		return nil, domain.NewFieldValidation("zip_code", "Invalid ZIP code format")
	}
	rates, err := uc.shipping.Rates(ctx, zipCode)
	if err != nil {
		uc.log.Warnf("Use Case: Shipping rates for %s unavailable: %v", zipCode, err)
		return nil, err
	}
	return rates, nil
}
