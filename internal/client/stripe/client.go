package stripe

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"go.uber.org/zap"
)

// Client реализует service.PaymentGateway через Stripe API.
// Платёжный провайдер не хранит доменного состояния: клиент только
// создаёт payment intent и возвращает client secret для подтверждения
// оплаты на стороне покупателя
type Client struct {
	logger *zap.Logger
}

// NewClient создаёт новый Stripe клиент.
// Секретный ключ устанавливается глобально, как того требует SDK
func NewClient(secretKey string, logger *zap.Logger) *Client {
	stripe.Key = secretKey
	return &Client{logger: logger}
}

// CreateIntent создаёт payment intent на сумму amount (в основных единицах
// валюты) и возвращает client secret. Сумма должна быть положительной.
func (c *Client) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, error) {
	if amount.Cmp(decimal.Zero) <= 0 {
		return "", fmt.Errorf("invalid amount: must be greater than 0")
	}

	// Stripe принимает сумму в минимальных единицах валюты (центах)
	minorUnits := amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(minorUnits),
		Currency:           stripe.String(currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		c.logger.Error("failed to create payment intent",
			zap.Error(err),
			zap.Int64("amount_minor_units", minorUnits),
			zap.String("currency", currency),
		)
		return "", fmt.Errorf("payment provider: %w", err)
	}

	c.logger.Info("payment intent created",
		zap.String("intent_id", intent.ID),
		zap.Int64("amount_minor_units", minorUnits),
		zap.String("currency", currency),
	)

	return intent.ClientSecret, nil
}
