package service

import (
	"context"

	"github.com/shopspring/decimal"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=PaymentGateway --dir=. --output=./mocks --outpkg=mocks

// PaymentGateway определяет интерфейс платёжного провайдера.
// Провайдер не хранит доменного состояния: по сумме и валюте он выдаёт
// client secret, которым покупатель подтверждает оплату на своей стороне.
// Вызывается только при создании intent, не при фулфилменте
type PaymentGateway interface {
	// CreateIntent создаёт payment intent и возвращает client secret.
	// Возвращает ошибку при неположительной сумме или отказе провайдера
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (string, error)
}
