package service

import "errors"

// ErrMalformedOrder возвращается при нарушении формы заказа:
// пустой список товаров, разная длина параллельных списков
// или неположительное количество. Проверяется до любой записи
var ErrMalformedOrder = errors.New("malformed order")

// ErrInvalidAmount возвращается при неположительной сумме платежа
var ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

// ErrInvalidInput возвращается при нарушении валидации входных данных
// (пустые обязательные поля, значения вне допустимого диапазона)
var ErrInvalidInput = errors.New("invalid input")

// ErrUnauthorized возвращается при отсутствии или невалидности токена
var ErrUnauthorized = errors.New("unauthorized access")
