// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Все проверки выполняются ДО мутации: если вернулась одна из этих ошибок,
// ни один баланс не изменился.
package common

import "errors"

// Ошибки экономики фермы (покупки, продажи, переводы)
var (
	// ErrInsufficientFunds — недостаточно денег на счёте
	ErrInsufficientFunds = errors.New("недостаточно денег на счёте")
	// ErrInsufficientResource — недостаточно ресурса для продажи
	ErrInsufficientResource = errors.New("недостаточно ресурса")
	// ErrRecipientNotFound — получатель перевода не найден в базе
	ErrRecipientNotFound = errors.New("получатель не найден")
	// ErrSelfTransfer — попытка перевести деньги самому себе
	ErrSelfTransfer = errors.New("нельзя переводить деньги самому себе")
	// ErrInvalidAmount — некорректная сумма (ноль, отрицательная или не число)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrAmountTooLarge — сумма перевода превышает установленный потолок
	ErrAmountTooLarge = errors.New("сумма превышает максимально допустимую")
	// ErrUnknownProducer — животное с таким id отсутствует в каталоге
	ErrUnknownProducer = errors.New("такого животного нет в каталоге")
	// ErrUnknownResource — неизвестный вид ресурса
	ErrUnknownResource = errors.New("неизвестный ресурс")
)

// Ошибки админки
var (
	// ErrUnauthorized — пользователь не является оператором бота
	ErrUnauthorized = errors.New("у вас нет прав оператора")
	// ErrTargetNotFound — целевой игрок не найден
	ErrTargetNotFound = errors.New("игрок не найден")
	// ErrUnknownField — поле не входит в список корректируемых
	ErrUnknownField = errors.New("неизвестное поле")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
)

// Ошибки хранилища
var (
	// ErrStoreUnavailable — база данных недоступна, операцию можно повторить.
	// Репозитории оборачивают этой ошибкой сбои соединения,
	// чтобы обработчики отличали «повторите позже» от ошибок валидации.
	ErrStoreUnavailable = errors.New("хранилище временно недоступно")
)

// IsDomainError сообщает, является ли ошибка ошибкой валидации
// (а не сбоем хранилища). Для доменных ошибок повтор бессмысленен.
func IsDomainError(err error) bool {
	for _, e := range []error{
		ErrInsufficientFunds, ErrInsufficientResource, ErrRecipientNotFound,
		ErrSelfTransfer, ErrInvalidAmount, ErrAmountTooLarge,
		ErrUnknownProducer, ErrUnknownResource,
		ErrUnauthorized, ErrTargetNotFound, ErrUnknownField,
		ErrWrongPassword, ErrTooManyAttempts,
	} {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
