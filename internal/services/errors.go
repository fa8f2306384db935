package services

import (
	"errors"
)

// Ошибки жизненного цикла. Обработчики сопоставляют их с HTTP-статусами
// через errors.Is; повторные попытки внутри сервиса не выполняются.
var (
	ErrTruckNotFound       = errors.New("грузовик не найден")
	ErrOperatorNotFound    = errors.New("оператор не найден")
	ErrCycleNotFound       = errors.New("цикл не найден")
	ErrTruckUnavailable    = errors.New("грузовик на техобслуживании и не может начать цикл")
	ErrOperatorUnavailable = errors.New("оператор на отдыхе и не может начать цикл")
	ErrConflictActiveCycle = errors.New("грузовик или оператор уже имеет активный цикл")
	ErrInvalidState        = errors.New("недопустимый статус для операции")
)
