// Пакет attempt — конечный автомат попытки покупки.
//
// Жизненный цикл одной попытки:
//
//	initiated → submitted → {recorded | failed | timed_out}
//	timed_out → {recorded | failed}   (только через reconcile)
//
// recorded и failed — терминальные состояния. timed_out не терминально:
// оно всегда разрешимо процедурой reconcile по истине леджера.
//
// Потокобезопасность не требуется: состояние попытки хранится
// в purchase_attempts и меняется в рамках одного запроса либо
// одного прохода фонового reconcile.
package attempt

import (
	"fmt"
)

// State — состояние попытки покупки.
type State string

const (
	// StateInitiated — попытка создана, платёж ещё не отправлен
	StateInitiated State = "initiated"
	// StateSubmitted — платёж отправлен в леджер, подтверждение не получено.
	// Сюда же попадают попытки с неизвестным исходом отправки
	// (LedgerUnavailable): статус broadcast неизвестен, перед повтором
	// обязателен опрос леджера.
	StateSubmitted State = "submitted"
	// StateRecorded — платёж подтверждён, PurchaseRecord записан (терминальное)
	StateRecorded State = "recorded"
	// StateFailed — платёж отклонён леджером (терминальное)
	StateFailed State = "failed"
	// StateTimedOut — ожидание подтверждения истекло, исход неизвестен
	StateTimedOut State = "timed_out"
)

// validTransitions — матрица допустимых переходов.
var validTransitions = map[State]map[State]bool{
	StateInitiated: {StateSubmitted: true, StateFailed: true},
	StateSubmitted: {StateRecorded: true, StateFailed: true, StateTimedOut: true},
	StateTimedOut:  {StateRecorded: true, StateFailed: true},
	StateRecorded:  {},
	StateFailed:    {},
}

// IsValid проверяет, является ли строка допустимым состоянием.
func IsValid(s State) bool {
	_, ok := validTransitions[s]
	return ok
}

// IsTerminal возвращает true для терминальных состояний.
func (s State) IsTerminal() bool {
	return s == StateRecorded || s == StateFailed
}

// Resolvable возвращает true, если попытка подлежит разрешению
// фоновым reconcile (исход платежа ещё не известен off-chain индексу).
func (s State) Resolvable() bool {
	return s == StateSubmitted || s == StateTimedOut
}

// Transition проверяет допустимость перехода from → to.
// Возвращает ошибку при недопустимом переходе.
func Transition(from, to State) error {
	if !IsValid(from) {
		return fmt.Errorf("недопустимое исходное состояние: %q", from)
	}
	if !IsValid(to) {
		return fmt.Errorf("недопустимое целевое состояние: %q", to)
	}
	if !validTransitions[from][to] {
		return fmt.Errorf("недопустимый переход %s → %s", from, to)
	}
	return nil
}
