package attempt

import (
	"testing"
)

func TestTransition_Allowed(t *testing.T) {
	allowed := []struct {
		from, to State
	}{
		{StateInitiated, StateSubmitted},
		{StateInitiated, StateFailed},
		{StateSubmitted, StateRecorded},
		{StateSubmitted, StateFailed},
		{StateSubmitted, StateTimedOut},
		{StateTimedOut, StateRecorded},
		{StateTimedOut, StateFailed},
	}

	for _, tc := range allowed {
		if err := Transition(tc.from, tc.to); err != nil {
			t.Errorf("Переход %s → %s должен быть допустим: %v", tc.from, tc.to, err)
		}
	}
}

func TestTransition_TerminalStatesAreFinal(t *testing.T) {
	// Из терминальных состояний переходы запрещены
	terminals := []State{StateRecorded, StateFailed}
	targets := []State{StateInitiated, StateSubmitted, StateRecorded, StateFailed, StateTimedOut}

	for _, from := range terminals {
		if !from.IsTerminal() {
			t.Errorf("%s должно быть терминальным", from)
		}
		for _, to := range targets {
			if err := Transition(from, to); err == nil {
				t.Errorf("Переход %s → %s должен быть запрещён", from, to)
			}
		}
	}
}

func TestTransition_NoBackwardFromSubmitted(t *testing.T) {
	if err := Transition(StateSubmitted, StateInitiated); err == nil {
		t.Error("Откат submitted → initiated должен быть запрещён")
	}
	if err := Transition(StateTimedOut, StateSubmitted); err == nil {
		t.Error("Переход timed_out → submitted должен быть запрещён: reconcile только читает леджер")
	}
}

func TestTransition_InvalidState(t *testing.T) {
	if err := Transition(State("bogus"), StateRecorded); err == nil {
		t.Error("Ожидалась ошибка для недопустимого исходного состояния")
	}
	if err := Transition(StateInitiated, State("bogus")); err == nil {
		t.Error("Ожидалась ошибка для недопустимого целевого состояния")
	}
}

func TestResolvable(t *testing.T) {
	if !StateSubmitted.Resolvable() || !StateTimedOut.Resolvable() {
		t.Error("submitted и timed_out должны разрешаться через reconcile")
	}
	if StateRecorded.Resolvable() || StateFailed.Resolvable() || StateInitiated.Resolvable() {
		t.Error("терминальные и initiated состояния не подлежат reconcile")
	}
}
