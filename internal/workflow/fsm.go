package workflow

// State представляет шаг мастера бронирования
type State string

const (
	StateSelectingDate State = "selecting_date"
	StateSelectingTime State = "selecting_time"
	StateConfirming    State = "confirming"
	StateCommitted     State = "committed"
	StateFailed        State = "failed"
)

// FSM задаёт допустимые переходы мастера.
// Подтверждение без выбранного времени невозможно структурно:
// такого перехода просто нет в таблице.
type FSM struct {
	transitions map[State][]State
}

func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateSelectingDate: {StateSelectingTime},
			StateSelectingTime: {StateConfirming, StateSelectingDate},
			StateConfirming:    {StateCommitted, StateFailed, StateSelectingTime},
			StateFailed:        {StateConfirming, StateSelectingTime},
			StateCommitted:     {},
		},
	}
}

// CanTransition проверяет, допустим ли переход
func (f *FSM) CanTransition(from, to State) bool {
	for _, s := range f.transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
