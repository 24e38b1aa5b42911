package werewolf

import "fmt"

// Phase is a session's position in the day/night loop.
type Phase string

const (
	PhaseWaiting      Phase = "waiting"
	PhaseDay          Phase = "day"
	PhaseVote         Phase = "vote"
	PhaseNightInput   Phase = "night_input"
	PhaseNightResolve Phase = "night_resolve"
	PhaseEnded        Phase = "ended"
)

// phaseEdges lists the single legal successor of each phase. Ended is
// reachable from anywhere and is terminal.
var phaseEdges = map[Phase]Phase{
	PhaseWaiting:      PhaseDay,
	PhaseDay:          PhaseVote,
	PhaseVote:         PhaseNightInput,
	PhaseNightInput:   PhaseNightResolve,
	PhaseNightResolve: PhaseDay,
}

// Transition describes a completed phase change. It carries everything a
// caller needs to announce the change; the machine performs no other side
// effect.
type Transition struct {
	From         Phase
	To           Phase
	Day          int
	Announcement string
}

// phaseMachine owns a session's phase and day counter. It is not safe for
// concurrent use on its own; the session's single-writer lock serializes it.
type phaseMachine struct {
	phase Phase
	day   int
}

func newPhaseMachine() *phaseMachine {
	return &phaseMachine{phase: PhaseWaiting}
}

func (m *phaseMachine) Phase() Phase { return m.phase }
func (m *phaseMachine) Day() int     { return m.day }

// Transition moves to the requested phase if the edge is legal. On failure
// the machine is left unchanged. Entering day increments the day counter;
// no other transition does.
func (m *phaseMachine) Transition(to Phase) (Transition, error) {
	if m.phase == PhaseEnded {
		return Transition{}, fmt.Errorf("%w: game already ended", ErrInvalidPhaseTransition)
	}
	if to != PhaseEnded && phaseEdges[m.phase] != to {
		return Transition{}, fmt.Errorf("%w: %s -> %s", ErrInvalidPhaseTransition, m.phase, to)
	}

	from := m.phase
	m.phase = to
	if to == PhaseDay {
		m.day++
	}
	return Transition{
		From:         from,
		To:           to,
		Day:          m.day,
		Announcement: m.announcement(to),
	}, nil
}

func (m *phaseMachine) announcement(p Phase) string {
	switch p {
	case PhaseWaiting:
		return "Waiting for players to join."
	case PhaseDay:
		return fmt.Sprintf("Morning of day %d. Discuss who the werewolves might be.", m.day)
	case PhaseVote:
		return fmt.Sprintf("Day %d voting has begun. Choose who to execute.", m.day)
	case PhaseNightInput:
		return fmt.Sprintf("Night %d has fallen. Choose your night action.", m.day)
	case PhaseNightResolve:
		return "It is midnight. Night actions are being resolved."
	case PhaseEnded:
		return "The game has ended."
	default:
		return ""
	}
}
