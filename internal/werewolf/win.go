package werewolf

import "fmt"

// Win condition tags, matching the catalog's per-role win conditions.
const (
	WinEqualOrOutnumber    = "equal_or_outnumber_village"
	WinEliminateWerewolves = "eliminate_werewolves"
)

// WinResult declares a finished game. Nil from EvaluateWin means play on.
type WinResult struct {
	Winner     Team
	Condition  string
	HumanCount int
	WolfCount  int
	Message    string
}

// EvaluateWin scores the living roster by faction weights. The weights, not
// the team labels, decide victory: werewolves win when their weight reaches
// the human weight; the village wins when no wolf weight remains.
func EvaluateWin(players []*Player) *WinResult {
	human, wolf := 0, 0
	for _, p := range players {
		if !p.Alive {
			continue
		}
		w := p.RoleDef().Weight
		human += w.Human
		wolf += w.Wolf
	}

	if wolf >= human && wolf > 0 {
		return &WinResult{
			Winner:     TeamWerewolf,
			Condition:  WinEqualOrOutnumber,
			HumanCount: human,
			WolfCount:  wolf,
			Message:    "The werewolves have taken the village. Werewolf team wins!",
		}
	}
	if wolf == 0 && human > 0 {
		return &WinResult{
			Winner:     TeamVillage,
			Condition:  WinEliminateWerewolves,
			HumanCount: human,
			WolfCount:  wolf,
			Message:    "Every werewolf has been eliminated. Village team wins!",
		}
	}
	return nil
}

// survivorSummary lists the living players with their revealed roles, for
// the end-of-game announcement.
func survivorSummary(players []*Player) string {
	msg := ""
	for _, p := range players {
		if !p.Alive {
			continue
		}
		if msg != "" {
			msg += "\n"
		}
		msg += fmt.Sprintf("%s (%s)", p.Name, p.RoleDef().Name)
	}
	if msg == "" {
		return "No survivors."
	}
	return "Survivors:\n" + msg
}
