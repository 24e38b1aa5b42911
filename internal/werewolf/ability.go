package werewolf

import (
	"fmt"
	"sort"
)

// AbilityID identifies a night-action verb.
type AbilityID string

const (
	AbilityAttack AbilityID = "attack"
	AbilityDivine AbilityID = "divine"
	AbilityGuard  AbilityID = "guard"
	AbilityMedium AbilityID = "medium"
	AbilityFocus  AbilityID = "focus"
)

// TargetRules is the declarative target-eligibility table shared by all
// abilities. Each ability declares its restrictions here instead of
// hand-rolling them in ValidateTarget.
type TargetRules struct {
	Automatic        bool // resolved without a player-chosen target (medium)
	ExcludeSelf      bool
	ExcludeDead      bool
	ExcludeTeammates bool
	ForbidRepeat     bool // reject the immediately preceding night's target
	Mandatory        bool // no legal "do nothing"; auto-fill must pick a target
}

// CycleState is the slice of session state visible to abilities during one
// night cycle. Guarded accumulates guard effects before attacks resolve;
// LastExecuted holds the players executed on the immediately preceding day;
// PrevGuards maps a guard actor to their previous night's target.
type CycleState struct {
	Day          int
	Guarded      map[string]bool
	LastExecuted []*Player
	PrevGuards   map[string]string
}

// Outcome is the result of executing one ability.
type Outcome struct {
	Result  string // killed | guarded | white | black | focused | no_target
	Private string // actor-only message
	Public  string // optional broadcast fragment
	Kills   []string
	Guards  []string
}

// Ability is the closed contract implemented once per verb. The verb set is
// fixed, so implementations live in an immutable id-keyed map rather than an
// open registry.
type Ability interface {
	ID() AbilityID
	Rules() TargetRules
	ValidateTarget(actor, target *Player, st *CycleState) error
	Execute(actor, target *Player, st *CycleState) Outcome
}

var abilityCatalog = map[AbilityID]Ability{
	AbilityAttack: attackAbility{},
	AbilityDivine: divineAbility{},
	AbilityGuard:  guardAbility{},
	AbilityMedium: mediumAbility{},
	AbilityFocus:  focusAbility{},
}

// AbilityFor looks up the implementation for a verb.
func AbilityFor(id AbilityID) (Ability, bool) {
	a, ok := abilityCatalog[id]
	return a, ok
}

// resolutionOrder fixes the cross-ability ordering of one night cycle.
// Guards must be computed before attacks consume them; the medium pass runs
// automatically ahead of everything. Focus has no resolution-time effect.
func resolutionOrder() []AbilityID {
	return []AbilityID{AbilityGuard, AbilityAttack, AbilityDivine, AbilityMedium}
}

// checkRules applies the shared eligibility table. Ability implementations
// call it first and then layer anything rule-table cannot express.
func checkRules(rules TargetRules, actor, target *Player, st *CycleState) error {
	if rules.Automatic {
		return nil
	}
	if target == nil {
		return fmt.Errorf("%w: a target is required", ErrInvalidTarget)
	}
	if rules.ExcludeDead && !target.Alive {
		return fmt.Errorf("%w: %s is dead", ErrInvalidTarget, target.Name)
	}
	if rules.ExcludeSelf && target.ID == actor.ID {
		return fmt.Errorf("%w: you cannot choose yourself", ErrInvalidTarget)
	}
	if rules.ExcludeTeammates && target.RoleDef().Team == actor.RoleDef().Team {
		return fmt.Errorf("%w: %s is on your side", ErrInvalidTarget, target.Name)
	}
	if rules.ForbidRepeat && st != nil && st.PrevGuards[actor.ID] == target.ID {
		return fmt.Errorf("%w: you guarded %s last night", ErrInvalidTarget, target.Name)
	}
	return nil
}

// legalTargets returns the alive players the actor may legally aim the
// ability at, sorted by id for deterministic iteration.
func legalTargets(a Ability, actor *Player, players []*Player, st *CycleState) []*Player {
	var out []*Player
	for _, p := range players {
		if !p.Alive {
			continue
		}
		if err := a.ValidateTarget(actor, p, st); err == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// attackAbility is the werewolf night kill. Same-team targets are rejected
// at validation time; guard effects are consumed at execution time.
type attackAbility struct{}

func (attackAbility) ID() AbilityID { return AbilityAttack }

func (attackAbility) Rules() TargetRules {
	return TargetRules{ExcludeSelf: true, ExcludeDead: true, ExcludeTeammates: true, Mandatory: true}
}

func (a attackAbility) ValidateTarget(actor, target *Player, st *CycleState) error {
	return checkRules(a.Rules(), actor, target, st)
}

func (a attackAbility) Execute(actor, target *Player, st *CycleState) Outcome {
	if st.Guarded[target.ID] {
		return Outcome{
			Result:  "guarded",
			Private: fmt.Sprintf("You attacked %s, but they were protected.", target.Name),
			Public:  "The night passed peacefully. No one was attacked.",
		}
	}
	return Outcome{
		Result:  "killed",
		Private: fmt.Sprintf("You attacked %s.", target.Name),
		Public:  fmt.Sprintf("%s was attacked by werewolves.", target.Name),
		Kills:   []string{target.ID},
	}
}

// divineAbility is the seer's information power. It produces no effect.
type divineAbility struct{}

func (divineAbility) ID() AbilityID { return AbilityDivine }

func (divineAbility) Rules() TargetRules {
	return TargetRules{ExcludeSelf: true, ExcludeDead: true, Mandatory: true}
}

func (a divineAbility) ValidateTarget(actor, target *Player, st *CycleState) error {
	return checkRules(a.Rules(), actor, target, st)
}

func (a divineAbility) Execute(actor, target *Player, st *CycleState) Outcome {
	vis := target.RoleDef().Reveal.Seer
	return Outcome{
		Result:  string(vis),
		Private: fmt.Sprintf("Divination: %s reads %s.", target.Name, visibilityText(vis)),
	}
}

// guardAbility is the knight's protection. Guarding yourself is allowed;
// repeating the previous night's target is not.
type guardAbility struct{}

func (guardAbility) ID() AbilityID { return AbilityGuard }

func (guardAbility) Rules() TargetRules {
	return TargetRules{ExcludeDead: true, ForbidRepeat: true, Mandatory: true}
}

func (a guardAbility) ValidateTarget(actor, target *Player, st *CycleState) error {
	return checkRules(a.Rules(), actor, target, st)
}

func (a guardAbility) Execute(actor, target *Player, st *CycleState) Outcome {
	return Outcome{
		Result:  "guarded",
		Private: fmt.Sprintf("You are guarding %s tonight.", target.Name),
		Guards:  []string{target.ID},
	}
}

// mediumAbility is evaluated automatically once per night against the players
// executed on the preceding day; the target argument is ignored.
type mediumAbility struct{}

func (mediumAbility) ID() AbilityID { return AbilityMedium }

func (mediumAbility) Rules() TargetRules {
	return TargetRules{Automatic: true}
}

func (a mediumAbility) ValidateTarget(actor, target *Player, st *CycleState) error {
	return nil
}

func (a mediumAbility) Execute(actor, target *Player, st *CycleState) Outcome {
	if len(st.LastExecuted) == 0 {
		return Outcome{
			Result:  "no_target",
			Private: "No one was executed yesterday. There is nothing to reveal.",
		}
	}
	msg := ""
	for _, executed := range st.LastExecuted {
		if msg != "" {
			msg += "\n"
		}
		vis := executed.RoleDef().Reveal.Medium
		msg += fmt.Sprintf("Medium: %s read %s.", executed.Name, visibilityText(vis))
	}
	return Outcome{Result: "revealed", Private: msg}
}

// focusAbility is the mandatory decoy action for roles without a night power.
// It has no mechanical effect; its only purpose is keeping action-submission
// patterns indistinguishable between factions. The confirmation wording
// differs by the actor's team.
type focusAbility struct{}

func (focusAbility) ID() AbilityID { return AbilityFocus }

func (focusAbility) Rules() TargetRules {
	return TargetRules{ExcludeSelf: true, ExcludeDead: true, Mandatory: true}
}

func (a focusAbility) ValidateTarget(actor, target *Player, st *CycleState) error {
	return checkRules(a.Rules(), actor, target, st)
}

func (a focusAbility) Execute(actor, target *Player, st *CycleState) Outcome {
	verb := "suspecting"
	if actor.RoleDef().Team == TeamWerewolf {
		verb = "admiring"
	}
	return Outcome{
		Result:  "focused",
		Private: fmt.Sprintf("You spend the night %s %s.", verb, target.Name),
	}
}

func visibilityText(v Visibility) string {
	if v == VisibilityBlack {
		return "black (werewolf side)"
	}
	return "white (village side)"
}
