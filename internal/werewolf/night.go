package werewolf

import (
	"fmt"
	"math/rand"
	"sort"
	"time"
)

// NightAction is one living player's choice for the current night cycle.
type NightAction struct {
	ActorID     string
	Ability     AbilityID
	TargetID    string
	SubmittedAt time.Time
	AutoFilled  bool
}

// ActionChoice is one legal ability with its legal targets, presented to a
// player at the start of a night cycle.
type ActionChoice struct {
	Ability   AbilityID
	TargetIDs []string
}

// ActionPrompt is everything the transport needs to ask one player for their
// night action.
type ActionPrompt struct {
	PlayerID string
	Role     RoleID
	Message  string
	Choices  []ActionChoice
}

// AbilityExecution is one resolved ability in a night result.
type AbilityExecution struct {
	Ability    AbilityID
	ActorID    string
	TargetID   string
	Result     string
	AttackType string // unified | random; attack executions only
}

// PrivateMessage is a message addressed to a single player.
type PrivateMessage struct {
	PlayerID string
	Message  string
}

// NightResult is the committed outcome of one night cycle.
type NightResult struct {
	Executions []AbilityExecution
	Privates   []PrivateMessage
	Public     string
	Deaths     []*Player
	Guards     map[string]string // guard actor id -> target id, for the repeat rule
}

// Attack conflict tags.
const (
	AttackUnified = "unified"
	AttackRandom  = "random"
)

// nightCoordinator collects one action per living ability-holder and resolves
// them in the fixed cross-ability order. It holds no player state of its own;
// the owning session passes the roster and cycle state in.
type nightCoordinator struct {
	actions   map[string]*NightAction
	startedAt time.Time
}

func newNightCoordinator() *nightCoordinator {
	return &nightCoordinator{actions: make(map[string]*NightAction)}
}

// startCycle clears the previous cycle and computes per-player prompts.
func (n *nightCoordinator) startCycle(players []*Player, st *CycleState, now time.Time) []ActionPrompt {
	n.actions = make(map[string]*NightAction)
	n.startedAt = now

	var prompts []ActionPrompt
	for _, p := range players {
		if !p.Alive || !p.hasAnyAbility() {
			continue
		}
		prompt := ActionPrompt{PlayerID: p.ID, Role: p.Role}
		for _, abilityID := range p.RoleDef().Abilities {
			ability, ok := AbilityFor(abilityID)
			if !ok || ability.Rules().Automatic {
				continue
			}
			targets := legalTargets(ability, p, players, st)
			ids := make([]string, 0, len(targets))
			for _, t := range targets {
				ids = append(ids, t.ID)
			}
			prompt.Choices = append(prompt.Choices, ActionChoice{Ability: abilityID, TargetIDs: ids})
		}
		prompt.Message = nightPromptMessage(p, prompt.Choices)
		prompts = append(prompts, prompt)
	}
	return prompts
}

func nightPromptMessage(p *Player, choices []ActionChoice) string {
	if len(choices) == 0 {
		return "You have no night action. Wait for the morning."
	}
	verbs := make([]string, 0, len(choices))
	for _, c := range choices {
		verbs = append(verbs, string(c.Ability))
	}
	return fmt.Sprintf("Choose your night action (%s) and a target. This choice is required.", joinWords(verbs))
}

func joinWords(words []string) string {
	out := ""
	for i, w := range words {
		if i > 0 {
			out += ", "
		}
		out += w
	}
	return out
}

// submit records one action for the actor. Resubmission before resolution is
// rejected and the original action is preserved.
func (n *nightCoordinator) submit(actor *Player, abilityID AbilityID, target *Player, players []*Player, st *CycleState, now time.Time) error {
	if actor == nil || !actor.Alive {
		return ErrDeadPlayer
	}
	if _, exists := n.actions[actor.ID]; exists {
		return ErrAlreadyActed
	}
	if !actor.HasAbility(abilityID) {
		return fmt.Errorf("%w: %s cannot %s", ErrIllegalAction, actor.RoleDef().Name, abilityID)
	}
	ability, ok := AbilityFor(abilityID)
	if !ok {
		return fmt.Errorf("%w: unknown ability %s", ErrIllegalAction, abilityID)
	}
	if err := ability.ValidateTarget(actor, target, st); err != nil {
		return err
	}

	action := &NightAction{ActorID: actor.ID, Ability: abilityID, SubmittedAt: now}
	if target != nil {
		action.TargetID = target.ID
	}
	n.actions[actor.ID] = action
	return nil
}

// complete reports whether every living ability-holder has a recorded action.
// Players without abilities never block completion.
func (n *nightCoordinator) complete(players []*Player) bool {
	for _, p := range players {
		if !p.Alive || !p.hasAnyAbility() {
			continue
		}
		if _, ok := n.actions[p.ID]; !ok {
			return false
		}
	}
	return true
}

// pending counts living ability-holders who have not acted yet.
func (n *nightCoordinator) pending(players []*Player) int {
	count := 0
	for _, p := range players {
		if p.Alive && p.hasAnyAbility() {
			if _, ok := n.actions[p.ID]; !ok {
				count++
			}
		}
	}
	return count
}

// autoFill synthesizes a legal action for every living ability-holder who has
// not acted. The role's first listed ability is used with a uniformly random
// legal target; focus is mandatory so it always receives a target.
func (n *nightCoordinator) autoFill(players []*Player, st *CycleState, rng *rand.Rand, now time.Time) {
	for _, p := range players {
		if !p.Alive || !p.hasAnyAbility() {
			continue
		}
		if _, ok := n.actions[p.ID]; ok {
			continue
		}
		abilityID := p.RoleDef().Abilities[0]
		ability, ok := AbilityFor(abilityID)
		if !ok {
			continue
		}
		action := &NightAction{ActorID: p.ID, Ability: abilityID, SubmittedAt: now, AutoFilled: true}
		if !ability.Rules().Automatic {
			targets := legalTargets(ability, p, players, st)
			if len(targets) == 0 {
				continue
			}
			action.TargetID = targets[rng.Intn(len(targets))].ID
		}
		n.actions[p.ID] = action
	}
}

// resolve runs the medium's automatic pass and then the ordered ability
// resolution, applies all effects, clears the action map, and returns the
// committed result. Iteration over the action map is sorted by actor id so
// the outcome is independent of submission order.
func (n *nightCoordinator) resolve(players []*Player, st *CycleState, rng *rand.Rand) (NightResult, error) {
	if len(players) == 0 {
		return NightResult{}, fmt.Errorf("resolving night cycle with no registered players")
	}

	res := NightResult{Guards: make(map[string]string)}
	byID := make(map[string]*Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	// Medium pass runs first and unconditionally for every living medium.
	medium, _ := AbilityFor(AbilityMedium)
	for _, p := range sortedPlayers(players) {
		if !p.Alive || !p.HasAbility(AbilityMedium) {
			continue
		}
		out := medium.Execute(p, nil, st)
		res.Executions = append(res.Executions, AbilityExecution{Ability: AbilityMedium, ActorID: p.ID, Result: out.Result})
		if out.Private != "" {
			res.Privates = append(res.Privates, PrivateMessage{PlayerID: p.ID, Message: out.Private})
		}
	}

	actions := n.sortedActions()
	byAbility := make(map[AbilityID][]*NightAction)
	for _, a := range actions {
		byAbility[a.Ability] = append(byAbility[a.Ability], a)
	}

	attackActions, attackType := pickAttack(byAbility[AbilityAttack], rng)

	for _, abilityID := range resolutionOrder() {
		if abilityID == AbilityMedium {
			continue // already ran
		}
		ability, ok := AbilityFor(abilityID)
		if !ok {
			continue
		}
		pending := byAbility[abilityID]
		if abilityID == AbilityAttack {
			pending = attackActions
		}
		for _, action := range pending {
			actor := byID[action.ActorID]
			target := byID[action.TargetID]
			if actor == nil || target == nil {
				continue
			}
			out := ability.Execute(actor, target, st)
			exec := AbilityExecution{Ability: abilityID, ActorID: actor.ID, TargetID: target.ID, Result: out.Result}
			if abilityID == AbilityAttack {
				exec.AttackType = attackType
			}
			res.Executions = append(res.Executions, exec)
			if out.Private != "" {
				res.Privates = append(res.Privates, PrivateMessage{PlayerID: actor.ID, Message: out.Private})
			}
			for _, id := range out.Guards {
				st.Guarded[id] = true
				res.Guards[actor.ID] = id
			}
			for _, id := range out.Kills {
				if victim := byID[id]; victim != nil && victim.Alive {
					victim.kill(DeathNightKill, st.Day)
					res.Deaths = append(res.Deaths, victim)
				}
			}
		}
	}

	// Focus actions carry no effect; log them for the actors' own records.
	focus, _ := AbilityFor(AbilityFocus)
	for _, action := range byAbility[AbilityFocus] {
		actor := byID[action.ActorID]
		target := byID[action.TargetID]
		if actor == nil || target == nil {
			continue
		}
		out := focus.Execute(actor, target, st)
		res.Executions = append(res.Executions, AbilityExecution{Ability: AbilityFocus, ActorID: actor.ID, TargetID: target.ID, Result: out.Result})
		if out.Private != "" {
			res.Privates = append(res.Privates, PrivateMessage{PlayerID: actor.ID, Message: out.Private})
		}
	}

	res.Public = buildNightPublicMessage(res.Deaths)
	n.actions = make(map[string]*NightAction)
	return res, nil
}

// pickAttack applies the attack conflict rule: all attackers on one target
// resolve as a single unified attack; differing targets resolve as a single
// attack against one target chosen uniformly at random among the distinct
// targets.
func pickAttack(attacks []*NightAction, rng *rand.Rand) ([]*NightAction, string) {
	if len(attacks) == 0 {
		return nil, ""
	}
	distinct := make([]string, 0, len(attacks))
	seen := make(map[string]bool)
	for _, a := range attacks {
		if !seen[a.TargetID] {
			seen[a.TargetID] = true
			distinct = append(distinct, a.TargetID)
		}
	}
	sort.Strings(distinct)

	if len(distinct) == 1 {
		return attacks[:1], AttackUnified
	}
	chosen := distinct[rng.Intn(len(distinct))]
	for _, a := range attacks {
		if a.TargetID == chosen {
			return []*NightAction{a}, AttackRandom
		}
	}
	return nil, ""
}

func (n *nightCoordinator) sortedActions() []*NightAction {
	out := make([]*NightAction, 0, len(n.actions))
	for _, a := range n.actions {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ActorID < out[j].ActorID })
	return out
}

func sortedPlayers(players []*Player) []*Player {
	out := make([]*Player, len(players))
	copy(out, players)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func buildNightPublicMessage(deaths []*Player) string {
	if len(deaths) == 0 {
		return "The night passed peacefully. No one was attacked."
	}
	msg := ""
	for _, d := range deaths {
		if msg != "" {
			msg += "\n"
		}
		msg += fmt.Sprintf("%s was attacked by werewolves.", d.Name)
		if d.RoleDef().Reveal.AnnounceOnDeath {
			msg += fmt.Sprintf(" They were a %s.", d.RoleDef().Name)
		}
	}
	return msg
}
