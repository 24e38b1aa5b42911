package werewolf

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Team identifies the faction a role belongs to. Targeting restrictions use
// the team tag; win scoring uses faction weights instead (see FactionWeight).
type Team string

const (
	TeamVillage  Team = "village"
	TeamWerewolf Team = "werewolf"
)

// Visibility is the white/black signal a role exposes to the seer and medium
// abilities, independent of its true team.
type Visibility string

const (
	VisibilityWhite Visibility = "white"
	VisibilityBlack Visibility = "black"
)

// RoleID identifies a catalog entry.
type RoleID string

const (
	RoleVillager RoleID = "villager"
	RoleWerewolf RoleID = "werewolf"
	RoleSeer     RoleID = "seer"
	RoleKnight   RoleID = "knight"
	RoleMedium   RoleID = "medium"
	RoleMadman   RoleID = "madman"
)

// ScalingMode controls how many copies of a role enter a composition.
type ScalingMode string

const (
	ScalingFixed     ScalingMode = "fixed"
	ScalingRatio     ScalingMode = "ratio"
	ScalingRemainder ScalingMode = "remainder"
)

// Scaling is a role's population-scaling rule.
type Scaling struct {
	MinPlayers int
	Mode       ScalingMode
	Count      int     // copies for fixed mode
	Ratio      float64 // fraction of player count for ratio mode
	MaxCount   int     // cap for ratio mode; 0 means player count
}

// Reveal describes what divination abilities see for this role.
type Reveal struct {
	Seer            Visibility
	Medium          Visibility
	AnnounceOnDeath bool
}

// FactionWeight feeds win-condition scoring only; it never affects targeting.
// The madman is the reason this exists: mechanically human (Human=1) while
// its team tag is werewolf.
type FactionWeight struct {
	Human int
	Wolf  int
}

// RoleDefinition is an immutable, process-wide catalog entry.
type RoleDefinition struct {
	ID          RoleID
	Name        string
	Team        Team
	Priority    int // higher is assigned earlier
	Description string
	Abilities   []AbilityID
	Scaling     Scaling
	Reveal      Reveal
	Weight      FactionWeight
}

// Global player bounds for a session.
const (
	MinPlayers = 3
	MaxPlayers = 20
)

// roleCatalog is loaded once and read concurrently by all sessions without
// locking; it is never mutated after init.
var roleCatalog = []RoleDefinition{
	{
		ID:          RoleWerewolf,
		Name:        "Werewolf",
		Team:        TeamWerewolf,
		Priority:    10,
		Description: "Each night you may attack one villager. Work with your packmates to outnumber the village, and blend in by day.",
		Abilities:   []AbilityID{AbilityAttack},
		Scaling:     Scaling{MinPlayers: 3, Mode: ScalingRatio, Ratio: 0.34, MaxCount: 3},
		Reveal:      Reveal{Seer: VisibilityBlack, Medium: VisibilityBlack, AnnounceOnDeath: true},
		Weight:      FactionWeight{Human: 0, Wolf: 1},
	},
	{
		ID:          RoleSeer,
		Name:        "Seer",
		Team:        TeamVillage,
		Priority:    8,
		Description: "Each night you may divine one player and learn whether they read white or black. Use what you learn in the day's discussion.",
		Abilities:   []AbilityID{AbilityDivine},
		Scaling:     Scaling{MinPlayers: 5, Mode: ScalingFixed, Count: 1},
		Reveal:      Reveal{Seer: VisibilityWhite, Medium: VisibilityWhite, AnnounceOnDeath: true},
		Weight:      FactionWeight{Human: 1, Wolf: 0},
	},
	{
		ID:          RoleKnight,
		Name:        "Knight",
		Team:        TeamVillage,
		Priority:    7,
		Description: "Each night you may guard one player against the werewolves' attack. You cannot guard the same player two nights in a row.",
		Abilities:   []AbilityID{AbilityGuard},
		Scaling:     Scaling{MinPlayers: 7, Mode: ScalingFixed, Count: 1},
		Reveal:      Reveal{Seer: VisibilityWhite, Medium: VisibilityWhite, AnnounceOnDeath: true},
		Weight:      FactionWeight{Human: 1, Wolf: 0},
	},
	{
		ID:          RoleMedium,
		Name:        "Medium",
		Team:        TeamVillage,
		Priority:    6,
		Description: "After each execution you automatically learn whether the executed player read white or black. At night you still take a focus action.",
		Abilities:   []AbilityID{AbilityFocus, AbilityMedium},
		Scaling:     Scaling{MinPlayers: 9, Mode: ScalingFixed, Count: 1},
		Reveal:      Reveal{Seer: VisibilityWhite, Medium: VisibilityWhite, AnnounceOnDeath: true},
		Weight:      FactionWeight{Human: 1, Wolf: 0},
	},
	{
		ID:          RoleMadman,
		Name:        "Madman",
		Team:        TeamWerewolf,
		Priority:    5,
		Description: "You side with the werewolves but do not know who they are. The seer reads you as white. Sow confusion so the wolves win.",
		Abilities:   []AbilityID{AbilityFocus},
		Scaling:     Scaling{MinPlayers: 6, Mode: ScalingFixed, Count: 1},
		Reveal:      Reveal{Seer: VisibilityWhite, Medium: VisibilityWhite, AnnounceOnDeath: true},
		Weight:      FactionWeight{Human: 1, Wolf: 0},
	},
	{
		ID:          RoleVillager,
		Name:        "Villager",
		Team:        TeamVillage,
		Priority:    1,
		Description: "You have no special power. Find the werewolves through discussion and the daily vote.",
		Abilities:   []AbilityID{AbilityFocus},
		Scaling:     Scaling{MinPlayers: 3, Mode: ScalingRemainder},
		Reveal:      Reveal{Seer: VisibilityWhite, Medium: VisibilityWhite, AnnounceOnDeath: true},
		Weight:      FactionWeight{Human: 1, Wolf: 0},
	},
}

var rolesByID = func() map[RoleID]RoleDefinition {
	m := make(map[RoleID]RoleDefinition, len(roleCatalog))
	for _, def := range roleCatalog {
		m[def.ID] = def
	}
	return m
}()

// RoleByID looks up a catalog entry.
func RoleByID(id RoleID) (RoleDefinition, bool) {
	def, ok := rolesByID[id]
	return def, ok
}

// Roles returns the full catalog in priority order.
func Roles() []RoleDefinition {
	out := make([]RoleDefinition, len(roleCatalog))
	copy(out, roleCatalog)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority > out[j].Priority })
	return out
}

// ComputeComposition returns the ordered multiset of role ids for a game of
// playerCount players. Fixed and ratio roles whose MinPlayers threshold is
// met are placed first in descending priority; remaining slots are filled
// with the villager role.
func ComputeComposition(playerCount int) ([]RoleID, error) {
	if playerCount < MinPlayers {
		return nil, fmt.Errorf("%w: have %d, need at least %d", ErrInsufficientPlayers, playerCount, MinPlayers)
	}

	composition := make([]RoleID, 0, playerCount)
	for _, def := range Roles() {
		if def.Scaling.MinPlayers > playerCount {
			continue
		}
		switch def.Scaling.Mode {
		case ScalingFixed:
			for i := 0; i < def.Scaling.Count && len(composition) < playerCount; i++ {
				composition = append(composition, def.ID)
			}
		case ScalingRatio:
			count := int(math.Floor(float64(playerCount) * def.Scaling.Ratio))
			max := def.Scaling.MaxCount
			if max == 0 {
				max = playerCount
			}
			if count > max {
				count = max
			}
			for i := 0; i < count && len(composition) < playerCount; i++ {
				composition = append(composition, def.ID)
			}
		}
	}

	for len(composition) < playerCount {
		composition = append(composition, RoleVillager)
	}
	return composition, nil
}

// Assignment is the outcome of dealing a composition to a concrete roster.
type Assignment struct {
	Composition []RoleID
	Counts      map[RoleID]int
}

// AssignRoles shuffles the composition for len(players) with a uniform
// permutation and assigns positionally, mutating each player's Role.
func AssignRoles(players []*Player, rng *rand.Rand) (Assignment, error) {
	composition, err := ComputeComposition(len(players))
	if err != nil {
		return Assignment{}, err
	}

	counts := make(map[RoleID]int, len(composition))
	perm := rng.Perm(len(players))
	for i, p := range players {
		p.Role = composition[perm[i]]
		p.Alive = true
		p.Death = DeathNone
		p.DeathDay = 0
		counts[p.Role]++
	}
	return Assignment{Composition: composition, Counts: counts}, nil
}
