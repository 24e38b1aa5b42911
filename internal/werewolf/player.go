package werewolf

import "time"

// DeathReason records how a player left the living roster.
type DeathReason string

const (
	DeathNone      DeathReason = ""
	DeathExecution DeathReason = "execution"
	DeathNightKill DeathReason = "night_kill"
)

// Player is the single authoritative record for one participant. It is owned
// by its Session and mutated only during vote execution and night resolution.
// Dead players stay in the roster for history and reveal.
type Player struct {
	ID       string
	Name     string
	Role     RoleID
	Alive    bool
	Death    DeathReason
	DeathDay int
	JoinedAt time.Time
}

// RoleDef returns the catalog definition for the player's assigned role.
func (p *Player) RoleDef() RoleDefinition {
	def, _ := RoleByID(p.Role)
	return def
}

// HasAbility reports whether the player's role grants the given ability.
func (p *Player) HasAbility(id AbilityID) bool {
	for _, a := range p.RoleDef().Abilities {
		if a == id {
			return true
		}
	}
	return false
}

// hasAnyAbility reports whether the player's role has at least one ability,
// i.e. whether the player is required to act during a night cycle.
func (p *Player) hasAnyAbility() bool {
	return len(p.RoleDef().Abilities) > 0
}

func (p *Player) kill(reason DeathReason, day int) {
	p.Alive = false
	p.Death = reason
	p.DeathDay = day
}
