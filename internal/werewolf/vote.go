package werewolf

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"
)

// VoteRecord is one entry in the append-only vote history. The live vote map
// is reset each day cycle; history is kept for the whole session.
type VoteRecord struct {
	At       time.Time
	VoterID  string
	TargetID string
	Change   bool
	Auto     bool
}

// VoteStatus is a snapshot of the current vote cycle.
type VoteStatus struct {
	Tally    map[string]int // target id -> votes
	Voted    []string       // voter ids that have a live vote
	Total    int
	Alive    int
	AllVoted bool
}

// Execution outcome reasons.
const (
	ExecutionDone    = "execution"
	ExecutionTie     = "tie"
	ExecutionNoVotes = "no_votes"
)

// ExecutionResult is the outcome of tallying one vote cycle.
type ExecutionResult struct {
	Executed  *Player
	Reason    string
	Tied      []string // tied player names, sorted
	VoteCount int
	Message   string
}

// voteCoordinator collects at most one live vote per living player. A repeat
// vote from the same voter replaces the previous one rather than adding.
type voteCoordinator struct {
	votes   map[string]string
	history []VoteRecord
}

func newVoteCoordinator() *voteCoordinator {
	return &voteCoordinator{votes: make(map[string]string)}
}

// startCycle clears the live votes for a fresh day. History is preserved.
func (v *voteCoordinator) startCycle() {
	v.votes = make(map[string]string)
}

// vote records or replaces the voter's choice and returns the live status.
func (v *voteCoordinator) vote(voter, target *Player, players []*Player, now time.Time) (VoteStatus, error) {
	if voter == nil || !voter.Alive {
		return VoteStatus{}, ErrDeadPlayer
	}
	if target == nil || !target.Alive {
		return VoteStatus{}, fmt.Errorf("%w: the target is not a living player", ErrInvalidTarget)
	}

	_, change := v.votes[voter.ID]
	v.votes[voter.ID] = target.ID
	v.history = append(v.history, VoteRecord{At: now, VoterID: voter.ID, TargetID: target.ID, Change: change})
	return v.status(players), nil
}

// status computes the live tally.
func (v *voteCoordinator) status(players []*Player) VoteStatus {
	st := VoteStatus{Tally: make(map[string]int)}
	for _, p := range players {
		if p.Alive {
			st.Alive++
		}
	}
	for voterID, targetID := range v.votes {
		st.Tally[targetID]++
		st.Voted = append(st.Voted, voterID)
	}
	sort.Strings(st.Voted)
	st.Total = len(v.votes)
	st.AllVoted = st.Total >= st.Alive
	return st
}

// autoFill assigns a uniformly random vote among other living players to
// every living non-voter. Called at vote-timer expiry.
func (v *voteCoordinator) autoFill(players []*Player, rng *rand.Rand, now time.Time) {
	for _, p := range sortedPlayers(players) {
		if !p.Alive {
			continue
		}
		if _, ok := v.votes[p.ID]; ok {
			continue
		}
		var candidates []*Player
		for _, c := range players {
			if c.Alive && c.ID != p.ID {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) == 0 {
			continue
		}
		sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID < candidates[j].ID })
		target := candidates[rng.Intn(len(candidates))]
		v.votes[p.ID] = target.ID
		v.history = append(v.history, VoteRecord{At: now, VoterID: p.ID, TargetID: target.ID, Auto: true})
	}
}

// determineExecution tallies the live votes and applies the death when a
// single strict plurality exists. Ties and empty tallies execute no one.
func (v *voteCoordinator) determineExecution(players []*Player, day int) ExecutionResult {
	byID := make(map[string]*Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	tally := make(map[string]int)
	for _, targetID := range v.votes {
		tally[targetID]++
	}
	if len(tally) == 0 {
		return ExecutionResult{
			Reason:  ExecutionNoVotes,
			Message: "No votes were cast. There is no execution today.",
		}
	}

	top := 0
	for _, count := range tally {
		if count > top {
			top = count
		}
	}
	var leaders []string
	for targetID, count := range tally {
		if count == top {
			leaders = append(leaders, targetID)
		}
	}
	sort.Strings(leaders)

	if len(leaders) > 1 {
		names := make([]string, 0, len(leaders))
		for _, id := range leaders {
			if p := byID[id]; p != nil {
				names = append(names, p.Name)
			}
		}
		sort.Strings(names)
		return ExecutionResult{
			Reason:  ExecutionTie,
			Tied:    names,
			Message: fmt.Sprintf("%s are tied with %d votes each. No one is executed today.", strings.Join(names, ", "), top),
		}
	}

	executed := byID[leaders[0]]
	if executed == nil || !executed.Alive {
		return ExecutionResult{
			Reason:  ExecutionNoVotes,
			Message: "No execution could be carried out.",
		}
	}
	executed.kill(DeathExecution, day)
	return ExecutionResult{
		Executed:  executed,
		Reason:    ExecutionDone,
		VoteCount: top,
		Message:   fmt.Sprintf("%s was executed with %d votes. They were a %s.", executed.Name, top, executed.RoleDef().Name),
	}
}

// statusMessage renders the live tally for the vote-status query.
func (v *voteCoordinator) statusMessage(players []*Player) string {
	st := v.status(players)
	byID := make(map[string]*Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	var lines []string
	targets := make([]string, 0, len(st.Tally))
	for id := range st.Tally {
		targets = append(targets, id)
	}
	sort.Slice(targets, func(i, j int) bool {
		if st.Tally[targets[i]] != st.Tally[targets[j]] {
			return st.Tally[targets[i]] > st.Tally[targets[j]]
		}
		return targets[i] < targets[j]
	})
	for _, id := range targets {
		name := id
		if p := byID[id]; p != nil {
			name = p.Name
		}
		lines = append(lines, fmt.Sprintf("%s: %d", name, st.Tally[id]))
	}
	if len(lines) == 0 {
		lines = append(lines, "No votes yet.")
	}
	lines = append(lines, fmt.Sprintf("%d of %d players have voted.", st.Total, st.Alive))
	return strings.Join(lines, "\n")
}
