package werewolf

import (
	"strings"
	"testing"
	"time"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 99
	return cfg
}

func joinPlayers(t *testing.T, s *Session, n int) {
	t.Helper()
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace"}
	for i := 0; i < n; i++ {
		res := s.AddPlayer(names[i], names[i])
		if !res.Success {
			t.Fatalf("join %s: %s", names[i], res.Message)
		}
	}
}

func findByRole(s *Session, role RoleID) *Player {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.players {
		if p.Role == role {
			return p
		}
	}
	return nil
}

func waitForEnd(t *testing.T, s *Session) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Ended() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("session never ended, phase %s", s.Phase())
}

func TestSession_JoinLeaveStart(t *testing.T) {
	s := NewSession("g1", testConfig(), nil, nil)
	defer s.End()

	joinPlayers(t, s, 2)
	if res := s.AddPlayer("Alice", "Alice"); res.Success || res.Reason != ReasonAlreadyJoined {
		t.Errorf("duplicate join: %+v", res)
	}
	if res := s.Start("Alice"); res.Success || res.Reason != ReasonInsufficientPlayers {
		t.Errorf("start with 2 players: %+v", res)
	}
	if res := s.Start("Nobody"); res.Success || res.Reason != ReasonPlayerNotFound {
		t.Errorf("start by outsider: %+v", res)
	}

	if res := s.RemovePlayer("Bob"); !res.Success {
		t.Fatalf("leave: %+v", res)
	}
	if res := s.RemovePlayer("Bob"); res.Success || res.Reason != ReasonPlayerNotFound {
		t.Errorf("double leave: %+v", res)
	}

	if res := s.AddPlayer("Bob", "Bob"); !res.Success {
		t.Fatalf("rejoin: %+v", res)
	}
	if res := s.AddPlayer("Carol", "Carol"); !res.Success {
		t.Fatal(res.Message)
	}
	if res := s.Start("Alice"); !res.Success {
		t.Fatalf("start with 3 players: %+v", res)
	}
}

func TestSession_StartDealsRolesAndOpensDay(t *testing.T) {
	s := NewSession("g1", testConfig(), nil, nil)
	defer s.End()
	joinPlayers(t, s, 5)

	res := s.Start("Alice")
	if !res.Success {
		t.Fatalf("start: %+v", res)
	}
	if s.Phase() != PhaseDay {
		t.Fatalf("phase after start: %s", s.Phase())
	}
	if len(res.Privates) != 5 {
		t.Fatalf("role intros: %d", len(res.Privates))
	}
	if !strings.Contains(res.Public, "Werewolf") || !strings.Contains(res.Public, "Seer") {
		t.Errorf("composition announcement: %q", res.Public)
	}
	for _, pm := range res.Privates {
		if !strings.Contains(pm.Message, "You are the") {
			t.Errorf("role intro for %s: %q", pm.PlayerID, pm.Message)
		}
	}

	if res := s.AddPlayer("Late", "Late"); res.Success || res.Reason != ReasonAlreadyStarted {
		t.Errorf("join after start: %+v", res)
	}
	if res := s.Start("Alice"); res.Success || res.Reason != ReasonAlreadyStarted {
		t.Errorf("double start: %+v", res)
	}
	if res := s.RemovePlayer("Bob"); res.Success {
		t.Errorf("leaving a running game: %+v", res)
	}
}

func TestSession_PhaseRestrictions(t *testing.T) {
	s := NewSession("g1", testConfig(), nil, nil)
	defer s.End()
	joinPlayers(t, s, 3)

	if res := s.SubmitCommand("Alice", VerbVote, "Bob"); res.Success || res.Reason != ReasonNotStarted {
		t.Errorf("vote before start: %+v", res)
	}
	if res := s.Start("Alice"); !res.Success {
		t.Fatal(res.Message)
	}

	if res := s.SubmitCommand("Alice", VerbVote, "Bob"); res.Success || res.Reason != ReasonIllegalCommandForPhase {
		t.Errorf("vote during day: %+v", res)
	}
	if res := s.SubmitCommand("Alice", VerbAttack, "Bob"); res.Success || res.Reason != ReasonIllegalCommandForPhase {
		t.Errorf("attack during day: %+v", res)
	}
	if res := s.SubmitCommand("Alice", VerbVoteCheck, ""); !res.Success {
		t.Errorf("vote_check during day: %+v", res)
	}
	if res := s.SubmitCommand("Alice", VerbStatus, ""); !res.Success {
		t.Errorf("status: %+v", res)
	}
	if res := s.SubmitCommand("Nobody", VerbStatus, ""); !res.Success {
		t.Errorf("status for an outsider: %+v", res)
	}
	if res := s.SubmitCommand("Nobody", VerbVoteCheck, ""); res.Success || res.Reason != ReasonPlayerNotFound {
		t.Errorf("vote_check by outsider: %+v", res)
	}

	// A dead player keeps the observer verbs and nothing else.
	s.mu.Lock()
	s.players[1].kill(DeathNightKill, 1)
	s.mu.Unlock()
	if res := s.SubmitCommand("Bob", VerbVoteCheck, ""); !res.Success {
		t.Errorf("dead vote_check: %+v", res)
	}
	if res := s.SubmitCommand("Bob", VerbVote, "Alice"); res.Success || res.Reason != ReasonDeadPlayer {
		t.Errorf("dead vote: %+v", res)
	}
}

func TestSession_VillageWinByExecution(t *testing.T) {
	cfg := testConfig()
	cfg.DayTimeout = 20 * time.Millisecond
	sink := newRecordingSink()
	s := NewSession("g1", cfg, sink, nil)
	defer s.End()
	joinPlayers(t, s, 3)

	if res := s.Start("Alice"); !res.Success {
		t.Fatal(res.Message)
	}
	waitForPhase(t, s, PhaseVote)

	wolf := findByRole(s, RoleWerewolf)
	if wolf == nil {
		t.Fatal("no werewolf dealt")
	}
	var last Result
	for _, name := range []string{"Alice", "Bob", "Carol"} {
		target := wolf.ID
		if name == wolf.ID {
			target = s.Status().Players[0].ID
			if target == wolf.ID {
				target = s.Status().Players[1].ID
			}
		}
		last = s.SubmitCommand(name, VerbVote, target)
		if !last.Success {
			t.Fatalf("%s voting: %+v", name, last)
		}
	}

	if !last.AllReady {
		t.Fatal("final vote did not conclude the ballot")
	}
	if last.Win == nil || last.Win.Winner != TeamVillage {
		t.Fatalf("win: %+v", last.Win)
	}
	if !strings.Contains(last.Public, "executed") {
		t.Errorf("public: %q", last.Public)
	}
	if !s.Ended() {
		t.Fatal("session still open after the village win")
	}

	snap := s.Status()
	if snap.Winner == nil || snap.Winner.Winner != TeamVillage {
		t.Errorf("snapshot winner: %+v", snap.Winner)
	}
	for _, ps := range snap.Players {
		if ps.Role == "" {
			t.Errorf("role of %s hidden after game end", ps.ID)
		}
	}
}

func TestSession_WerewolfWinAtNight(t *testing.T) {
	cfg := testConfig()
	cfg.DayTimeout = 20 * time.Millisecond
	s := NewSession("g1", cfg, nil, nil)
	defer s.End()
	joinPlayers(t, s, 4)

	if res := s.Start("Alice"); !res.Success {
		t.Fatal(res.Message)
	}
	waitForPhase(t, s, PhaseVote)

	wolf := findByRole(s, RoleWerewolf)
	var villagers []string
	for _, ps := range s.Status().Players {
		if ps.ID != wolf.ID {
			villagers = append(villagers, ps.ID)
		}
	}

	// Everyone piles onto one villager so the wolf survives the day.
	var last Result
	for _, name := range []string{"Alice", "Bob", "Carol", "Dave"} {
		if name == villagers[0] {
			last = s.SubmitCommand(name, VerbVote, villagers[1])
		} else {
			last = s.SubmitCommand(name, VerbVote, villagers[0])
		}
		if !last.Success {
			t.Fatalf("%s voting: %+v", name, last)
		}
	}
	if !last.AllReady || last.Win != nil {
		t.Fatalf("after the execution the game should continue: %+v", last)
	}
	if s.Phase() != PhaseNightInput {
		t.Fatalf("phase after vote: %s", s.Phase())
	}

	last = s.SubmitCommand(wolf.ID, VerbAttack, villagers[1])
	if !last.Success {
		t.Fatalf("wolf attack: %+v", last)
	}
	last = s.SubmitCommand(villagers[1], VerbFocus, wolf.ID)
	if !last.Success {
		t.Fatalf("villager focus: %+v", last)
	}
	last = s.SubmitCommand(villagers[2], VerbSuspect, villagers[1])
	if !last.Success {
		t.Fatalf("villager suspect: %+v", last)
	}

	if !last.AllReady {
		t.Fatal("final night action did not resolve the night")
	}
	if last.Win == nil || last.Win.Winner != TeamWerewolf {
		t.Fatalf("win: %+v", last.Win)
	}
	if !strings.Contains(last.Public, "attacked by werewolves") {
		t.Errorf("public: %q", last.Public)
	}
	if !s.Ended() {
		t.Fatal("session still open after the werewolf win")
	}
}

func TestSession_NightDuplicateActionRejected(t *testing.T) {
	cfg := testConfig()
	cfg.DayTimeout = 20 * time.Millisecond
	cfg.VoteTimeout = 20 * time.Millisecond
	s := NewSession("g1", cfg, nil, nil)
	defer s.End()
	joinPlayers(t, s, 5)

	if res := s.Start("Alice"); !res.Success {
		t.Fatal(res.Message)
	}
	waitForPhase(t, s, PhaseNightInput)

	wolf := findByRole(s, RoleWerewolf)
	var victim string
	for _, ps := range s.Status().Players {
		if ps.ID != wolf.ID && ps.Alive {
			victim = ps.ID
			break
		}
	}
	if res := s.SubmitCommand(wolf.ID, VerbAttack, victim); !res.Success {
		t.Fatalf("attack: %+v", res)
	}
	if res := s.SubmitCommand(wolf.ID, VerbAttack, victim); res.Success || res.Reason != ReasonAlreadyActed {
		t.Errorf("second attack: %+v", res)
	}
}

func TestSession_TimersRunTheGameToCompletion(t *testing.T) {
	cfg := testConfig()
	cfg.DayTimeout = 15 * time.Millisecond
	cfg.VoteTimeout = 15 * time.Millisecond
	cfg.NightTimeout = 15 * time.Millisecond
	sink := newRecordingSink()
	s := NewSession("g1", cfg, sink, nil)
	joinPlayers(t, s, 3)

	if res := s.Start("Alice"); !res.Success {
		t.Fatal(res.Message)
	}
	// No one ever acts; auto-votes and auto-filled night actions must drive
	// the game to a verdict on their own.
	waitForEnd(t, s)
	waitForSinkEnded(t, sink)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.result == nil {
		t.Error("no winner from a timer-driven game")
	}
	if len(sink.broadcasts) == 0 {
		t.Error("no broadcasts from timer flows")
	}
}

func TestSession_NightResolveAbortKeepsSessionAlive(t *testing.T) {
	cfg := testConfig()
	cfg.DayTimeout = 15 * time.Millisecond
	s := NewSession("g1", cfg, nil, nil)
	defer s.End()
	joinPlayers(t, s, 5)

	if res := s.Start("Alice"); !res.Success {
		t.Fatal(res.Message)
	}
	waitForPhase(t, s, PhaseVote)

	// A split ballot spares everyone and opens the night
	names := []string{"Alice", "Bob", "Carol", "Dave", "Erin"}
	for i, name := range names {
		if res := s.SubmitCommand(name, VerbVote, names[(i+1)%len(names)]); !res.Success {
			t.Fatalf("vote %s: %s", name, res.Message)
		}
	}
	if s.Phase() != PhaseNightInput {
		t.Fatalf("expected night after tie, got %s", s.Phase())
	}

	// Force the one error path resolution has: an empty roster. The abort
	// must skip this resolution only, not end the session.
	s.mu.Lock()
	saved := s.players
	s.players = nil
	out := s.resolveNightLocked()
	s.players = saved
	phase := s.phase.Phase()
	ended := s.ended
	s.mu.Unlock()

	if out.win != nil {
		t.Errorf("aborted resolution produced a winner: %+v", out.win)
	}
	if ended {
		t.Fatal("aborted resolution ended the session")
	}
	if phase != PhaseDay {
		t.Fatalf("expected day after abort, got %s", phase)
	}

	// The day timer was re-armed, so the game keeps moving
	waitForPhase(t, s, PhaseVote)
}

func TestSession_IdleTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.IdleTimeout = 25 * time.Millisecond
	sink := newRecordingSink()
	s := NewSession("g1", cfg, sink, nil)
	joinPlayers(t, s, 2)

	waitForEnd(t, s)
	waitForSinkEnded(t, sink)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.result != nil {
		t.Errorf("idle shutdown has no winner: %+v", sink.result)
	}
}

func TestSession_StatusHidesLivingRoles(t *testing.T) {
	s := NewSession("g1", testConfig(), nil, nil)
	defer s.End()
	joinPlayers(t, s, 3)
	if res := s.Start("Alice"); !res.Success {
		t.Fatal(res.Message)
	}

	for _, ps := range s.Status().Players {
		if ps.Role != "" {
			t.Errorf("living player %s exposes role %s", ps.ID, ps.Role)
		}
	}
}
