package werewolf

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
)

// Config carries per-session tunables. Zero values fall back to defaults.
type Config struct {
	MinPlayers   int
	MaxPlayers   int
	DayTimeout   time.Duration
	VoteTimeout  time.Duration
	NightTimeout time.Duration
	IdleTimeout  time.Duration
	Seed         int64 // 0 means time-seeded
}

// DefaultConfig returns the design-default timings.
func DefaultConfig() Config {
	return Config{
		MinPlayers:   MinPlayers,
		MaxPlayers:   MaxPlayers,
		DayTimeout:   10 * time.Minute,
		VoteTimeout:  3 * time.Minute,
		NightTimeout: 5 * time.Minute,
		IdleTimeout:  30 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinPlayers == 0 {
		c.MinPlayers = d.MinPlayers
	}
	if c.MaxPlayers == 0 {
		c.MaxPlayers = d.MaxPlayers
	}
	if c.DayTimeout == 0 {
		c.DayTimeout = d.DayTimeout
	}
	if c.VoteTimeout == 0 {
		c.VoteTimeout = d.VoteTimeout
	}
	if c.NightTimeout == 0 {
		c.NightTimeout = d.NightTimeout
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	return c
}

// EventSink receives engine output produced by timer-driven flows, where
// there is no command result to return through. Implementations must not
// call back into the session synchronously. SessionEnded carries the final
// snapshot so consumers never need a session lookup after the game is gone.
type EventSink interface {
	Broadcast(groupID, message string)
	Notify(groupID, playerID, message string)
	SessionEnded(snapshot Snapshot, result *WinResult)
}

// NopSink discards all events. Useful for tests.
type NopSink struct{}

func (NopSink) Broadcast(string, string)          {}
func (NopSink) Notify(string, string, string)     {}
func (NopSink) SessionEnded(Snapshot, *WinResult) {}

// Command verbs accepted by SubmitCommand.
const (
	VerbJoin      = "join"
	VerbLeave     = "leave"
	VerbStart     = "start"
	VerbVote      = "vote"
	VerbAttack    = "attack"
	VerbDivine    = "divine"
	VerbGuard     = "guard"
	VerbFocus     = "focus"
	VerbSuspect   = "suspect" // focus alias, village wording
	VerbAdmire    = "admire"  // focus alias, werewolf wording
	VerbVoteCheck = "vote_check"
	VerbStatus    = "status"
	VerbEnd       = "end"
)

// Result is the uniform return shape of every session operation. Errors are
// carried as Success=false plus a Reason code; they are never returned as Go
// errors across the session boundary. The transport layer decides how to
// deliver Message (reply), Public (broadcast), and Privates (per-player push).
type Result struct {
	Success  bool
	Reason   string
	Message  string
	Public   string
	Privates []PrivateMessage
	AllReady bool
	Win      *WinResult
}

func failure(err error) Result {
	return Result{Success: false, Reason: reasonForError(err), Message: err.Error()}
}

// Session runs one werewolf game for one group. All game state is owned by
// the session and serialized behind a single mutex; timer callbacks re-take
// the lock and re-check phase before acting.
type Session struct {
	GroupID string

	mu           sync.Mutex
	cfg          Config
	log          *slog.Logger
	sink         EventSink
	rng          *rand.Rand
	players      []*Player
	phase        *phaseMachine
	sched        *scheduler
	night        *nightCoordinator
	votes        *voteCoordinator
	roleCounts   map[RoleID]int
	lastExecuted []*Player
	prevGuards   map[string]string
	winner       *WinResult
	createdAt    time.Time
	lastActivity time.Time
	ended        bool
}

// NewSession creates a session in the waiting phase and arms the inactivity
// timer.
func NewSession(groupID string, cfg Config, sink EventSink, log *slog.Logger) *Session {
	cfg = cfg.withDefaults()
	if sink == nil {
		sink = NopSink{}
	}
	if log == nil {
		log = slog.Default()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s := &Session{
		GroupID:      groupID,
		cfg:          cfg,
		log:          log.With("group_id", groupID),
		sink:         sink,
		rng:          rand.New(rand.NewSource(seed)),
		phase:        newPhaseMachine(),
		sched:        newScheduler(),
		night:        newNightCoordinator(),
		votes:        newVoteCoordinator(),
		prevGuards:   make(map[string]string),
		createdAt:    time.Now(),
		lastActivity: time.Now(),
	}
	s.sched.Arm(timerIdle, s.cfg.IdleTimeout, s.onIdleTimeout)
	return s
}

// AddPlayer registers a user during the waiting phase.
func (s *Session) AddPlayer(userID, name string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Phase() != PhaseWaiting {
		return failure(ErrAlreadyStarted)
	}
	if s.findPlayer(userID) != nil {
		return failure(ErrAlreadyJoined)
	}
	if len(s.players) >= s.cfg.MaxPlayers {
		return failure(fmt.Errorf("%w: limit is %d players", ErrSessionFull, s.cfg.MaxPlayers))
	}
	if name == "" {
		name = fmt.Sprintf("Player %d", len(s.players)+1)
	}
	s.players = append(s.players, &Player{ID: userID, Name: name, JoinedAt: time.Now()})
	s.touchLocked()

	msg := fmt.Sprintf("%s joined the game (%d/%d players).\n%s", name, len(s.players), s.cfg.MaxPlayers, s.rosterLocked())
	return Result{Success: true, Message: msg, Public: msg}
}

// RemovePlayer withdraws a user. Only possible before the game starts; once
// roles are dealt a leaver stays in the roster and is treated as a
// non-responder (auto-fill / auto-vote cover their turns).
func (s *Session) RemovePlayer(userID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Phase() != PhaseWaiting {
		return failure(fmt.Errorf("%w: you cannot leave a running game", ErrAlreadyStarted))
	}
	for i, p := range s.players {
		if p.ID == userID {
			s.players = append(s.players[:i], s.players[i+1:]...)
			s.touchLocked()
			msg := fmt.Sprintf("%s left the game (%d players).", p.Name, len(s.players))
			return Result{Success: true, Message: msg, Public: msg}
		}
	}
	return failure(ErrPlayerNotFound)
}

// Start deals roles and opens the first day. The requesting user must have
// joined.
func (s *Session) Start(userID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase.Phase() != PhaseWaiting {
		return failure(ErrAlreadyStarted)
	}
	if s.findPlayer(userID) == nil {
		return failure(ErrPlayerNotFound)
	}
	if len(s.players) < s.cfg.MinPlayers {
		return failure(fmt.Errorf("%w: have %d, need at least %d", ErrInsufficientPlayers, len(s.players), s.cfg.MinPlayers))
	}

	assignment, err := AssignRoles(s.players, s.rng)
	if err != nil {
		return failure(err)
	}
	s.roleCounts = assignment.Counts

	tr, err := s.phase.Transition(PhaseDay)
	if err != nil {
		return failure(err)
	}
	s.sched.Arm(timerDay, s.cfg.DayTimeout, s.onDayTimeout)
	s.touchLocked()

	privates := make([]PrivateMessage, 0, len(s.players))
	for _, p := range s.players {
		def := p.RoleDef()
		privates = append(privates, PrivateMessage{
			PlayerID: p.ID,
			Message:  fmt.Sprintf("You are the %s. %s", def.Name, def.Description),
		})
	}

	public := fmt.Sprintf("The game has started with %d players.\nComposition: %s\n\n%s",
		len(s.players), s.compositionLocked(), tr.Announcement)
	return Result{Success: true, Message: public, Public: public, Privates: privates}
}

// SubmitCommand routes one player verb through the phase-restriction gate and
// into the relevant coordinator. target is a player name or id for targeted
// verbs, empty otherwise.
func (s *Session) SubmitCommand(userID, verb, target string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	player := s.findPlayer(userID)
	if err := s.checkPhaseRestriction(verb, player); err != nil {
		return failure(err)
	}
	s.touchLocked()

	switch verb {
	case VerbVote:
		return s.handleVoteLocked(player, target)
	case VerbAttack, VerbDivine, VerbGuard, VerbFocus, VerbSuspect, VerbAdmire:
		return s.handleNightVerbLocked(player, verb, target)
	case VerbVoteCheck:
		return Result{Success: true, Message: s.votes.statusMessage(s.players)}
	case VerbStatus:
		return Result{Success: true, Message: s.statusMessageLocked()}
	default:
		return failure(fmt.Errorf("%w: unknown command %q", ErrIllegalCommandForPhase, verb))
	}
}

// End terminates the session, cancelling all timers. Safe to call twice.
func (s *Session) End() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return Result{Success: true, Message: "The game has already ended."}
	}
	s.endLocked(s.winner)
	return Result{Success: true, Message: "The game has ended.", Public: "The game has ended."}
}

// Snapshot is a read-only view of the session for status queries. Roles are
// revealed only for dead players or once the game has ended.
type Snapshot struct {
	GroupID      string
	Phase        Phase
	Day          int
	AliveCount   int
	Winner       *WinResult
	Players      []PlayerStatus
	CreatedAt    time.Time
	LastActivity time.Time
}

// PlayerStatus is one roster entry in a Snapshot.
type PlayerStatus struct {
	ID       string
	Name     string
	Alive    bool
	Role     RoleID
	Death    DeathReason
	DeathDay int
}

// Status returns a snapshot of the session.
func (s *Session) Status() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		GroupID:      s.GroupID,
		Phase:        s.phase.Phase(),
		Day:          s.phase.Day(),
		Winner:       s.winner,
		CreatedAt:    s.createdAt,
		LastActivity: s.lastActivity,
	}
	for _, p := range s.players {
		ps := PlayerStatus{ID: p.ID, Name: p.Name, Alive: p.Alive, Death: p.Death, DeathDay: p.DeathDay}
		if !p.Alive || s.ended {
			ps.Role = p.Role
		}
		if p.Alive {
			snap.AliveCount++
		}
		snap.Players = append(snap.Players, ps)
	}
	return snap
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase.Phase()
}

// Ended reports whether the session has reached its terminal phase.
func (s *Session) Ended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// checkPhaseRestriction gates a verb by current phase and the caller's
// aliveness before any mutation happens.
func (s *Session) checkPhaseRestriction(verb string, p *Player) error {
	phase := s.phase.Phase()

	if verb == VerbStatus {
		return nil
	}
	if p == nil {
		return fmt.Errorf("%w: you have not joined this game", ErrPlayerNotFound)
	}
	if !p.Alive {
		if verb == VerbVoteCheck && (phase == PhaseDay || phase == PhaseVote) {
			return nil
		}
		return fmt.Errorf("%w: the dead may only watch", ErrDeadPlayer)
	}

	switch phase {
	case PhaseWaiting:
		return fmt.Errorf("%w: the game has not started", ErrNotStarted)
	case PhaseDay:
		if verb == VerbVoteCheck {
			return nil
		}
		if verb == VerbVote {
			return fmt.Errorf("%w: it is still discussion time; voting opens later", ErrIllegalCommandForPhase)
		}
		return fmt.Errorf("%w: night actions are only possible at night", ErrIllegalCommandForPhase)
	case PhaseVote:
		if verb == VerbVote || verb == VerbVoteCheck {
			return nil
		}
		return fmt.Errorf("%w: it is voting time", ErrIllegalCommandForPhase)
	case PhaseNightInput:
		switch verb {
		case VerbAttack, VerbDivine, VerbGuard, VerbFocus, VerbSuspect, VerbAdmire:
			return nil
		}
		return fmt.Errorf("%w: it is night; voting happens during the day", ErrIllegalCommandForPhase)
	case PhaseNightResolve:
		return fmt.Errorf("%w: night actions are being resolved, please wait", ErrIllegalCommandForPhase)
	case PhaseEnded:
		return fmt.Errorf("%w: the game has already ended", ErrIllegalCommandForPhase)
	}
	return fmt.Errorf("%w: unknown phase", ErrIllegalCommandForPhase)
}

func (s *Session) handleVoteLocked(voter *Player, target string) Result {
	targetPlayer := s.findPlayerByNameOrID(target)
	if targetPlayer == nil {
		return failure(fmt.Errorf("%w: no living player named %q", ErrInvalidTarget, target))
	}
	st, err := s.votes.vote(voter, targetPlayer, s.players, time.Now())
	if err != nil {
		return failure(err)
	}

	res := Result{
		Success: true,
		Message: fmt.Sprintf("You voted for %s (%d of %d votes in).", targetPlayer.Name, st.Total, st.Alive),
	}
	if st.AllVoted {
		s.sched.Cancel(timerVote)
		out := s.concludeVoteLocked()
		res.AllReady = true
		res.Public = out.publicText()
		res.Privates = out.privates
		res.Win = out.win
	}
	return res
}

func (s *Session) handleNightVerbLocked(actor *Player, verb, target string) Result {
	abilityID := AbilityID(verb)
	if verb == VerbSuspect || verb == VerbAdmire {
		abilityID = AbilityFocus
	}

	targetPlayer := s.findPlayerByNameOrID(target)
	st := s.cycleStateLocked()
	err := s.night.submit(actor, abilityID, targetPlayer, s.players, st, time.Now())
	if err != nil {
		return failure(err)
	}

	targetName := "no one"
	if targetPlayer != nil {
		targetName = targetPlayer.Name
	}
	res := Result{Success: true}
	if s.night.complete(s.players) {
		s.sched.Cancel(timerNight)
		out := s.resolveNightLocked()
		res.AllReady = true
		res.Message = fmt.Sprintf("Action recorded (target: %s). Everyone has acted; the night is resolving.", targetName)
		res.Public = out.publicText()
		res.Privates = out.privates
		res.Win = out.win
		return res
	}
	res.Message = fmt.Sprintf("Action recorded (target: %s). Waiting for %d more players.", targetName, s.night.pending(s.players))
	return res
}

// flowOutput accumulates the public/private output of a phase-advancing flow
// so it can be returned inline (command path) or pushed through the sink
// (timer path).
type flowOutput struct {
	public   []string
	privates []PrivateMessage
	win      *WinResult
}

func (f *flowOutput) add(other flowOutput) {
	f.public = append(f.public, other.public...)
	f.privates = append(f.privates, other.privates...)
	if other.win != nil {
		f.win = other.win
	}
}

func (f *flowOutput) publicText() string {
	return strings.Join(f.public, "\n\n")
}

// startVoteLocked moves day -> vote and opens the ballot.
func (s *Session) startVoteLocked() flowOutput {
	var out flowOutput
	tr, err := s.phase.Transition(PhaseVote)
	if err != nil {
		s.log.Error("vote transition failed", "err", err)
		return out
	}
	s.votes.startCycle()
	s.sched.Arm(timerVote, s.cfg.VoteTimeout, s.onVoteTimeout)

	out.public = append(out.public, tr.Announcement+fmt.Sprintf(
		"\nTime limit: %s. Players who do not vote receive a random vote.", s.cfg.VoteTimeout))
	for _, p := range s.players {
		if !p.Alive {
			continue
		}
		out.privates = append(out.privates, PrivateMessage{
			PlayerID: p.ID,
			Message:  fmt.Sprintf("Vote for a player to execute: %s", s.candidateNamesLocked(p)),
		})
	}
	return out
}

// concludeVoteLocked tallies, applies any execution, checks the win
// condition, and either ends the game or opens the night.
func (s *Session) concludeVoteLocked() flowOutput {
	var out flowOutput
	exec := s.votes.determineExecution(s.players, s.phase.Day())
	out.public = append(out.public, exec.Message)

	s.lastExecuted = nil
	if exec.Executed != nil {
		s.lastExecuted = append(s.lastExecuted, exec.Executed)
	}

	if win := EvaluateWin(s.players); win != nil {
		out.add(s.finishLocked(win))
		return out
	}
	out.add(s.startNightLocked())
	return out
}

// startNightLocked moves vote -> night_input and prompts every ability
// holder.
func (s *Session) startNightLocked() flowOutput {
	var out flowOutput
	tr, err := s.phase.Transition(PhaseNightInput)
	if err != nil {
		s.log.Error("night transition failed", "err", err)
		return out
	}
	prompts := s.night.startCycle(s.players, s.cycleStateLocked(), time.Now())
	s.sched.Arm(timerNight, s.cfg.NightTimeout, s.onNightTimeout)

	out.public = append(out.public, tr.Announcement+fmt.Sprintf(
		"\nTime limit: %s. Missing actions are filled in automatically.", s.cfg.NightTimeout))
	for _, prompt := range prompts {
		out.privates = append(out.privates, PrivateMessage{
			PlayerID: prompt.PlayerID,
			Message:  s.renderPromptLocked(prompt),
		})
	}
	return out
}

// resolveNightLocked moves night_input -> night_resolve, commits the night,
// and returns to day (or ends the game).
func (s *Session) resolveNightLocked() flowOutput {
	var out flowOutput
	if _, err := s.phase.Transition(PhaseNightResolve); err != nil {
		s.log.Error("night resolve transition failed", "err", err)
		return out
	}

	st := s.cycleStateLocked()
	res, err := s.night.resolve(s.players, st, s.rng)
	if err != nil {
		// Abort this resolution only; the session itself stays up and the
		// next day opens as if the night had passed without effect.
		s.log.Error("night resolution aborted", "err", err)
		if tr, trErr := s.phase.Transition(PhaseDay); trErr == nil {
			s.sched.Arm(timerDay, s.cfg.DayTimeout, s.onDayTimeout)
			out.public = append(out.public, tr.Announcement)
		} else {
			s.log.Error("day transition failed", "err", trErr)
		}
		return out
	}
	s.prevGuards = res.Guards
	s.lastExecuted = nil

	out.public = append(out.public, "Last night: "+res.Public)
	out.privates = append(out.privates, res.Privates...)

	if win := EvaluateWin(s.players); win != nil {
		out.add(s.finishLocked(win))
		return out
	}

	tr, err := s.phase.Transition(PhaseDay)
	if err != nil {
		s.log.Error("day transition failed", "err", err)
		return out
	}
	s.sched.Arm(timerDay, s.cfg.DayTimeout, s.onDayTimeout)
	out.public = append(out.public, tr.Announcement)
	return out
}

// finishLocked ends the game, announcing the winner when there is one.
func (s *Session) finishLocked(win *WinResult) flowOutput {
	var out flowOutput
	if win != nil {
		out.public = append(out.public, win.Message+"\n\n"+survivorSummary(s.players))
	}
	s.endLocked(win)
	out.win = win
	return out
}

func (s *Session) endLocked(win *WinResult) {
	if s.ended {
		return
	}
	s.winner = win
	s.ended = true
	s.sched.Close()
	if _, err := s.phase.Transition(PhaseEnded); err != nil {
		s.log.Error("end transition failed", "err", err)
	}
	// Fired for every end path, inline wins included. The snapshot is taken
	// after ended is set so roles are revealed; async so slow sinks never
	// stall the session lock.
	snap := s.snapshotLocked()
	go s.sink.SessionEnded(snap, win)
}

// Timer callbacks. Each re-checks phase under the lock: a natural completion
// may have beaten the expiry.

func (s *Session) onDayTimeout() {
	s.mu.Lock()
	if s.ended || s.phase.Phase() != PhaseDay {
		s.mu.Unlock()
		return
	}
	out := s.startVoteLocked()
	s.mu.Unlock()
	s.deliver(out)
}

func (s *Session) onVoteTimeout() {
	s.mu.Lock()
	if s.ended || s.phase.Phase() != PhaseVote {
		s.mu.Unlock()
		return
	}
	s.votes.autoFill(s.players, s.rng, time.Now())
	out := s.concludeVoteLocked()
	s.mu.Unlock()
	s.deliver(out)
}

func (s *Session) onNightTimeout() {
	s.mu.Lock()
	if s.ended || s.phase.Phase() != PhaseNightInput {
		s.mu.Unlock()
		return
	}
	s.night.autoFill(s.players, s.cycleStateLocked(), s.rng, time.Now())
	out := s.resolveNightLocked()
	s.mu.Unlock()
	s.deliver(out)
}

func (s *Session) onIdleTimeout() {
	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.endLocked(nil)
	s.mu.Unlock()
	s.sink.Broadcast(s.GroupID, "The game was ended due to inactivity.")
}

func (s *Session) deliver(out flowOutput) {
	if text := out.publicText(); text != "" {
		s.sink.Broadcast(s.GroupID, text)
	}
	for _, pm := range out.privates {
		s.sink.Notify(s.GroupID, pm.PlayerID, pm.Message)
	}
}

// Helpers. All require the session lock.

func (s *Session) findPlayer(userID string) *Player {
	for _, p := range s.players {
		if p.ID == userID {
			return p
		}
	}
	return nil
}

func (s *Session) findPlayerByNameOrID(nameOrID string) *Player {
	if nameOrID == "" {
		return nil
	}
	for _, p := range s.players {
		if p.ID == nameOrID || p.Name == nameOrID {
			return p
		}
	}
	return nil
}

func (s *Session) cycleStateLocked() *CycleState {
	return &CycleState{
		Day:          s.phase.Day(),
		Guarded:      make(map[string]bool),
		LastExecuted: s.lastExecuted,
		PrevGuards:   s.prevGuards,
	}
}

func (s *Session) touchLocked() {
	s.lastActivity = time.Now()
	s.sched.Arm(timerIdle, s.cfg.IdleTimeout, s.onIdleTimeout)
}

func (s *Session) rosterLocked() string {
	lines := make([]string, 0, len(s.players))
	for i, p := range s.players {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, p.Name))
	}
	return strings.Join(lines, "\n")
}

func (s *Session) compositionLocked() string {
	ids := make([]RoleID, 0, len(s.roleCounts))
	for id := range s.roleCounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		di, _ := RoleByID(ids[i])
		dj, _ := RoleByID(ids[j])
		return di.Priority > dj.Priority
	})
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		def, _ := RoleByID(id)
		parts = append(parts, fmt.Sprintf("%s x%d", def.Name, s.roleCounts[id]))
	}
	return strings.Join(parts, ", ")
}

func (s *Session) candidateNamesLocked(voter *Player) string {
	var names []string
	for _, p := range s.players {
		if p.Alive && p.ID != voter.ID {
			names = append(names, p.Name)
		}
	}
	return strings.Join(names, ", ")
}

func (s *Session) renderPromptLocked(prompt ActionPrompt) string {
	if len(prompt.Choices) == 0 {
		return prompt.Message
	}
	lines := []string{prompt.Message}
	for _, c := range prompt.Choices {
		names := make([]string, 0, len(c.TargetIDs))
		for _, id := range c.TargetIDs {
			if p := s.findPlayer(id); p != nil {
				names = append(names, p.Name)
			}
		}
		lines = append(lines, fmt.Sprintf("%s targets: %s", c.Ability, strings.Join(names, ", ")))
	}
	return strings.Join(lines, "\n")
}

func (s *Session) statusMessageLocked() string {
	alive := 0
	for _, p := range s.players {
		if p.Alive {
			alive++
		}
	}
	lines := []string{
		fmt.Sprintf("Phase: %s (day %d)", s.phase.Phase(), s.phase.Day()),
		fmt.Sprintf("Alive: %d of %d", alive, len(s.players)),
	}
	for _, p := range s.players {
		state := "alive"
		if !p.Alive {
			state = fmt.Sprintf("dead (%s, day %d, was %s)", p.Death, p.DeathDay, p.RoleDef().Name)
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", p.Name, state))
	}
	if s.winner != nil {
		lines = append(lines, s.winner.Message)
	}
	return strings.Join(lines, "\n")
}
