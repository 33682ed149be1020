package game

import (
	"log"
	"math"
	"sort"
	"sync"
	"time"
)

// RoomStatus is the room lifecycle state.
type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusPlaying RoomStatus = "playing"
)

// RoomView is a read-only snapshot of a room, safe to hand to HTTP callers.
type RoomView struct {
	ID        string       `json:"roomId"`
	Host      string       `json:"host"`
	Status    RoomStatus   `json:"status"`
	Players   []PlayerInfo `json:"players"`
	CreatedAt time.Time    `json:"createdAt"`
	TimeLeft  int          `json:"timeLeft"`

	LastActive time.Time `json:"-"` // for the idle sweep, not for clients
}

// Room is one game session. A single goroutine (Run) owns every mutable
// field below the channels; joins, leaves, heading changes, round control
// and ticks are all serialized through the inbox, so operations on a room
// are totally ordered and never overlap. Different rooms share nothing.
type Room struct {
	ID        string
	Host      string // never reassigned, even if the host disconnects
	CreatedAt time.Time

	// OnEmpty is invoked from the actor goroutine when the last player
	// leaves. The registry uses it to drop the room.
	OnEmpty func(id string)

	inbox chan command
	quit  chan struct{}
	done  chan struct{}
	stop  sync.Once

	// Actor-owned state.
	status     RoomStatus
	arena      *Arena
	sessions   map[string]Session
	ticker     *time.Ticker
	deadline   time.Time
	lastActive time.Time
}

// NewRoom creates a room in the Waiting state with the host seated as its
// sole (not yet connected) player. Call Run in its own goroutine.
func NewRoom(id, host string, rules Rules) *Room {
	now := time.Now()
	r := &Room{
		ID:         id,
		Host:       host,
		CreatedAt:  now,
		inbox:      make(chan command, roomInboxSize),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		status:     StatusWaiting,
		arena:      NewArena(rules, now.UnixNano()),
		sessions:   map[string]Session{},
		lastActive: now,
	}
	if _, err := r.arena.AddPlayer(host, false); err != nil {
		// Only possible with an empty host nickname; the registry
		// rejects that before constructing a room.
		log.Printf("room %s: seating host %q: %v", id, host, err)
	}
	return r
}

// Run is the actor loop. It exits when Stop is called (normally by the
// registry after the room empties).
func (r *Room) Run() {
	defer close(r.done)
	for {
		var tickC <-chan time.Time
		if r.ticker != nil {
			tickC = r.ticker.C
		}
		select {
		case <-r.quit:
			if r.ticker != nil {
				r.ticker.Stop()
			}
			for _, sess := range r.sessions {
				_ = sess.Close()
			}
			return
		case cmd := <-r.inbox:
			r.handle(cmd)
		case now := <-tickC:
			r.handleTick(now)
		}
		if r.connectedCount() > 0 {
			r.lastActive = time.Now()
		}
	}
}

// Stop terminates the actor loop. Idempotent.
func (r *Room) Stop() {
	r.stop.Do(func() { close(r.quit) })
}

/* ---------------------------- Public API ---------------------------- */

// Join adds a player, or attaches a live session to a seat that was
// reserved over HTTP (by createRoom or the join route) and has no
// connection yet. A nickname with a live connection always rejects.
func (r *Room) Join(nickname string, sess Session) error {
	reply := make(chan error, 1)
	if !r.send(joinCmd{nickname: nickname, sess: sess, reply: reply}) {
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// Leave removes the player entirely. Idempotent; unknown nicknames no-op.
func (r *Room) Leave(nickname string) {
	r.send(leaveCmd{nickname: nickname})
}

// SetHeading records a pending direction change, applied at the next tick.
// Invalid requests (reversals, unknown players) are silently dropped.
func (r *Room) SetHeading(nickname string, h Heading) {
	r.send(headingCmd{nickname: nickname, heading: h})
}

// Start begins a round. Host only, Waiting only.
func (r *Room) Start(nickname string) error {
	reply := make(chan error, 1)
	if !r.send(startCmd{nickname: nickname, reply: reply}) {
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// End finishes the running round early. Host only.
func (r *Room) End(nickname string) error {
	reply := make(chan error, 1)
	if !r.send(endCmd{nickname: nickname, reason: EndReasonHostEnded, reply: reply}) {
		return ErrRoomClosed
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomClosed
	}
}

// View returns a consistent snapshot of the room. ok is false once the
// room has been stopped.
func (r *Room) View() (RoomView, bool) {
	reply := make(chan RoomView, 1)
	if !r.send(viewCmd{reply: reply}) {
		return RoomView{}, false
	}
	select {
	case v := <-reply:
		return v, true
	case <-r.done:
		return RoomView{}, false
	}
}

func (r *Room) send(cmd command) bool {
	select {
	case r.inbox <- cmd:
		return true
	case <-r.done:
		return false
	}
}

/* ------------------------- Command handlers ------------------------- */

func (r *Room) handle(cmd command) {
	switch c := cmd.(type) {
	case joinCmd:
		r.handleJoin(c)
	case leaveCmd:
		r.handleLeave(c.nickname)
	case headingCmd:
		if p := r.arena.Player(c.nickname); p != nil {
			p.RequestHeading(c.heading)
		}
	case startCmd:
		r.handleStart(c)
	case endCmd:
		r.handleEnd(c)
	case viewCmd:
		c.reply <- r.buildView(time.Now())
	}
}

func (r *Room) handleJoin(c joinCmd) {
	if p := r.arena.Player(c.nickname); p != nil {
		if c.sess == nil || p.Connected {
			c.reply <- ErrNicknameTaken
			return
		}
		p.Connected = true
		r.sessions[c.nickname] = c.sess
		log.Printf("room %s: %s connected", r.ID, c.nickname)
	} else {
		if _, err := r.arena.AddPlayer(c.nickname, c.sess != nil); err != nil {
			c.reply <- err
			return
		}
		if c.sess != nil {
			r.sessions[c.nickname] = c.sess
		}
		log.Printf("room %s: %s joined", r.ID, c.nickname)
	}
	c.reply <- nil
	r.broadcast(r.membership())
}

func (r *Room) handleLeave(nickname string) {
	if sess, ok := r.sessions[nickname]; ok {
		_ = sess.Close()
		delete(r.sessions, nickname)
	}
	if !r.arena.RemovePlayer(nickname) {
		return
	}
	log.Printf("room %s: %s left", r.ID, nickname)
	if r.arena.PlayerCount() == 0 {
		if r.OnEmpty != nil {
			r.OnEmpty(r.ID)
		}
		return
	}
	r.broadcast(r.membership())
}

func (r *Room) handleStart(c startCmd) {
	if c.nickname != r.Host {
		c.reply <- ErrNotHost
		return
	}
	if r.status != StatusWaiting {
		c.reply <- ErrGameRunning
		return
	}
	r.status = StatusPlaying
	r.arena.ResetBoard()
	r.deadline = time.Now().Add(r.arena.Rules.GameDuration())
	r.ticker = time.NewTicker(r.arena.Rules.TickInterval())
	log.Printf("room %s: game started by %s (%ds)", r.ID, c.nickname, r.arena.Rules.GameSeconds)
	r.broadcast(GameStarted{Type: EventGameStarted, Duration: r.arena.Rules.GameSeconds})
	c.reply <- nil
}

func (r *Room) handleEnd(c endCmd) {
	if c.nickname != r.Host {
		c.reply <- ErrNotHost
		return
	}
	if r.status != StatusPlaying {
		c.reply <- ErrGameNotActive
		return
	}
	r.finishGame(c.reason)
	c.reply <- nil
}

func (r *Room) handleTick(now time.Time) {
	if r.status != StatusPlaying {
		return
	}
	if !now.Before(r.deadline) {
		r.finishGame(EndReasonTimeUp)
		return
	}
	res, ok := r.safeStep()
	if !ok {
		return // tick skipped, previous consistent state persists
	}
	for _, nick := range res.Eaten {
		log.Printf("room %s: %s ate food (score %d)", r.ID, nick, r.arena.Player(nick).Score)
	}
	r.broadcast(r.tickState(now))
}

// safeStep shields the actor from a panicking tick: the failed tick is
// dropped and the arena keeps its last consistent state.
func (r *Room) safeStep() (res StepResult, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("room %s: tick %d panicked: %v", r.ID, r.arena.Tick, p)
			ok = false
		}
	}()
	return r.arena.Step(), true
}

// finishGame returns the room to Waiting and stops the tick scheduler so
// it can never fire into a waiting room.
func (r *Room) finishGame(reason string) {
	r.status = StatusWaiting
	if r.ticker != nil {
		r.ticker.Stop()
		r.ticker = nil
	}
	log.Printf("room %s: game ended (%s)", r.ID, reason)
	r.broadcast(GameEnded{Type: EventGameEnded, Reason: reason, Scores: r.scoreboard()})
}

/* --------------------------- Event building -------------------------- */

func (r *Room) membership() MembershipUpdate {
	players := r.arena.PlayersInJoinOrder()
	infos := make([]PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, PlayerInfo{Nickname: p.Nickname, Score: p.Score, Connected: p.Connected})
	}
	return MembershipUpdate{Type: EventMembership, Host: r.Host, Players: infos}
}

// scoreboard orders scores descending; equal scores keep join order.
func (r *Room) scoreboard() []ScoreEntry {
	players := r.arena.PlayersInJoinOrder()
	entries := make([]ScoreEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, ScoreEntry{Nickname: p.Nickname, Score: p.Score})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Score > entries[j].Score })
	return entries
}

func (r *Room) tickState(now time.Time) TickState {
	players := r.arena.PlayersInJoinOrder()
	snakes := make([]SnakeState, 0, len(players))
	for _, p := range players {
		snakes = append(snakes, SnakeState{Nickname: p.Nickname, Body: p.Body, Heading: p.Heading})
	}
	return TickState{
		Type:     EventTickState,
		Tick:     r.arena.Tick,
		Snakes:   snakes,
		Food:     r.arena.Food,
		Scores:   r.scoreboard(),
		TimeLeft: r.timeLeft(now),
	}
}

func (r *Room) timeLeft(now time.Time) int {
	if r.status != StatusPlaying {
		return 0
	}
	left := int(math.Ceil(r.deadline.Sub(now).Seconds()))
	if left < 0 {
		left = 0
	}
	return left
}

func (r *Room) buildView(now time.Time) RoomView {
	players := r.arena.PlayersInJoinOrder()
	infos := make([]PlayerInfo, 0, len(players))
	for _, p := range players {
		infos = append(infos, PlayerInfo{Nickname: p.Nickname, Score: p.Score, Connected: p.Connected})
	}
	return RoomView{
		ID:         r.ID,
		Host:       r.Host,
		Status:     r.status,
		Players:    infos,
		CreatedAt:  r.CreatedAt,
		TimeLeft:   r.timeLeft(now),
		LastActive: r.lastActive,
	}
}

func (r *Room) connectedCount() int {
	return len(r.sessions)
}

/* ---------------------------- Broadcasting --------------------------- */

// broadcast fans an event out to every live session. A session that
// reports itself closed is treated as a disconnect and its player leaves.
func (r *Room) broadcast(v any) {
	data := EncodeEvent(v)
	if data == nil {
		return
	}
	var failed []string
	for nick, sess := range r.sessions {
		if err := sess.Send(data); err != nil {
			failed = append(failed, nick)
		}
	}
	for _, nick := range failed {
		r.handleLeave(nick)
	}
}
