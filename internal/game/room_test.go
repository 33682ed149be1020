package game

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

type fakeSession struct {
	ch chan []byte
}

func newFakeSession() *fakeSession {
	return &fakeSession{ch: make(chan []byte, 256)}
}

func (f *fakeSession) Send(b []byte) error {
	cp := append([]byte(nil), b...)
	select {
	case f.ch <- cp:
	default:
	}
	return nil
}

func (f *fakeSession) Close() error { return nil }

// nextEvent reads frames until one of the wanted type arrives.
func (f *fakeSession) nextEvent(t *testing.T, wantType string) []byte {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case b := <-f.ch:
			var env struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(b, &env); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if env.Type == wantType {
				return b
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q event", wantType)
		}
	}
}

func fastRules() Rules {
	rules := DefaultRules()
	rules.TickMs = 20
	return rules
}

func runTestRoom(t *testing.T, host string) *Room {
	t.Helper()
	r := NewRoom("room-1", host, fastRules())
	go r.Run()
	t.Cleanup(r.Stop)
	return r
}

func TestRoomCapRejectsFifthPlayer(t *testing.T) {
	r := runTestRoom(t, "A")

	for _, nick := range []string{"B", "C", "D"} {
		if err := r.Join(nick, nil); err != nil {
			t.Fatalf("join %s: %v", nick, err)
		}
	}
	if err := r.Join("E", nil); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("join E: err = %v, want ErrRoomFull", err)
	}
}

func TestRoomDuplicateNicknameRejected(t *testing.T) {
	r := runTestRoom(t, "A")

	if err := r.Join("B", nil); err != nil {
		t.Fatalf("join B: %v", err)
	}
	if err := r.Join("B", nil); !errors.Is(err, ErrNicknameTaken) {
		t.Fatalf("second join B: err = %v, want ErrNicknameTaken", err)
	}
}

func TestRoomSessionClaimsReservedSeat(t *testing.T) {
	r := runTestRoom(t, "A")

	// The host seat was reserved at creation; a live session claims it.
	sess := newFakeSession()
	if err := r.Join("A", sess); err != nil {
		t.Fatalf("claim host seat: %v", err)
	}
	// While connected the nickname is taken for everyone else.
	if err := r.Join("A", newFakeSession()); !errors.Is(err, ErrNicknameTaken) {
		t.Fatalf("steal seat: err = %v, want ErrNicknameTaken", err)
	}

	b := sess.nextEvent(t, EventMembership)
	var mu MembershipUpdate
	if err := json.Unmarshal(b, &mu); err != nil {
		t.Fatalf("decode membership: %v", err)
	}
	if mu.Host != "A" || len(mu.Players) != 1 || !mu.Players[0].Connected {
		t.Fatalf("membership = %+v, want connected host A", mu)
	}
}

func TestRoomStartIsHostOnly(t *testing.T) {
	r := runTestRoom(t, "A")

	if err := r.Join("B", nil); err != nil {
		t.Fatalf("join B: %v", err)
	}
	if err := r.Start("B"); !errors.Is(err, ErrNotHost) {
		t.Fatalf("start by B: err = %v, want ErrNotHost", err)
	}
	if err := r.Start("A"); err != nil {
		t.Fatalf("start by host: %v", err)
	}
	if err := r.Start("A"); !errors.Is(err, ErrGameRunning) {
		t.Fatalf("double start: err = %v, want ErrGameRunning", err)
	}
}

func TestRoomEndRequiresRunningGame(t *testing.T) {
	r := runTestRoom(t, "A")

	if err := r.End("A"); !errors.Is(err, ErrGameNotActive) {
		t.Fatalf("end while waiting: err = %v, want ErrGameNotActive", err)
	}
}

func TestRoomLastLeaveSignalsEmpty(t *testing.T) {
	r := NewRoom("room-1", "A", fastRules())
	emptied := make(chan string, 1)
	r.OnEmpty = func(id string) { emptied <- id }
	go r.Run()
	defer r.Stop()

	r.Leave("A")

	select {
	case id := <-emptied:
		if id != "room-1" {
			t.Fatalf("OnEmpty id = %q", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnEmpty never fired")
	}
}

func TestRoomTickBroadcastsState(t *testing.T) {
	r := runTestRoom(t, "A")

	sess := newFakeSession()
	if err := r.Join("A", sess); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := r.Start("A"); err != nil {
		t.Fatalf("start: %v", err)
	}

	sess.nextEvent(t, EventGameStarted)

	b := sess.nextEvent(t, EventTickState)
	var ts TickState
	if err := json.Unmarshal(b, &ts); err != nil {
		t.Fatalf("decode tick-state: %v", err)
	}
	if len(ts.Snakes) != 1 || ts.Snakes[0].Nickname != "A" {
		t.Fatalf("snakes = %+v, want just A", ts.Snakes)
	}
	if len(ts.Snakes[0].Body) != DefaultStartLength {
		t.Fatalf("body length = %d, want %d", len(ts.Snakes[0].Body), DefaultStartLength)
	}
	if len(ts.Food) != DefaultFoodCount {
		t.Fatalf("food = %v, want %d cells", ts.Food, DefaultFoodCount)
	}
	if ts.TimeLeft <= 0 || ts.TimeLeft > DefaultGameSeconds {
		t.Fatalf("timeLeft = %d", ts.TimeLeft)
	}
}

func TestRoomReverseHeadingIgnoredThroughActor(t *testing.T) {
	r := runTestRoom(t, "A")

	sess := newFakeSession()
	if err := r.Join("A", sess); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := r.Start("A"); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Slot 0 spawns heading right; left is the forbidden reversal.
	r.SetHeading("A", HeadingLeft)

	b := sess.nextEvent(t, EventTickState)
	var ts TickState
	if err := json.Unmarshal(b, &ts); err != nil {
		t.Fatalf("decode tick-state: %v", err)
	}
	if ts.Snakes[0].Heading != HeadingRight {
		t.Fatalf("heading = %v after rejected reversal, want right", ts.Snakes[0].Heading)
	}
}

func TestRoomLeaveDropsPlayerFromBroadcasts(t *testing.T) {
	r := runTestRoom(t, "A")

	sessA := newFakeSession()
	if err := r.Join("A", sessA); err != nil {
		t.Fatalf("join A: %v", err)
	}
	if err := r.Join("B", newFakeSession()); err != nil {
		t.Fatalf("join B: %v", err)
	}

	hasB := func(mu MembershipUpdate) bool {
		for _, p := range mu.Players {
			if p.Nickname == "B" {
				return true
			}
		}
		return false
	}

	// First see B in the roster, then see them gone after the leave.
	var mu MembershipUpdate
	for {
		if err := json.Unmarshal(sessA.nextEvent(t, EventMembership), &mu); err != nil {
			t.Fatalf("decode membership: %v", err)
		}
		if hasB(mu) {
			break
		}
	}

	r.Leave("B")

	for {
		if err := json.Unmarshal(sessA.nextEvent(t, EventMembership), &mu); err != nil {
			t.Fatalf("decode membership: %v", err)
		}
		if !hasB(mu) {
			if len(mu.Players) != 1 || mu.Players[0].Nickname != "A" {
				t.Fatalf("membership after leave = %+v, want just A", mu.Players)
			}
			return
		}
	}
}

// The remaining tests drive handlers directly (no actor goroutine) so the
// arena can be staged without racing the loop.

func TestRoomScoreboardOrdersByScoreThenJoin(t *testing.T) {
	r := NewRoom("room-1", "A", fastRules())
	for _, nick := range []string{"B", "C", "D"} {
		reply := make(chan error, 1)
		r.handle(joinCmd{nickname: nick, reply: reply})
		if err := <-reply; err != nil {
			t.Fatalf("join %s: %v", nick, err)
		}
	}

	r.arena.Player("A").Score = 5
	r.arena.Player("B").Score = 10
	r.arena.Player("C").Score = 10
	r.arena.Player("D").Score = 0

	got := r.scoreboard()
	want := []string{"B", "C", "A", "D"} // B before C: same score, earlier join
	for i, entry := range got {
		if entry.Nickname != want[i] {
			t.Fatalf("scoreboard[%d] = %s, want %s (full: %+v)", i, entry.Nickname, want[i], got)
		}
	}
}

func TestRoomEndGameStopsTicker(t *testing.T) {
	r := NewRoom("room-1", "A", fastRules())
	reply := make(chan error, 1)

	r.handle(startCmd{nickname: "A", reply: reply})
	if err := <-reply; err != nil {
		t.Fatalf("start: %v", err)
	}
	if r.status != StatusPlaying || r.ticker == nil {
		t.Fatalf("status=%v ticker=%v after start", r.status, r.ticker)
	}

	r.handle(endCmd{nickname: "A", reason: EndReasonHostEnded, reply: reply})
	if err := <-reply; err != nil {
		t.Fatalf("end: %v", err)
	}
	if r.status != StatusWaiting || r.ticker != nil {
		t.Fatalf("status=%v ticker=%v after end, want waiting and no ticker", r.status, r.ticker)
	}
}

func TestRoomStartResetsScoresAndFood(t *testing.T) {
	r := NewRoom("room-1", "A", fastRules())
	reply := make(chan error, 1)

	r.arena.Player("A").Score = 99
	r.handle(startCmd{nickname: "A", reply: reply})
	if err := <-reply; err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := r.arena.Player("A").Score; got != 0 {
		t.Fatalf("score = %d after round start, want 0", got)
	}
	if len(r.arena.Food) != r.arena.Rules.FoodCount {
		t.Fatalf("food = %d after round start, want %d", len(r.arena.Food), r.arena.Rules.FoodCount)
	}
}

func TestRoomPanickingTickIsSkipped(t *testing.T) {
	r := NewRoom("room-1", "A", fastRules())
	reply := make(chan error, 1)
	r.handle(startCmd{nickname: "A", reply: reply})
	if err := <-reply; err != nil {
		t.Fatalf("start: %v", err)
	}

	sess := newFakeSession()
	r.handle(joinCmd{nickname: "A", sess: sess, reply: reply})
	if err := <-reply; err != nil {
		t.Fatalf("attach session: %v", err)
	}

	// A nil body makes the next step blow up before it mutates anything.
	saved := r.arena.Player("A").Body
	r.arena.Player("A").Body = nil
	r.handleTick(time.Now())

	if r.status != StatusPlaying || r.ticker == nil {
		t.Fatalf("status=%v ticker=%v after failed tick, want still playing", r.status, r.ticker)
	}
	// The failed tick broadcasts nothing.
	for {
		select {
		case b := <-sess.ch:
			var env struct {
				Type string `json:"type"`
			}
			if err := json.Unmarshal(b, &env); err != nil {
				t.Fatalf("decode event: %v", err)
			}
			if env.Type == EventTickState {
				t.Fatal("failed tick still broadcast a state frame")
			}
			continue
		default:
		}
		break
	}

	// Once the state is sane again the room ticks on as if nothing happened.
	r.arena.Player("A").Body = saved
	r.arena.Food = nil // nothing to eat, so the body length stays put
	r.handleTick(time.Now())
	b := sess.nextEvent(t, EventTickState)
	var ts TickState
	if err := json.Unmarshal(b, &ts); err != nil {
		t.Fatalf("decode tick-state: %v", err)
	}
	if len(ts.Snakes) != 1 || len(ts.Snakes[0].Body) != len(saved) {
		t.Fatalf("snakes = %+v after recovery, want A with body length %d", ts.Snakes, len(saved))
	}
}

func TestRoomCountdownEndsGame(t *testing.T) {
	rules := fastRules()
	r := NewRoom("room-1", "A", rules)
	reply := make(chan error, 1)
	r.handle(startCmd{nickname: "A", reply: reply})
	if err := <-reply; err != nil {
		t.Fatalf("start: %v", err)
	}

	sess := newFakeSession()
	r.handle(joinCmd{nickname: "A", sess: sess, reply: reply})
	if err := <-reply; err != nil {
		t.Fatalf("attach session: %v", err)
	}

	// Force the deadline into the past; the next tick must end the round.
	r.deadline = time.Now().Add(-time.Second)
	r.handleTick(time.Now())

	if r.status != StatusWaiting {
		t.Fatalf("status = %v after expired countdown, want waiting", r.status)
	}
	b := sess.nextEvent(t, EventGameEnded)
	var ge GameEnded
	if err := json.Unmarshal(b, &ge); err != nil {
		t.Fatalf("decode game-ended: %v", err)
	}
	if ge.Reason != EndReasonTimeUp {
		t.Fatalf("reason = %q, want %q", ge.Reason, EndReasonTimeUp)
	}
	if len(ge.Scores) != 1 || ge.Scores[0].Nickname != "A" {
		t.Fatalf("scores = %+v", ge.Scores)
	}
}
