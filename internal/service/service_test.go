package service

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/shadowchess/internal/model"
	"github.com/benbeisheim/shadowchess/internal/ws"
	"github.com/google/go-cmp/cmp"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	fail     bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) states(t *testing.T) []GameState {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []GameState
	for _, msg := range c.messages {
		if msg.Type != ws.MessageTypeGameState {
			continue
		}
		var state GameState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			t.Fatalf("bad state payload: %v", err)
		}
		out = append(out, state)
	}
	return out
}

func newTestService(t *testing.T) (*GameService, string) {
	t.Helper()
	gs := NewGameService(NewGameManager("White", "Black"))
	gameID, err := gs.CreateGame("alice", "")
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}
	if _, err := gs.JoinGame(gameID, "p1"); err != nil {
		t.Fatalf("JoinGame(p1) error: %v", err)
	}
	if _, err := gs.JoinGame(gameID, "p2"); err != nil {
		t.Fatalf("JoinGame(p2) error: %v", err)
	}
	return gs, gameID
}

func mustMove(t *testing.T, gs *GameService, gameID, playerID, from, to string) {
	t.Helper()
	ok, err := gs.HandleMove(gameID, playerID, from, to)
	if err != nil || !ok {
		t.Fatalf("HandleMove(%s%s) = %v, %v", from, to, ok, err)
	}
}

func TestJoinGameSeatsWhiteThenBlack(t *testing.T) {
	gs := NewGameService(NewGameManager("White", "Black"))
	gameID, err := gs.CreateGame("", "")
	if err != nil {
		t.Fatalf("CreateGame error: %v", err)
	}

	steps := []struct {
		player string
		want   model.Color
		err    error
	}{
		{"p1", model.White, nil},
		{"p2", model.Black, nil},
		{"p1", model.White, nil},
		{"p3", "", ErrGameFull},
	}
	for _, step := range steps {
		got, err := gs.JoinGame(gameID, step.player)
		if !errors.Is(err, step.err) {
			t.Fatalf("JoinGame(%s) error = %v, want %v", step.player, err, step.err)
		}
		if got != step.want {
			t.Errorf("JoinGame(%s) = %q, want %q", step.player, got, step.want)
		}
	}

	if _, err := gs.JoinGame("missing", "p1"); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("JoinGame on unknown game error = %v, want ErrGameNotFound", err)
	}

	state, err := gs.GetGameState(gameID)
	if err != nil {
		t.Fatalf("GetGameState error: %v", err)
	}
	want := [2]ClientPlayer{
		{ID: "p1", Name: "White", Color: model.White, Material: 39},
		{ID: "p2", Name: "Black", Color: model.Black, Material: 39},
	}
	if diff := cmp.Diff(want, [2]ClientPlayer{state.Players.White, state.Players.Black}); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}
	if len(state.LegalMoves) != 20 || state.ToMove != model.White || state.LastMove != nil {
		t.Errorf("fresh state = %+v", state)
	}
}

func TestHandleMoveChecksSeatAndTurn(t *testing.T) {
	gs, gameID := newTestService(t)

	if _, err := gs.HandleMove(gameID, "stranger", "e2", "e4"); !errors.Is(err, ErrNotInGame) {
		t.Errorf("stranger move error = %v, want ErrNotInGame", err)
	}
	if _, err := gs.HandleMove(gameID, "p2", "e7", "e5"); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("black moving first error = %v, want ErrNotYourTurn", err)
	}
	if _, err := gs.HandleMove(gameID, "p1", "e2", "e9"); !errors.Is(err, model.ErrInvalidNotation) {
		t.Errorf("bad square error = %v, want ErrInvalidNotation", err)
	}
	ok, err := gs.HandleMove(gameID, "p1", "e2", "e5")
	if err != nil || ok {
		t.Errorf("illegal move = %v, %v, want false, nil", ok, err)
	}

	mustMove(t, gs, gameID, "p1", "e2", "e4")
	state, err := gs.GetGameState(gameID)
	if err != nil {
		t.Fatal(err)
	}
	if state.ToMove != model.Black {
		t.Errorf("ToMove = %s, want black", state.ToMove)
	}
	wantLast := &model.SimpleMove{From: model.Position{X: 4, Y: 1}, To: model.Position{X: 4, Y: 3}}
	if diff := cmp.Diff(wantLast, state.LastMove); diff != "" {
		t.Errorf("LastMove mismatch (-want +got):\n%s", diff)
	}
	if len(state.MoveHistory) != 1 || state.MoveHistory[0].Notation != "e4" {
		t.Errorf("MoveHistory = %+v", state.MoveHistory)
	}
}

func TestGameOverIsReported(t *testing.T) {
	gs, gameID := newTestService(t)
	mustMove(t, gs, gameID, "p1", "f2", "f3")
	mustMove(t, gs, gameID, "p2", "e7", "e5")
	mustMove(t, gs, gameID, "p1", "g2", "g4")
	mustMove(t, gs, gameID, "p2", "d8", "h4")

	state, err := gs.GetGameState(gameID)
	if err != nil {
		t.Fatal(err)
	}
	if !state.GameOver || state.Winner == nil || *state.Winner != model.Black || !state.IsCheck {
		t.Errorf("state after mate = gameOver %v winner %v check %v", state.GameOver, state.Winner, state.IsCheck)
	}
	if len(state.LegalMoves) != 0 {
		t.Errorf("finished game lists legal moves: %v", state.LegalMoves)
	}
	if _, err := gs.HandleMove(gameID, "p1", "a2", "a3"); !errors.Is(err, model.ErrGameAlreadyOver) {
		t.Errorf("move after mate error = %v, want ErrGameAlreadyOver", err)
	}
}

func TestPromotionThroughService(t *testing.T) {
	gs, gameID := newTestService(t)
	line := [][3]string{
		{"p1", "h2", "h4"}, {"p2", "g7", "g5"},
		{"p1", "h4", "g5"}, {"p2", "h7", "h6"},
		{"p1", "g5", "h6"}, {"p2", "f8", "g7"},
		{"p1", "h6", "g7"}, {"p2", "g8", "f6"},
		{"p1", "g7", "h8"},
	}
	for _, mv := range line {
		mustMove(t, gs, gameID, mv[0], mv[1], mv[2])
	}

	state, _ := gs.GetGameState(gameID)
	if state.PromotionSquare == nil || *state.PromotionSquare != (model.Position{X: 7, Y: 7}) {
		t.Fatalf("PromotionSquare = %v, want h8", state.PromotionSquare)
	}
	if _, err := gs.HandleMove(gameID, "p1", "a2", "a3"); !errors.Is(err, model.ErrPromotionPending) {
		t.Errorf("move during promotion error = %v, want ErrPromotionPending", err)
	}
	if _, err := gs.HandlePromotion(gameID, "p2", "Q"); !errors.Is(err, model.ErrWrongColor) {
		t.Errorf("black promoting white's pawn error = %v, want ErrWrongColor", err)
	}
	if _, err := gs.HandlePromotion(gameID, "p1", "K"); !errors.Is(err, model.ErrInvalidNotation) {
		t.Errorf("promotion code K error = %v, want ErrInvalidNotation", err)
	}
	ok, err := gs.HandlePromotion(gameID, "p1", "q")
	if err != nil || !ok {
		t.Fatalf("HandlePromotion(q) = %v, %v", ok, err)
	}
	if _, err := gs.HandlePromotion(gameID, "p1", "q"); !errors.Is(err, model.ErrNoPendingPromotion) {
		t.Errorf("second promotion error = %v, want ErrNoPendingPromotion", err)
	}

	state, _ = gs.GetGameState(gameID)
	if got := state.Board[7][7]; got == nil || got.Type != model.Queen || got.Color != model.White {
		t.Errorf("h8 = %+v, want white queen", got)
	}
	if state.PromotionSquare != nil || state.ToMove != model.Black || !state.IsCheck {
		t.Errorf("after promotion: square %v toMove %s check %v", state.PromotionSquare, state.ToMove, state.IsCheck)
	}
	if got := state.MoveHistory[len(state.MoveHistory)-1].Notation; got != "gxh8=Q+" {
		t.Errorf("notation = %q, want gxh8=Q+", got)
	}
}

func TestConnectionsReceiveState(t *testing.T) {
	gs, gameID := newTestService(t)
	white, black := &fakeConn{}, &fakeConn{}
	if err := gs.RegisterConnection(gameID, "p1", white); err != nil {
		t.Fatalf("RegisterConnection(p1) error: %v", err)
	}
	if err := gs.RegisterConnection(gameID, "p2", black); err != nil {
		t.Fatalf("RegisterConnection(p2) error: %v", err)
	}
	if err := gs.RegisterConnection(gameID, "stranger", &fakeConn{}); !errors.Is(err, ErrNotInGame) {
		t.Errorf("stranger connection error = %v, want ErrNotInGame", err)
	}

	mustMove(t, gs, gameID, "p1", "d2", "d4")
	if _, err := gs.HandleMove(gameID, "p2", "d7", "d3"); err != nil {
		t.Fatal(err)
	}

	for name, conn := range map[string]*fakeConn{"white": white, "black": black} {
		states := conn.states(t)
		if len(states) != 2 {
			t.Fatalf("%s got %d states, want initial + one move", name, len(states))
		}
		if states[0].ToMove != model.White || states[1].ToMove != model.Black {
			t.Errorf("%s states toMove = %s, %s", name, states[0].ToMove, states[1].ToMove)
		}
	}
}

func TestConnectionLifecycle(t *testing.T) {
	gs, gameID := newTestService(t)
	first, second := &fakeConn{}, &fakeConn{}
	if err := gs.RegisterConnection(gameID, "p1", first); err != nil {
		t.Fatal(err)
	}
	if err := gs.RegisterConnection(gameID, "p1", second); err != nil {
		t.Fatal(err)
	}
	if !first.closed {
		t.Errorf("replaced connection was not closed")
	}

	// The old socket's read loop ends after the new one registered.
	gs.UnregisterConnection(gameID, "p1", first)
	mustMove(t, gs, gameID, "p1", "e2", "e4")
	if got := len(second.states(t)); got != 2 {
		t.Errorf("current connection got %d states, want 2", got)
	}

	second.fail = true
	mustMove(t, gs, gameID, "p2", "e7", "e5")
	second.fail = false
	mustMove(t, gs, gameID, "p1", "g1", "f3")
	if got := len(second.states(t)); got != 2 {
		t.Errorf("failed connection kept receiving: %d states", got)
	}
}

func TestMatchmakingPairsPlayers(t *testing.T) {
	gm := NewGameManager("White", "Black")
	gs := NewGameService(gm)

	chA, chB := make(chan string, 1), make(chan string, 1)
	gs.RegisterMatchmakingChannel("a", chA)
	gs.RegisterMatchmakingChannel("b", chB)
	for _, id := range []string{"a", "b", "c"} {
		if err := gs.JoinMatchmaking(id); err != nil {
			t.Fatalf("JoinMatchmaking(%s) error: %v", id, err)
		}
	}
	if err := gs.JoinMatchmaking("a"); !errors.Is(err, ErrAlreadyQueued) {
		t.Errorf("duplicate JoinMatchmaking error = %v, want ErrAlreadyQueued", err)
	}

	gm.processMatchmaking()
	if got := gm.queue.Size(); got != 1 {
		t.Errorf("queue size = %d, want c still waiting", got)
	}

	events := map[string]ws.MatchFoundEvent{}
	for id, ch := range map[string]chan string{"a": chA, "b": chB} {
		select {
		case raw := <-ch:
			var msg ws.Message
			if err := json.Unmarshal([]byte(raw), &msg); err != nil {
				t.Fatalf("bad event for %s: %v", id, err)
			}
			if msg.Type != ws.MessageTypeMatchFound {
				t.Fatalf("event type = %q", msg.Type)
			}
			var event ws.MatchFoundEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				t.Fatal(err)
			}
			events[id] = event
		default:
			t.Fatalf("player %s was not notified", id)
		}
	}
	if events["a"].GameID != events["b"].GameID {
		t.Fatalf("players matched into different games: %+v", events)
	}
	if events["a"].Color != "white" || events["b"].Color != "black" {
		t.Errorf("colors = %s, %s, want longest waiting as white", events["a"].Color, events["b"].Color)
	}

	gameID := events["a"].GameID
	mustMove(t, gs, gameID, "a", "e2", "e4")
	if _, err := gs.JoinGame(gameID, "c"); !errors.Is(err, ErrGameFull) {
		t.Errorf("JoinGame into matched game error = %v, want ErrGameFull", err)
	}
	if !gs.LeaveMatchmaking("c") || gs.LeaveMatchmaking("c") {
		t.Errorf("LeaveMatchmaking should remove c exactly once")
	}
}

func decodeMatch(t *testing.T, raw string) ws.MatchFoundEvent {
	t.Helper()
	var msg ws.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("bad match message: %v", err)
	}
	if msg.Type != ws.MessageTypeMatchFound {
		t.Fatalf("message type = %q, want %q", msg.Type, ws.MessageTypeMatchFound)
	}
	var event ws.MatchFoundEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		t.Fatal(err)
	}
	return event
}

func TestRestQueuedPlayerLearnsMatch(t *testing.T) {
	gm := NewGameManager("White", "Black")
	gs := NewGameService(gm)

	if _, _, err := gs.MatchStatus("rest-player"); !errors.Is(err, ErrNotQueued) {
		t.Errorf("MatchStatus before queueing error = %v, want ErrNotQueued", err)
	}

	socket := make(chan string, 1)
	gs.RegisterMatchmakingChannel("ws-player", socket)
	for _, id := range []string{"ws-player", "rest-player"} {
		if err := gs.JoinMatchmaking(id); err != nil {
			t.Fatalf("JoinMatchmaking(%s) error: %v", id, err)
		}
	}
	if _, matched, err := gs.MatchStatus("rest-player"); err != nil || matched {
		t.Errorf("MatchStatus while waiting = %v, %v, want queued", matched, err)
	}

	gm.processMatchmaking()

	var white ws.MatchFoundEvent
	select {
	case raw := <-socket:
		white = decodeMatch(t, raw)
	default:
		t.Fatalf("websocket player was not notified")
	}
	black, matched, err := gs.MatchStatus("rest-player")
	if err != nil || !matched {
		t.Fatalf("MatchStatus after pairing = %v, %v, want matched", matched, err)
	}
	want := ws.MatchFoundEvent{GameID: white.GameID, Color: "black"}
	if diff := cmp.Diff(want, black); diff != "" {
		t.Errorf("rest player's match mismatch (-want +got):\n%s", diff)
	}
	if _, _, err := gs.MatchStatus("ws-player"); !errors.Is(err, ErrNotQueued) {
		t.Errorf("delivered match still held for ws-player: %v", err)
	}

	mustMove(t, gs, white.GameID, "ws-player", "e2", "e4")
	mustMove(t, gs, white.GameID, "rest-player", "e7", "e5")

	if err := gs.JoinMatchmaking("rest-player"); err != nil {
		t.Fatal(err)
	}
	if _, matched, err := gs.MatchStatus("rest-player"); err != nil || matched {
		t.Errorf("MatchStatus after queueing again = %v, %v, want queued", matched, err)
	}
}

func TestLateSocketReceivesHeldMatch(t *testing.T) {
	gm := NewGameManager("White", "Black")
	for _, id := range []string{"a", "b"} {
		if err := gm.JoinMatchmaking(id); err != nil {
			t.Fatal(err)
		}
	}
	gm.processMatchmaking()

	ch := make(chan string, 1)
	if !gm.RegisterMatchmakingChannel("b", ch) {
		t.Fatalf("RegisterMatchmakingChannel = false, want the held match delivered")
	}
	event := decodeMatch(t, <-ch)
	if event.Color != "black" {
		t.Errorf("color = %q, want black", event.Color)
	}
	if _, err := gm.AddPlayerToGame(event.GameID, "b"); err != nil {
		t.Errorf("matched player could not rejoin its game: %v", err)
	}
	if _, _, err := gm.MatchStatus("b"); !errors.Is(err, ErrNotQueued) {
		t.Errorf("match still held after delivery: %v", err)
	}
	if gm.RegisterMatchmakingChannel("c", make(chan string, 1)) {
		t.Errorf("RegisterMatchmakingChannel reported a match for an unmatched player")
	}
}

func TestRegisterMatchmakingChannelClosesPrevious(t *testing.T) {
	gm := NewGameManager("White", "Black")
	old, replacement := make(chan string, 1), make(chan string, 1)
	gm.RegisterMatchmakingChannel("a", old)
	gm.RegisterMatchmakingChannel("a", replacement)
	if _, open := <-old; open {
		t.Errorf("previous channel still open")
	}
	gm.UnregisterMatchmakingChannel("a", old)
	if gm.matchingChannels["a"] != replacement {
		t.Errorf("unregistering a stale channel removed the current one")
	}
	gm.UnregisterMatchmakingChannel("a", replacement)
	if _, ok := gm.matchingChannels["a"]; ok {
		t.Errorf("channel still registered")
	}
}

func TestQueueOrder(t *testing.T) {
	q := NewQueue()
	if _, _, ok := q.GetNextPair(); ok {
		t.Fatalf("empty queue produced a pair")
	}
	for _, id := range []string{"a", "b", "c", "d"} {
		if err := q.AddPlayer(id); err != nil {
			t.Fatal(err)
		}
	}
	if !q.RemovePlayer("b") {
		t.Fatalf("RemovePlayer(b) = false")
	}
	first, second, ok := q.GetNextPair()
	if !ok || first != "a" || second != "c" {
		t.Errorf("GetNextPair() = %s, %s, %v, want a, c", first, second, ok)
	}
	if q.Size() != 1 {
		t.Errorf("Size() = %d, want 1", q.Size())
	}
}

func TestStartStop(t *testing.T) {
	gm := NewGameManager("White", "Black")
	gm.Start(time.Millisecond)
	ch := make(chan string, 1)
	gm.RegisterMatchmakingChannel("a", ch)
	if err := gm.JoinMatchmaking("a"); err != nil {
		t.Fatal(err)
	}
	if err := gm.JoinMatchmaking("b"); err != nil {
		t.Fatal(err)
	}
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("matchmaking loop never paired the players")
	}
	gm.Stop()
	gm.Stop()
}

func TestSendTo(t *testing.T) {
	gs, gameID := newTestService(t)
	conn := &fakeConn{}
	if err := gs.RegisterConnection(gameID, "p2", conn); err != nil {
		t.Fatal(err)
	}
	msg, err := ws.NewMessage(ws.MessageTypeRejected, ws.MovePayload{From: "e7", To: "e4"})
	if err != nil {
		t.Fatal(err)
	}
	if err := gs.SendTo(gameID, "p2", msg); err != nil {
		t.Fatalf("SendTo error: %v", err)
	}
	if err := gs.SendTo(gameID, "p1", msg); err != nil {
		t.Errorf("SendTo a player without a socket should be a no-op, got %v", err)
	}
	if err := gs.SendTo("missing", "p2", msg); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("SendTo unknown game error = %v, want ErrGameNotFound", err)
	}
	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.messages) != 2 || conn.messages[1].Type != ws.MessageTypeRejected {
		t.Errorf("messages = %+v, want initial state then rejected", conn.messages)
	}
}
