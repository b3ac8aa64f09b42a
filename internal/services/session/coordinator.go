package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dicechamber/dicechamber/internal/models"
	"github.com/dicechamber/dicechamber/internal/protocol"
	"github.com/dicechamber/dicechamber/internal/repositories/records"
)

type eventKind int

const (
	eventAttach eventKind = iota
	eventMessage
	eventDetach
)

type event struct {
	kind eventKind
	conn Conn
	data []byte
}

type connState struct {
	player *models.Player
}

// Coordinator is the single authoritative instance for one session: it owns
// the live connection set and the roster, serializes every event for the
// session through one goroutine, and calls into the record store for all
// durable state. A roll is broadcast only after its persistence write
// completes, so every observed record can also be fetched from a replay.
type Coordinator struct {
	sessionID string
	cfg       *Config

	events  chan event
	stopped chan struct{}

	// owned by the run goroutine
	conns map[Conn]*connState

	// onEvict deregisters this instance; called once from the run goroutine
	onEvict func(*Coordinator)
}

// newCoordinator creates a coordinator and synchronously rehydrates durable
// state before it accepts any connection. Player rows left active by an
// earlier instance are marked inactive; their connections are gone.
func newCoordinator(ctx context.Context, sessionID string, cfg *Config, onEvict func(*Coordinator)) (*Coordinator, error) {
	c := &Coordinator{
		sessionID: sessionID,
		cfg:       cfg,
		events:    make(chan event, 64),
		stopped:   make(chan struct{}),
		conns:     make(map[Conn]*connState),
		onEvict:   onEvict,
	}

	if err := cfg.Store.CreateSession(ctx, &records.CreateSessionInput{
		SessionID: sessionID,
	}); err != nil {
		return nil, fmt.Errorf("failed to create session row: %w", err)
	}

	roster, err := cfg.Store.ListRoster(ctx, &records.ListRosterInput{
		SessionID: sessionID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}

	for _, player := range roster.Players {
		if !player.IsActive {
			continue
		}
		err := cfg.Store.MarkInactive(ctx, &records.MarkInactiveInput{
			SessionID: sessionID,
			PlayerID:  player.ID,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to mark stale player inactive: %w", err)
		}
	}

	go c.run()

	return c, nil
}

// SessionID returns the identifier this coordinator serves
func (c *Coordinator) SessionID() string {
	return c.sessionID
}

// Attach hands a new connection to the coordinator
func (c *Coordinator) Attach(conn Conn) error {
	return c.post(event{kind: eventAttach, conn: conn})
}

// HandleMessage delivers one inbound frame from a connection
func (c *Coordinator) HandleMessage(conn Conn, data []byte) error {
	return c.post(event{kind: eventMessage, conn: conn, data: data})
}

// Detach reports that a connection's transport has closed
func (c *Coordinator) Detach(conn Conn) error {
	return c.post(event{kind: eventDetach, conn: conn})
}

func (c *Coordinator) post(ev event) error {
	select {
	case c.events <- ev:
		return nil
	case <-c.stopped:
		return ErrCoordinatorStopped
	}
}

// run serializes all events for this session. No other goroutine touches
// the connection map or the roster.
func (c *Coordinator) run() {
	idleCheck := time.NewTicker(c.cfg.IdleCheckInterval)
	defer idleCheck.Stop()

	// A coordinator with no connections is evicted once this fires. It
	// starts armed: an instance nobody connects to goes away too.
	eviction := time.NewTimer(c.cfg.EvictionTimeout)
	defer eviction.Stop()
	evictionArmed := true

	for {
		select {
		case ev := <-c.events:
			switch ev.kind {
			case eventAttach:
				c.handleAttach(ev.conn)
			case eventMessage:
				c.handleMessage(ev.conn, ev.data)
			case eventDetach:
				c.handleLeave(ev.conn)
			}
		case <-idleCheck.C:
			c.closeIdleConns()
		case <-eviction.C:
			evictionArmed = false
			if len(c.conns) == 0 {
				c.evict()
				return
			}
		}

		if len(c.conns) == 0 && !evictionArmed {
			stopTimer(eviction)
			eviction.Reset(c.cfg.EvictionTimeout)
			evictionArmed = true
		} else if len(c.conns) > 0 && evictionArmed {
			stopTimer(eviction)
			evictionArmed = false
		}
	}
}

func (c *Coordinator) handleAttach(conn Conn) {
	ctx := context.Background()
	now := c.cfg.Clock.Now()

	playerID := c.cfg.UUIDGenerator.NewID()
	player := &models.Player{
		ID:       playerID,
		Name:     guestName(playerID),
		JoinedAt: now,
		LastSeen: now,
		IsActive: true,
	}

	if err := c.cfg.Store.UpsertPlayer(ctx, &records.UpsertPlayerInput{
		SessionID: c.sessionID,
		Player:    player,
	}); err != nil {
		log.Printf("session %s: failed to persist player %s: %v", c.sessionID, playerID, err)
		c.sendTo(conn, protocol.NewError("failed to join session"))
		conn.Close()
		return
	}

	recent, err := c.cfg.Store.ListRecentRolls(ctx, &records.ListRecentRollsInput{
		SessionID: c.sessionID,
		Limit:     c.cfg.ReplayLimit,
		MaxAge:    c.cfg.ReplayMaxAge,
	})
	if err != nil {
		log.Printf("session %s: failed to load replay: %v", c.sessionID, err)
		c.sendTo(conn, protocol.NewError("failed to join session"))
		conn.Close()
		return
	}

	c.conns[conn] = &connState{player: player}

	// The welcome snapshot goes out before any later broadcast can be
	// queued for this connection; events are serialized here.
	c.sendTo(conn, protocol.NewWelcome(playerID, c.activeRoster(), visibleRecords(recent.Records, playerID)))
	c.broadcastExcept(conn, protocol.NewPlayerJoined(player))
}

func (c *Coordinator) handleMessage(conn Conn, data []byte) {
	st, ok := c.conns[conn]
	if !ok {
		return
	}

	st.player.LastSeen = c.cfg.Clock.Now()

	msg, err := protocol.ParseClientMessage(data)
	if err != nil {
		c.sendTo(conn, protocol.NewError(err.Error()))
		return
	}

	switch msg.Type {
	case protocol.TypeJoin:
		c.handleRename(conn, st, msg.PlayerName)
	case protocol.TypeRoll:
		c.handleRoll(conn, st, msg)
	case protocol.TypePing:
		c.sendTo(conn, protocol.NewPong())
	case protocol.TypeHistory:
		c.handleHistory(conn, st)
	case protocol.TypeLeave:
		c.handleLeave(conn)
	default:
		c.sendTo(conn, protocol.NewError(fmt.Sprintf("unknown message type %q", msg.Type)))
	}
}

func (c *Coordinator) handleRename(conn Conn, st *connState, name string) {
	if name == "" {
		c.sendTo(conn, protocol.NewError("player name cannot be empty"))
		return
	}

	st.player.Name = name

	err := c.cfg.Store.UpsertPlayer(context.Background(), &records.UpsertPlayerInput{
		SessionID: c.sessionID,
		Player:    st.player,
	})
	if err != nil {
		log.Printf("session %s: failed to persist player %s: %v", c.sessionID, st.player.ID, err)
		c.sendTo(conn, protocol.NewError("failed to update player"))
		return
	}

	c.broadcast(protocol.NewPlayerJoined(st.player))
}

func (c *Coordinator) handleRoll(conn Conn, st *connState, msg *protocol.ClientMessage) {
	outcome, err := protocol.EvaluateRoll(msg.RollType, msg.Payload)
	if err != nil {
		var vErr protocol.ValidationError
		if errors.As(err, &vErr) {
			c.sendTo(conn, protocol.NewError(vErr.Error()))
			return
		}
		c.sendTo(conn, protocol.NewError("invalid roll"))
		return
	}

	record := &models.RollRecord{
		PlayerID:   st.player.ID,
		PlayerName: st.player.Name,
		RollType:   msg.RollType,
		Payload:    msg.Payload,
		Total:      outcome.Total,
		ResultText: outcome.ResultText,
		Private:    outcome.Private,
		Timestamp:  c.cfg.Clock.Now(),
	}

	// Durability precedes visibility: nobody sees a record id the store
	// has not committed.
	out, err := c.cfg.Store.AppendRoll(context.Background(), &records.AppendRollInput{
		SessionID: c.sessionID,
		Record:    record,
	})
	if err != nil {
		log.Printf("session %s: failed to persist roll: %v", c.sessionID, err)
		c.sendTo(conn, protocol.NewError("failed to save roll, please retry"))
		return
	}

	result := protocol.NewRollResult(out.Record)
	if out.Record.Private {
		c.sendTo(conn, result)
		return
	}
	c.broadcast(result)
}

func (c *Coordinator) handleHistory(conn Conn, st *connState) {
	recent, err := c.cfg.Store.ListRecentRolls(context.Background(), &records.ListRecentRollsInput{
		SessionID: c.sessionID,
		Limit:     c.cfg.ReplayLimit,
		MaxAge:    c.cfg.ReplayMaxAge,
	})
	if err != nil {
		log.Printf("session %s: failed to load history: %v", c.sessionID, err)
		c.sendTo(conn, protocol.NewError("failed to load history"))
		return
	}

	c.sendTo(conn, protocol.NewHistory(visibleRecords(recent.Records, st.player.ID)))
}

// handleLeave removes a connection, marks its player inactive and tells the
// rest of the room. Safe to call twice for the same connection.
func (c *Coordinator) handleLeave(conn Conn) {
	st, ok := c.conns[conn]
	if !ok {
		return
	}
	delete(c.conns, conn)

	st.player.IsActive = false
	st.player.LastSeen = c.cfg.Clock.Now()

	err := c.cfg.Store.UpsertPlayer(context.Background(), &records.UpsertPlayerInput{
		SessionID: c.sessionID,
		Player:    st.player,
	})
	if err != nil {
		log.Printf("session %s: failed to persist departure of %s: %v", c.sessionID, st.player.ID, err)
	}

	conn.Close()
	c.broadcast(protocol.NewPlayerLeft(st.player.ID))
}

// closeIdleConns treats connections silent past the idle timeout as an
// implicit leave
func (c *Coordinator) closeIdleConns() {
	now := c.cfg.Clock.Now()

	var idle []Conn
	for conn, st := range c.conns {
		if now.Sub(st.player.LastSeen) > c.cfg.IdleTimeout {
			idle = append(idle, conn)
		}
	}

	for _, conn := range idle {
		log.Printf("session %s: closing idle connection for %s", c.sessionID, c.conns[conn].player.ID)
		c.handleLeave(conn)
	}
}

// evict tears down the in-memory instance. Durable rows are untouched; a
// later connection rehydrates a fresh coordinator.
func (c *Coordinator) evict() {
	close(c.stopped)
	for conn := range c.conns {
		conn.Close()
	}
	c.conns = nil
	if c.onEvict != nil {
		c.onEvict(c)
	}
	log.Printf("session %s: coordinator evicted", c.sessionID)
}

// visibleRecords drops private records that belong to another player, so a
// private roll never reaches the rest of the room through replay or history
func visibleRecords(all []*models.RollRecord, viewerID string) []*models.RollRecord {
	visible := make([]*models.RollRecord, 0, len(all))
	for _, record := range all {
		if record.Private && record.PlayerID != viewerID {
			continue
		}
		visible = append(visible, record)
	}
	return visible
}

// activeRoster returns the players with live connections
func (c *Coordinator) activeRoster() []*models.Player {
	roster := make([]*models.Player, 0, len(c.conns))
	for _, st := range c.conns {
		roster = append(roster, st.player)
	}
	return roster
}

func (c *Coordinator) sendTo(conn Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("session %s: failed to marshal message: %v", c.sessionID, err)
		return
	}
	if !conn.Send(data) {
		// The write side is gone; the read pump will detach shortly.
		conn.Close()
	}
}

// broadcast sends msg to every joined connection in this session
func (c *Coordinator) broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("session %s: failed to marshal broadcast: %v", c.sessionID, err)
		return
	}
	for conn := range c.conns {
		if !conn.Send(data) {
			conn.Close()
		}
	}
}

// broadcastExcept sends msg to every joined connection except one
func (c *Coordinator) broadcastExcept(except Conn, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("session %s: failed to marshal broadcast: %v", c.sessionID, err)
		return
	}
	for conn := range c.conns {
		if conn == except {
			continue
		}
		if !conn.Send(data) {
			conn.Close()
		}
	}
}

func guestName(playerID string) string {
	if len(playerID) > 8 {
		return "Player-" + playerID[:8]
	}
	return "Player-" + playerID
}

func stopTimer(t *time.Timer) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}
