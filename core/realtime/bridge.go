package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/event"
)

// Channels the bridge consumes. Each maps to one table's row changes.
const (
	ChannelEvents        = "calendar_events"
	ChannelChatMessages  = "chat_messages"
	ChannelNotifications = "notifications"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

var ErrUnknownChannel = errors.New("unknown channel")

// Change is a decoded row change. Payloads are typed at this boundary; raw
// JSON never crosses into application logic.
type Change interface {
	change()
}

type (
	EventChange struct {
		Op    Op
		Event event.Event
	}

	ChatMessage struct {
		ID          string    `json:"id"`
		SenderID    string    `json:"sender_id"`
		RecipientID string    `json:"recipient_id"`
		Body        string    `json:"body"`
		SentAt      time.Time `json:"sent_at"`
	}

	ChatChange struct {
		Op      Op
		Message ChatMessage
	}

	NotificationChange struct {
		Op     Op
		UserID string
	}
)

func (EventChange) change()        {}
func (ChatChange) change()         {}
func (NotificationChange) change() {}

type envelope struct {
	Op  Op              `json:"op"`
	Row json.RawMessage `json:"row"`
}

// DecodeChange parses one NOTIFY payload from the given channel into its
// tagged variant.
func DecodeChange(channel, payload string) (Change, error) {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return nil, errors.Wrapf(err, "decoding %s payload", channel)
	}

	switch channel {
	case ChannelEvents:
		var evt event.Event
		if err := json.Unmarshal(env.Row, &evt); err != nil {
			return nil, errors.Wrap(err, "decoding event row")
		}
		return EventChange{Op: env.Op, Event: evt}, nil
	case ChannelChatMessages:
		var msg ChatMessage
		if err := json.Unmarshal(env.Row, &msg); err != nil {
			return nil, errors.Wrap(err, "decoding chat row")
		}
		return ChatChange{Op: env.Op, Message: msg}, nil
	case ChannelNotifications:
		var row struct {
			UserID string `json:"user_id"`
		}
		if err := json.Unmarshal(env.Row, &row); err != nil {
			return nil, errors.Wrap(err, "decoding notification row")
		}
		return NotificationChange{Op: env.Op, UserID: row.UserID}, nil
	}
	return nil, errors.Wrapf(ErrUnknownChannel, "%q", channel)
}

type (
	// Scheduler arms and cancels reminder timers (core/event's keyed
	// scheduler in production).
	Scheduler interface {
		Schedule(evt event.Event) bool
		Cancel(eventID string)
	}

	// BlockChecker reports whether either user of a pair has blocked the
	// other.
	BlockChecker interface {
		PairBlocked(ctx context.Context, userID, otherID string) (bool, error)
	}

	// ChatSink receives chat messages that passed the block filter.
	ChatSink interface {
		ChatReceived(ctx context.Context, msg ChatMessage) error
	}

	// Bridge turns row-change notifications into scheduled reminders,
	// delivered chat messages and unread counters. Changes are queued as
	// they arrive and processed in arrival order on each Drain, so the
	// push callbacks never act as control flow themselves.
	Bridge struct {
		scheduler Scheduler
		blocks    BlockChecker
		chat      ChatSink
		logger    core.Logger

		mu      sync.Mutex
		pending []Change
		unread  map[string]int
	}
)

func NewBridge(scheduler Scheduler, blocks BlockChecker, chat ChatSink, logger core.Logger) *Bridge {
	return &Bridge{
		scheduler: scheduler,
		blocks:    blocks,
		chat:      chat,
		logger:    logger,
		unread:    make(map[string]int),
	}
}

// Handle decodes one raw notification and queues it. Malformed payloads are
// dropped with a log line; a bad row must not wedge the stream.
func (b *Bridge) Handle(channel, payload string) {
	change, err := DecodeChange(channel, payload)
	if err != nil {
		b.logger.Error("dropping realtime payload", err)
		return
	}
	b.Enqueue(change)
}

func (b *Bridge) Enqueue(change Change) {
	b.mu.Lock()
	b.pending = append(b.pending, change)
	b.mu.Unlock()
}

// Drain processes every queued change in order and reports how many were
// handled. Per-change failures are logged and skipped.
func (b *Bridge) Drain(ctx context.Context) int {
	b.mu.Lock()
	batch := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, change := range batch {
		b.route(ctx, change)
	}
	return len(batch)
}

func (b *Bridge) route(ctx context.Context, change Change) {
	switch c := change.(type) {
	case EventChange:
		b.routeEvent(c)
	case ChatChange:
		b.routeChat(ctx, c)
	case NotificationChange:
		if c.Op == OpInsert {
			b.mu.Lock()
			b.unread[c.UserID]++
			b.mu.Unlock()
		}
	}
}

func (b *Bridge) routeEvent(c EventChange) {
	switch c.Op {
	case OpInsert, OpUpdate:
		// Schedule re-arms by key, so an edit replaces the stale timer.
		// Completed events and events without a reminder just cancel.
		if !b.scheduler.Schedule(c.Event) {
			b.scheduler.Cancel(c.Event.ID)
		}
	case OpDelete:
		b.scheduler.Cancel(c.Event.ID)
	}
}

func (b *Bridge) routeChat(ctx context.Context, c ChatChange) {
	if c.Op != OpInsert {
		return
	}
	blocked, err := b.blocks.PairBlocked(ctx, c.Message.SenderID, c.Message.RecipientID)
	if err != nil {
		b.logger.Error("checking block pair", err)
		return
	}
	if blocked {
		return
	}
	if err = b.chat.ChatReceived(ctx, c.Message); err != nil {
		b.logger.Error("delivering chat message", err)
	}
}

// Unread returns the number of unread-counter bumps seen for the user since
// the last Reset.
func (b *Bridge) Unread(userID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unread[userID]
}

func (b *Bridge) ResetUnread(userID string) {
	b.mu.Lock()
	delete(b.unread, userID)
	b.mu.Unlock()
}
