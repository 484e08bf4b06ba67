package database

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/malezi/core"
	"github.com/trezcool/malezi/core/realtime"
)

const (
	listenMinReconnect = 10 * time.Second
	listenMaxReconnect = time.Minute
	listenPingInterval = 90 * time.Second
)

// Listen subscribes to the row-change channels and pumps every notification
// into the bridge until ctx is done. Reconnection is pq.Listener's own
// behavior; a nil notification marks a reconnect and is skipped (the bridge
// re-syncs on its next poll).
func Listen(ctx context.Context, conf *core.Config, bridge *realtime.Bridge, logger core.Logger) error {
	listener := pq.NewListener(ConnInfo(conf), listenMinReconnect, listenMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Error("realtime listener", err)
			}
		})
	defer func() { _ = listener.Close() }()

	channels := []string{realtime.ChannelEvents, realtime.ChannelChatMessages, realtime.ChannelNotifications}
	for _, ch := range channels {
		if err := listener.Listen(ch); err != nil {
			return errors.Wrapf(err, "listening on %s", ch)
		}
	}
	logger.Info("realtime listener started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case n := <-listener.Notify:
			if n == nil {
				continue
			}
			bridge.Handle(n.Channel, n.Extra)
		case <-time.After(listenPingInterval):
			go func() { _ = listener.Ping() }()
		}
	}
}
