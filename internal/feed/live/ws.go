package live

import (
	"context"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"roboquant/internal/feed"
	"roboquant/pkg/timeframe"
	"roboquant/pkg/types"
)

const (
	minReconnectWait = 1 * time.Second
	maxReconnectWait = 30 * time.Second
	readTimeout      = 90 * time.Second
	pingInterval     = 50 * time.Second
)

// Decoder turns one raw WebSocket message into an Event. A zero Event
// with ok == false means the message carried nothing price-relevant
// (e.g. an ack or heartbeat) and should be skipped.
type Decoder interface {
	DecodeMessage(raw []byte) (event types.Event, ok bool, err error)
}

// Feed is a live feed.AssetFeed: a REST bootstrap snapshot followed by a
// streaming WebSocket of deltas, with automatic reconnect/backoff.
// Reconnect/backoff/read-timeout shape is adapted directly from the
// teacher's internal/exchange/ws.go.
type Feed struct {
	wsURL           string
	bootstrapClient *BootstrapClient
	bootstrapPath   string
	snapshotter     Snapshotter
	decoder         Decoder
	assets          []types.Asset
	logger          *slog.Logger
}

// NewFeed builds a live Feed. assets is the fixed universe this feed
// prices, known up front since AssetFeed.Assets() must be available
// before the first Play.
func NewFeed(wsURL string, bootstrap *BootstrapClient, bootstrapPath string, snapshotter Snapshotter, decoder Decoder, assets []types.Asset, logger *slog.Logger) *Feed {
	return &Feed{
		wsURL:           wsURL,
		bootstrapClient: bootstrap,
		bootstrapPath:   bootstrapPath,
		snapshotter:     snapshotter,
		decoder:         decoder,
		assets:          assets,
		logger:          logger.With("component", "live_feed"),
	}
}

// Timeframe is unbounded going forward from now — a live feed has no
// known end.
func (f *Feed) Timeframe() timeframe.Timeframe { return timeframe.Infinite(time.Now()) }

// Assets returns the fixed universe this feed prices.
func (f *Feed) Assets() []types.Asset { return f.assets }

// Play fetches the bootstrap snapshot, pushes it as the first event, then
// streams deltas until ctx is cancelled, reconnecting with exponential
// backoff on any read/connection error.
func (f *Feed) Play(ctx context.Context, ch *feed.EventChannel) {
	defer ch.Close()

	if at, items, err := f.bootstrapClient.Fetch(ctx, f.bootstrapPath, f.snapshotter); err != nil {
		f.logger.Error("bootstrap snapshot failed", "error", err)
	} else {
		ch.Send(types.NewEvent(at, items...))
	}

	backoff := minReconnectWait
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := f.streamOnce(ctx, ch); err != nil {
			f.logger.Warn("live stream disconnected, reconnecting", "error", err, "backoff", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxReconnectWait {
				backoff = maxReconnectWait
			}
			continue
		}
		backoff = minReconnectWait
	}
}

// streamOnce owns a single WebSocket connection's lifetime: connect, read
// until error/close/ctx-cancel, clean up. Returns nil only when ctx was
// cancelled (normal shutdown).
func (f *Feed) streamOnce(ctx context.Context, ch *feed.EventChannel) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go f.pingLoop(ctx, conn, done)

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}

		event, ok, err := f.decoder.DecodeMessage(raw)
		if err != nil {
			f.logger.Warn("discarding undecodable message", "error", err)
			continue
		}
		if !ok {
			continue
		}
		ch.Send(event)
	}
}

func (f *Feed) pingLoop(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}

var _ feed.AssetFeed = (*Feed)(nil)
