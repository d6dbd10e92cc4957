package confirm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/websocket"
)

// ErrClosed is returned by WaitForBlock once the subscription has ended.
var ErrClosed = errors.New("head subscription closed")

// WSURL derives a websocket endpoint from an HTTP RPC URL.
func WSURL(rpcURL string) string {
	switch {
	case strings.HasPrefix(rpcURL, "http://"):
		return "ws://" + strings.TrimPrefix(rpcURL, "http://")
	case strings.HasPrefix(rpcURL, "https://"):
		return "wss://" + strings.TrimPrefix(rpcURL, "https://")
	}
	return rpcURL
}

// WSHeads is a HeadSource fed by an eth_subscribe newHeads subscription.
type WSHeads struct {
	conn   *websocket.Conn
	logger *slog.Logger

	mu      sync.Mutex
	head    uint64
	err     error
	updated chan struct{} // closed and replaced on every head or on failure

	fallback HeadSource
	done     chan struct{}
}

type subscribeReply struct {
	ID     int             `json:"id"`
	Result string          `json:"result"`
	Error  *subscribeError `json:"error"`
}

type subscribeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type headNotification struct {
	Method string `json:"method"`
	Params *struct {
		Subscription string `json:"subscription"`
		Result       struct {
			Number string `json:"number"`
		} `json:"result"`
	} `json:"params"`
}

// DialWSHeads connects to url (http URLs are converted) and subscribes to
// new heads.
func DialWSHeads(ctx context.Context, url string, logger *slog.Logger) (*WSHeads, error) {
	if logger == nil {
		logger = slog.Default()
	}
	wsURL := WSURL(url)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", wsURL, err)
	}

	subscribeMsg := map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "eth_subscribe",
		"params":  []string{"newHeads"},
		"id":      1,
	}
	if err := conn.WriteJSON(subscribeMsg); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to subscribe to newHeads: %w", err)
	}

	var reply subscribeReply
	if err := conn.ReadJSON(&reply); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to read subscription reply: %w", err)
	}
	if reply.Error != nil {
		conn.Close()
		return nil, fmt.Errorf("newHeads subscription rejected: %s (code %d)", reply.Error.Message, reply.Error.Code)
	}

	logger.Debug("subscribed to newHeads", slog.String("url", wsURL), slog.String("subscription", reply.Result))

	h := &WSHeads{
		conn:    conn,
		logger:  logger,
		updated: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go h.readLoop()
	return h, nil
}

func (h *WSHeads) readLoop() {
	defer close(h.done)
	for {
		var msg headNotification
		if err := h.conn.ReadJSON(&msg); err != nil {
			h.logger.Debug("newHeads read error", slog.String("error", err.Error()))
			h.fail(ErrClosed)
			return
		}
		if msg.Params == nil {
			continue
		}
		number, err := hexutil.DecodeUint64(msg.Params.Result.Number)
		if err != nil {
			h.logger.Warn("invalid head number", slog.String("number", msg.Params.Result.Number))
			continue
		}
		h.mu.Lock()
		if number > h.head {
			h.head = number
			close(h.updated)
			h.updated = make(chan struct{})
		}
		h.mu.Unlock()
	}
}

func (h *WSHeads) fail(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err == nil {
		h.err = err
		close(h.updated)
	}
}

// WithFallback sets the source WaitForBlock switches to once the
// subscription has dropped.
func (h *WSHeads) WithFallback(src HeadSource) *WSHeads {
	h.fallback = src
	return h
}

// Head returns the latest head seen, 0 before the first notification.
func (h *WSHeads) Head() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.head
}

// WaitForBlock blocks until a head at or above n has been announced. Without
// a fallback it returns ErrClosed once the subscription has ended.
func (h *WSHeads) WaitForBlock(ctx context.Context, n uint64) (uint64, error) {
	for {
		h.mu.Lock()
		head, err, ch := h.head, h.err, h.updated
		h.mu.Unlock()

		if head >= n {
			return head, nil
		}
		if err != nil {
			if h.fallback != nil && errors.Is(err, ErrClosed) {
				h.logger.Warn("newHeads subscription dropped, polling instead", slog.Uint64("head", head), slog.Uint64("target", n))
				return h.fallback.WaitForBlock(ctx, n)
			}
			return 0, err
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-ch:
		}
	}
}

// Close ends the subscription and waits for the reader to exit.
func (h *WSHeads) Close() error {
	err := h.conn.Close()
	<-h.done
	return err
}
