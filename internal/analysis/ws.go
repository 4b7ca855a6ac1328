package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/minsu-kwon/boardsense/internal/obslog"
)

// SocketState tracks the engine connection lifecycle.
type SocketState string

const (
	SocketDisconnected SocketState = "disconnected"
	SocketConnecting   SocketState = "connecting"
	SocketConnected    SocketState = "connected"
	SocketReconnecting SocketState = "reconnecting"
	SocketFailed       SocketState = "failed"
)

type InboundCallback func(msg Inbound)

type StateCallback func(state SocketState)

// Transport sends analyze requests to the engine. The socket implements it;
// tests substitute their own.
type Transport interface {
	Send(ctx context.Context, req *AnalyzeRequest) error
}

// EngineSocket is a reconnecting WebSocket to the analysis sidecar. Frames
// are JSON with a "type" discriminator; application-level pings keep the
// sidecar's idle timer from firing.
type EngineSocket struct {
	wsURL string

	conn   *websocket.Conn
	state  SocketState
	stateM sync.RWMutex

	inboundCb InboundCallback
	stateCb   StateCallback
	cbM       sync.RWMutex

	maxReconnectAttempts int
	reconnectDelay       time.Duration
	pingInterval         time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	rootCtx    context.Context
	rootCancel context.CancelFunc
}

func NewEngineSocket(wsURL string, maxReconnectAttempts int, reconnectDelay time.Duration) *EngineSocket {
	return &EngineSocket{
		wsURL:                wsURL,
		state:                SocketDisconnected,
		maxReconnectAttempts: maxReconnectAttempts,
		reconnectDelay:       reconnectDelay,
		pingInterval:         30 * time.Second,
		stopCh:               make(chan struct{}),
	}
}

func (es *EngineSocket) Connect(ctx context.Context) error {
	es.stateM.Lock()
	if es.state == SocketConnected || es.state == SocketConnecting {
		es.stateM.Unlock()
		return nil
	}
	es.stateM.Unlock()

	es.rootCtx, es.rootCancel = context.WithCancel(context.Background())
	es.setState(SocketConnecting)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(dialCtx, es.wsURL, &websocket.DialOptions{
		CompressionMode: websocket.CompressionNoContextTakeover,
	})
	if err != nil {
		es.setState(SocketFailed)
		es.scheduleReconnect()
		return err
	}

	es.conn = conn
	es.setState(SocketConnected)

	es.wg.Add(2)
	go es.listen()
	go es.pingLoop()
	return nil
}

// Send writes one analyze request. Callers are serialized by the session
// loop; wsjson.Write is not safe across goroutines.
func (es *EngineSocket) Send(ctx context.Context, req *AnalyzeRequest) error {
	es.stateM.RLock()
	connected := es.state == SocketConnected && es.conn != nil
	es.stateM.RUnlock()
	if !connected {
		return errors.New("engine socket not connected")
	}
	req.Type = "analyze"
	dctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		dctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	return wsjson.Write(dctx, es.conn, req)
}

func (es *EngineSocket) listen() {
	defer es.wg.Done()
	for {
		select {
		case <-es.stopCh:
			return
		default:
		}

		if es.conn == nil {
			return
		}
		var raw json.RawMessage
		if err := wsjson.Read(es.rootCtx, es.conn, &raw); err != nil {
			if es.isStopping() {
				return
			}
			es.setState(SocketDisconnected)
			_ = es.closeConn(websocket.StatusGoingAway, "reconnect")
			es.scheduleReconnect()
			return
		}

		msg, err := DecodeInbound(raw)
		if err != nil {
			obslog.L().Warn("engine_frame_rejected", zap.Error(err))
			continue
		}
		if _, ok := msg.(*PongMessage); ok {
			continue
		}

		es.cbM.RLock()
		cb := es.inboundCb
		es.cbM.RUnlock()
		if cb != nil {
			cb(msg)
		}
	}
}

func (es *EngineSocket) pingLoop() {
	defer es.wg.Done()
	t := time.NewTicker(es.pingInterval)
	defer t.Stop()
	for {
		select {
		case <-es.stopCh:
			return
		case <-t.C:
			if es.conn == nil {
				continue
			}
			ctx, cancel := context.WithTimeout(es.rootCtx, 3*time.Second)
			err := wsjson.Write(ctx, es.conn, PingRequest{Type: "ping"})
			cancel()
			if err != nil {
				if es.isStopping() {
					return
				}
				es.setState(SocketDisconnected)
				_ = es.closeConn(websocket.StatusGoingAway, "ping failure")
				es.scheduleReconnect()
				return
			}
		}
	}
}

func (es *EngineSocket) scheduleReconnect() {
	if es.maxReconnectAttempts <= 0 {
		return
	}
	es.setState(SocketReconnecting)

	go func() {
		for attempt := 1; attempt <= es.maxReconnectAttempts; attempt++ {
			select {
			case <-es.stopCh:
				return
			case <-time.After(backoffDuration(attempt, es.reconnectDelay)):
			}

			dialCtx, cancel := context.WithTimeout(es.rootCtx, 10*time.Second)
			conn, _, err := websocket.Dial(dialCtx, es.wsURL, &websocket.DialOptions{
				CompressionMode: websocket.CompressionNoContextTakeover,
			})
			cancel()
			if err != nil {
				continue
			}

			es.conn = conn
			es.setState(SocketConnected)

			es.wg.Add(2)
			go es.listen()
			go es.pingLoop()
			return
		}
		es.setState(SocketFailed)
	}()
}

func (es *EngineSocket) OnInbound(cb InboundCallback) {
	es.cbM.Lock()
	es.inboundCb = cb
	es.cbM.Unlock()
}

func (es *EngineSocket) OnStateChange(cb StateCallback) {
	es.cbM.Lock()
	es.stateCb = cb
	es.cbM.Unlock()
}

func (es *EngineSocket) State() SocketState {
	es.stateM.RLock()
	defer es.stateM.RUnlock()
	return es.state
}

func (es *EngineSocket) setState(state SocketState) {
	es.stateM.Lock()
	es.state = state
	es.stateM.Unlock()

	es.cbM.RLock()
	cb := es.stateCb
	es.cbM.RUnlock()
	if cb != nil {
		cb(state)
	}
}

func (es *EngineSocket) Close(ctx context.Context) error {
	es.stopOnce.Do(func() { close(es.stopCh) })
	_ = es.closeConn(websocket.StatusNormalClosure, "close")

	done := make(chan struct{})
	go func() {
		es.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		if es.rootCancel != nil {
			es.rootCancel()
		}
		return nil
	}
}

func (es *EngineSocket) closeConn(code websocket.StatusCode, reason string) error {
	if es.conn == nil {
		return nil
	}
	defer func() { es.conn = nil }()
	return es.conn.Close(code, reason)
}

func (es *EngineSocket) isStopping() bool {
	select {
	case <-es.stopCh:
		return true
	default:
		return false
	}
}

func backoffDuration(attempt int, base time.Duration) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	return time.Duration(1<<uint(attempt-1)) * base
}
