package backend

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/tessro/lookout/internal/core"
)

const (
	heartbeatInterval = 25 * time.Second
	readWait          = 2 * heartbeatInterval
	writeWait         = 10 * time.Second
	joinWait          = 10 * time.Second
)

// outbound is a message on the realtime socket.
type outbound struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload any    `json:"payload"`
	Ref     string `json:"ref"`
	JoinRef string `json:"join_ref,omitempty"`
}

type inbound struct {
	Topic   string `json:"topic"`
	Event   string `json:"event"`
	Payload struct {
		Status   string            `json:"status"`
		Response map[string]any    `json:"response"`
		Data     *core.ChangeEvent `json:"data"`
	} `json:"payload"`
}

type changeFilter struct {
	Event  string `json:"event"`
	Schema string `json:"schema"`
	Table  string `json:"table"`
}

// Subscription is an open change channel on one table.
type Subscription struct {
	conn  *websocket.Conn
	topic string
	fn    func(core.ChangeEvent)

	ref     atomic.Int64
	writeMu sync.Mutex
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// Subscribe opens a realtime channel for row changes on table and calls fn
// for every event matching the event type. fn runs on the subscription's
// reader goroutine and must not call Close.
func (c *Client) Subscribe(ctx context.Context, table string, event core.EventType, fn func(core.ChangeEvent)) (core.Subscription, error) {
	if event == "" {
		event = core.EventAll
	}

	wsURL, err := realtimeURL(c.baseURL, c.key)
	if err != nil {
		return nil, err
	}

	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("realtime connect failed: %w", err)
	}

	sub := &Subscription{
		conn:  conn,
		topic: "realtime:public:" + table,
		fn:    fn,
		done:  make(chan struct{}),
	}

	if err := sub.join(c.key, changeFilter{Event: string(event), Schema: "public", Table: table}); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug().Str("topic", sub.topic).Msg("realtime channel joined")

	sub.wg.Add(2)
	go sub.readPump()
	go sub.heartbeat()

	return sub, nil
}

// Unsubscribe tears down a subscription. A nil subscription is a no-op.
func (c *Client) Unsubscribe(sub core.Subscription) error {
	if sub == nil {
		return nil
	}
	return sub.Close()
}

func (s *Subscription) join(token string, filter changeFilter) error {
	ref := s.nextRef()
	payload := map[string]any{
		"config": map[string]any{
			"broadcast":        map[string]any{"self": false},
			"presence":         map[string]any{"key": ""},
			"postgres_changes": []changeFilter{filter},
		},
		"access_token": token,
	}
	if err := s.send(outbound{Topic: s.topic, Event: "phx_join", Payload: payload, Ref: ref, JoinRef: ref}); err != nil {
		return fmt.Errorf("realtime join failed: %w", err)
	}

	_ = s.conn.SetReadDeadline(time.Now().Add(joinWait))
	for {
		msg, err := s.read()
		if err != nil {
			return fmt.Errorf("realtime join failed: %w", err)
		}
		if msg.Topic != s.topic || msg.Event != "phx_reply" {
			continue
		}
		if msg.Payload.Status != "ok" {
			return fmt.Errorf("realtime join rejected: %v", msg.Payload.Response)
		}
		return nil
	}
}

// readPump dispatches change events until the connection closes.
func (s *Subscription) readPump() {
	defer s.wg.Done()

	for {
		_ = s.conn.SetReadDeadline(time.Now().Add(readWait))
		msg, err := s.read()
		if err != nil {
			select {
			case <-s.done:
			default:
				log.Error().Err(err).Str("topic", s.topic).Msg("realtime channel closed")
			}
			return
		}

		switch msg.Event {
		case "postgres_changes":
			if msg.Payload.Data != nil && s.fn != nil {
				s.fn(*msg.Payload.Data)
			}
		case "phx_error", "phx_close":
			log.Warn().Str("topic", msg.Topic).Str("event", msg.Event).Msg("realtime channel event")
		}
	}
}

// heartbeat keeps the socket alive.
func (s *Subscription) heartbeat() {
	defer s.wg.Done()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			if err := s.send(outbound{Topic: "phoenix", Event: "heartbeat", Payload: map[string]any{}, Ref: s.nextRef()}); err != nil {
				log.Error().Err(err).Msg("realtime heartbeat failed")
				return
			}
		}
	}
}

// Close leaves the channel and closes the socket. It is safe to call more
// than once.
func (s *Subscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		_ = s.send(outbound{Topic: s.topic, Event: "phx_leave", Payload: map[string]any{}, Ref: s.nextRef()})

		s.writeMu.Lock()
		_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.writeMu.Unlock()

		err = s.conn.Close()
		s.wg.Wait()
		log.Debug().Str("topic", s.topic).Msg("realtime channel left")
	})
	return err
}

func (s *Subscription) send(msg outbound) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// read returns the next decodable message. Undecodable frames are skipped.
func (s *Subscription) read() (*inbound, error) {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		var msg inbound
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn().Err(err).Str("topic", s.topic).Msg("skipping invalid realtime message")
			continue
		}
		return &msg, nil
	}
}

func (s *Subscription) nextRef() string {
	return strconv.FormatInt(s.ref.Add(1), 10)
}

// realtimeURL converts the service URL into the realtime websocket endpoint.
func realtimeURL(base, key string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid backend url: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported backend url scheme: %s", u.Scheme)
	}

	u.Path = strings.TrimRight(u.Path, "/") + "/realtime/v1/websocket"
	q := url.Values{}
	q.Set("apikey", key)
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
