package notify

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/metrics"
)

const (
	defaultSendBuffer = 16
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = pongWait * 9 / 10
)

// 같은 도메인 UI 를 전제로 Origin 검증은 하지 않는다.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type client struct {
	uid       string
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.send)
	})
}

// Hub 는 websocket 구독자 집합이다.
// 리더보드 이벤트는 모든 구독자에게, 통계 이벤트는 해당 uid 로 연결한 구독자에게만 보낸다.
// 버퍼가 가득 찬 느린 구독자는 끊는다.
type Hub struct {
	mu         sync.Mutex
	clients    map[*client]struct{}
	logger     *slog.Logger
	metrics    *metrics.Metrics
	sendBuffer int
}

// NewHub: sendBuffer 가 0 이하면 기본값을 쓴다.
func NewHub(logger *slog.Logger, m *metrics.Metrics, sendBuffer int) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if sendBuffer <= 0 {
		sendBuffer = defaultSendBuffer
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		logger:     logger,
		metrics:    m,
		sendBuffer: sendBuffer,
	}
}

// ServeWS: 연결을 업그레이드하고 끊길 때까지 블록한다. uid 가 비어 있으면 리더보드 이벤트만 받는다.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, uid string) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.DebugContext(r.Context(), "ws_upgrade_failed", "err", err)
		return
	}

	c := &client{uid: uid, conn: conn, send: make(chan []byte, h.sendBuffer)}
	h.register(c)
	defer h.unregister(c)

	go h.readLoop(c)
	h.writeLoop(c)
}

// Broadcast: 이벤트를 대상 구독자 버퍼에 넣는다. 블록하지 않는다.
func (h *Hub) Broadcast(evt Event) {
	payload, err := json.Marshal(evt)
	if err != nil {
		h.logger.Warn("ws_event_encode_failed", "type", evt.Type, "err", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if evt.Type == EventStatsUpdated && c.uid != evt.UID {
			continue
		}
		select {
		case c.send <- payload:
		default:
			h.logger.Warn("ws_client_dropped", "uid", c.uid)
			h.removeLocked(c)
		}
	}
}

// Len: 연결된 구독자 수
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close: 모든 구독자 연결을 닫는다.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	h.metrics.SetHubClients(n)
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
	_ = c.conn.Close()
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	h.metrics.SetHubClients(len(h.clients))
}

// 클라이언트 메시지는 버리고 연결 종료만 감지한다.
func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.mu.Lock()
			h.removeLocked(c)
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
