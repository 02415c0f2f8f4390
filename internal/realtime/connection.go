package realtime

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	maxInboundSize = 512
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrBufferExceeded   = errors.New("connection buffer exceeded")
)

// Frame - кадр, который уходит клиенту по WebSocket
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

const (
	FrameMessages      = "messages"
	FrameSummary       = "summary"
	FrameConversations = "conversations"
)

// Connection оборачивает websocket: все записи идут через буферизированный канал и одну горутину.
type Connection struct {
	ID string

	ws         *websocket.Conn
	send       chan []byte
	pingPeriod time.Duration
	once       sync.Once
	mu         sync.RWMutex
	close      chan struct{}
}

func NewConnection(ws *websocket.Conn, sendBuffer int, pingPeriod time.Duration) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = 32
	}
	if pingPeriod <= 0 || pingPeriod >= pongWait {
		pingPeriod = pongWait * 9 / 10
	}
	return &Connection{
		ID:         uuid.NewString(),
		ws:         ws,
		send:       make(chan []byte, sendBuffer),
		pingPeriod: pingPeriod,
		close:      make(chan struct{}),
	}
}

// Start запускает цикл записи и цикл чтения (клиент сюда ничего не шлет, читаем ради pong и закрытия)
func (c *Connection) Start() {
	go c.writeLoop()
	go c.readLoop()
}

// Done закрывается, когда соединение разорвано
func (c *Connection) Done() <-chan struct{} {
	return c.close
}

func (c *Connection) SendFrame(frameType string, data interface{}) error {
	payload, err := json.Marshal(Frame{Type: frameType, Data: data})
	if err != nil {
		return err
	}
	return c.Send(payload)
}

// Send ставит payload в очередь. Если клиент не успевает читать, соединение закрывается.
func (c *Connection) Send(payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	select {
	case <-c.close:
		return ErrConnectionClosed
	default:
	}

	select {
	case c.send <- payload:
		return nil
	default:
		go c.Close(websocket.CloseGoingAway, "send buffer full")
		return ErrBufferExceeded
	}
}

func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		c.mu.Lock()
		close(c.close)
		c.mu.Unlock()
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) readLoop() {
	defer c.Close(websocket.CloseNormalClosure, "")

	c.ws.SetReadLimit(maxInboundSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.close:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.Close(websocket.CloseAbnormalClosure, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) write(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
