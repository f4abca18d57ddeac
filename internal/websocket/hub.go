// Package websocket streams core events (catalog updates, usage opens and
// closes, focus ticks) to connected UI clients.
package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Ufhano/Minimalist-App/internal/domain"
)

const maxClients = 50

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn  *websocket.Conn
	errCh chan error
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg, ok := <-cw.sendCh:
			if !ok {
				return
			}
			cw.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	cw.conn.Close()
}

// --- Hub ---

// Hub fans the event stream out to every connected client. It runs as a
// single goroutine consuming commands and events, so the client map needs
// no locking.
type Hub struct {
	cmdCh   chan hubCmd
	events  <-chan domain.Event
	cancel  func()
	clients map[*websocket.Conn]*clientWriter
}

// NewHub subscribes to the event source and starts the hub loop.
func NewHub(subscribe func() (<-chan domain.Event, func())) *Hub {
	events, cancel := subscribe()
	h := &Hub{
		cmdCh:   make(chan hubCmd, 256),
		events:  events,
		cancel:  cancel,
		clients: make(map[*websocket.Conn]*clientWriter),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case cmd := <-h.cmdCh:
			switch c := cmd.(type) {
			case cmdRegister:
				h.handleRegister(c)
			case cmdUnregister:
				h.handleUnregister(c.conn)
			case cmdClientCount:
				c.replyCh <- len(h.clients)
			case cmdStop:
				h.handleStop()
				return
			}
		case event, ok := <-h.events:
			if !ok {
				h.handleStop()
				return
			}
			h.handleEvent(event)
		}
	}
}

func (h *Hub) handleRegister(c cmdRegister) {
	if len(h.clients) >= maxClients {
		log.Printf("Rejecting client: max clients (%d) reached", maxClients)
		c.conn.Close()
		c.errCh <- fmt.Errorf("max clients (%d) reached", maxClients)
		return
	}

	h.clients[c.conn] = newClientWriter(c.conn)
	log.Printf("Client registered (total clients: %d)", len(h.clients))
	c.errCh <- nil
}

func (h *Hub) handleUnregister(conn *websocket.Conn) {
	cw, exists := h.clients[conn]
	if !exists {
		return
	}

	cw.stop()
	delete(h.clients, conn)
	log.Printf("Client unregistered (remaining clients: %d)", len(h.clients))
}

func (h *Hub) handleEvent(event domain.Event) {
	if len(h.clients) == 0 {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", event.Type, err)
		return
	}

	var slow []*websocket.Conn
	for conn, cw := range h.clients {
		select {
		case cw.sendCh <- data:
			// sent successfully
		default:
			// client is slow, mark for removal
			slow = append(slow, conn)
		}
	}

	for _, conn := range slow {
		log.Printf("Disconnecting slow client")
		h.handleUnregister(conn)
	}
}

func (h *Hub) handleStop() {
	h.cancel()
	for conn, cw := range h.clients {
		cw.stop()
		delete(h.clients, conn)
	}
}

// --- Public API ---

func (h *Hub) Register(conn *websocket.Conn) error {
	errCh := make(chan error, 1)
	h.cmdCh <- cmdRegister{conn: conn, errCh: errCh}
	return <-errCh
}

func (h *Hub) Unregister(conn *websocket.Conn) {
	h.cmdCh <- cmdUnregister{conn: conn}
}

func (h *Hub) ClientCount() int {
	replyCh := make(chan int, 1)
	h.cmdCh <- cmdClientCount{replyCh: replyCh}
	return <-replyCh
}

func (h *Hub) Stop() {
	h.cmdCh <- cmdStop{}
}
