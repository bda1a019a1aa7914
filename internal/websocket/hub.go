package websocket

import (
	"encoding/json"
	"sync"

	"github.com/ikkim/storerating-backend/pkg/logger"
)

const sendBufferSize = 64

// Client is one live connection subscribed to a single store's feed.
type Client struct {
	Hub     *Hub
	Conn    *Conn
	UserID  uint
	StoreID uint
	Send    chan []byte
}

func NewClient(hub *Hub, conn *Conn, userID, storeID uint) *Client {
	return &Client{
		Hub:     hub,
		Conn:    conn,
		UserID:  userID,
		StoreID: storeID,
		Send:    make(chan []byte, sendBufferSize),
	}
}

// Hub fans rating events out to the subscribers of each store.
type Hub struct {
	// StoreID -> subscribed clients (several sessions per owner allowed)
	rooms map[uint]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage

	stop     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex
}

type BroadcastMessage struct {
	StoreID uint
	Message []byte
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[uint]map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *BroadcastMessage, 1024),
		stop:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if _, ok := h.rooms[client.StoreID]; !ok {
				h.rooms[client.StoreID] = make(map[*Client]bool)
			}
			h.rooms[client.StoreID][client] = true
			sessions := len(h.rooms[client.StoreID])
			h.mu.Unlock()
			logger.Info("Rating feed client registered", map[string]interface{}{
				"user_id":  client.UserID,
				"store_id": client.StoreID,
				"sessions": sessions,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			logger.Info("Rating feed client unregistered", map[string]interface{}{
				"user_id":  client.UserID,
				"store_id": client.StoreID,
			})

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.rooms[message.StoreID] {
				select {
				case client.Send <- message.Message:
				default:
					// slow consumer
					h.remove(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id":  client.UserID,
						"store_id": client.StoreID,
					})
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for _, clients := range h.rooms {
				for client := range clients {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			h.drainRegistrations()
			return
		}
	}
}

// remove drops client and closes its Send channel. Callers hold h.mu.
func (h *Hub) remove(client *Client) {
	clients, ok := h.rooms[client.StoreID]
	if !ok || !clients[client] {
		return
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.rooms, client.StoreID)
	}
}

// Stop ends Run and closes every client's Send channel.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.stop) })
}

// Publish queues event for every subscriber of storeID. When the broadcast
// queue is full the event is dropped.
func (h *Hub) Publish(storeID uint, event interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal rating event", err, map[string]interface{}{
			"store_id": storeID,
		})
		return err
	}

	select {
	case h.broadcast <- &BroadcastMessage{StoreID: storeID, Message: data}:
	default:
		logger.Warn("Broadcast channel full, event dropped", map[string]interface{}{
			"store_id": storeID,
		})
	}
	return nil
}

// drainRegistrations closes clients that were queued but never added.
func (h *Hub) drainRegistrations() {
	for {
		select {
		case client := <-h.register:
			close(client.Send)
		default:
			return
		}
	}
}

// Register subscribes client to its store. Once the hub is stopped the
// client's Send channel is closed instead, so its pumps exit.
func (h *Hub) Register(client *Client) {
	select {
	case <-h.stop:
		close(client.Send)
		return
	default:
	}

	select {
	case h.register <- client:
	case <-h.stop:
		close(client.Send)
	}
}

// Unregister is a no-op after Stop; Run already closed every client.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// Subscribers returns the number of live sessions for storeID.
func (h *Hub) Subscribers(storeID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[storeID])
}
