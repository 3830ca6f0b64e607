package cart

import (
	"log"
	"sync"
	"time"

	"carrito-mascota-me/models"
)

// limitEventBuffer is how many undelivered events a subscriber may lag
// behind before new events are dropped for it
const limitEventBuffer = 16

// LimitNotifier is a fire-and-forget "stock ceiling exceeded" signal.
// Notify never blocks the mutating caller: slow subscribers lose events
// rather than stalling cart operations.
type LimitNotifier struct {
	mu   sync.Mutex
	subs []chan models.LimitEvent
}

// NewLimitNotifier creates a new LimitNotifier
func NewLimitNotifier() *LimitNotifier {
	return &LimitNotifier{}
}

// Subscribe returns a buffered channel receiving future limit events
func (n *LimitNotifier) Subscribe() <-chan models.LimitEvent {
	ch := make(chan models.LimitEvent, limitEventBuffer)
	n.mu.Lock()
	n.subs = append(n.subs, ch)
	n.mu.Unlock()
	return ch
}

// Notify broadcasts a limit event to all subscribers without blocking
func (n *LimitNotifier) Notify(userID, productID string, ceiling int) {
	event := models.LimitEvent{
		UserID:    userID,
		ProductID: productID,
		Ceiling:   ceiling,
		At:        time.Now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- event:
		default:
			log.Printf("⚠️ LimitNotifier: Subscriber buffer full, dropping event (product_id=%s)", productID)
		}
	}
}
