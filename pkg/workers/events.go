package workers

import (
	"github.com/cardwall/scramble/pkg/clients"
	"github.com/cardwall/scramble/pkg/log"
)

type ClientEventWorker struct {
	clientManager *clients.ClientManager
}

type NewClientEventWorkerOptions struct {
	ClientManager *clients.ClientManager
}

// NewClientEventWorker creates a new ClientEventWorker.
// The worker processes client connect and disconnect events.
func NewClientEventWorker(opts NewClientEventWorkerOptions) *ClientEventWorker {
	return &ClientEventWorker{
		clientManager: opts.ClientManager,
	}
}

func (w *ClientEventWorker) Start() {
	for event := range w.clientManager.GetClientEventChan() {
		switch event.Type {
		case clients.ClientEventTypeConnect:
			log.Info("Player %s joined as client %d", event.Player, event.ClientID)
		case clients.ClientEventTypeDisconnect:
			log.Info("Player %s left as client %d", event.Player, event.ClientID)
		default:
			log.Error("Unknown client event type: %v", event.Type)
		}
	}
}
