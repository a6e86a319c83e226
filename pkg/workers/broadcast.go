package workers

import (
	"context"
	"encoding/json"
	"net"

	"github.com/cardwall/scramble/pkg/board"
	"github.com/cardwall/scramble/pkg/clients"
	"github.com/cardwall/scramble/pkg/log"
	"github.com/cardwall/scramble/pkg/messages"
	"github.com/cardwall/scramble/pkg/servers"
)

// BroadcastViewWorker pushes each connected client its own rendered view of
// the board whenever the board visibly changes.
type BroadcastViewWorker struct {
	board         *board.Board
	clientManager *clients.ClientManager
	udpServer     *servers.UDPServer
}

type NewBroadcastViewWorkerOptions struct {
	Board         *board.Board
	ClientManager *clients.ClientManager
	UDPServer     *servers.UDPServer
}

func NewBroadcastViewWorker(opts NewBroadcastViewWorkerOptions) *BroadcastViewWorker {
	return &BroadcastViewWorker{
		board:         opts.Board,
		clientManager: opts.ClientManager,
		udpServer:     opts.UDPServer,
	}
}

func (w *BroadcastViewWorker) Start(ctx context.Context) {
	for {
		w.board.Watch()
		if ctx.Err() != nil {
			return
		}

		for _, client := range w.clientManager.GetClients() {
			view := &messages.ServerView{
				View: w.board.Render(client.Player),
			}

			payload, err := json.Marshal(view)
			if err != nil {
				log.Error("Failed to marshal view: %v", err)
				continue
			}

			msg := &messages.Message{
				ClientID: 0,
				Type:     messages.MessageTypeServerView,
				Payload:  payload,
			}

			var udpConn *net.UDPConn
			if client.ConnectionType == clients.ClientConnectionTypeTCPUDP && client.UDPAddress != nil {
				udpConn = w.udpServer.GetUDPConn()
			}
			if err := servers.PushMessageToClient(ctx, udpConn, client, msg); err != nil {
				log.Error("Failed to push view to client %d: %v", client.ID, err)
			}
		}
	}
}
