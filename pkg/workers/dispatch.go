package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cardwall/scramble/pkg/board"
	"github.com/cardwall/scramble/pkg/clients"
	"github.com/cardwall/scramble/pkg/log"
	"github.com/cardwall/scramble/pkg/messages"
	"github.com/cardwall/scramble/pkg/queue"
	"github.com/cardwall/scramble/pkg/servers"
)

// transforms are the content transformations clients can request by name.
var transforms = map[string]func(string) string{
	"upper": strings.ToUpper,
	"lower": strings.ToLower,
}

// DispatchWorker drains the command queue and runs each command against the
// board. Every command runs on its own goroutine so a flip that parks
// waiting for a card never stalls the queue.
type DispatchWorker struct {
	board         *board.Board
	clientManager *clients.ClientManager
	messageQueue  queue.Queue
}

type NewDispatchWorkerOptions struct {
	Board         *board.Board
	ClientManager *clients.ClientManager
	MessageQueue  queue.Queue
}

func NewDispatchWorker(opts NewDispatchWorkerOptions) *DispatchWorker {
	return &DispatchWorker{
		board:         opts.Board,
		clientManager: opts.ClientManager,
		messageQueue:  opts.MessageQueue,
	}
}

func (w *DispatchWorker) Start(ctx context.Context) {
	for {
		item, err := w.messageQueue.Dequeue()
		if err != nil {
			log.Error("Failed to dequeue message: %v", err)
			return
		}
		if ctx.Err() != nil {
			return
		}

		message, ok := item.(*messages.Message)
		if !ok {
			log.Error("Failed to cast dequeued item to message")
			continue
		}

		go w.handleMessage(ctx, message)
	}
}

func (w *DispatchWorker) handleMessage(ctx context.Context, message *messages.Message) {
	client, err := w.clientManager.GetClient(message.ClientID)
	if err != nil {
		log.Warn("Dropping %s command: %v", message.Type, err)
		return
	}

	switch message.Type {
	case messages.MessageTypeClientFlip:
		w.handleFlip(ctx, client, message)
	case messages.MessageTypeClientLook:
		w.sendView(ctx, client)
	case messages.MessageTypeClientWatch:
		w.handleWatch(ctx, client)
	case messages.MessageTypeClientTransform:
		w.handleTransform(ctx, client, message)
	default:
		log.Warn("Unknown message type %s from client %d", message.Type, message.ClientID)
	}
}

func (w *DispatchWorker) handleFlip(ctx context.Context, client *clients.Client, message *messages.Message) {
	clientFlip := &messages.ClientFlip{}
	if err := json.Unmarshal(message.Payload, clientFlip); err != nil {
		log.Error("Failed to unmarshal flip from client %d: %v", client.ID, err)
		return
	}

	// blocks while the card is contested
	if err := w.board.Flip(client.Player, clientFlip.Row, clientFlip.Col); err != nil {
		w.sendError(ctx, client, err)
		return
	}
	w.sendView(ctx, client)
}

func (w *DispatchWorker) handleWatch(ctx context.Context, client *clients.Client) {
	w.board.Watch()
	// the client may have disconnected while parked
	if w.clientManager.GetPlayer(client.ID) == "" {
		return
	}
	w.sendView(ctx, client)
}

func (w *DispatchWorker) handleTransform(ctx context.Context, client *clients.Client, message *messages.Message) {
	clientTransform := &messages.ClientTransform{}
	if err := json.Unmarshal(message.Payload, clientTransform); err != nil {
		log.Error("Failed to unmarshal transform from client %d: %v", client.ID, err)
		return
	}

	f, ok := transforms[clientTransform.Fn]
	if !ok {
		w.sendError(ctx, client, fmt.Errorf("unknown transform %q", clientTransform.Fn))
		return
	}

	w.board.Transform(f)
	w.sendView(ctx, client)
}

func (w *DispatchWorker) sendView(ctx context.Context, client *clients.Client) {
	view := &messages.ServerView{
		View: w.board.Render(client.Player),
	}

	payload, err := json.Marshal(view)
	if err != nil {
		log.Error("Failed to marshal view: %v", err)
		return
	}

	msg := &messages.Message{
		ClientID: 0,
		Type:     messages.MessageTypeServerView,
		Payload:  payload,
	}
	if err := servers.WriteMessageToClient(ctx, client, msg); err != nil {
		log.Error("Failed to send view to client %d: %v", client.ID, err)
	}
}

func (w *DispatchWorker) sendError(ctx context.Context, client *clients.Client, boardErr error) {
	serverError := &messages.ServerError{
		Code:    errorCode(boardErr),
		Message: boardErr.Error(),
	}

	payload, err := json.Marshal(serverError)
	if err != nil {
		log.Error("Failed to marshal error: %v", err)
		return
	}

	msg := &messages.Message{
		ClientID: 0,
		Type:     messages.MessageTypeServerError,
		Payload:  payload,
	}
	if err := servers.WriteMessageToClient(ctx, client, msg); err != nil {
		log.Error("Failed to send error to client %d: %v", client.ID, err)
	}
}

func errorCode(err error) string {
	switch {
	case board.IsInvalidCoordinates(err):
		return "invalid_coordinates"
	case board.IsNoCard(err):
		return "no_card"
	case board.IsAlreadyControlled(err):
		return "already_controlled"
	case board.IsControlledByOther(err):
		return "controlled_by_other"
	case board.IsProtocolViolation(err):
		return "protocol_violation"
	default:
		return "bad_request"
	}
}
