package servers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/cardwall/scramble/pkg/board"
	"github.com/cardwall/scramble/pkg/clients"
	"github.com/cardwall/scramble/pkg/log"
	"github.com/cardwall/scramble/pkg/messages"
	"github.com/cardwall/scramble/pkg/queue"
	"nhooyr.io/websocket"
)

// WSServer represents a WebSocket server carrying the same message envelope
// as the TCP listener over binary WebSocket messages.
type WSServer struct {
	ClientManager *clients.ClientManager
	MessageQueue  queue.Queue
	Board         *board.Board
	Port          int
}

type NewWSServerOptions struct {
	ClientManager *clients.ClientManager
	MessageQueue  queue.Queue
	Board         *board.Board
	Port          int
}

// NewWSServer creates a new WebSocket server.
func NewWSServer(opts NewWSServerOptions) *WSServer {
	return &WSServer{
		ClientManager: opts.ClientManager,
		MessageQueue:  opts.MessageQueue,
		Board:         opts.Board,
		Port:          opts.Port,
	}
}

// Start starts the WebSocket server.
func (s *WSServer) Start(ctx context.Context) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			log.Error("Failed to accept WebSocket connection: %v", err)
			return
		}
		log.Debug("New WebSocket connection from %s", r.RemoteAddr)
		go s.handleWSConnection(ctx, conn)
	})

	addr := fmt.Sprintf(":%d", s.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		server.Shutdown(context.Background())
	}()

	log.Info("WebSocket server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("WebSocket server closed")
			return
		}
		log.Error("WebSocket server error: %v", err)
	}
}

// handleWSConnection handles a WebSocket connection.
func (s *WSServer) handleWSConnection(ctx context.Context, conn *websocket.Conn) {
	var connectedClientID uint32 // set after hello
	defer func() {
		if clientID := s.ClientManager.GetClientIDByWSConn(conn); clientID != 0 {
			log.Debug("WebSocket connection closed for client %d", clientID)
			s.ClientManager.DisconnectClient(clientID)
		}
		conn.CloseNow()
	}()

	for {
		message, err := ReadMessageFromWS(ctx, conn)
		if err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				log.Debug("Client %d disconnected", connectedClientID)
				return
			}
			log.Error("Error reading WebSocket message from client %d: %v", connectedClientID, err)
			return
		}

		switch message.Type {
		case messages.MessageTypeClientHello:
			if connectedClientID != 0 {
				log.Warn("Client %d sent a second hello, ignoring", connectedClientID)
				continue
			}

			clientHello := &messages.ClientHello{}
			if err := json.Unmarshal(message.Payload, clientHello); err != nil {
				log.Error("Failed to unmarshal client hello: %v", err)
				continue
			}

			clientID, player, err := s.ClientManager.ConnectClient(nil, conn, clientHello.Player)
			if err != nil {
				log.Error("Failed to connect client: %v", err)
				return
			}
			connectedClientID = clientID

			log.Debug("Client %d connected as %s", clientID, player)

			if err := s.sendWelcome(ctx, conn, clientID, player); err != nil {
				log.Error("Failed to send welcome to client %d: %v", clientID, err)
				return
			}
		default:
			if connectedClientID == 0 {
				log.Warn("Received message from unknown client that is not a hello")
				continue
			}
			message.ClientID = connectedClientID
			if err := s.MessageQueue.Enqueue(message); err != nil {
				log.Error("Failed to enqueue message: %v", err)
			}
		}
	}
}

func (s *WSServer) sendWelcome(ctx context.Context, conn *websocket.Conn, clientID uint32, player string) error {
	welcome := &messages.ServerWelcome{
		ClientID: clientID,
		Player:   player,
		Rows:     s.Board.Rows(),
		Cols:     s.Board.Cols(),
	}

	payload, err := json.Marshal(welcome)
	if err != nil {
		return fmt.Errorf("failed to marshal welcome: %v", err)
	}

	msg := &messages.Message{
		ClientID: 0,
		Type:     messages.MessageTypeServerWelcome,
		Payload:  payload,
	}
	if err := WriteMessageToWS(ctx, conn, msg); err != nil {
		return fmt.Errorf("failed to write welcome: %v", err)
	}

	return nil
}

// WriteMessageToWS writes a Message to a WebSocket connection
func WriteMessageToWS(ctx context.Context, conn *websocket.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}

// ReadMessageFromWS reads a Message from a WebSocket connection
func ReadMessageFromWS(ctx context.Context, conn *websocket.Conn) (*messages.Message, error) {
	_, b, err := conn.Read(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := messages.DeserializeMessage(b)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}
