package servers

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/cardwall/scramble/pkg/board"
	"github.com/cardwall/scramble/pkg/clients"
	"github.com/cardwall/scramble/pkg/log"
	"github.com/cardwall/scramble/pkg/messages"
	"github.com/cardwall/scramble/pkg/queue"
)

// TCPServer represents a TCP server.
type TCPServer struct {
	ClientManager *clients.ClientManager
	MessageQueue  queue.Queue
	Board         *board.Board
	Port          int
}

type NewTCPServerOptions struct {
	ClientManager *clients.ClientManager
	MessageQueue  queue.Queue
	Board         *board.Board
	Port          int
}

// NewTCPServer creates a new TCP server.
func NewTCPServer(opts NewTCPServerOptions) *TCPServer {
	return &TCPServer{
		ClientManager: opts.ClientManager,
		MessageQueue:  opts.MessageQueue,
		Board:         opts.Board,
		Port:          opts.Port,
	}
}

// Start starts the TCP server.
func (s *TCPServer) Start(ctx context.Context) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		log.Error("Failed to resolve TCP address: %v", err)
		return
	}

	tcpListener, err := net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		log.Error("Failed to listen on TCP address: %v", err)
		return
	}
	defer tcpListener.Close()

	log.Info("TCP server listening on %s", tcpAddr.String())

	go func() {
		<-ctx.Done()
		tcpListener.Close()
	}()

	for {
		conn, err := tcpListener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				log.Info("TCP server closed")
				return
			}
			log.Error("Failed to accept TCP connection: %v", err)
			continue
		}

		go s.handleTCPConnection(ctx, conn)
	}
}

// handleTCPConnection handles a TCP connection.
func (s *TCPServer) handleTCPConnection(ctx context.Context, conn net.Conn) {
	var connectedClientID uint32 // set after hello
	defer func() {
		if clientID := s.ClientManager.GetClientIDByTCPConn(conn); clientID != 0 {
			log.Debug("TCP connection closed for client %d", clientID)
			s.ClientManager.DisconnectClient(clientID)
		}
		conn.Close()
	}()

	for {
		message, err := ReadMessageFromTCP(conn)
		if err != nil {
			if _, ok := err.(*ErrConnectionClosed); ok {
				log.Debug("Client %d disconnected", connectedClientID)
				return
			}
			log.Error("Error reading TCP message from client %d: %v", connectedClientID, err)
			continue
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

			clientID, player, err := s.ClientManager.ConnectClient(conn, nil, clientHello.Player)
			if err != nil {
				log.Error("Failed to connect client: %v", err)
				return
			}
			connectedClientID = clientID

			log.Debug("Client %d connected as %s", clientID, player)

			if err := s.sendWelcome(conn, clientID, player); err != nil {
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

func (s *TCPServer) sendWelcome(conn net.Conn, clientID uint32, player string) error {
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
	if err := WriteMessageToTCP(conn, msg); err != nil {
		return fmt.Errorf("failed to write welcome: %v", err)
	}

	return nil
}

// WriteMessageToTCP writes a length-prefixed Message to a TCP connection
func WriteMessageToTCP(conn net.Conn, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}
	if len(b) > messages.MessageBufferSize {
		return fmt.Errorf("message of %d bytes exceeds maximum of %d", len(b), messages.MessageBufferSize)
	}

	frame := make([]byte, 4+len(b))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(b)))
	copy(frame[4:], b)

	if _, err := conn.Write(frame); err != nil {
		return fmt.Errorf("failed to write message to TCP connection: %v", err)
	}

	return nil
}

// ErrConnectionClosed is returned when the TCP connection is closed
type ErrConnectionClosed struct{}

func (e *ErrConnectionClosed) Error() string {
	return "connection closed"
}

func isClosedConnError(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed)
}

// ReadMessageFromTCP reads a length-prefixed Message from a TCP connection.
// The 4-byte big-endian prefix lets the frame survive segmentation.
func ReadMessageFromTCP(conn net.Conn) (*messages.Message, error) {
	var header [4]byte
	if _, err := io.ReadFull(conn, header[:]); err != nil {
		if isClosedConnError(err) {
			return nil, &ErrConnectionClosed{}
		}
		return nil, fmt.Errorf("failed to read message header from TCP connection: %v", err)
	}

	length := binary.BigEndian.Uint32(header[:])
	if length == 0 || length > messages.MessageBufferSize {
		return nil, fmt.Errorf("invalid message length %d", length)
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(conn, buf); err != nil {
		if isClosedConnError(err) {
			return nil, &ErrConnectionClosed{}
		}
		return nil, fmt.Errorf("failed to read message from TCP connection: %v", err)
	}

	msg, err := messages.DeserializeMessage(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, nil
}
