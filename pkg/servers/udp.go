package servers

import (
	"context"
	"fmt"
	"net"

	"github.com/cardwall/scramble/pkg/clients"
	"github.com/cardwall/scramble/pkg/log"
	"github.com/cardwall/scramble/pkg/messages"
	"github.com/cardwall/scramble/pkg/queue"
)

// UDPServer represents a UDP server. Datagrams bind the sender's address for
// view pushes and feed commands to the same queue as the other listeners.
type UDPServer struct {
	ClientManager *clients.ClientManager
	MessageQueue  queue.Queue
	Port          int

	udpConn *net.UDPConn
}

type NewUDPServerOptions struct {
	ClientManager *clients.ClientManager
	MessageQueue  queue.Queue
	Port          int
}

// NewUDPServer creates a new UDP server.
func NewUDPServer(opts NewUDPServerOptions) *UDPServer {
	return &UDPServer{
		ClientManager: opts.ClientManager,
		MessageQueue:  opts.MessageQueue,
		Port:          opts.Port,
	}
}

// GetUDPConn returns the UDP listener connection
func (s *UDPServer) GetUDPConn() *net.UDPConn {
	if s.udpConn == nil {
		panic("UDP connection is not set on UDPServer")
	}
	return s.udpConn
}

// Start starts the UDP server.
func (s *UDPServer) Start(ctx context.Context) {
	udpAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf(":%d", s.Port))
	if err != nil {
		log.Error("Failed to resolve UDP address: %v", err)
		return
	}

	udpConn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		log.Error("Failed to listen on UDP address: %v", err)
		return
	}
	defer udpConn.Close()

	s.udpConn = udpConn

	log.Info("UDP server listening on %s", udpAddr.String())

	go func() {
		<-ctx.Done()
		udpConn.Close()
	}()

	for {
		message, addr, err := ReadMessageFromUDP(udpConn)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("UDP server closed")
				return
			}
			log.Error("Failed to read message from UDP connection: %v", err)
			continue
		}

		if message.ClientID == 0 {
			log.Warn("Received UDP message from unknown client, ignoring")
			continue
		}

		if !s.ClientManager.Exists(message.ClientID) {
			log.Warn("Received UDP message from %d, but client is not connected", message.ClientID)
			continue
		}

		log.Trace("Received UDP message of type %s from %d", message.Type, message.ClientID)

		s.ClientManager.SetUDPAddress(message.ClientID, addr)

		if err := s.MessageQueue.Enqueue(message); err != nil {
			log.Error("Failed to enqueue message: %v", err)
		}
	}
}

// WriteMessageToUDP writes a Message to a UDP connection
func WriteMessageToUDP(conn *net.UDPConn, addr *net.UDPAddr, msg *messages.Message) error {
	b, err := messages.SerializeMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	_, err = conn.WriteToUDP(b, addr)
	if err != nil {
		return fmt.Errorf("failed to write message to UDP connection: %v", err)
	}

	return nil
}

// ReadMessageFromUDP reads a Message from a UDP connection
func ReadMessageFromUDP(conn *net.UDPConn) (*messages.Message, *net.UDPAddr, error) {
	buf := make([]byte, messages.MessageBufferSize)
	n, addr, err := conn.ReadFromUDP(buf)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read message from UDP connection: %v", err)
	}

	msg, err := messages.DeserializeMessage(buf[:n])
	if err != nil {
		return nil, nil, fmt.Errorf("failed to deserialize message: %v", err)
	}

	return msg, addr, nil
}
