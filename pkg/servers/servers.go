package servers

import (
	"context"
	"fmt"
	"net"

	"github.com/cardwall/scramble/pkg/clients"
	"github.com/cardwall/scramble/pkg/messages"
)

// WriteMessageToClient writes a message over the client's reliable channel
// (TCP or WebSocket).
func WriteMessageToClient(ctx context.Context, client *clients.Client, msg *messages.Message) error {
	switch client.ConnectionType {
	case clients.ClientConnectionTypeTCPUDP:
		if err := WriteMessageToTCP(client.TCPConn, msg); err != nil {
			return fmt.Errorf("failed to write message to TCP connection for client %d: %v", client.ID, err)
		}
	case clients.ClientConnectionTypeWebSocket:
		if err := WriteMessageToWS(ctx, client.WSConn, msg); err != nil {
			return fmt.Errorf("failed to write message to WebSocket connection for client %d: %v", client.ID, err)
		}
	default:
		return fmt.Errorf("unknown connection type for client %d: %v", client.ID, client.ConnectionType)
	}

	return nil
}

// PushMessageToClient writes a message over the client's unreliable channel,
// falling back to the reliable one when no UDP address is bound.
func PushMessageToClient(ctx context.Context, udpConn *net.UDPConn, client *clients.Client, msg *messages.Message) error {
	if client.ConnectionType == clients.ClientConnectionTypeTCPUDP && client.UDPAddress != nil {
		if err := WriteMessageToUDP(udpConn, client.UDPAddress, msg); err != nil {
			return fmt.Errorf("failed to write message to UDP connection for client %d: %v", client.ID, err)
		}
		return nil
	}

	return WriteMessageToClient(ctx, client, msg)
}
