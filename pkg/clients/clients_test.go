package clients

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientManager_LookupByTCPConn(t *testing.T) {
	cm := NewClientManager()

	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()

	clientID, _, err := cm.ConnectClient(c1, nil, "alice")
	require.NoError(t, err)

	assert.Equal(t, clientID, cm.GetClientIDByTCPConn(c1))
	assert.Zero(t, cm.GetClientIDByTCPConn(c2))

	// a nil conn must not match clients of the other connection type
	assert.Zero(t, cm.GetClientIDByTCPConn(nil))
	assert.Zero(t, cm.GetClientIDByWSConn(nil))

	cm.DisconnectClient(clientID)
	assert.Zero(t, cm.GetClientIDByTCPConn(c1))
}

func TestClientManager_ConnectDisconnect(t *testing.T) {
	cm := NewClientManager()

	clientID, player, err := cm.ConnectClient(nil, nil, "alice")
	require.NoError(t, err)
	assert.NotZero(t, clientID)
	assert.Equal(t, "alice", player)
	assert.True(t, cm.Exists(clientID))
	assert.Equal(t, "alice", cm.GetPlayer(clientID))

	event := <-cm.GetClientEventChan()
	assert.Equal(t, ClientEventTypeConnect, event.Type)
	assert.Equal(t, "alice", event.Player)

	cm.DisconnectClient(clientID)
	assert.False(t, cm.Exists(clientID))

	event = <-cm.GetClientEventChan()
	assert.Equal(t, ClientEventTypeDisconnect, event.Type)
}

func TestClientManager_EmptyNameGetsGuestIdentity(t *testing.T) {
	cm := NewClientManager()

	_, player, err := cm.ConnectClient(nil, nil, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(player, "guest-"))

	_, other, err := cm.ConnectClient(nil, nil, "")
	require.NoError(t, err)
	assert.NotEqual(t, player, other)
}
