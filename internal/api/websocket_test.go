package api

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/page-builder/backend/internal/builder"
	"github.com/page-builder/backend/internal/models"
	"github.com/page-builder/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dialHub(t *testing.T) (*websocket.Conn, *builder.App, *Hub) {
	t.Helper()
	store := builder.NewStore(testutil.NewFakeRemote(), nil, builder.LocalWins, zap.NewNop())
	app := builder.NewApp(store, builder.NewPalette(nil), "123")
	hub := NewHub(store, zap.NewNop())

	e := echo.New()
	RegisterWebSocketRoutes(e, hub)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	t.Cleanup(hub.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/builder/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn, app, hub
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_SendsLayoutOnConnect(t *testing.T) {
	conn, _, hub := dialHub(t)

	assert.Equal(t, MsgTypeConnected, readMessage(t, conn).Type)

	msg := readMessage(t, conn)
	require.Equal(t, MsgTypeLayout, msg.Type)
	var layout models.Layout
	require.NoError(t, json.Unmarshal(msg.Payload, &layout))
	assert.Len(t, layout.Sections, 3)
	assert.Equal(t, 1, hub.Clients())
}

func TestHub_BroadcastsMutations(t *testing.T) {
	conn, app, _ := dialHub(t)
	readMessage(t, conn) // connected
	readMessage(t, conn) // initial layout

	section, err := app.Section("sec-main")
	require.NoError(t, err)
	el, err := section.OnExternalDrop([]byte(`{"type":"button"}`))
	require.NoError(t, err)

	msg := readMessage(t, conn)
	require.Equal(t, MsgTypeLayout, msg.Type)
	var layout models.Layout
	require.NoError(t, json.Unmarshal(msg.Payload, &layout))
	assert.Contains(t, layout.Elements, el.ID)
	assert.Equal(t, []string{el.ID}, layout.Sections[1].ElementIDs)
}

func TestHub_PingPong(t *testing.T) {
	conn, _, _ := dialHub(t)
	readMessage(t, conn)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: MsgTypePing}))
	assert.Equal(t, MsgTypePong, readMessage(t, conn).Type)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "bogus"}))
	msg := readMessage(t, conn)
	assert.Equal(t, MsgTypeError, msg.Type)
	assert.Contains(t, string(msg.Payload), "bogus")
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	conn, _, hub := dialHub(t)
	readMessage(t, conn)
	readMessage(t, conn)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg WSMessage
	err := conn.ReadJSON(&msg)
	require.Error(t, err)
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		assert.False(t, netErr.Timeout(), "server should drop the connection, not leave it idle")
	}
}
