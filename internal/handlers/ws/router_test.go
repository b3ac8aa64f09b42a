package ws

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dicechamber/dicechamber/internal/repositories/records"
	"github.com/dicechamber/dicechamber/internal/services/session"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RouterTestSuite struct {
	suite.Suite
	mr       *miniredis.Miniredis
	client   *redis.Client
	registry *session.Registry
	server   *httptest.Server
}

func (s *RouterTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := records.NewRedis(&records.Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)

	registry, err := session.NewRegistry(&session.Config{
		Store: repo,
	})
	s.Require().NoError(err)
	s.registry = registry

	router, err := New(&Config{
		Registry: registry,
	})
	s.Require().NoError(err)

	s.server = httptest.NewServer(router)
}

func (s *RouterTestSuite) TearDownTest() {
	s.server.Close()
	s.client.Close()
	s.mr.Close()
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func (s *RouterTestSuite) wsURL(path string) string {
	return "ws" + strings.TrimPrefix(s.server.URL, "http") + path
}

// dial opens a websocket to a session and returns the connection
func (s *RouterTestSuite) dial(sessionID string) *websocket.Conn {
	conn, resp, err := websocket.DefaultDialer.Dial(s.wsURL("/api/session/"+sessionID), nil)
	s.Require().NoError(err)
	if resp != nil {
		resp.Body.Close()
	}
	return conn
}

// readFrame reads the next frame into a generic map, with a deadline
func (s *RouterTestSuite) readFrame(conn *websocket.Conn) map[string]any {
	s.Require().NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	_, data, err := conn.ReadMessage()
	s.Require().NoError(err)

	var decoded map[string]any
	s.Require().NoError(json.Unmarshal(data, &decoded))
	return decoded
}

func (s *RouterTestSuite) TestRoutingFailures() {
	cases := []struct {
		name string
		path string
		body string
	}{
		{name: "no identifier segment", path: "/api/session", body: "Invalid session URL"},
		{name: "empty identifier", path: "/api/session/", body: "Invalid session URL"},
		{name: "extra segment", path: "/api/session/AB12CD/extra", body: "Invalid session URL"},
		{name: "wrong prefix", path: "/other/AB12CD", body: "Invalid session URL"},
		{name: "too short", path: "/api/session/AB12C", body: "Invalid session ID format"},
		{name: "too long", path: "/api/session/AB12CDE", body: "Invalid session ID format"},
		{name: "hyphen", path: "/api/session/ABC-12", body: "Invalid session ID format"},
		{name: "valid id but plain request", path: "/api/session/AB12CD", body: "Expected WebSocket"},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			resp, err := http.Get(s.server.URL + tc.path)
			s.Require().NoError(err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			s.Require().NoError(err)

			s.Equal(http.StatusBadRequest, resp.StatusCode)
			s.Equal(tc.body, strings.TrimSpace(string(body)))
		})
	}

	// None of the above may have constructed a coordinator
	s.Equal(0, s.registry.ActiveSessions())
}

func (s *RouterTestSuite) TestInvalidIdentifierRejectedEvenWithUpgradeHeaders() {
	conn, resp, err := websocket.DefaultDialer.Dial(s.wsURL("/api/session/ABC-12"), nil)
	s.Require().Error(err)
	s.Require().Nil(conn)
	s.Require().NotNil(resp)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)

	s.Equal(http.StatusBadRequest, resp.StatusCode)
	s.Equal("Invalid session ID format", strings.TrimSpace(string(body)))
	s.Equal(0, s.registry.ActiveSessions())
}

func (s *RouterTestSuite) TestConnectReceivesWelcome() {
	conn := s.dial("AB12CD")
	defer conn.Close()

	welcome := s.readFrame(conn)
	s.Equal("WELCOME", welcome["type"])
	s.NotEmpty(welcome["playerId"])
	s.Len(welcome["roster"], 1)
	s.Equal(1, s.registry.ActiveSessions())
}

func (s *RouterTestSuite) TestRollRelayedToOtherConnection() {
	conn1 := s.dial("AB12CD")
	defer conn1.Close()
	s.readFrame(conn1) // welcome

	conn2 := s.dial("AB12CD")
	defer conn2.Close()
	s.readFrame(conn2) // welcome
	s.readFrame(conn1) // player joined

	err := conn1.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"ROLL","rollType":"check","payload":{"hopeValue":8,"fearValue":7,"modifier":0}}`))
	s.Require().NoError(err)

	result := s.readFrame(conn2)
	s.Equal("ROLL_RESULT", result["type"])

	record := result["record"].(map[string]any)
	s.Equal(float64(15), record["total"])
	recordID := record["id"]

	// A history fetch returns the same record id
	err = conn2.WriteMessage(websocket.TextMessage, []byte(`{"type":"HISTORY"}`))
	s.Require().NoError(err)

	history := s.readFrame(conn2)
	s.Equal("HISTORY", history["type"])
	recs := history["records"].([]any)
	s.Require().Len(recs, 1)
	s.Equal(recordID, recs[0].(map[string]any)["id"])
}

func (s *RouterTestSuite) TestDisconnectBroadcastsPlayerLeft() {
	conn1 := s.dial("AB12CD")
	defer conn1.Close()
	welcome := s.readFrame(conn1)
	playerID := welcome["playerId"]

	conn2 := s.dial("AB12CD")
	defer conn2.Close()
	s.readFrame(conn2) // welcome
	s.readFrame(conn1) // player joined

	s.Require().NoError(conn1.Close())

	left := s.readFrame(conn2)
	s.Equal("PLAYER_LEFT", left["type"])
	s.Equal(playerID, left["playerId"])
}

func (s *RouterTestSuite) TestDifferentSessionsAreIsolated() {
	conn1 := s.dial("AB12CD")
	defer conn1.Close()
	s.readFrame(conn1)

	conn2 := s.dial("ZZ99XX")
	defer conn2.Close()
	s.readFrame(conn2)

	s.Equal(2, s.registry.ActiveSessions())

	err := conn1.WriteMessage(websocket.TextMessage,
		[]byte(`{"type":"ROLL","rollType":"gm","payload":{"d20Value":11}}`))
	s.Require().NoError(err)

	// conn1 gets its own result back; conn2's session stays silent
	result := s.readFrame(conn1)
	s.Equal("ROLL_RESULT", result["type"])

	s.Require().NoError(conn2.SetReadDeadline(time.Now().Add(200 * time.Millisecond)))
	_, _, err = conn2.ReadMessage()
	s.Require().Error(err)
}
