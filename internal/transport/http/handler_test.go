package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/streamcart/signal-service/internal/mailbox"
	"github.com/streamcart/signal-service/internal/memory"
	"github.com/streamcart/signal-service/internal/registry"
	"github.com/streamcart/signal-service/internal/relay"
	"github.com/streamcart/signal-service/internal/service"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := mailbox.NewFileStore(t.TempDir())
	require.NoError(t, err)

	reg := registry.New()
	chat := service.NewChatService(memory.NewChatStore())
	hub := relay.NewHub(reg, chat, nil)

	h := NewHandler(store, chat, reg, "stun:stun.l.google.com:19302")
	ts := httptest.NewServer(NewRouter(h, relay.NewServer(hub)))
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (int, map[string]json.RawMessage) {
	t.Helper()

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestOfferRoundTrip(t *testing.T) {
	ts := newTestAPI(t)

	// scenario: X sends, Y polls, Y polls again — same payload both times
	code, out := doJSON(t, http.MethodPost, ts.URL+"/api/webrtc-signal?action=send-offer", map[string]any{
		"room":   "roomA",
		"signal": map[string]string{"sdp": "abc"},
		"peer":   "peer1",
	})
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, "true", string(out["success"]))

	code, out = doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-offer&room=roomA&peer=peer1", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"sdp":"abc"}`, string(out["signal"]))

	code, out = doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-offer&room=roomA&peer=peer1", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{"sdp":"abc"}`, string(out["signal"]))
}

func TestOfferAbsenceIsNull(t *testing.T) {
	ts := newTestAPI(t)

	code, out := doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-offer&room=empty&peer=peer1", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, "null", string(out["signal"]))
}

func TestICEDrain(t *testing.T) {
	ts := newTestAPI(t)

	for _, c := range []string{"c1", "c2", "c3"} {
		code, _ := doJSON(t, http.MethodPost, ts.URL+"/api/webrtc-signal?action=send-ice", map[string]any{
			"room":   "roomA",
			"signal": map[string]string{"candidate": c},
			"peer":   "peer1",
		})
		require.Equal(t, http.StatusOK, code)
	}

	code, out := doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-ice&room=roomA&peer=peer1", nil)
	require.Equal(t, http.StatusOK, code)
	var sigs []map[string]string
	require.NoError(t, json.Unmarshal(out["signals"], &sigs))
	require.Len(t, sigs, 3)
	require.Equal(t, "c1", sigs[0]["candidate"])
	require.Equal(t, "c2", sigs[1]["candidate"])
	require.Equal(t, "c3", sigs[2]["candidate"])

	// drained
	code, out = doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-ice&room=roomA&peer=peer1", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, "[]", string(out["signals"]))
}

func TestClear(t *testing.T) {
	ts := newTestAPI(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/webrtc-signal?action=send-offer", map[string]any{
		"room": "roomA", "signal": map[string]string{"sdp": "a"}, "peer": "peer1",
	})
	doJSON(t, http.MethodPost, ts.URL+"/api/webrtc-signal?action=send-offer", map[string]any{
		"room": "roomB", "signal": map[string]string{"sdp": "b"}, "peer": "peer1",
	})

	code, out := doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=clear&room=roomA", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, "true", string(out["success"]))

	_, out = doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-offer&room=roomA&peer=peer1", nil)
	require.JSONEq(t, "null", string(out["signal"]))

	_, out = doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-offer&room=roomB&peer=peer1", nil)
	require.JSONEq(t, `{"sdp":"b"}`, string(out["signal"]))
}

func TestSignalValidation(t *testing.T) {
	ts := newTestAPI(t)

	code, out := doJSON(t, http.MethodPost, ts.URL+"/api/webrtc-signal?action=send-offer", map[string]any{
		"room": "roomA",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, string(out["error"]), "Missing parameters")

	code, out = doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-offer", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, string(out["error"]), "Missing room parameter")

	code, out = doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=bogus", nil)
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, string(out["error"]), "Invalid action")
}

func TestSanitizedRoomSharedAcrossCalls(t *testing.T) {
	ts := newTestAPI(t)

	// write under a hostile name, read under the stripped one
	code, _ := doJSON(t, http.MethodPost, ts.URL+"/api/webrtc-signal?action=send-offer", map[string]any{
		"room": "room/../../etc", "signal": map[string]string{"sdp": "x"}, "peer": "peer1",
	})
	require.Equal(t, http.StatusOK, code)

	_, out := doJSON(t, http.MethodGet, ts.URL+"/api/webrtc-signal?action=get-offer&room=roometc&peer=peer1", nil)
	require.JSONEq(t, `{"sdp":"x"}`, string(out["signal"]))
}

func TestChatSendFetchLast(t *testing.T) {
	ts := newTestAPI(t)

	code, out := doJSON(t, http.MethodPost, ts.URL+"/api/chat?action=send&room=live1", map[string]string{
		"message": "hello", "username": "alice",
	})
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, "true", string(out["success"]))
	var firstID int64
	require.NoError(t, json.Unmarshal(out["message_id"], &firstID))
	require.NotZero(t, firstID)

	code, out = doJSON(t, http.MethodPost, ts.URL+"/api/chat?action=send&room=live1", map[string]string{
		"message": "world", "username": "bob",
	})
	require.Equal(t, http.StatusOK, code)

	_, out = doJSON(t, http.MethodGet, ts.URL+"/api/chat?action=fetch&room=live1", nil)
	var msgs []ChatMessageItem
	require.NoError(t, json.Unmarshal(out["messages"], &msgs))
	require.Len(t, msgs, 2)
	require.Equal(t, "hello", msgs[0].Message)
	require.Equal(t, "world", msgs[1].Message)
	require.Less(t, msgs[0].ID, msgs[1].ID)

	_, out = doJSON(t, http.MethodGet, ts.URL+"/api/chat?action=get_last&room=live1", nil)
	var last ChatMessageItem
	require.NoError(t, json.Unmarshal(out["message"], &last))
	require.Equal(t, "world", last.Message)
	require.Equal(t, "bob", last.Username)
}

func TestChatEmptyMessageRejected(t *testing.T) {
	ts := newTestAPI(t)

	code, out := doJSON(t, http.MethodPost, ts.URL+"/api/chat?action=send&room=live1", map[string]string{
		"message": "   ", "username": "alice",
	})
	require.Equal(t, http.StatusBadRequest, code)
	require.Contains(t, string(out["error"]), "empty")
}

func TestChatLastEmptyRoomIsNull(t *testing.T) {
	ts := newTestAPI(t)

	_, out := doJSON(t, http.MethodGet, ts.URL+"/api/chat?action=get_last&room=quiet", nil)
	require.JSONEq(t, "null", string(out["message"]))
}

func TestHealthAndICEConfig(t *testing.T) {
	ts := newTestAPI(t)

	code, out := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `"ok"`, string(out["status"]))

	code, out = doJSON(t, http.MethodGet, ts.URL+"/api/ice-config", nil)
	require.Equal(t, http.StatusOK, code)
	var servers []ICEServer
	require.NoError(t, json.Unmarshal(out["iceServers"], &servers))
	require.Equal(t, "stun:stun.l.google.com:19302", servers[0].URLs)
}

func TestActiveRoomsEmpty(t *testing.T) {
	ts := newTestAPI(t)

	resp, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(b))
}
