package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"averon/internal/shared/errors"
	"averon/internal/shared/logger"
)

// fakePanel is a minimal x-ui style panel: form login sets a session
// cookie, API calls require it, responses use the {success,msg,obj} envelope.
type fakePanel struct {
	mux        *http.ServeMux
	loginCount int
	// when true the panel rejects the next authenticated call once,
	// simulating an expired session
	expireSession bool
}

func newFakePanel() *fakePanel {
	p := &fakePanel{mux: http.NewServeMux()}

	p.mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		p.loginCount++
		if r.FormValue("username") != "admin" || r.FormValue("password") != "secret" {
			writeEnvelope(w, false, "invalid credentials", nil)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok"})
		writeEnvelope(w, true, "", nil)
	})

	p.mux.HandleFunc("/server/status", p.authenticated(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, true, "", map[string]any{
			"cpu":      42.5,
			"mem":      map[string]uint64{"current": 4 << 30, "total": 8 << 30},
			"disk":     map[string]uint64{"current": 10 << 30, "total": 100 << 30},
			"uptime":   3600,
			"tcpCount": 12,
			"udpCount": 3,
		})
	}))

	p.mux.HandleFunc("/panel/api/inbounds/list", p.authenticated(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, true, "", []map[string]any{
			{
				"id": 1, "port": 443, "protocol": "vless", "remark": "edge", "enable": true,
				"clientStats": []map[string]any{
					{"id": 7, "inboundId": 1, "email": "x@s1", "enable": true, "up": 100, "down": 200, "total": 1000, "expiryTime": 0},
				},
			},
		})
	}))

	p.mux.HandleFunc("/panel/api/inbounds/addClient", p.authenticated(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			ID       int    `json:"id"`
			Settings string `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.ID == 0 {
			writeEnvelope(w, false, "invalid inbound id", nil)
			return
		}
		writeEnvelope(w, true, "", nil)
	}))

	p.mux.HandleFunc("/panel/api/inbounds/99/delClient/ghost@s1", p.authenticated(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, false, "client not found", nil)
	}))

	return p
}

func (p *fakePanel) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if p.expireSession {
			p.expireSession = false
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if c, err := r.Cookie("session"); err != nil || c.Value != "ok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func writeEnvelope(w http.ResponseWriter, success bool, msg string, obj any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"success": success, "msg": msg, "obj": obj})
}

func newTestConnector(t *testing.T, baseURL string) *Connector {
	t.Helper()
	conn, err := NewConnector(baseURL, "admin", "secret", 2*time.Second, logger.NewLogger())
	require.NoError(t, err)
	t.Cleanup(conn.Close)
	return conn
}

func TestConnector_LazyAuthentication(t *testing.T) {
	panel := newFakePanel()
	srv := httptest.NewServer(panel.mux)
	defer srv.Close()

	conn := newTestConnector(t, srv.URL)

	// No login until the first call
	assert.Equal(t, 0, panel.loginCount)

	status, err := conn.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, panel.loginCount)
	assert.InDelta(t, 42.5, status.CPUPercent, 0.001)
	assert.InDelta(t, 50.0, status.Memory.Percent(), 0.001)
	assert.InDelta(t, 10.0, status.Disk.Percent(), 0.001)
	assert.Equal(t, uint(15), status.ActiveConnections())

	// Session is reused on subsequent calls
	_, err = conn.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, panel.loginCount)
}

func TestConnector_ReauthenticatesOnceOnExpiredSession(t *testing.T) {
	panel := newFakePanel()
	srv := httptest.NewServer(panel.mux)
	defer srv.Close()

	conn := newTestConnector(t, srv.URL)

	_, err := conn.GetStatus(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, panel.loginCount)

	// Expire the session: the next call gets a 401, re-logs in, and succeeds
	panel.expireSession = true
	_, err = conn.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, panel.loginCount)
}

func TestConnector_BadCredentials(t *testing.T) {
	panel := newFakePanel()
	srv := httptest.NewServer(panel.mux)
	defer srv.Close()

	conn, err := NewConnector(srv.URL, "admin", "wrong", 2*time.Second, logger.NewLogger())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.GetStatus(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsAuthenticationError(err), "want authentication error, got %v", err)
}

func TestConnector_ListInbounds(t *testing.T) {
	panel := newFakePanel()
	srv := httptest.NewServer(panel.mux)
	defer srv.Close()

	conn := newTestConnector(t, srv.URL)

	inbounds, err := conn.ListInbounds(context.Background())
	require.NoError(t, err)
	require.Len(t, inbounds, 1)
	assert.Equal(t, 443, inbounds[0].Port)
	assert.Equal(t, "vless", inbounds[0].Protocol)
	require.Len(t, inbounds[0].ClientStats, 1)
	assert.Equal(t, "x@s1", inbounds[0].ClientStats[0].Email)
	assert.Nil(t, inbounds[0].ClientStats[0].ExpiresAt())
}

func TestConnector_AddClient(t *testing.T) {
	panel := newFakePanel()
	srv := httptest.NewServer(panel.mux)
	defer srv.Close()

	conn := newTestConnector(t, srv.URL)

	err := conn.AddClient(context.Background(), 1, "sub10-s2@averon.local",
		"11111111-2222-3333-4444-555555555555", 5<<30, time.Now().Add(24*time.Hour))
	require.NoError(t, err)
}

func TestConnector_EnvelopeFailureIsRemoteAPIError(t *testing.T) {
	panel := newFakePanel()
	srv := httptest.NewServer(panel.mux)
	defer srv.Close()

	conn := newTestConnector(t, srv.URL)

	// The fake rejects adding to inbound id 0
	err := conn.AddClient(context.Background(), 0, "a@b", "u", 0, time.Time{})
	require.Error(t, err)
	assert.True(t, errors.IsRemoteAPIError(err), "want remote API error, got %v", err)
}

func TestConnector_NotFoundMessage(t *testing.T) {
	panel := newFakePanel()
	srv := httptest.NewServer(panel.mux)
	defer srv.Close()

	conn := newTestConnector(t, srv.URL)

	err := conn.RemoveClient(context.Background(), 99, "ghost@s1")
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err), "want not found error, got %v", err)
}

func TestConnector_UnreachablePanelIsConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	baseURL := srv.URL
	srv.Close() // connector now points at a dead address

	conn := newTestConnector(t, baseURL)

	_, err := conn.GetStatus(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsConnectionError(err), "want connection error, got %v", err)
}

func TestConnector_MalformedBodyIsRemoteAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok"})
		writeEnvelope(w, true, "", nil)
	})
	mux.HandleFunc("/server/status", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>not json</html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	conn := newTestConnector(t, srv.URL)

	_, err := conn.GetStatus(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsRemoteAPIError(err), "want remote API error, got %v", err)
}

func TestNewConnector_Validation(t *testing.T) {
	log := logger.NewLogger()

	_, err := NewConnector("", "u", "p", time.Second, log)
	assert.Error(t, err)

	_, err = NewConnector("http://x", "", "p", time.Second, log)
	assert.Error(t, err)

	_, err = NewConnector("http://x", "u", "", time.Second, log)
	assert.Error(t, err)
}
