package audit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skinmuse/internal/models"
)

func fakeTelegramAPI(t *testing.T) (*httptest.Server, *[]string) {
	t.Helper()
	var (
		mu   sync.Mutex
		sent []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"alerts","username":"alerts_bot"}}`))
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			assert.NoError(t, r.ParseForm())
			mu.Lock()
			sent = append(sent, r.Form.Get("text"))
			mu.Unlock()
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"ok":false,"description":"not found"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &sent
}

func TestTelegramAlerter_SendsFormattedEvent(t *testing.T) {
	srv, sent := fakeTelegramAPI(t)

	a, err := NewTelegramAlerterWithEndpoint("TOKEN", srv.URL+"/bot%s/%s", 42, srv.Client())
	require.NoError(t, err)

	ev := models.SecurityEvent{
		Timestamp: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Type:      EventRateLimited,
		Message:   "Too many login attempts",
		Meta:      map[string]any{"ip": "1.2.3.4"},
	}
	require.NoError(t, a.Alert(context.Background(), ev))

	require.Len(t, *sent, 1)
	text := (*sent)[0]
	assert.Contains(t, text, "<b>RATE_LIMITED</b>")
	assert.Contains(t, text, "ip: <code>1.2.3.4</code>")
	assert.Contains(t, text, "2024-05-01T10:00:00Z")
}

func TestNewTelegramAlerter_RequiresConfig(t *testing.T) {
	_, err := NewTelegramAlerter("", 0)
	assert.Error(t, err)
}
