package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Deliver(t *testing.T) {
	t.Parallel()

	var gotPath, gotChatID, gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChatID = r.PostFormValue("chat_id")
		gotText = r.PostFormValue("text")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := NewClient(Options{Token: "123:abc", BaseURL: server.URL})

	err := c.Deliver(context.Background(), 99001, "Изменение цены!")

	require.NoError(t, err)
	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "99001", gotChatID)
	assert.Equal(t, "Изменение цены!", gotText)
}

func TestClient_Deliver_APIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"ok":false,"description":"Forbidden: bot was blocked by the user"}`))
	}))
	defer server.Close()

	c := NewClient(Options{Token: "123:abc", BaseURL: server.URL})

	err := c.Deliver(context.Background(), 99001, "text")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bot was blocked")
}

func TestClient_Deliver_TransportError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Immediately unreachable

	c := NewClient(Options{Token: "123:abc", BaseURL: server.URL})

	err := c.Deliver(context.Background(), 99001, "text")

	assert.Error(t, err)
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()

	c := NewClient(Options{Token: "123:abc"})
	assert.Equal(t, defaultAPIBase, c.http.BaseURL)
}
