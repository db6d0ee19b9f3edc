package marketing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bearbeat/bearbeat/internal/pkg/config"
)

func TestSyncPurchaseSkipsUnconfiguredChannels(t *testing.T) {
	svc := NewService(
		NewBrevoClient(config.Brevo{}),
		NewManyChatClient(config.ManyChat{}),
		NewTwilioClient(config.Twilio{}),
	)

	err := svc.SyncPurchase(context.Background(), Contact{Email: "a@b.c"}, "thanks")
	assert.NoError(t, err)
}

func TestSyncPurchaseBrevoUpsert(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		assert.Equal(t, "key-123", r.Header.Get("Api-Key"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	brevo := NewBrevoClient(config.Brevo{APIKey: "key-123", ListID: 7})
	brevo.baseURL = server.URL

	svc := NewService(brevo, nil, nil)
	err := svc.SyncPurchase(context.Background(), Contact{
		Email: "buyer@example.com",
		Name:  "Buyer",
		Phone: "+5215512345678",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "/contacts", gotPath)
	assert.Equal(t, "buyer@example.com", gotBody["email"])
	assert.Equal(t, true, gotBody["updateEnabled"])
}

func TestSyncPurchaseCollectsFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	brevo := NewBrevoClient(config.Brevo{APIKey: "bad-key"})
	brevo.baseURL = server.URL

	svc := NewService(brevo, nil, nil)
	err := svc.SyncPurchase(context.Background(), Contact{Email: "buyer@example.com"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "brevo")
}

func TestManyChatSubscriberAndFlow(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		assert.Equal(t, "Bearer mc-key", r.Header.Get("Authorization"))
		switch r.URL.Path {
		case "/fb/subscriber/createSubscriber":
			_, _ = w.Write([]byte(`{"status":"success","data":{"id":123}}`))
		case "/fb/sending/sendFlow":
			_, _ = w.Write([]byte(`{"status":"success"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	mc := NewManyChatClient(config.ManyChat{APIKey: "mc-key", FlowNS: "content20240101"})
	mc.baseURL = server.URL

	svc := NewService(nil, mc, nil)
	err := svc.SyncPurchase(context.Background(), Contact{
		Email: "buyer@example.com",
		Name:  "Buyer",
		Phone: "+5215512345678",
	}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"/fb/subscriber/createSubscriber", "/fb/sending/sendFlow"}, paths)
}

func TestTwilioSendSMS(t *testing.T) {
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM1"}`))
	}))
	defer server.Close()

	tw := NewTwilioClient(config.Twilio{AccountSID: "AC123", AuthToken: "token", FromSMS: "+15550001111"})
	tw.baseURL = server.URL

	err := tw.SendSMS(context.Background(), "+5215512345678", "Your pack is ready")
	require.NoError(t, err)
	assert.Equal(t, []string{"+15550001111"}, gotForm["From"])
	assert.Equal(t, []string{"+5215512345678"}, gotForm["To"])
}
