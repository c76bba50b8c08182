package line

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/mood-assistant/internal/dialogue"
	"github.com/nhle/mood-assistant/internal/httpclient"
	"github.com/nhle/mood-assistant/internal/store"
	"github.com/nhle/mood-assistant/tests/testutil"
)

const testSecret = "channel-secret"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type echoHandler struct {
	mu   sync.Mutex
	seen map[string][]string
}

func (h *echoHandler) Handle(_ context.Context, ev dialogue.Event) []dialogue.Block {
	var label string
	switch ev := ev.(type) {
	case dialogue.Message:
		label = "message:" + ev.Text
	case dialogue.Postback:
		label = "postback:" + ev.Data
	case dialogue.Follow:
		label = "follow"
	}

	h.mu.Lock()
	if h.seen == nil {
		h.seen = make(map[string][]string)
	}
	h.seen[ev.User()] = append(h.seen[ev.User()], label)
	h.mu.Unlock()

	return []dialogue.Block{dialogue.Text{Text: label}}
}

type recordingReplier struct {
	mu      sync.Mutex
	replies map[string][]Message
	err     error
}

func (r *recordingReplier) Reply(_ context.Context, token string, msgs []Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.replies == nil {
		r.replies = make(map[string][]Message)
	}
	r.replies[token] = msgs
	return r.err
}

func post(t *testing.T, h http.Handler, body, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body))
	if signature != "" {
		req.Header.Set(signatureHeader, signature)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	s := NewServer(testSecret, &echoHandler{}, &recordingReplier{}, nil)

	for path, want := range map[string]string{"/": healthText, "/webhook": webhookText} {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, want, w.Body.String(), path)
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := &echoHandler{}
	s := NewServer(testSecret, h, &recordingReplier{}, nil)
	body := `{"events":[{"type":"follow","replyToken":"r","source":{"userId":"U1"}}]}`

	assert.Equal(t, http.StatusBadRequest, post(t, s, body, "").Code)
	assert.Equal(t, http.StatusBadRequest, post(t, s, body, Sign("other-secret", []byte(body))).Code)
	assert.Equal(t, http.StatusBadRequest, post(t, s, body, "%%%").Code)
	assert.Empty(t, h.seen)
}

func TestWebhookRejectsMalformedJSON(t *testing.T) {
	s := NewServer(testSecret, &echoHandler{}, &recordingReplier{}, nil)
	body := `{"events":[`
	assert.Equal(t, http.StatusBadRequest, post(t, s, body, Sign(testSecret, []byte(body))).Code)
}

func TestWebhookDispatchesAndReplies(t *testing.T) {
	h := &echoHandler{}
	r := &recordingReplier{}
	s := NewServer(testSecret, h, r, nil)

	body := `{"destination":"x","events":[
	  {"type":"message","replyToken":"t1","source":{"userId":"U1"},"message":{"type":"text","text":"你好"}},
	  {"type":"message","replyToken":"t2","source":{"userId":"U2"},"message":{"type":"text","text":"台北天氣"}},
	  {"type":"postback","replyToken":"t3","source":{"userId":"U1"},"postback":{"data":"survey_0_1"}},
	  {"type":"follow","replyToken":"t4","source":{"userId":"U1"}}
	]}`

	w := post(t, s, body, Sign(testSecret, []byte(body)))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, []string{"message:你好", "postback:survey_0_1", "follow"}, h.seen["U1"])
	assert.Equal(t, []string{"message:台北天氣"}, h.seen["U2"])

	require.Len(t, r.replies, 4)
	assert.Equal(t, "postback:survey_0_1", r.replies["t3"][0]["text"])
}

func TestWebhookLogsReplyFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := &recordingReplier{err: errors.New("boom")}
	s := NewServer(testSecret, &echoHandler{}, r, zap.New(core))

	body := `{"events":[{"type":"follow","replyToken":"t","source":{"userId":"U1"}}]}`
	w := post(t, s, body, Sign(testSecret, []byte(body)))

	assert.Equal(t, http.StatusOK, w.Code)
	entries := logs.FilterMessage("reply failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "U1", entries[0].ContextMap()["user_id"])
}

func TestWebhookFlagsRejectedToken(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := &recordingReplier{err: fmt.Errorf("sending reply: %w", &httpclient.StatusError{Code: http.StatusUnauthorized})}
	s := NewServer(testSecret, &echoHandler{}, r, zap.New(core))

	body := `{"events":[{"type":"follow","replyToken":"t","source":{"userId":"U1"}}]}`
	require.Equal(t, http.StatusOK, post(t, s, body, Sign(testSecret, []byte(body))).Code)

	assert.Equal(t, 1, logs.FilterMessage("reply rejected, check the channel access token").Len())
	assert.Zero(t, logs.FilterMessage("reply failed").Len())
}

func TestWebhookSkipsEventsWithoutReplyToken(t *testing.T) {
	r := &recordingReplier{}
	s := NewServer(testSecret, &echoHandler{}, r, nil)

	body := `{"events":[{"type":"follow","source":{"userId":"U1"}}]}`
	require.Equal(t, http.StatusOK, post(t, s, body, Sign(testSecret, []byte(body))).Code)
	assert.Empty(t, r.replies)
}

func TestWebhookWithRouter(t *testing.T) {
	router := dialogue.NewRouter(dialogue.Deps{Store: testutil.NewTestStore(t, store.WithClock(testutil.FixedClock(time.Now())))})
	r := &recordingReplier{}
	s := NewServer(testSecret, router, r, nil)

	body := `{"events":[{"type":"message","replyToken":"t","source":{"userId":"U1"},"message":{"type":"text","text":"你好"}}]}`
	require.Equal(t, http.StatusOK, post(t, s, body, Sign(testSecret, []byte(body))).Code)

	msgs := r.replies["t"]
	require.Len(t, msgs, 2)
	assert.Equal(t, "text", msgs[0]["type"])
	assert.Equal(t, "template", msgs[1]["type"])
}

func TestClientReply(t *testing.T) {
	var (
		mu    sync.Mutex
		got   string
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		assert.Equal(t, replyPath, req.URL.Path)
		assert.Equal(t, "Bearer token", req.Header.Get("Authorization"))
		data, err := io.ReadAll(req.Body)
		assert.NoError(t, err)
		got = string(data)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "token", time.Second)

	require.NoError(t, c.Reply(context.Background(), "rt", nil))
	mu.Lock()
	assert.Zero(t, calls)
	mu.Unlock()

	msgs := make([]Message, 0, 7)
	for i := 0; i < 7; i++ {
		msgs = append(msgs, Message{"type": "text", "text": fmt.Sprint(i)})
	}
	require.NoError(t, c.Reply(context.Background(), "rt", msgs))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
	assert.Equal(t, "rt", gjson.Get(got, "replyToken").String())
	assert.Equal(t, int64(maxReplyMessages), gjson.Get(got, "messages.#").Int())
}

func TestClientReplyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid reply token"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "token", time.Second).Reply(context.Background(), "rt", []Message{{"type": "text", "text": "x"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid reply token")
}

func TestRunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	s := NewServer(testSecret, &echoHandler{}, &recordingReplier{}, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
