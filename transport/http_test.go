package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/domain/models"
	"github.com/YasiruR/didcomm-resolver/log"
	"github.com/stretchr/testify/require"
)

func newTestHTTP() *HTTP {
	return &HTTP{
		hostname: `http://requester:8002`,
		client:   &http.Client{},
		handlers: make(map[models.MsgType]chan models.Message),
		log:      log.NewLogger(false),
	}
}

func TestHTTP_Send(t *testing.T) {
	received := make(chan *http.Request, 1)
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		received <- req.Clone(req.Context())
		res.WriteHeader(http.StatusAccepted)
	}))
	defer testServer.Close()

	h := newTestHTTP()
	res, err := h.Send(models.TypResolveReq, []byte(`{"did": "did:example:123"}`), testServer.URL)
	require.NoError(t, err)
	require.Equal(t, successRes, res)

	req := <-received
	require.Equal(t, domain.MessageEndpoint, req.URL.Path)
	require.Equal(t, models.TypResolveReq.String(), req.Header.Get(typeHeader))
	require.Equal(t, `http://requester:8002`, req.Header.Get(senderHeader))
}

func TestHTTP_SendRejected(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		res.WriteHeader(http.StatusInternalServerError)
	}))
	defer testServer.Close()

	h := newTestHTTP()
	_, err := h.Send(models.TypResolveReq, []byte(`{}`), testServer.URL)
	require.Error(t, err)
	require.Contains(t, err.Error(), `invalid status code`)
}

func TestHTTP_HandleInbound(t *testing.T) {
	h := newTestHTTP()
	notifier := make(chan models.Message, 1)
	h.AddHandler(models.TypResolveReq, notifier)

	req := httptest.NewRequest(http.MethodPost, domain.MessageEndpoint, strings.NewReader(`{"did": "did:example:123"}`))
	req.Header.Set(typeHeader, models.TypResolveReq.String())
	req.Header.Set(senderHeader, `http://peer:8001`)

	rec := httptest.NewRecorder()
	h.handleInbound(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	msg := <-notifier
	require.Equal(t, models.TypResolveReq, msg.Type)
	require.Equal(t, `http://peer:8001`, msg.Sender)
	require.JSONEq(t, `{"did": "did:example:123"}`, string(msg.Data))
}

func TestHTTP_HandleInbound_UnknownType(t *testing.T) {
	h := newTestHTTP()

	req := httptest.NewRequest(http.MethodPost, domain.MessageEndpoint, strings.NewReader(`{}`))
	req.Header.Set(typeHeader, `gossip`)

	rec := httptest.NewRecorder()
	h.handleInbound(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHTTP_HandleInbound_NoHandler(t *testing.T) {
	h := newTestHTTP()

	req := httptest.NewRequest(http.MethodPost, domain.MessageEndpoint, strings.NewReader(`{}`))
	req.Header.Set(typeHeader, models.TypResolveRes.String())

	rec := httptest.NewRecorder()
	h.handleInbound(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
