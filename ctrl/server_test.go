package ctrl

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/log"
	"github.com/stretchr/testify/require"
)

var errResolution = errors.New(`resolution of did:example:123 failed`)

type stubAgent struct {
	doc     json.RawMessage
	err     error
	pending int
}

func (s *stubAgent) Resolve(_, _ string) (json.RawMessage, error) { return s.doc, s.err }
func (s *stubAgent) Pending() int                                 { return s.pending }
func (s *stubAgent) Close() error                                 { return nil }

func newTestHandler(agent *stubAgent) *handler {
	logger := log.NewLogger(false)
	return &handler{
		c:   &domain.Container{Agent: agent, Log: logger},
		log: logger,
	}
}

func TestHandlePing(t *testing.T) {
	h := newTestHandler(&stubAgent{})
	rec := httptest.NewRecorder()
	h.handlePing(rec, httptest.NewRequest(http.MethodGet, PingEndpoint, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `pong`, rec.Body.String())
}

func TestHandleResolve(t *testing.T) {
	doc := json.RawMessage(`{"id": "did:example:123"}`)
	h := newTestHandler(&stubAgent{doc: doc})

	body, err := json.Marshal(reqResolve{Endpoint: `tcp://resolver:8001`, Did: `did:example:123`})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.handleResolve(rec, httptest.NewRequest(http.MethodPost, ResolveEndpoint, bytes.NewBuffer(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, string(doc), rec.Body.String())
}

func TestHandleResolve_MissingParams(t *testing.T) {
	h := newTestHandler(&stubAgent{})

	for _, body := range []string{`{}`, `{"did": "did:example:123"}`, `{"endpoint": "tcp://resolver:8001"}`, `not json`} {
		rec := httptest.NewRecorder()
		h.handleResolve(rec, httptest.NewRequest(http.MethodPost, ResolveEndpoint, bytes.NewBufferString(body)))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestHandleResolve_AgentFailure(t *testing.T) {
	h := newTestHandler(&stubAgent{err: errResolution})

	body, err := json.Marshal(reqResolve{Endpoint: `tcp://resolver:8001`, Did: `did:example:123`})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.handleResolve(rec, httptest.NewRequest(http.MethodPost, ResolveEndpoint, bytes.NewBuffer(body)))

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var res resError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, errResolution.Error(), res.Error)
}

func TestHandlePending(t *testing.T) {
	h := newTestHandler(&stubAgent{pending: 3})

	rec := httptest.NewRecorder()
	h.handlePending(rec, httptest.NewRequest(http.MethodGet, PendingEndpoint, nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var res resPending
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, 3, res.Pending)
}
