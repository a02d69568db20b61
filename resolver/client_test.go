package resolver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/log"
	"github.com/stretchr/testify/require"
)

const doc = `{
  "@context": "https://w3id.org/did/v1",
  "id": "did:sov:WRfXPg8dantKVubE3HX8pw",
  "service": [{"id": "#agent", "type": "did-communication", "serviceEndpoint": "https://agent.example.com"}]
}`

const resolutionEnvelope = `{
  "@context": "https://w3id.org/did-resolution/v1",
  "didDocument": ` + doc + `
}`

func newTestClient(t *testing.T, baseURL string, timeout time.Duration, cacheSize int) *Client {
	cfg := &domain.Config{
		Args:        &domain.Args{Label: `test-agent`},
		ResolverURL: baseURL,
		Timeout:     timeout,
		CacheSize:   cacheSize,
		CacheTTL:    time.Minute,
	}

	c, err := NewClient(cfg, log.NewLogger(false))
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidURL(t *testing.T) {
	cfg := &domain.Config{Args: &domain.Args{}, ResolverURL: `http://invalid url`}
	_, err := NewClient(cfg, log.NewLogger(false))
	require.Error(t, err)

	cfg.ResolverURL = `ftp://resolver.local`
	_, err = NewClient(cfg, log.NewLogger(false))
	require.Error(t, err)
	require.Contains(t, err.Error(), `unsupported scheme`)
}

func TestResolve_Document(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		require.Equal(t, `/1.0/identifiers/did:sov:WRfXPg8dantKVubE3HX8pw`, req.URL.Path)
		require.Equal(t, didLDJson, req.Header.Get(`Accept`))
		res.WriteHeader(http.StatusOK)
		_, err := res.Write([]byte(doc))
		require.NoError(t, err)
	}))
	defer testServer.Close()

	c := newTestClient(t, testServer.URL, time.Second, 0)
	res := c.Resolve(context.Background(), `did:sov:WRfXPg8dantKVubE3HX8pw`)
	require.True(t, res.Success)
	require.JSONEq(t, doc, string(res.Document))
}

func TestResolve_ResolutionEnvelope(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		res.WriteHeader(http.StatusOK)
		_, err := res.Write([]byte(resolutionEnvelope))
		require.NoError(t, err)
	}))
	defer testServer.Close()

	c := newTestClient(t, testServer.URL, time.Second, 0)
	res := c.Resolve(context.Background(), `did:sov:WRfXPg8dantKVubE3HX8pw`)
	require.True(t, res.Success)
	require.JSONEq(t, doc, string(res.Document))
}

func TestResolve_RejectedDid(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		res.WriteHeader(http.StatusNotFound)
	}))
	defer testServer.Close()

	c := newTestClient(t, testServer.URL, time.Second, 0)
	res := c.Resolve(context.Background(), `did:example:unknown`)
	require.False(t, res.Success)
	require.Equal(t, domain.FailInvalidDid, res.Kind)
}

func TestResolve_UnparseableDocument(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		res.WriteHeader(http.StatusOK)
		_, err := res.Write([]byte(`not json at all`))
		require.NoError(t, err)
	}))
	defer testServer.Close()

	c := newTestClient(t, testServer.URL, time.Second, 0)
	res := c.Resolve(context.Background(), `did:example:123`)
	require.False(t, res.Success)
	require.Equal(t, domain.FailInvalidDid, res.Kind)
}

func TestResolve_ServerFault(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		res.WriteHeader(http.StatusInternalServerError)
	}))
	defer testServer.Close()

	c := newTestClient(t, testServer.URL, time.Second, 0)
	res := c.Resolve(context.Background(), `did:example:123`)
	require.False(t, res.Success)
	require.Equal(t, domain.FailResolverUnavailable, res.Kind)
}

func TestResolve_NetworkError(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		res.WriteHeader(http.StatusOK)
	}))
	testServer.Close()

	c := newTestClient(t, testServer.URL, time.Second, 0)
	res := c.Resolve(context.Background(), `did:example:123`)
	require.False(t, res.Success)
	require.Equal(t, domain.FailResolverUnavailable, res.Kind)
}

func TestResolve_Timeout(t *testing.T) {
	release := make(chan struct{})
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		<-release
		res.WriteHeader(http.StatusOK)
	}))
	defer func() {
		close(release)
		testServer.Close()
	}()

	c := newTestClient(t, testServer.URL, 50*time.Millisecond, 0)
	start := time.Now()
	res := c.Resolve(context.Background(), `did:example:123`)
	require.False(t, res.Success)
	require.Equal(t, domain.FailResolverUnavailable, res.Kind)
	require.Less(t, time.Since(start), time.Second)
}

func TestResolve_Cache(t *testing.T) {
	var hits int32
	testServer := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&hits, 1)
		res.WriteHeader(http.StatusOK)
		_, err := res.Write([]byte(doc))
		require.NoError(t, err)
	}))
	defer testServer.Close()

	c := newTestClient(t, testServer.URL, time.Second, 10)
	for i := 0; i < 3; i++ {
		res := c.Resolve(context.Background(), `did:sov:WRfXPg8dantKVubE3HX8pw`)
		require.True(t, res.Success)
	}

	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestResolveURL_Placeholder(t *testing.T) {
	c := newTestClient(t, `http://resolver.local/resolve?did={did}`, time.Second, 0)
	require.Equal(t, `http://resolver.local/resolve?did=did:example:123`, c.resolveURL(`did:example:123`))
}
