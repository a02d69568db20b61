package transport

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/domain/models"
	"github.com/gorilla/mux"
	"github.com/tryfix/log"
)

const (
	typeHeader   = `X-Message-Type`
	senderHeader = `X-Message-Sender`
	successRes   = `ok`
)

// HTTP is an alternative transport to zmq where each protocol message is
// delivered as a single POST. Message type and sender travel as headers so
// the payload stays encoding-agnostic like the zmq metadata frame.
type HTTP struct {
	addr     string
	hostname string
	router   *mux.Router
	srv      *http.Server
	client   *http.Client
	handlers map[models.MsgType]chan models.Message
	log      log.Logger
}

func NewHTTP(c *domain.Container) *HTTP {
	return &HTTP{
		addr:     c.Cfg.Endpoint,
		hostname: c.Cfg.Hostname,
		client:   &http.Client{},
		router:   mux.NewRouter(),
		handlers: make(map[models.MsgType]chan models.Message),
		log:      c.Log,
	}
}

func (h *HTTP) AddHandler(typ models.MsgType, notifier chan models.Message) {
	h.handlers[typ] = notifier
}

func (h *HTTP) RemoveHandler(typ models.MsgType) {
	delete(h.handlers, typ)
}

func (h *HTTP) Start() error {
	h.router.HandleFunc(domain.MessageEndpoint, h.handleInbound).Methods(http.MethodPost)
	h.srv = &http.Server{Addr: h.addr, Handler: h.router}

	if err := h.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf(`http server initialization failed - %v`, err)
	}

	return nil
}

func (h *HTTP) Send(typ models.MsgType, data []byte, endpoint string) (string, error) {
	req, err := http.NewRequest(http.MethodPost, endpoint+domain.MessageEndpoint, bytes.NewBuffer(data))
	if err != nil {
		return ``, fmt.Errorf(`constructing request failed - %v`, err)
	}

	req.Header.Set(`Content-Type`, `application/json`)
	req.Header.Set(typeHeader, typ.String())
	req.Header.Set(senderHeader, h.hostname)

	res, err := h.client.Do(req)
	if err != nil {
		return ``, fmt.Errorf(`sending message to %s failed - %v`, endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK && res.StatusCode != http.StatusAccepted {
		return ``, fmt.Errorf(`invalid status code: %d`, res.StatusCode)
	}

	return successRes, nil
}

func (h *HTTP) handleInbound(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	data, err := ioutil.ReadAll(r.Body)
	if err != nil {
		h.log.Error(fmt.Sprintf(`reading inbound message body failed - %v`, err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	typ, err := models.MsgTypeByName(r.Header.Get(typeHeader))
	if err != nil {
		h.log.Error(fmt.Sprintf(`received a message with an unknown type (%s)`, r.Header.Get(typeHeader)))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	notifier, ok := h.handlers[typ]
	if !ok {
		h.log.Error(fmt.Sprintf(`no handler defined for the received message type (%s)`, typ))
		w.WriteHeader(http.StatusNotFound)
		return
	}

	notifier <- models.Message{Type: typ, Sender: r.Header.Get(senderHeader), Data: data}
	w.WriteHeader(http.StatusAccepted)
}

func (h *HTTP) Stop() error {
	if h.srv == nil {
		return nil
	}

	return h.srv.Close()
}

func (h *HTTP) Close() error {
	return nil
}
