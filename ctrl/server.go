package ctrl

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/gorilla/mux"
	"github.com/tryfix/log"
)

// handler exposes the agent to external drivers (eg: a black-box test
// runner) over a plain http api, next to the didcomm transport.
type handler struct {
	c   *domain.Container
	log log.Logger
}

func Start(c *domain.Container) {
	h := handler{
		c:   c,
		log: c.Log,
	}

	r := mux.NewRouter()
	r.HandleFunc(PingEndpoint, h.handlePing).Methods(http.MethodGet)
	r.HandleFunc(ResolveEndpoint, h.handleResolve).Methods(http.MethodPost)
	r.HandleFunc(PendingEndpoint, h.handlePending).Methods(http.MethodGet)
	r.HandleFunc(KillEndpoint, h.handleKill).Methods(http.MethodPost)

	go func(ctrlPort int, r *mux.Router) {
		if err := http.ListenAndServe(`:`+strconv.Itoa(ctrlPort), r); err != nil {
			h.log.Fatal(`ctrl`, fmt.Sprintf(`http server initialization failed - %v`, err))
		}
	}(c.Cfg.CtrlPort, r)

	c.Log.Info(fmt.Sprintf(`control api initialized and started listening on %d`, c.Cfg.CtrlPort))
}

func (h *handler) handlePing(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`pong`)); err != nil {
		h.log.Error(`ctrl`, err)
	}
}

// handleResolve runs the requester role on behalf of the caller and blocks
// until the relayed resolution arrives or times out.
func (h *handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req reqResolve
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error(`ctrl`, fmt.Sprintf(`parsing resolve request failed - %v`, err))
		h.writeError(w, http.StatusBadRequest, `invalid request body`)
		return
	}

	if req.Endpoint == `` || req.Did == `` {
		h.writeError(w, http.StatusBadRequest, `endpoint and did must be provided`)
		return
	}

	doc, err := h.c.Agent.Resolve(req.Endpoint, req.Did)
	if err != nil {
		h.log.Error(`ctrl`, fmt.Sprintf(`resolution via %s failed - %v`, req.Endpoint, err))
		h.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	w.Header().Set(`Content-Type`, `application/json`)
	if _, err = w.Write(doc); err != nil {
		h.log.Error(`ctrl`, err)
	}
}

func (h *handler) handlePending(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(`Content-Type`, `application/json`)
	if err := json.NewEncoder(w).Encode(resPending{Pending: h.c.Agent.Pending()}); err != nil {
		h.log.Error(`ctrl`, err)
	}
}

func (h *handler) handleKill(_ http.ResponseWriter, _ *http.Request) {
	if err := h.c.Stop(); err != nil {
		h.log.Error(`ctrl`, fmt.Sprintf(`terminating container failed - %v`, err))
	}
}

func (h *handler) writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set(`Content-Type`, `application/json`)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resError{Error: msg}); err != nil {
		h.log.Error(`ctrl`, err)
	}
}
