package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/domain/messages"
	"github.com/YasiruR/didcomm-resolver/domain/models"
	"github.com/YasiruR/didcomm-resolver/domain/services"
	"github.com/google/uuid"
	"github.com/tryfix/log"
)

type streams struct {
	reqs, results, problems chan models.Message
}

// Agent drives the did-resolution relay protocol in both roles: it answers
// inbound resolve messages by querying the external resolver and relaying
// the outcome back, and it issues resolve messages to peer agents on behalf
// of local callers. Multiple resolutions may be in flight concurrently; the
// correlation store links each completion back to its originating request.
type Agent struct {
	label    string
	timeout  time.Duration
	policy   string
	resolver services.Resolver
	store    services.Store
	client   services.Client
	outChan  chan string
	log      log.Logger

	wtrLock sync.Mutex
	waiters map[string]chan models.Result

	closeOnce sync.Once
	done      chan struct{}
}

func NewAgent(c *domain.Container) *Agent {
	a := &Agent{
		label:    c.Cfg.Label,
		timeout:  c.Cfg.Timeout,
		policy:   c.Cfg.TimeoutPolicy,
		resolver: c.Resolver,
		store:    c.Store,
		client:   c.Client,
		outChan:  c.OutChan,
		log:      c.Log,
		waiters:  map[string]chan models.Result{},
		done:     make(chan struct{}),
	}

	a.initHandlers(c.Server)
	go a.sweep(c.Cfg.SweepInterval, c.Cfg.StoreTTL)
	return a
}

func (a *Agent) initHandlers(serv services.Server) {
	// initializing message incoming streams for the agent
	s := &streams{
		reqs:     make(chan models.Message),
		results:  make(chan models.Message),
		problems: make(chan models.Message),
	}

	serv.AddHandler(models.TypResolveReq, s.reqs)
	serv.AddHandler(models.TypResolveRes, s.results)
	serv.AddHandler(models.TypProblemReport, s.problems)
	go a.listen(s)
}

func (a *Agent) listen(s *streams) {
	for {
		select {
		case m := <-s.reqs:
			if err := a.processResolveReq(m); err != nil {
				a.log.Error(err)
			}
		case m := <-s.results:
			if err := a.processResolveRes(m); err != nil {
				a.log.Error(err)
			}
		case m := <-s.problems:
			if err := a.processProblemReport(m); err != nil {
				a.log.Error(err)
			}
		case <-a.done:
			return
		}
	}
}

// processResolveReq validates the inbound request and registers it in the
// correlation store before handing the blocking lookup to its own
// goroutine, so ingestion of further messages is never stalled.
func (a *Agent) processResolveReq(msg models.Message) error {
	var req messages.ResolveRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		a.reportProblem(msg, fmt.Sprintf(`request could not be parsed - %v`, err))
		return fmt.Errorf(`unmarshalling resolve request failed - %v`, err)
	}

	if msg.Sender == `` {
		return fmt.Errorf(`resolve request (%s) carries no sender endpoint`, req.Id)
	}

	thId := req.Thread.ThId
	if thId == `` {
		thId = req.Id
	}

	// malformed dids are rejected locally without a lookup
	if err := validateDid(req.Did); err != nil {
		a.log.Debug(fmt.Sprintf(`rejecting resolve request (%s) - %v`, thId, err))
		return a.sendResult(msg.Sender, thId, models.Failed(domain.FailInvalidInput, err.Error()))
	}

	corrId := uuid.New().String()
	a.store.Put(corrId, models.PendingRequest{
		CorrelationId: corrId,
		ThId:          thId,
		Did:           req.Did,
		Sender:        msg.Sender,
		ReceivedAt:    time.Now(),
	})

	a.log.Trace(fmt.Sprintf(`resolve request accepted for %s (correlation: %s)`, req.Did, corrId))
	go a.resolve(corrId, req.Did)
	return nil
}

// resolve performs the lookup and relays the outcome to the requester
// recorded under corrId. A missing correlation entry means the request was
// already answered or expired, in which case the completion is dropped.
func (a *Agent) resolve(corrId, did string) {
	defer func() {
		// a faulty resolution must not take down concurrent ones
		if r := recover(); r != nil {
			a.log.Error(fmt.Sprintf(`resolution of %s panicked - %v`, did, r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	res := a.resolver.Resolve(ctx, did)

	pending, ok := a.store.Take(corrId)
	if !ok {
		a.log.Warn(fmt.Sprintf(`discarding completion for %s with no pending request (%s)`, did, corrId))
		return
	}

	if !res.Success && ctx.Err() != nil && a.policy == domain.PolicyDrop {
		a.log.Debug(fmt.Sprintf(`dropping timed-out resolution of %s silently (%s)`, did, corrId))
		return
	}

	if err := a.sendResult(pending.Sender, pending.ThId, res); err != nil {
		a.log.Error(fmt.Sprintf(`relaying resolution of %s to %s failed - %v`, did, pending.Sender, err))
	}
}

func (a *Agent) sendResult(endpoint, thId string, res models.Result) error {
	out := messages.ResolveResponse{
		Type:     messages.ResolveResultV09,
		Id:       uuid.New().String(),
		Thread:   messages.Thread{ThId: thId},
		SentTime: time.Now().Format(time.RFC3339),
	}

	if res.Success {
		out.Result = messages.Result{Status: messages.StatusSuccess, Document: res.Document}
	} else {
		out.Result = messages.Result{Status: messages.StatusFailure, Kind: res.Kind, Message: res.Message}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf(`marshalling resolve result failed - %v`, err)
	}

	if _, err = a.client.Send(models.TypResolveRes, data, endpoint); err != nil {
		return fmt.Errorf(`sending resolve result failed - %v`, err)
	}

	return nil
}

// reportProblem replies with a problem report when the request is too
// malformed to build a regular result for. Thread and id are recovered
// with a loose parse where possible.
func (a *Agent) reportProblem(msg models.Message, explain string) {
	if msg.Sender == `` {
		return
	}

	var partial struct {
		Id     string          `json:"@id"`
		Thread messages.Thread `json:"~thread"`
	}
	_ = json.Unmarshal(msg.Data, &partial)

	thId := partial.Thread.ThId
	if thId == `` {
		thId = partial.Id
	}

	report := messages.ProblemReport{
		Type:    messages.ProblemReportV09,
		Id:      uuid.New().String(),
		Thread:  messages.Thread{ThId: thId},
		Explain: explain,
	}

	data, err := json.Marshal(report)
	if err != nil {
		a.log.Error(fmt.Sprintf(`marshalling problem report failed - %v`, err))
		return
	}

	if _, err = a.client.Send(models.TypProblemReport, data, msg.Sender); err != nil {
		a.log.Error(fmt.Sprintf(`sending problem report to %s failed - %v`, msg.Sender, err))
	}
}

// sweep reclaims pending entries past their ttl so that abandoned requests
// do not accumulate. A lookup still in flight for a swept entry completes
// into a no-op.
func (a *Agent) sweep(interval, ttl time.Duration) {
	tckr := time.NewTicker(interval)
	defer tckr.Stop()

	for {
		select {
		case <-a.done:
			return
		case <-tckr.C:
			for _, id := range a.store.SweepExpired(time.Now(), ttl) {
				a.log.Debug(fmt.Sprintf(`expired pending resolution removed (%s)`, id))
			}
		}
	}
}

func (a *Agent) Pending() int {
	return a.store.Pending()
}

func (a *Agent) Close() error {
	a.closeOnce.Do(func() {
		close(a.done)
	})
	return nil
}

func (a *Agent) notify(text string) {
	select {
	case a.outChan <- text:
	default:
	}
}

func validateDid(did string) error {
	if did == `` {
		return fmt.Errorf(`did must not be empty`)
	}

	parts := strings.SplitN(did, `:`, 3)
	if len(parts) != 3 || parts[0] != `did` || parts[1] == `` || parts[2] == `` {
		return fmt.Errorf(`invalid did syntax (%s)`, did)
	}

	return nil
}
