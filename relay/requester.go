package relay

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/domain/messages"
	"github.com/YasiruR/didcomm-resolver/domain/models"
	"github.com/google/uuid"
)

// Resolve sends a resolve message to the agent at endpoint and blocks until
// the correlated result arrives or the deadline passes. The thread id of
// the outbound request is the sole token matching the asynchronous reply,
// responses of concurrent calls may arrive in any order.
func (a *Agent) Resolve(endpoint, did string) (json.RawMessage, error) {
	req := messages.ResolveRequest{
		Type:     messages.ResolveV09,
		Id:       uuid.New().String(),
		SentTime: time.Now().Format(time.RFC3339),
		Did:      did,
	}
	req.Thread.ThId = req.Id

	resChan := make(chan models.Result, 1)
	a.addWaiter(req.Id, resChan)
	defer a.removeWaiter(req.Id)

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf(`marshalling resolve request failed - %v`, err)
	}

	if _, err = a.client.Send(models.TypResolveReq, data, endpoint); err != nil {
		return nil, fmt.Errorf(`sending resolve request to %s failed - %v`, endpoint, err)
	}

	// resolver-side lookups are bounded by the same timeout, the extra
	// second covers transport latency
	select {
	case res := <-resChan:
		if !res.Success {
			return nil, fmt.Errorf(`resolution of %s failed (%s) - %s`, did, res.Kind, res.Message)
		}
		return res.Document, nil
	case <-time.After(a.timeout + time.Second):
		return nil, fmt.Errorf(`no resolution received for %s within %v`, did, a.timeout+time.Second)
	}
}

func (a *Agent) processResolveRes(msg models.Message) error {
	var res messages.ResolveResponse
	if err := json.Unmarshal(msg.Data, &res); err != nil {
		return fmt.Errorf(`unmarshalling resolve result failed - %v`, err)
	}

	waiter, ok := a.waiter(res.Thread.ThId)
	if !ok {
		// nobody is waiting; either a duplicate or the caller gave up
		a.log.Warn(fmt.Sprintf(`discarding resolve result with unknown thread id (%s)`, res.Thread.ThId))
		return nil
	}

	var result models.Result
	if res.Result.Status == messages.StatusSuccess {
		result = models.Resolved(res.Result.Document)
	} else {
		result = models.Failed(res.Result.Kind, res.Result.Message)
	}

	select {
	case waiter <- result:
	default: // a duplicate result for the same thread must not block the loop
	}

	a.notify(fmt.Sprintf(`Resolution result received (thread: %s, status: %s)`, res.Thread.ThId, res.Result.Status))
	return nil
}

func (a *Agent) processProblemReport(msg models.Message) error {
	var report messages.ProblemReport
	if err := json.Unmarshal(msg.Data, &report); err != nil {
		return fmt.Errorf(`unmarshalling problem report failed - %v`, err)
	}

	a.log.Warn(fmt.Sprintf(`received problem report (thread: %s) - %s`, report.Thread.ThId, report.Explain))

	waiter, ok := a.waiter(report.Thread.ThId)
	if !ok {
		return nil
	}

	select {
	case waiter <- models.Failed(domain.FailInvalidDid, report.Explain):
	default:
	}

	return nil
}

func (a *Agent) addWaiter(thId string, resChan chan models.Result) {
	a.wtrLock.Lock()
	defer a.wtrLock.Unlock()
	a.waiters[thId] = resChan
}

func (a *Agent) removeWaiter(thId string) {
	a.wtrLock.Lock()
	defer a.wtrLock.Unlock()
	delete(a.waiters, thId)
}

func (a *Agent) waiter(thId string) (chan models.Result, bool) {
	a.wtrLock.Lock()
	defer a.wtrLock.Unlock()
	resChan, ok := a.waiters[thId]
	return resChan, ok
}
