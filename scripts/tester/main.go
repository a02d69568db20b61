package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/tryfix/log"
)

// black-box driver for a running requester/resolver agent pair. It talks to
// the requester's control api only, so the didcomm leg between the agents is
// exercised end to end.

type reqResolve struct {
	Endpoint string `json:"endpoint"`
	Did      string `json:"did"`
}

func main() {
	requester := flag.String(`requester`, `http://localhost:9091`, `control api base url of the requester agent`)
	resolver := flag.String(`resolver`, `tcp://localhost:8001`, `didcomm endpoint of the resolver agent`)
	dids := flag.String(`dids`, `did:sov:WRfXPg8dantKVubE3HX8pw`, `comma-separated dids to resolve`)
	flag.Parse()

	waitForAgent(*requester)

	failed := 0
	for _, did := range strings.Split(*dids, `,`) {
		if err := resolve(*requester, *resolver, did); err != nil {
			log.Error(fmt.Sprintf(`resolving %s failed - %v`, did, err))
			failed++
			continue
		}
		log.Info(fmt.Sprintf(`resolved %s successfully`, did))
	}

	// a malformed did must be rejected without reaching the backend
	if err := resolve(*requester, *resolver, `not-a-did`); err == nil {
		log.Error(`malformed did was resolved successfully`)
		failed++
	} else {
		log.Info(`malformed did rejected as expected`)
	}

	if failed > 0 {
		log.Fatal(fmt.Sprintf(`%d test(s) failed`, failed))
	}

	log.Info(`all tests passed`)
}

func waitForAgent(ctrlURL string) {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute

	if err := backoff.Retry(func() error {
		res, err := http.Get(ctrlURL + `/ping`)
		if err != nil {
			return err
		}
		defer res.Body.Close()

		if res.StatusCode != http.StatusOK {
			return fmt.Errorf(`ping responded with status %d`, res.StatusCode)
		}
		return nil
	}, bo); err != nil {
		log.Fatal(fmt.Sprintf(`requester agent is not reachable at %s - %v`, ctrlURL, err))
	}
}

func resolve(ctrlURL, endpoint, did string) error {
	data, err := json.Marshal(reqResolve{Endpoint: endpoint, Did: did})
	if err != nil {
		return fmt.Errorf(`marshalling request failed - %v`, err)
	}

	res, err := http.Post(ctrlURL+`/resolve`, `application/json`, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf(`resolve request failed - %v`, err)
	}
	defer res.Body.Close()

	body, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf(`reading response failed - %v`, err)
	}

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf(`resolve responded with status %d - %s`, res.StatusCode, string(body))
	}

	var doc map[string]any
	if err = json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf(`response is not a json document - %v`, err)
	}

	return nil
}
