package main

import (
	"fmt"
	"net"
	"time"

	"github.com/YasiruR/didcomm-resolver/ctrl"
	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/log"
	"github.com/YasiruR/didcomm-resolver/relay"
	"github.com/YasiruR/didcomm-resolver/resolver"
	"github.com/YasiruR/didcomm-resolver/store"
	"github.com/YasiruR/didcomm-resolver/transport"
	zmqtr "github.com/YasiruR/didcomm-resolver/transport/zmq"
	"github.com/cenkalti/backoff/v4"
	goZmq "github.com/pebbe/zmq4"
)

func initContainer(args *domain.Args) *domain.Container {
	logger := log.NewLogger(args.Verbose)

	cfg, err := domain.NewConfig(args)
	if err != nil {
		logger.Fatal(err)
	}

	c := &domain.Container{
		Cfg:     cfg,
		Log:     logger,
		OutChan: make(chan string, 16),
	}

	waitForHosts(cfg.WaitHosts, logger)

	rc, err := resolver.NewClient(cfg, logger)
	if err != nil {
		logger.Fatal(err)
	}
	c.Resolver = rc
	c.Store = store.NewCorrelation()

	switch cfg.Transport {
	case domain.TrHTTP:
		h := transport.NewHTTP(c)
		c.Client, c.Server = h, h
	default:
		zmqCtx, err := goZmq.NewContext()
		if err != nil {
			logger.Fatal(fmt.Sprintf(`zmq context initialization failed - %v`, err))
		}

		srvr, err := zmqtr.NewServer(zmqCtx, c)
		if err != nil {
			logger.Fatal(err)
		}

		clnt, err := zmqtr.NewClient(zmqCtx, cfg, logger)
		if err != nil {
			logger.Fatal(err)
		}

		c.Client, c.Server = clnt, srvr
	}

	c.Agent = relay.NewAgent(c)

	if cfg.CtrlPort != 0 {
		ctrl.Start(c)
	}

	return c
}

// waitForHosts blocks until every dependent host accepts a tcp connection,
// so an agent started before its resolver backend or peer does not fail on
// the first request.
func waitForHosts(hosts []string, logger *log.Logger) {
	for _, host := range hosts {
		bo := backoff.NewExponentialBackOff()
		bo.MaxElapsedTime = time.Minute

		if err := backoff.Retry(func() error {
			conn, err := net.DialTimeout(`tcp`, host, 2*time.Second)
			if err != nil {
				return err
			}
			return conn.Close()
		}, bo); err != nil {
			logger.Fatal(fmt.Sprintf(`dependent host %s is not reachable - %v`, host, err))
		}

		logger.Debug(fmt.Sprintf(`dependent host %s is reachable`, host))
	}
}

func shutdown(c *domain.Container) {
	if err := c.Stop(); err != nil {
		c.Log.Error(err)
	}
}
