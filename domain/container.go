package domain

import (
	"fmt"
	"os"

	"github.com/YasiruR/didcomm-resolver/domain/services"
	"github.com/tryfix/log"
)

type Container struct {
	Cfg      *Config
	Resolver services.Resolver
	Store    services.Store
	Agent    services.Agent
	Client   services.Client
	Server   services.Server
	OutChan  chan string
	Log      log.Logger
}

func (c *Container) Stop() error {
	if err := c.Agent.Close(); err != nil {
		return fmt.Errorf(`agent shutdown failed - %v`, err)
	}

	if err := c.Client.Close(); err != nil {
		return fmt.Errorf(`transport client shutdown failed - %v`, err)
	}

	if err := c.Server.Stop(); err != nil {
		return fmt.Errorf(`transport server shutdown failed - %v`, err)
	}

	c.Log.Info(`graceful shutdown of agent completed successfully`)
	os.Exit(0)
	return nil
}
