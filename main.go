package main

import (
	"fmt"

	"github.com/YasiruR/didcomm-resolver/cli"
)

func main() {
	args := cli.ParseArgs()
	c := initContainer(args)

	go func() {
		if err := c.Server.Start(); err != nil {
			c.Log.Fatal(fmt.Sprintf(`transport server failed - %v`, err))
		}
	}()

	defer shutdown(c)
	cli.Init(c)
}
