package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/YasiruR/didcomm-resolver/domain"
	"github.com/YasiruR/didcomm-resolver/domain/services"
)

type runner struct {
	cfg      *domain.Config
	reader   *bufio.Reader
	agent    services.Agent
	resolver services.Resolver
	outChan  chan string
	disCmds  uint64 // flag to identify whether output cursor is on basic commands or not
}

func ParseArgs() *domain.Args {
	label := flag.String(`label`, ``, `agent's name`)
	port := flag.Int(`port`, 0, `agent's didcomm port`)
	ctrlPort := flag.Int(`ctrl_port`, 0, `port of the http control api (disabled if unset)`)
	conf := flag.String(`config`, ``, `path to a yaml config file`)
	verbose := flag.Bool(`v`, false, `enable verbose logs`)
	flag.Parse()

	return &domain.Args{
		Label:      *label,
		Port:       *port,
		CtrlPort:   *ctrlPort,
		ConfigFile: *conf,
		Verbose:    *verbose,
	}
}

func Init(c *domain.Container) {
	fmt.Printf("-> Agent initialized with following attributes: \n\t- Label: %s\n\t- Endpoint: %s\n\t- Resolver: %s\n",
		c.Cfg.Label, c.Cfg.Hostname, c.Cfg.ResolverURL)

	r := runner{cfg: c.Cfg, reader: bufio.NewReader(os.Stdin), agent: c.Agent, resolver: c.Resolver, outChan: c.OutChan}
	go r.listen()
	r.basicCommands()
}

func (r *runner) listen() {
	for text := range r.outChan {
		if atomic.LoadUint64(&r.disCmds) > 0 {
			fmt.Printf("\n-> %s\n   Command: ", text)
		} else {
			fmt.Printf("\n-> %s\n", text)
		}
	}
}

func (r *runner) basicCommands() {
basicCmds:
	fmt.Printf("\n-> Enter the corresponding number of a command to proceed;\n\t[1] Resolve a DID via a peer agent\n\t[2] Resolve a DID directly\n\t[3] Show pending resolutions\n\t[4] Exit\n   Command: ")
	atomic.AddUint64(&r.disCmds, 1)

	cmd, err := r.reader.ReadString('\n')
	if err != nil {
		fmt.Println("   Error: reading command number failed, please try again")
		goto basicCmds
	}

	switch strings.TrimSpace(cmd) {
	case "1":
		r.resolveViaPeer()
	case "2":
		r.resolveDirect()
	case "3":
		fmt.Printf("-> Pending resolutions: %d\n", r.agent.Pending())
	case "4":
		atomic.StoreUint64(&r.disCmds, 0)
		return
	default:
		if r.disCmds > 0 {
			fmt.Println("   Error: invalid command number, please try again")
			goto basicCmds
		}
	}

	atomic.StoreUint64(&r.disCmds, 0)
	r.basicCommands()
}

func (r *runner) resolveViaPeer() {
readEndpoint:
	fmt.Printf("\tPeer endpoint: ")
	endpoint, err := r.reader.ReadString('\n')
	if err != nil {
		fmt.Println("   Error: reading endpoint failed, please try again")
		goto readEndpoint
	}

readDid:
	fmt.Printf("\tDID: ")
	did, err := r.reader.ReadString('\n')
	if err != nil {
		fmt.Println("   Error: reading did failed, please try again")
		goto readDid
	}

	doc, err := r.agent.Resolve(strings.TrimSpace(endpoint), strings.TrimSpace(did))
	if err != nil {
		fmt.Printf("-> Error: %v\n", err)
		return
	}

	printDoc(doc)
}

func (r *runner) resolveDirect() {
readDid:
	fmt.Printf("\tDID: ")
	did, err := r.reader.ReadString('\n')
	if err != nil {
		fmt.Println("   Error: reading did failed, please try again")
		goto readDid
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.Timeout)
	defer cancel()

	res := r.resolver.Resolve(ctx, strings.TrimSpace(did))
	if !res.Success {
		fmt.Printf("-> Error: resolution failed (%s) - %s\n", res.Kind, res.Message)
		return
	}

	printDoc(res.Document)
}

func printDoc(doc json.RawMessage) {
	var pretty map[string]any
	if err := json.Unmarshal(doc, &pretty); err != nil {
		fmt.Printf("-> DID document: %s\n", string(doc))
		return
	}

	out, err := json.MarshalIndent(pretty, ``, `  `)
	if err != nil {
		fmt.Printf("-> DID document: %s\n", string(doc))
		return
	}

	fmt.Printf("-> DID document:\n%s\n", string(out))
}
