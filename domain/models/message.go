package models

import "fmt"

type MsgType int

const (
	TypResolveReq MsgType = iota
	TypResolveRes
	TypProblemReport
)

func (m MsgType) String() string {
	switch m {
	case TypResolveReq:
		return `resolve`
	case TypResolveRes:
		return `resolve_result`
	case TypProblemReport:
		return `problem-report`
	default:
		return `undefined`
	}
}

func MsgTypeByName(name string) (MsgType, error) {
	switch name {
	case `resolve`:
		return TypResolveReq, nil
	case `resolve_result`:
		return TypResolveRes, nil
	case `problem-report`:
		return TypProblemReport, nil
	default:
		return 0, fmt.Errorf(`unknown message type (%s)`, name)
	}
}

// Message is a transport-level protocol message. Sender carries the
// endpoint advertised by the transmitting agent so that asynchronous
// replies can be routed back without a standing connection.
type Message struct {
	Type   MsgType
	Sender string
	Data   []byte
}
