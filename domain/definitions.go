package domain

const (
	MessageEndpoint = `/didcomm-message/`
)

// transports supported by the agent
const (
	TrZmq  = `zmq`
	TrHTTP = `http`
)

// policies for resolutions exceeding the lookup deadline
const (
	PolicyRespond = `respond`
	PolicyDrop    = `drop`
)

// failure kinds surfaced to the requester
const (
	FailInvalidInput        = `invalid-input`
	FailInvalidDid          = `invalid-did`
	FailResolverUnavailable = `resolver-unavailable`
)

const (
	MsgTerminate = `terminate`
)
