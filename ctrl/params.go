package ctrl

const (
	PingEndpoint    = `/ping`
	ResolveEndpoint = `/resolve`
	PendingEndpoint = `/pending`
	KillEndpoint    = `/kill`
)

type reqResolve struct {
	Endpoint string `json:"endpoint"`
	Did      string `json:"did"`
}

type resPending struct {
	Pending int `json:"pending"`
}

type resError struct {
	Error string `json:"error"`
}
