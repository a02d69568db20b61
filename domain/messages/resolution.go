package messages

import "encoding/json"

const (
	ResolutionV09    = `https://didcomm.org/did_resolution/0.9`
	ResolveV09       = ResolutionV09 + `/resolve`
	ResolveResultV09 = ResolutionV09 + `/resolve_result`
	ProblemReportV09 = ResolutionV09 + `/problem-report`
)

const (
	StatusSuccess = `success`
	StatusFailure = `failure`
)

type Thread struct {
	ThId string `json:"thid"`
}

type ResolveRequest struct {
	Type     string `json:"@type"`
	Id       string `json:"@id"`
	Thread   Thread `json:"~thread"`
	SentTime string `json:"sent_time,omitempty"`
	Did      string `json:"did"`
}

type Result struct {
	Status   string          `json:"status"`
	Document json.RawMessage `json:"document,omitempty"`
	Kind     string          `json:"kind,omitempty"`
	Message  string          `json:"message,omitempty"`
}

// ResolveResponse echoes the thread id of the originating request so the
// requester can correlate it regardless of delivery order.
type ResolveResponse struct {
	Type     string `json:"@type"`
	Id       string `json:"@id"`
	Thread   Thread `json:"~thread"`
	SentTime string `json:"sent_time,omitempty"`
	Result   Result `json:"result"`
}

type ProblemReport struct {
	Type    string `json:"@type"`
	Id      string `json:"@id"`
	Thread  Thread `json:"~thread"`
	Explain string `json:"explain"`
}
