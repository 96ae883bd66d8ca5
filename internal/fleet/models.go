package fleet

import (
	"encoding/json"

	"github.com/fleetops/fleetquery/internal/domain/entity"
)

// Response is the uniform envelope returned by the fleet manager API.
// Data is kept raw so each caller can decode the part it cares about
// into its own typed model.
type Response struct {
	Success    bool
	StatusCode int
	Message    string
	Data       json.RawMessage
}

// Stream message types pushed by the fleet manager on the campaign
// websocket.
const (
	MessageTypeResult = "result"
	MessageTypeTotals = "totals"
	MessageTypeStatus = "status"
	MessageTypeError  = "error"
)

const StatusFinished = "finished"

type StreamMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TotalsData revises the campaign host counts mid-stream.
type TotalsData struct {
	Count           int `json:"count"`
	Online          int `json:"online"`
	Offline         int `json:"offline"`
	MissingInAction int `json:"missing_in_action"`
}

type StatusData struct {
	Status string `json:"status"`
}

// ResultData is the payload of one "result" message: one host's rows
// for the campaign.
type ResultData struct {
	DistributedQueryExecutionID uint                `json:"distributed_query_execution_id"`
	Host                        ResultHost          `json:"host"`
	Rows                        []map[string]string `json:"rows"`
	Error                       *string             `json:"error"`
}

type ResultHost struct {
	ID       uint   `json:"id"`
	Hostname string `json:"hostname"`
}

func (d ResultData) ToEvent(campaignID uint) entity.ResultEvent {
	return entity.ResultEvent{
		CampaignID: campaignID,
		HostID:     d.Host.ID,
		Hostname:   d.Host.Hostname,
		Rows:       d.Rows,
		Error:      d.Error,
	}
}

// Request/response bodies for the endpoints the core uses.

type RunQueryRequest struct {
	Query    string         `json:"query"`
	Selected TargetSelector `json:"selected"`
}

type TargetSelector struct {
	Hosts  []uint `json:"hosts"`
	Labels []uint `json:"labels"`
	Teams  []uint `json:"teams"`
}

type RunQueryResponse struct {
	Campaign CampaignData `json:"campaign"`
}

type CampaignData struct {
	ID      uint            `json:"id"`
	Metrics CampaignMetrics `json:"Metrics"`
}

type CampaignMetrics struct {
	TotalHosts   int `json:"TotalHosts"`
	OnlineHosts  int `json:"OnlineHosts"`
	OfflineHosts int `json:"OfflineHosts"`
}

func (d CampaignData) ToEntity() entity.Campaign {
	return entity.Campaign{
		ID:           d.ID,
		TotalHosts:   d.Metrics.TotalHosts,
		OnlineHosts:  d.Metrics.OnlineHosts,
		OfflineHosts: d.Metrics.OfflineHosts,
	}
}

type ListHostsResponse struct {
	Hosts []HostData `json:"hosts"`
}

type HostData struct {
	ID       uint   `json:"id"`
	Hostname string `json:"hostname"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
}

type HostQueryRequest struct {
	Query string `json:"query"`
}

type HostQueryResponse struct {
	Rows []map[string]string `json:"rows"`
}
