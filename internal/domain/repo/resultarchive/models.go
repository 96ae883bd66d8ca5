package resultarchive

import (
	"time"

	"github.com/fleetops/fleetquery/internal/domain/entity"
)

type ArchivedRun struct {
	ArchiveContext ArchiveContext `json:"archiveContext"`
	Run            Run            `json:"run"`
}

type ArchiveContext struct {
	Component Component `json:"component"`
	Time      time.Time `json:"time"`
	Host      string    `json:"host"`
}

type Component struct {
	Branch   string `json:"branch"`
	Revision string `json:"revision"`
}

type Run struct {
	CampaignID          uint                 `json:"campaignId"`
	Query               string               `json:"query"`
	ResultCount         int                  `json:"resultCount"`
	TotalHosts          int                  `json:"totalHosts"`
	ElapsedMilliseconds int64                `json:"elapsedMilliseconds"`
	Results             []entity.ResultEvent `json:"results"`
}
