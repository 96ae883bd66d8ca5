package entity

import "time"

// ColumnDetail describes a single column of a queryable table.
type ColumnDetail struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// TableSchema is one entry of the schema registry: everything known
// about a queryable table, as published by the upstream schema repository.
type TableSchema struct {
	Name          string                  `json:"name"`
	Description   string                  `json:"description"`
	Platforms     []string                `json:"platforms"`
	Evented       bool                    `json:"evented"`
	Columns       []string                `json:"columns"`
	ColumnDetails map[string]ColumnDetail `json:"columnDetails,omitempty"`
	Examples      []string                `json:"examples,omitempty"`
	Notes         string                  `json:"notes,omitempty"`
}

const (
	MetadataSourceRepository     = "schema_repository"
	MetadataSourceRepositoryOnly = "schema_repository_only"
	MetadataSourceLiveDiscovery  = "live_discovery_only"
)

// EnrichedTable is a table as seen on a live host, cross-joined with the
// registry when the name is known there.
type EnrichedTable struct {
	TableSchema

	IsCustom       bool   `json:"isCustom"`
	MetadataSource string `json:"metadataSource"`
}

// HostTableEntry is the cached result of one live discovery, keyed by
// (host, platform).
type HostTableEntry struct {
	HostID    uint            `json:"hostId"`
	Platform  string          `json:"platform"`
	Tables    []EnrichedTable `json:"tables"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

// Campaign is the fleet manager's aggregation unit for one live query.
// Host counts are the metrics reported at creation time; the true online
// count may only be learned later through the result stream.
type Campaign struct {
	ID           uint `json:"id"`
	TotalHosts   int  `json:"totalHosts"`
	OnlineHosts  int  `json:"onlineHosts"`
	OfflineHosts int  `json:"offlineHosts"`
}

// ResultEvent is the response of one host to one campaign.
type ResultEvent struct {
	CampaignID uint                `json:"campaignId"`
	HostID     uint                `json:"hostId"`
	Hostname   string              `json:"hostname"`
	Rows       []map[string]string `json:"rows"`
	Error      *string             `json:"error,omitempty"`
}

// QueryRun is the aggregate outcome of one live query invocation.
// Partial results are valid results: ResultCount < TotalHosts means the
// deadline elapsed before every host responded.
type QueryRun struct {
	CampaignID  uint          `json:"campaignId"`
	Query       string        `json:"query"`
	Results     []ResultEvent `json:"results"`
	ResultCount int           `json:"resultCount"`
	TotalHosts  int           `json:"totalHosts"`
	Elapsed     time.Duration `json:"elapsed"`
}

// CacheInfo is an observability snapshot of the schema cache state.
type CacheInfo struct {
	FileExists    bool          `json:"fileExists"`
	FilePath      string        `json:"filePath"`
	FileSizeBytes int64         `json:"fileSizeBytes"`
	FileAge       time.Duration `json:"fileAge"`
	TTL           time.Duration `json:"ttl"`
	Valid         bool          `json:"valid"`
	TableCount    int           `json:"tableCount"`
	HostCount     int           `json:"hostCount"`
}
