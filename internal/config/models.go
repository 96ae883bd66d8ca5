package config

import "time"

type Config struct {
	Logs    Logs
	Metrics Metrics
	Fleet   Fleet
	Schema  Schema
	Query   Query
	Valkey  Valkey
	Archive S3
}

type Logs struct {
	Level   int
	Encoder EncoderType
}

type EncoderType string

const (
	EncoderTypeJson    EncoderType = "json"
	EncoderTypeConsole EncoderType = "console"
)

type Metrics struct {
	Port int
}

// Fleet points at the fleet manager API.
type Fleet struct {
	URL      string
	Insecure bool
	Creds    FleetCreds
}

type FleetCreds struct {
	Token string
}

func (c FleetCreds) String() string {
	if c.Token != "" {
		return "token set"
	}

	return "no token"
}

// Schema configures the schema resolution cache.
type Schema struct {
	SourceURL       string
	CacheDir        string
	CacheTTL        time.Duration
	HostCacheTTL    time.Duration
	DownloadTimeout time.Duration
}

// Query configures live query execution.
type Query struct {
	Timeout        time.Duration
	OnlinePageSize int
}

// Valkey configures the optional shared host-table store. An empty URL
// selects the in-memory store.
type Valkey struct {
	URL       string
	Retention time.Duration
	Creds     ValkeyCreds
}

type ValkeyCreds struct {
	Password string
}

func (c ValkeyCreds) String() string {
	if c.Password != "" {
		return "password set"
	}

	return "no password"
}

// S3 configures the optional query run archive. An empty bucket disables it.
type S3 struct {
	Bucket       string
	KeyPrefix    string
	BaseEndpoint string
	Region       string
	UsePathStyle bool
	Creds        AWSCreds
}

type AWSCreds struct {
	AccessKeyID     string
	SecretAccessKey string
}

func (c AWSCreds) String() string {
	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		return "creds set"
	}

	return "no creds"
}
