package livequery

import (
	"errors"
	"time"
)

var (
	// ErrNoTargets rejects unscoped queries: fanning out to an entire
	// fleet must be an explicit choice, never a default.
	ErrNoTargets = errors.New("no target selector: specify host ids, label ids, team ids, or request all online hosts")

	ErrNoOnlineHosts = errors.New("no online hosts to target")
)

const (
	// DefaultTimeout bounds one streaming invocation when the caller
	// does not override it.
	DefaultTimeout = 60 * time.Second

	defaultOnlinePageSize = 500

	progressInterval = 500 * time.Millisecond
)

// Request describes one live query invocation. Exactly one campaign is
// created per request; there is no retry.
type Request struct {
	Query     string
	HostIDs   []uint
	LabelIDs  []uint
	TeamIDs   []uint
	AllOnline bool

	// Timeout is a single wall-clock deadline measured from the moment
	// the subscription begins. Zero selects DefaultTimeout.
	Timeout time.Duration
}

// Progress is reported at most once per half second while streaming.
type Progress struct {
	ResultsCollected int
	TotalHosts       int
}

type ProgressFunc func(Progress)
