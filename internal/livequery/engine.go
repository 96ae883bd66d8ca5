package livequery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/go-logr/logr"
	"github.com/jonboulle/clockwork"

	"github.com/fleetops/fleetquery/internal/domain/entity"
	"github.com/fleetops/fleetquery/internal/fleet"
	"github.com/fleetops/fleetquery/pkg/pipeline"
)

// Engine runs one query against a resolved set of target hosts and
// aggregates the responses collected within the request deadline.
// Partial results are valid results: per-host failures surface only as
// absent entries in the aggregate, never as errors.
type Engine struct {
	client fleet.Client
	dialer fleet.ChannelDialer

	processing      pipeline.Processing[entity.ResultEvent]
	errorProcessing pipeline.ErrorProcessing

	clock    clockwork.Clock
	logger   *logr.Logger
	progress ProgressFunc

	onlinePageSize int
}

func NewEngine(client fleet.Client, dialer fleet.ChannelDialer) Engine {
	return Engine{
		client:         client,
		dialer:         dialer,
		clock:          clockwork.NewRealClock(),
		onlinePageSize: defaultOnlinePageSize,
	}
}

func (e Engine) WithLogger(logger logr.Logger) Engine {
	e.logger = &logger

	return e
}

func (e Engine) WithClock(clock clockwork.Clock) Engine {
	e.clock = clock

	return e
}

// WithResultProcessing attaches a processing chain invoked for every
// collected result event. Processing failures are absorbed and handed
// to the error processing; they never abort the stream.
func (e Engine) WithResultProcessing(p pipeline.Processing[entity.ResultEvent]) Engine {
	e.processing = p

	return e
}

func (e Engine) WithErrorProcessing(p pipeline.ErrorProcessing) Engine {
	e.errorProcessing = p

	return e
}

func (e Engine) WithProgress(f ProgressFunc) Engine {
	e.progress = f

	return e
}

func (e Engine) WithOnlinePageSize(size int) Engine {
	if size > 0 {
		e.onlinePageSize = size
	}

	return e
}

// Run executes one live query end to end: validate the selector,
// resolve "all online" if requested, create the campaign, subscribe,
// and stream until finished or the deadline elapses.
func (e Engine) Run(ctx context.Context, req Request) (entity.QueryRun, error) {
	if len(req.HostIDs) == 0 && len(req.LabelIDs) == 0 && len(req.TeamIDs) == 0 && !req.AllOnline {
		return entity.QueryRun{}, ErrNoTargets
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	hostIDs := req.HostIDs

	if req.AllOnline {
		ids, err := e.resolveOnlineHosts(ctx)
		if err != nil {
			return entity.QueryRun{}, err
		}

		if len(ids) == 0 {
			return entity.QueryRun{}, ErrNoOnlineHosts
		}

		hostIDs = ids
	}

	selected := fleet.TargetSelector{
		Hosts:  emptyIfNil(hostIDs),
		Labels: emptyIfNil(req.LabelIDs),
		Teams:  emptyIfNil(req.TeamIDs),
	}

	campaign, err := e.createCampaign(ctx, req.Query, selected)
	if err != nil {
		return entity.QueryRun{}, err
	}

	e.logInfo(1, "Campaign created", "campaign", campaign.ID, "totalHosts", campaign.TotalHosts)

	channel, err := e.dialer.Dial(ctx)
	if err != nil {
		return entity.QueryRun{}, fmt.Errorf("failed to open subscription channel: %w", err)
	}

	defer func() {
		closeErr := channel.Close()
		if closeErr != nil {
			e.logError(closeErr, "Failed to close subscription channel")
		}
	}()

	err = channel.Subscribe(ctx, campaign.ID)
	if err != nil {
		return entity.QueryRun{}, fmt.Errorf("failed to subscribe to campaign %d: %w", campaign.ID, err)
	}

	// Creation-time metrics only seed the total; a totals event carries
	// the manager's revised count and wins when they disagree.
	totalHosts := campaign.TotalHosts
	if totalHosts == 0 {
		totalHosts = len(hostIDs)
	}

	return e.stream(ctx, channel, campaign.ID, req.Query, totalHosts, timeout), nil
}

func (e Engine) resolveOnlineHosts(ctx context.Context) ([]uint, error) {
	params := url.Values{}
	params.Set("status", "online")
	params.Set("per_page", strconv.Itoa(e.onlinePageSize))
	params.Set("page", "0")

	resp, err := e.client.Get(ctx, "/hosts", params)
	if err != nil {
		return nil, fmt.Errorf("failed to list online hosts: %w", err)
	}

	if !resp.Success {
		return nil, fmt.Errorf("failed to list online hosts: %s", resp.Message)
	}

	var body fleet.ListHostsResponse

	err = json.Unmarshal(resp.Data, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode host list: %w", err)
	}

	ids := make([]uint, 0, len(body.Hosts))
	for _, host := range body.Hosts {
		ids = append(ids, host.ID)
	}

	return ids, nil
}

func (e Engine) createCampaign(ctx context.Context, query string, selected fleet.TargetSelector) (entity.Campaign, error) {
	body := fleet.RunQueryRequest{
		Query:    query,
		Selected: selected,
	}

	resp, err := e.client.Post(ctx, "/queries/run", body)
	if err != nil {
		return entity.Campaign{}, fmt.Errorf("failed to create campaign: %w", err)
	}

	if !resp.Success {
		return entity.Campaign{}, fmt.Errorf("campaign creation rejected: %s", resp.Message)
	}

	var data fleet.RunQueryResponse

	err = json.Unmarshal(resp.Data, &data)
	if err != nil {
		return entity.Campaign{}, fmt.Errorf("failed to decode campaign: %w", err)
	}

	campaign := data.Campaign.ToEntity()
	if campaign.ID == 0 {
		return entity.Campaign{}, errors.New("campaign missing from manager response")
	}

	return campaign, nil
}

// stream consumes channel events until a finished status, the deadline,
// or channel exhaustion. The deadline is raced against every read: a
// channel that never terminates cannot hold the caller hostage.
func (e Engine) stream(ctx context.Context, channel fleet.SubscriptionChannel, campaignID uint, query string, totalHosts int, timeout time.Duration) entity.QueryRun {
	start := e.clock.Now()

	timer := e.clock.NewTimer(timeout)
	defer timer.Stop()

	var results []entity.ResultEvent

	var lastProgress time.Time

	messages := channel.Messages()

loop:
	for {
		select {
		case <-ctx.Done():
			e.logInfo(1, "Context cancelled while streaming", "campaign", campaignID)

			break loop

		case <-timer.Chan():
			e.logInfo(1, "Deadline reached", "campaign", campaignID, "results", len(results), "totalHosts", totalHosts)

			break loop

		case msg, ok := <-messages:
			if !ok {
				e.logInfo(1, "Subscription channel closed", "campaign", campaignID)

				break loop
			}

			finished := false
			results, totalHosts, finished = e.handleMessage(ctx, msg, campaignID, results, totalHosts)

			if finished {
				e.logInfo(1, "Campaign finished", "campaign", campaignID, "results", len(results))

				break loop
			}

			if e.progress != nil && e.clock.Since(lastProgress) >= progressInterval {
				e.progress(Progress{ResultsCollected: len(results), TotalHosts: totalHosts})
				lastProgress = e.clock.Now()
			}
		}
	}

	return entity.QueryRun{
		CampaignID:  campaignID,
		Query:       query,
		Results:     results,
		ResultCount: len(results),
		TotalHosts:  totalHosts,
		Elapsed:     e.clock.Since(start),
	}
}

func (e Engine) handleMessage(ctx context.Context, msg fleet.StreamMessage, campaignID uint, results []entity.ResultEvent, totalHosts int) ([]entity.ResultEvent, int, bool) {
	switch msg.Type {
	case fleet.MessageTypeResult:
		var data fleet.ResultData

		err := json.Unmarshal(msg.Data, &data)
		if err != nil {
			e.processError(ctx, nil, pipeline.NewErrProcessingError(err, pipeline.DecodeCategory, []pipeline.Input{{Source: "websocket", Value: msg.Data}}))

			return results, totalHosts, false
		}

		event := data.ToEvent(campaignID)
		results = append(results, event)

		e.dispatch(ctx, event)

	case fleet.MessageTypeTotals:
		var data fleet.TotalsData

		err := json.Unmarshal(msg.Data, &data)
		if err != nil {
			e.logError(err, "Failed to decode totals message", "campaign", campaignID)

			return results, totalHosts, false
		}

		if data.Count > 0 && data.Count != totalHosts {
			e.logInfo(2, "Revised host count", "campaign", campaignID, "from", totalHosts, "to", data.Count)

			totalHosts = data.Count
		}

	case fleet.MessageTypeStatus:
		var data fleet.StatusData

		err := json.Unmarshal(msg.Data, &data)
		if err != nil {
			e.logError(err, "Failed to decode status message", "campaign", campaignID)

			return results, totalHosts, false
		}

		if data.Status == fleet.StatusFinished {
			return results, totalHosts, true
		}

	case fleet.MessageTypeError:
		// One host's error must not abort collection from the rest.
		e.logInfo(0, "Stream error message", "campaign", campaignID, "data", string(msg.Data))

	default:
		e.logInfo(2, "Ignoring unknown message type", "campaign", campaignID, "type", msg.Type)
	}

	return results, totalHosts, false
}

func (e Engine) dispatch(ctx context.Context, event entity.ResultEvent) {
	if e.processing == nil {
		return
	}

	err := e.processing.Process(ctx, event)
	if err != nil {
		e.processError(ctx, &event, err)
	}
}

func (e Engine) processError(ctx context.Context, event *entity.ResultEvent, err error) {
	e.logError(err, "Result processing failed")

	if e.errorProcessing == nil {
		return
	}

	processingError := createProcessingError(err)
	processingError.Event = event

	procErr := e.errorProcessing.Process(ctx, processingError)
	if procErr != nil {
		e.logError(procErr, "Error processing failed")
	}
}

func createProcessingError(err error) pipeline.ErrProcessingError {
	ret := pipeline.ErrProcessingError{}
	if errors.As(err, &ret) {
		return ret
	}

	return pipeline.NewErrProcessingError(err, pipeline.UnknownCategory, nil)
}

func emptyIfNil(ids []uint) []uint {
	if ids == nil {
		return []uint{}
	}

	return ids
}

func (e Engine) logInfo(level int, msg string, keysAndValues ...any) {
	if e.logger == nil {
		return
	}

	e.logger.V(level).Info(msg, keysAndValues...)
}

func (e Engine) logError(err error, msg string, keysAndValues ...any) {
	if e.logger == nil {
		return
	}

	e.logger.Error(err, msg, keysAndValues...)
}
