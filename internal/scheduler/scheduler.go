package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/tanq16/dlprobe/internal/output"
	"github.com/tanq16/dlprobe/internal/probe"
	"github.com/tanq16/dlprobe/internal/utils"
)

// Sender is the part of probe.Prober a campaign needs.
type Sender interface {
	Send(ctx context.Context, payload utils.DownloadRequest) probe.Result
	Printer() *output.Printer
}

type Campaign struct {
	Attempts int
	Delay    time.Duration
}

type CampaignResult struct {
	Attempts  int
	Successes int
	Results   []probe.Result
}

// Run sends payload Attempts times, one request at a time, waiting Delay
// between the end of one attempt and the start of the next. Cancelling ctx
// stops the campaign before the next attempt.
func Run(ctx context.Context, sender Sender, payload utils.DownloadRequest, c Campaign) CampaignResult {
	log := utils.GetLogger("scheduler")
	printer := sender.Printer()
	mgr := output.NewManager(printer, c.Attempts)
	result := CampaignResult{Attempts: c.Attempts}

	printer.Blank()
	printer.Header("Sending multiple requests...")
	for i := range c.Attempts {
		if i > 0 && !wait(ctx, c.Delay) {
			log.Debug().Int("attempt", i+1).Msg("campaign cancelled during delay")
			break
		}
		printer.Blank()
		printer.Pending(fmt.Sprintf("Attempt %d/%d:", i+1, c.Attempts))
		id := mgr.RegisterAttempt(fmt.Sprintf("Attempt %d", i+1))

		res := sender.Send(ctx, payload)
		result.Results = append(result.Results, res)
		if res.OK() {
			result.Successes++
			mgr.Complete(id, "")
		} else {
			mgr.ReportError(id, res.AsError())
		}
		log.Debug().Int("attempt", i+1).Str("kind", res.Kind.String()).Str("request_id", res.RequestID).Msg("attempt finished")
		mgr.ShowTally()
	}
	mgr.ShowSummary()
	return result
}

func wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
