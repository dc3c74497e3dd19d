package animation

import (
	"context"
	"fmt"
	"log"

	"github.com/dyluth/mandelmovie/internal/frame"
	"github.com/dyluth/mandelmovie/internal/imageout"
	"github.com/dyluth/mandelmovie/internal/ledger"
)

// UnitResult summarises the frames a unit processed.
type UnitResult struct {
	Rendered []int
	Failed   []int
}

// RunUnit renders the frames of a, in ascending order, with its own frame
// scheduler, encoder and ledger client. A frame that fails is logged and
// skipped. The error return is reserved for failures that prevent the unit
// from rendering anything.
func RunUnit(ctx context.Context, job Job, a Assignment) (*UnitResult, error) {
	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("unit %d: %w", a.Unit, err)
	}

	sched, err := frame.NewScheduler(job.Settings, imageout.JPEGEncoder{Quality: job.Settings.Quality})
	if err != nil {
		return nil, fmt.Errorf("unit %d: %w", a.Unit, err)
	}

	rec := openLedger(ctx, job, a.Unit)
	if rec != nil {
		defer rec.Close()
	}

	log.Printf("[Worker %d] Rendering frames %s", a.Unit, a.Frames)

	res := &UnitResult{Rendered: []int{}, Failed: []int{}}
	for i := a.Frames.Start; i < a.Frames.End; i++ {
		r := sched.Process(job.Descriptor(i))
		if r.OK() {
			res.Rendered = append(res.Rendered, i)
		} else {
			res.Failed = append(res.Failed, i)
		}

		if rec != nil {
			if err := rec.RecordFrame(ctx, frameRecord(a.Unit, r)); err != nil {
				log.Printf("[Worker %d] Warning: failed to record frame %d in ledger: %v", a.Unit, i, err)
			}
		}
	}

	log.Printf("[Worker %d] Done: %d rendered, %d failed", a.Unit, len(res.Rendered), len(res.Failed))
	return res, nil
}

// openLedger connects the unit to the run ledger. The ledger is optional:
// on any failure the unit logs a warning and renders without it.
func openLedger(ctx context.Context, job Job, unit int) *ledger.Client {
	if job.LedgerURL == "" {
		return nil
	}

	client, err := ledger.Dial(job.LedgerURL, job.RunID)
	if err != nil {
		log.Printf("[Worker %d] Warning: ledger disabled: %v", unit, err)
		return nil
	}
	if err := client.Ping(ctx); err != nil {
		log.Printf("[Worker %d] Warning: ledger disabled: %v", unit, err)
		client.Close()
		return nil
	}
	return client
}

func frameRecord(unit int, r frame.Result) *ledger.FrameRecord {
	rec := &ledger.FrameRecord{
		Index:      r.Index,
		Scale:      r.Scale,
		Unit:       unit,
		Status:     ledger.FrameStatusRendered,
		Path:       r.Path,
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Err != nil {
		rec.Status = ledger.FrameStatusFailed
		rec.Error = r.Err.Error()
	}
	return rec
}
