// Package run sequences one sweep: enumerate regions, fan out discovery,
// aggregate, compute tag targets and apply them with retries.
package run

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/moepig/tagsweep/batch"
	"github.com/moepig/tagsweep/report"
	"github.com/moepig/tagsweep/resources"
	"github.com/moepig/tagsweep/retry"
	"github.com/moepig/tagsweep/taggers"
	"github.com/moepig/tagsweep/tagpolicy"
)

// State is the orchestrator's current phase.
type State string

const (
	StateInit               State = "Init"
	StateEnumeratingRegions State = "EnumeratingRegions"
	StateDiscoveringGlobal  State = "DiscoveringGlobal"
	StateDiscoveringRegions State = "DiscoveringRegions"
	StateAggregating        State = "Aggregating"
	StateApplyingPolicy     State = "ApplyingPolicy"
	StateTagging            State = "Tagging"
	StateSummarizing        State = "Summarizing"
	StateDone               State = "Done"
	StateAborted            State = "Aborted"
)

// Enumerator lists the scan universe of region codes.
type Enumerator interface {
	Enumerate(ctx context.Context) ([]string, error)
}

// Options configures one sweep run.
type Options struct {
	DesiredTags     map[string]string
	Mode            tagpolicy.Mode
	RegionBatchSize int
	InterTagDelay   time.Duration
	MaxAttempts     int
	RetryBaseDelay  time.Duration
	DryRun          bool
}

// Outcome records how tagging one resource ended.
type Outcome struct {
	ARN       string
	Kind      resources.Kind
	Attempted bool
	Succeeded bool
	Attempts  int
	Err       error
}

// Summary is the run's final report.
type Summary struct {
	Succeeded  int
	Failed     int
	Skipped    int
	Elapsed    time.Duration
	FailedARNs []string
	Outcomes   []Outcome
}

// Orchestrator drives the sweep state machine.
type Orchestrator struct {
	opts       Options
	enumerator Enumerator
	registry   *resources.Registry
	dispatcher *taggers.Dispatcher

	state State
	out   io.Writer
	sleep func(time.Duration)
	now   func() time.Time
}

// New creates an orchestrator writing progress to stdout.
func New(opts Options, enumerator Enumerator, registry *resources.Registry, dispatcher *taggers.Dispatcher) *Orchestrator {
	return &Orchestrator{
		opts:       opts,
		enumerator: enumerator,
		registry:   registry,
		dispatcher: dispatcher,
		state:      StateInit,
		out:        os.Stdout,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// State returns the current phase.
func (o *Orchestrator) State() State {
	return o.state
}

func (o *Orchestrator) setState(s State) {
	slog.Debug("State transition", "from", o.state, "to", s)
	o.state = s
}

// Run executes the whole sweep. Only region enumeration aborts the run; a
// failing discoverer contributes nothing and a failing tag operation becomes
// a failed outcome in the summary.
func (o *Orchestrator) Run(ctx context.Context) (*Summary, error) {
	start := o.now()

	o.setState(StateEnumeratingRegions)
	regionCodes, err := o.enumerator.Enumerate(ctx)
	if err != nil {
		o.setState(StateAborted)
		return nil, fmt.Errorf("cannot determine scan universe: %w", err)
	}
	slog.Info("Scanning regions", "count", len(regionCodes))

	o.setState(StateDiscoveringGlobal)
	globalRecords := o.discoverLocality(ctx, resources.LocalityGlobal, o.registry.Global())
	fmt.Fprintf(o.out, "discovered %d resources in global\n", len(globalRecords))

	o.setState(StateDiscoveringRegions)
	regional := o.registry.Regional()
	results := batch.Run(ctx, regionCodes, o.opts.RegionBatchSize,
		func(ctx context.Context, region string) ([]resources.Record, error) {
			return o.discoverLocality(ctx, region, regional), nil
		})
	for i, res := range results {
		fmt.Fprintf(o.out, "discovered %d resources in %s\n", len(res.Value), regionCodes[i])
	}

	o.setState(StateAggregating)
	inventory := resources.NewInventory()
	// Regional results go in first: the regional bulk listing reports a
	// global resource's ARN in its home region (S3 buckets), and the
	// enriched record from the global discoverer must overwrite that
	// un-enriched one.
	for _, res := range results {
		for _, rec := range res.Value {
			inventory.Add(rec)
		}
	}
	for _, rec := range globalRecords {
		inventory.Add(rec)
	}
	slog.Info("Aggregated inventory", "resources", inventory.Len())
	fmt.Fprint(o.out, report.FormatBreakdown(inventory.CountByKind()))

	o.setState(StateApplyingPolicy)
	summary := o.tagInventory(ctx, inventory)

	o.setState(StateSummarizing)
	summary.Elapsed = o.now().Sub(start)
	block, err := report.RenderSummary(report.SummaryData{
		Succeeded:      summary.Succeeded,
		Failed:         summary.Failed,
		Skipped:        summary.Skipped,
		ElapsedSeconds: summary.Elapsed.Seconds(),
		FailedARNs:     summary.FailedARNs,
	})
	if err != nil {
		o.setState(StateAborted)
		return nil, err
	}
	fmt.Fprint(o.out, block)

	o.setState(StateDone)
	return summary, nil
}

// discoverLocality runs the given discoverers in precedence order for one
// locality. A discoverer failure is logged and contributes nothing; it never
// stops the others.
func (o *Orchestrator) discoverLocality(ctx context.Context, locality string, discoverers []resources.Discoverer) []resources.Record {
	var records []resources.Record
	for _, d := range discoverers {
		recs, err := d.Discover(ctx, locality)
		if err != nil {
			slog.Warn("Discovery failed, continuing without it",
				"kind", d.Kind(), "locality", locality, "error", err)
			continue
		}
		records = append(records, recs...)
	}
	return records
}

// tagStep is one record's computed policy decision.
type tagStep struct {
	rec    resources.Record
	target map[string]string
	apply  bool
}

// tagInventory computes every record's target tag set, then walks the
// aggregated inventory in its stable order, one resource at a time, pausing
// between operations to stay under provider rate limits.
func (o *Orchestrator) tagInventory(ctx context.Context, inventory *resources.Inventory) *Summary {
	records := inventory.Records()
	total := len(records)
	summary := &Summary{}

	steps := make([]tagStep, 0, total)
	for _, rec := range records {
		target, ok := tagpolicy.ComputeTarget(rec.Tags, o.opts.DesiredTags, o.opts.Mode)
		steps = append(steps, tagStep{rec: rec, target: target, apply: ok})
	}

	o.setState(StateTagging)
	for i, step := range steps {
		rec := step.rec
		if !step.apply {
			summary.Skipped++
			summary.Outcomes = append(summary.Outcomes, Outcome{ARN: rec.ARN, Kind: rec.Kind})
			fmt.Fprintf(o.out, "[%d/%d] skip %s (all desired tags present)\n", i+1, total, rec.ARN)
			continue
		}

		if o.opts.DryRun {
			summary.Succeeded++
			summary.Outcomes = append(summary.Outcomes, Outcome{ARN: rec.ARN, Kind: rec.Kind, Succeeded: true})
			fmt.Fprintf(o.out, "[%d/%d] would tag %s with %d tags\n", i+1, total, rec.ARN, len(step.target))
			continue
		}

		fmt.Fprintf(o.out, "[%d/%d] tagging %s\n", i+1, total, rec.ARN)
		tagger := o.dispatcher.For(rec.Kind)
		res := retry.Do(ctx, o.opts.MaxAttempts, o.opts.RetryBaseDelay, func(ctx context.Context) error {
			return tagger.ApplyTags(ctx, rec, step.target)
		})

		outcome := Outcome{
			ARN:       rec.ARN,
			Kind:      rec.Kind,
			Attempted: true,
			Succeeded: res.Succeeded(),
			Attempts:  res.Attempts,
			Err:       res.Err,
		}
		summary.Outcomes = append(summary.Outcomes, outcome)

		if res.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
			summary.FailedARNs = append(summary.FailedARNs, rec.ARN)
			slog.Warn("Tagging failed after retries",
				"arn", rec.ARN, "attempts", res.Attempts, "error", res.Err)
		}

		if i < total-1 && o.opts.InterTagDelay > 0 {
			o.sleep(o.opts.InterTagDelay)
		}
	}
	return summary
}
