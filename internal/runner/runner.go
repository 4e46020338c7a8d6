// Package runner drives walk sessions: it turns a resolved core.Walk into
// fetched traversals and hands the finished session to the outputs.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/bakkerme/pagewalk/internal/core"
	"github.com/bakkerme/pagewalk/internal/detect"
	"github.com/bakkerme/pagewalk/internal/fetch"
	"github.com/bakkerme/pagewalk/internal/session"
)

const tracerName = "pagewalk/runner"

type Runner struct {
	logger *slog.Logger

	// AllowPartialSeedErrors keeps a session alive when one seed provider or
	// one traversal fails; the failure is recorded on the session instead.
	AllowPartialSeedErrors bool
}

func New(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{logger: logger}
}

// Start launches every trigger of the walk and runs a session per event. It
// returns once the triggers are listening; cancel the context to stop.
func (r *Runner) Start(ctx context.Context, walk *core.Walk) error {
	if walk == nil {
		return fmt.Errorf("walk is required")
	}
	for _, trig := range walk.Triggers {
		if trig == nil {
			continue
		}
		events, err := trig.Start(ctx, walk.ID)
		if err != nil {
			return err
		}
		go r.listen(ctx, walk, events)
	}
	return nil
}

// RunOnce executes a single session of the walk: every seed gets its own
// traversal with fresh dedup and pagination state, then the completed session
// is delivered to each output.
func (r *Runner) RunOnce(ctx context.Context, walk *core.Walk) (*core.Session, error) {
	if walk == nil {
		return nil, fmt.Errorf("walk is required")
	}
	if walk.Fetcher == nil {
		return nil, fmt.Errorf("walk has no fetcher")
	}

	sessionID := core.SessionIDFromContext(ctx)
	if sessionID == "" {
		sessionID = fmt.Sprintf("session-%d", time.Now().UnixNano())
	}
	ctx = core.WithSessionID(core.WithWalkID(ctx, walk.ID), sessionID)
	ctx = core.WithLogger(ctx, r.logger.With("walk_id", walk.ID, "session_id", sessionID))

	ctx, span := otel.Tracer(tracerName).Start(ctx, "session",
		trace.WithAttributes(
			attribute.String("walk.id", walk.ID),
			attribute.String("session.id", sessionID),
		))
	defer span.End()

	sess := &core.Session{
		ID:        sessionID,
		WalkID:    walk.ID,
		StartedAt: time.Now().UTC(),
		Status:    core.SessionStatusRunning,
	}

	seeds, err := r.collectSeeds(ctx, walk, sess)
	if err != nil {
		sess.Status = core.SessionStatusFailed
		return sess, err
	}

	for _, seed := range seeds {
		traversal, err := r.walkSeed(ctx, walk, seed)
		if err != nil {
			sess.Errors = append(sess.Errors, walkError("runner", "traversal", err))
			if !r.AllowPartialSeedErrors {
				sess.Status = core.SessionStatusFailed
				return sess, fmt.Errorf("traverse %s: %w", seed, err)
			}
			r.logger.Warn("traversal failed", "seed", seed, "error", err)
		}
		if traversal != nil {
			sess.Traversals = append(sess.Traversals, traversal)
		}
	}

	completedAt := time.Now().UTC()
	sess.CompletedAt = &completedAt
	sess.Status = core.SessionStatusCompleted

	for _, output := range walk.Outputs {
		if output == nil {
			continue
		}
		if err := output.Deliver(ctx, sess); err != nil {
			sess.Errors = append(sess.Errors, walkError(output.Name(), "deliver", err))
			r.logger.Error("output delivery failed", "output", output.Name(), "error", err)
		}
	}

	return sess, nil
}

func (r *Runner) collectSeeds(ctx context.Context, walk *core.Walk, sess *core.Session) ([]string, error) {
	var seeds []string
	for _, provider := range walk.Seeds {
		if provider == nil {
			continue
		}
		urls, err := provider.Seeds(ctx)
		if err != nil {
			sess.Errors = append(sess.Errors, walkError("seeds", "collect", err))
			if !r.AllowPartialSeedErrors {
				return nil, fmt.Errorf("collect seeds: %w", err)
			}
			r.logger.Warn("seed provider failed", "error", err)
			continue
		}
		seeds = append(seeds, urls...)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds to traverse")
	}
	return seeds, nil
}

// walkSeed follows the pagination chain from one seed until the next link
// runs out, a page repeats, or the page budget is spent.
func (r *Runner) walkSeed(ctx context.Context, walk *core.Walk, seed string) (*core.Traversal, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "traversal",
		trace.WithAttributes(attribute.String("seed.url", seed)))
	defer span.End()

	visited := session.NewVisitedSet()
	tracker := session.NewPageTracker()
	filenames := fetch.NewFilenameAllocator()

	traversal := &core.Traversal{SeedURL: seed}
	tracker.Start()
	defer func() {
		tracker.End()
		summary := tracker.Summary()
		traversal.Summary = &summary
		traversal.Visited = visited.URLs()
	}()

	current := seed
	for len(traversal.Pages) < walk.MaxPages {
		if err := ctx.Err(); err != nil {
			return traversal, err
		}
		if visited.Seen(current) {
			r.logger.Debug("page already visited, stopping", "url", current)
			break
		}

		block, err := r.fetchPage(ctx, walk, current)
		if err != nil {
			if len(traversal.Pages) == 0 {
				return traversal, err
			}
			traversal.Pages[len(traversal.Pages)-1].Errors = append(
				traversal.Pages[len(traversal.Pages)-1].Errors,
				walkError("fetcher", "fetch", err))
			break
		}

		block.SessionID = core.SessionIDFromContext(ctx)
		block.Page = tracker.CurrentPage()
		for i := range block.Images {
			block.Images[i].Filename = filenames.Claim(block.Images[i].URL)
		}

		if walk.Detector != nil {
			detection, err := walk.Detector.Detect(ctx, block)
			if err != nil {
				block.Errors = append(block.Errors, walkError("detector", "detect", err))
			} else if detection.Type != "" && detection.Type != detect.TypeNone {
				tracker.SetDetection(detection)
				block.Detection = &detection
				block.Page = tracker.CurrentPage()
			}
		}

		traversal.Pages = append(traversal.Pages, block)
		r.logger.Info("page processed",
			"url", current,
			"page", block.Page,
			"links", len(block.Links),
			"images", len(block.Images),
		)

		if block.NextURL == "" {
			break
		}
		current = block.NextURL
		tracker.Advance(current)

		if walk.PageDelay > 0 {
			select {
			case <-ctx.Done():
				return traversal, ctx.Err()
			case <-time.After(walk.PageDelay):
			}
		}
	}

	return traversal, nil
}

func (r *Runner) fetchPage(ctx context.Context, walk *core.Walk, pageURL string) (*core.PageBlock, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "page",
		trace.WithAttributes(attribute.String("page.url", pageURL)))
	defer span.End()
	return walk.Fetcher.Fetch(ctx, pageURL)
}

func (r *Runner) listen(ctx context.Context, walk *core.Walk, events <-chan core.TriggerEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			r.logger.Info("trigger event", "walk_id", event.WalkID, "time", event.Timestamp)
			if _, err := r.RunOnce(ctx, walk); err != nil {
				r.logger.Error("walk session failed", "walk_id", event.WalkID, "error", err)
			}
		}
	}
}

func walkError(component, stage string, err error) core.WalkError {
	return core.WalkError{
		Component:  component,
		Stage:      stage,
		Error:      err.Error(),
		OccurredAt: time.Now().UTC(),
	}
}
