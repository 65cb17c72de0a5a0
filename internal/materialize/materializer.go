// Package materialize expands recurring event series into concrete,
// slug-keyed event records over a bounded forward window.
//
// The pipeline is idempotent: every write is an upsert keyed by a
// deterministic slug, so re-running a window converges to the same set of
// events. The window floor is the first Eastern civil day of the current
// month, which deliberately regenerates already-past days to self-heal
// partial runs.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/teambition/rrule-go"

	"showcal/internal/eastern"
	"showcal/internal/model"
	"showcal/internal/store"
	ws "showcal/internal/websocket"
)

type Materializer struct {
	series *store.SeriesStore
	events *store.EventStore
	hub    *ws.Hub
	logger *slog.Logger
	now    func() time.Time
}

// New creates a Materializer. hub may be nil (CLI runs have no dashboard).
func New(seriesStore *store.SeriesStore, eventStore *store.EventStore, hub *ws.Hub, logger *slog.Logger) *Materializer {
	return &Materializer{
		series: seriesStore,
		events: eventStore,
		hub:    hub,
		logger: logger,
		now:    time.Now,
	}
}

// Generate materializes a single series. A missing series is a logged no-op
// so batch runs keep going; a malformed rule or a store failure is fatal for
// the series.
func (m *Materializer) Generate(ctx context.Context, seriesID int64) error {
	ser, err := m.series.GetByID(seriesID)
	if err != nil {
		return fmt.Errorf("load series %d: %w", seriesID, err)
	}
	if ser == nil {
		m.logger.Warn("series not found, skipping", "series_id", seriesID)
		return nil
	}
	return m.generate(ctx, ser)
}

// GenerateAll materializes every series. Failures are isolated per series and
// joined, so one bad rule cannot block the rest of the batch.
func (m *Materializer) GenerateAll(ctx context.Context) error {
	list, err := m.series.List()
	if err != nil {
		return fmt.Errorf("list series: %w", err)
	}

	var errs []error
	for i := range list {
		ser := &list[i]
		if err := m.generate(ctx, ser); err != nil {
			m.logger.Error("series generation failed",
				"series_id", ser.ID, "slug_base", ser.SlugBase, "error", err)
			errs = append(errs, fmt.Errorf("series %q: %w", ser.SlugBase, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Materializer) generate(ctx context.Context, ser *model.Series) error {
	runID := uuid.NewString()

	// Window floor: first Eastern civil day of the current month, at Eastern
	// midnight, as a UTC instant.
	startYear, startMonth, _ := eastern.CivilDate(m.now())
	since := eastern.ToUTC(startYear, startMonth, 1, 0, 0,
		eastern.OffsetForCivilDate(startYear, startMonth, 1))
	_ = since

	// Horizon: the window's last civil day at 23:59:59.999 Eastern. The bound
	// is inclusive of that day. The watermark records it, but never gates a
	// re-run.
	endCivil := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, ser.HorizonMonths, 0)
	endYear, endMonth, endDay := endCivil.Date()
	horizon := eastern.ToUTC(endYear, endMonth, endDay, 23, 59,
		eastern.OffsetForCivilDate(endYear, endMonth, endDay)).
		Add(time.Minute - time.Millisecond)

	dates, err := occurrenceDates(ser.RRule, startYear, startMonth, endYear, endMonth, endDay)
	if err != nil {
		return fmt.Errorf("evaluate rule %q: %w", ser.RRule, err)
	}

	duration := time.Duration(ser.DurationMin) * time.Minute
	upserted := 0
	for _, c := range dates {
		if err := ctx.Err(); err != nil {
			return err
		}

		offset := eastern.OffsetForCivilDate(c.year, c.month, c.day)
		startAt := eastern.ToUTC(c.year, c.month, c.day, ser.StartHour, ser.StartMinute, offset)
		if startAt.After(horizon) {
			continue
		}
		endAt := startAt.Add(duration)

		// The slug date is re-derived from the computed instant rather than
		// the candidate date, so it always matches the Eastern day of
		// startAt even if offset composition shifted a boundary.
		slug := ser.SlugBase + "-" + eastern.DateString(startAt)

		if _, err := m.events.Upsert(store.EventFields{
			Slug:        slug,
			Title:       ser.Title,
			Description: ser.Description,
			StartAt:     startAt,
			EndAt:       endAt,
			CityID:      ser.CityID,
			VenueID:     ser.VenueID,
			Status:      model.StatusPublished,
			EventType:   ser.EventType,
			Source:      model.SourceSeries,
			SeriesID:    &ser.ID,
		}); err != nil {
			return err
		}
		upserted++

		if m.hub != nil {
			m.hub.Broadcast(ws.NewMessage("event", "upserted", 0, map[string]any{
				"run_id": runID,
				"slug":   slug,
			}))
		}
	}

	if err := m.series.UpdateWatermark(ser.ID, horizon); err != nil {
		return fmt.Errorf("update watermark: %w", err)
	}

	m.logger.Info("series generated",
		"run_id", runID, "slug_base", ser.SlugBase,
		"occurrences", upserted, "through", horizon)
	if m.hub != nil {
		m.hub.Broadcast(ws.NewMessage("series", "generated", ser.ID, map[string]any{
			"run_id":      runID,
			"occurrences": upserted,
		}))
	}
	return nil
}

type civilDate struct {
	year  int
	month time.Month
	day   int
}

// occurrenceDates evaluates the rule between the window's civil bounds in a
// neutral UTC calendar and reads each candidate date straight off the
// evaluator output's UTC fields. Localizing here would reintroduce exactly
// the drift the per-date Eastern offset step exists to remove.
func occurrenceDates(rule string, startYear int, startMonth time.Month, endYear int, endMonth time.Month, endDay int) ([]civilDate, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return nil, err
	}

	lo := time.Date(startYear, startMonth, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(endYear, endMonth, endDay, 23, 59, 59, 0, time.UTC)
	r.DTStart(lo)

	times := r.Between(lo, hi, true)
	dates := make([]civilDate, 0, len(times))
	for _, t := range times {
		y, mo, d := t.UTC().Date()
		dates = append(dates, civilDate{year: y, month: mo, day: d})
	}
	return dates, nil
}
