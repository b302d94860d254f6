package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type Counters interface {
	CountCompanies(ctx context.Context) (int, error)
	CountOrders(ctx context.Context) (int, error)
	CountOrdersByStatus(ctx context.Context, status string) (int, error)
	CountMeasurements(ctx context.Context) (int, error)
	MeasurementCountsByPhase(ctx context.Context) ([]storage.PhaseOccupancy, error)
}

// GetSummary fans the count queries out in parallel; the summary is read on
// every dashboard load so the latency of five sequential round trips adds up.
func GetSummary(log *slog.Logger, counters Counters) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.dashboard.get.GetSummary"

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		var summary storage.DashboardSummary
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			n, err := counters.CountCompanies(gctx)
			summary.TotalCompanies = n
			return err
		})
		g.Go(func() error {
			n, err := counters.CountOrders(gctx)
			summary.TotalOrders = n
			return err
		})
		g.Go(func() error {
			n, err := counters.CountOrdersByStatus(gctx, storage.OrderStatusInProgress)
			summary.ActiveOrders = n
			return err
		})
		g.Go(func() error {
			n, err := counters.CountOrdersByStatus(gctx, storage.OrderStatusCompleted)
			summary.CompletedOrders = n
			return err
		})
		g.Go(func() error {
			n, err := counters.CountMeasurements(gctx)
			summary.TotalMeasurements = n
			return err
		})
		g.Go(func() error {
			snapshot, err := counters.MeasurementCountsByPhase(gctx)
			summary.WorkshopSnapshot = snapshot
			return err
		})

		if err := g.Wait(); err != nil {
			log.Error("failed to build dashboard summary", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, summary)
	}
}
