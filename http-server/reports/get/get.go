package get

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"threadworks/internal/api/resp"
)

type ReportGenerator interface {
	GenerateOrderReport(ctx context.Context, orderID string) ([]byte, error)
}

func GetOrderReport(log *slog.Logger, reports ReportGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.reports.get.GetOrderReport"

		orderID := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		data, err := reports.GenerateOrderReport(ctx, orderID)
		if err != nil {
			log.Error("failed to generate order report", slog.String("op", op), slog.String("order_id", orderID), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=order-%s-report.xlsx", orderID))
		w.Write(data)
	}
}
