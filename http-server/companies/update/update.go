package update

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type CompanyUpdater interface {
	GetCompany(ctx context.Context, id string) (*storage.Company, error)
	UpdateCompany(ctx context.Context, c *storage.Company) error
}

func UpdateCompany(log *slog.Logger, companies CompanyUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.companies.update.UpdateCompany"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		existing, err := companies.GetCompany(ctx, id)
		if err != nil {
			log.Error("failed to load company", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		if err := json.NewDecoder(r.Body).Decode(existing); err != nil {
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}
		existing.ID = id

		if err := companies.UpdateCompany(ctx, existing); err != nil {
			log.Error("failed to update company", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, existing)
	}
}
