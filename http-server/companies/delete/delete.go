package delete

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
)

type CompanyDeleter interface {
	DeleteCompany(ctx context.Context, id string) error
}

func DeleteCompany(log *slog.Logger, companies CompanyDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.companies.delete.DeleteCompany"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := companies.DeleteCompany(ctx, id); err != nil {
			log.Error("failed to delete company", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, map[string]string{"status": "deleted"})
	}
}
