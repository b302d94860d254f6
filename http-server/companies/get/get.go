package get

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type Companies interface {
	GetCompanies(ctx context.Context) ([]storage.Company, error)
	GetCompany(ctx context.Context, id string) (*storage.Company, error)
}

func GetCompanies(log *slog.Logger, companies Companies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.companies.get.GetCompanies"

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		list, err := companies.GetCompanies(ctx)
		if err != nil {
			log.Error("failed to load companies", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, list)
	}
}

func GetCompany(log *slog.Logger, companies Companies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.companies.get.GetCompany"

		id := chi.URLParam(r, "id")

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		company, err := companies.GetCompany(ctx, id)
		if err != nil {
			log.Error("failed to load company", slog.String("op", op), slog.String("id", id), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, company)
	}
}
