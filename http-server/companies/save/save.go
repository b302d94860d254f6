package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/google/uuid"
	"threadworks/internal/api/resp"
	"threadworks/internal/storage"
)

type CompanySaver interface {
	SaveCompany(ctx context.Context, c *storage.Company) error
}

func CreateCompany(log *slog.Logger, companies CompanySaver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.companies.save.CreateCompany"

		var company storage.Company
		if err := json.NewDecoder(r.Body).Decode(&company); err != nil {
			resp.Error(w, r, http.StatusBadRequest, "invalid payload")
			return
		}
		if strings.TrimSpace(company.CompanyName) == "" {
			resp.Error(w, r, http.StatusBadRequest, "companyName is required")
			return
		}
		if company.ID == "" {
			company.ID = uuid.NewString()
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := companies.SaveCompany(ctx, &company); err != nil {
			log.Error("failed to save company", slog.String("op", op), slog.String("error", err.Error()))
			resp.DomainError(w, r, err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, company)
	}
}
