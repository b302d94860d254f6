package upload

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"
	"threadworks/internal/api/resp"
	"threadworks/internal/service/upload"
)

// 20 MB is plenty for a measurement sheet.
const maxUploadSize = 20 << 20

type Importer interface {
	ImportFile(ctx context.Context, orderID, companyID string, file io.Reader, mode string) (*upload.Result, error)
}

// UploadMeasurements accepts a multipart form with orderId, companyId, mode
// (add or replace) and the xlsx under "file".
func UploadMeasurements(log *slog.Logger, importer Importer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handler.measurements.upload.UploadMeasurements"

		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			resp.Error(w, r, http.StatusBadRequest, "invalid multipart form")
			return
		}

		orderID := r.FormValue("orderId")
		companyID := r.FormValue("companyId")
		mode := r.FormValue("mode")
		if orderID == "" || companyID == "" {
			resp.Error(w, r, http.StatusBadRequest, "orderId and companyId are required")
			return
		}

		file, _, err := r.FormFile("file")
		if err != nil {
			resp.Error(w, r, http.StatusBadRequest, "file is required")
			return
		}
		defer file.Close()

		ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
		defer cancel()

		result, err := importer.ImportFile(ctx, orderID, companyID, file, mode)
		if err != nil {
			log.Error("failed to import measurements",
				slog.String("op", op),
				slog.String("order_id", orderID),
				slog.String("error", err.Error()),
			)
			resp.DomainError(w, r, err)
			return
		}

		render.JSON(w, r, result)
	}
}
