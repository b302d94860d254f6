package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	delcompanies "threadworks/http-server/companies/delete"
	getcompanies "threadworks/http-server/companies/get"
	savecompanies "threadworks/http-server/companies/save"
	upcompanies "threadworks/http-server/companies/update"
	getdashboard "threadworks/http-server/dashboard/get"
	delmeasurements "threadworks/http-server/measurements/delete"
	getmeasurements "threadworks/http-server/measurements/get"
	measurementphase "threadworks/http-server/measurements/phase"
	upmeasurements "threadworks/http-server/measurements/update"
	uploadmeasurements "threadworks/http-server/measurements/upload"
	getorders "threadworks/http-server/orders/get"
	orderphase "threadworks/http-server/orders/phase"
	saveorders "threadworks/http-server/orders/save"
	delphases "threadworks/http-server/phaseconfig/delete"
	getphases "threadworks/http-server/phaseconfig/get"
	savephases "threadworks/http-server/phaseconfig/save"
	upphases "threadworks/http-server/phaseconfig/update"
	getreports "threadworks/http-server/reports/get"
	"threadworks/internal/config"
	"threadworks/internal/middleware/auth"
	"threadworks/internal/service/phases"
	"threadworks/internal/service/report"
	"threadworks/internal/service/upload"
	"threadworks/internal/storage/mysql"
)

func routes(
	cfg config.Config,
	log *slog.Logger,
	storage *mysql.Storage,
	phaseService *phases.Service,
	uploadService *upload.Service,
	reportService *report.Service,
) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Phase catalog. The read side is open; mutations sit behind basic auth,
	// pipeline configuration is an operator task, not a floor task.
	router.Route("/api/phase-configs", func(r chi.Router) {
		r.Get("/", getphases.GetAllPhases(log, storage))
		r.Get("/active", getphases.GetActivePhases(log, storage))
		r.Get("/mandatory", getphases.GetMandatoryPhases(log, storage))
		r.Get("/by-category", getphases.GetPhasesByCategory(log, storage))
		r.Get("/by-category/{category}", getphases.GetPhasesOfCategory(log, storage))
		r.Get("/key/{phaseKey}", getphases.GetPhaseByKey(log, storage))
		r.Get("/{id}", getphases.GetPhaseByID(log, storage))
		r.Post("/validate-move", savephases.ValidateMove(log, storage))

		r.Group(func(r chi.Router) {
			r.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))
			r.Post("/", savephases.CreatePhase(log, storage))
			r.Post("/initialize-defaults", savephases.InitializeDefaults(log, storage))
			r.Put("/{id}", upphases.UpdatePhase(log, storage))
			r.Delete("/{id}", delphases.DeactivatePhase(log, storage))
			r.Delete("/{id}/hard", delphases.HardDeletePhase(log, storage))
		})
	})

	// Orders.
	router.Get("/api/orders", getorders.GetOrders(log, storage))
	router.Get("/api/orders/company/{companyId}", getorders.GetOrdersByCompany(log, storage))
	router.Get("/api/orders/{id}", getorders.GetOrder(log, storage))
	router.Post("/api/orders", saveorders.CreateOrder(log, phaseService))
	router.Post("/api/orders/{id}/move-to-next-phase", orderphase.MoveToNextPhase(log, phaseService))
	router.Post("/api/orders/{id}/mark-complete", orderphase.MarkComplete(log, phaseService))
	router.Get("/api/orders/{id}/report/excel", getreports.GetOrderReport(log, reportService))

	// Measurements.
	router.Get("/api/measurements/order/{orderId}", getmeasurements.GetMeasurementsByOrder(log, storage))
	router.Get("/api/measurements/{id}", getmeasurements.GetMeasurement(log, storage))
	router.Put("/api/measurements/{id}", upmeasurements.UpdateMeasurement(log, storage))
	router.Delete("/api/measurements/{id}", delmeasurements.DeleteMeasurement(log, storage))
	router.Post("/api/measurements/upload", uploadmeasurements.UploadMeasurements(log, uploadService))
	router.Post("/api/measurements/bulk/move-to-next-phase", measurementphase.BulkMoveToNextPhase(log, phaseService))
	router.Post("/api/measurements/{id}/move-to-next-phase", measurementphase.MoveToNextPhase(log, phaseService))
	router.Post("/api/measurements/{id}/reject-to-phase", measurementphase.RejectToPhase(log, phaseService))

	// Companies.
	router.Get("/api/companies", getcompanies.GetCompanies(log, storage))
	router.Get("/api/companies/{id}", getcompanies.GetCompany(log, storage))
	router.Post("/api/companies", savecompanies.CreateCompany(log, storage))
	router.Put("/api/companies/{id}", upcompanies.UpdateCompany(log, storage))
	router.Delete("/api/companies/{id}", delcompanies.DeleteCompany(log, storage))

	// Dashboard.
	router.Get("/api/dashboard/summary", getdashboard.GetSummary(log, storage))

	return router
}
