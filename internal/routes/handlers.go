package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/just-nibble/stargazer-service/internal/adapters/db"
	"github.com/just-nibble/stargazer-service/internal/core/domain/entities"
	"github.com/just-nibble/stargazer-service/internal/core/service"
	"github.com/just-nibble/stargazer-service/pkg/response"
)

// Handler serves the small read-mostly surface of serve mode
type Handler struct {
	store    db.StargazerStore
	ingestor *service.Ingestor
	exporter *service.Exporter
	owner    string
	repo     string
	log      *logrus.Logger
}

func NewHandler(store db.StargazerStore, ingestor *service.Ingestor, exporter *service.Exporter, owner, repo string, log *logrus.Logger) *Handler {
	return &Handler{
		store:    store,
		ingestor: ingestor,
		exporter: exporter,
		owner:    owner,
		repo:     repo,
		log:      log,
	}
}

func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/stats", h.Stats).Methods("GET")
	router.HandleFunc("/export", h.Export).Methods("GET")
	router.HandleFunc("/ingest", h.Ingest).Methods("POST")
	return router
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// Stats reports stargazer counts per enrichment status
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := make(map[string]int64, 3)
	for _, status := range []string{entities.StatusPending, entities.StatusCompleted, entities.StatusFailed} {
		count, err := h.store.CountByStatus(status)
		if err != nil {
			response.ErrorResponse(w, http.StatusInternalServerError, "failed to count stargazers")
			return
		}
		stats[status] = count
	}
	response.SuccessResponse(w, http.StatusOK, stats)
}

// Export streams the CSV export
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="stargazers.csv"`)
	if err := h.exporter.Write(w); err != nil {
		h.log.WithError(err).Error("export failed")
	}
}

// Ingest triggers one ingestion run for the tracked repository
func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	report, err := h.ingestor.Run(r.Context(), h.owner, h.repo, 0)
	if err != nil {
		response.ErrorResponse(w, http.StatusBadGateway, err.Error())
		return
	}
	response.SuccessResponse(w, http.StatusOK, report)
}
