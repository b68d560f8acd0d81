package handler

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"visionreporter/internal/dto"
	"visionreporter/internal/logger"
	"visionreporter/internal/model"
	"visionreporter/internal/repository"
)

// maxPageSize caps the "limit" query parameter of the case listing.
const maxPageSize = 100

// GetCasesHandler returns the newest-first, paginated case listing.
func GetCasesHandler(repo repository.CaseRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		page := atoiDefault(q.Get("page"), 1)
		limit := atoiDefault(q.Get("limit"), 20)
		if limit > maxPageSize {
			limit = maxPageSize
		}
		if page-1 > math.MaxInt/limit {
			http.Error(w, "Page out of range", http.StatusBadRequest)
			return
		}

		filter := &model.CaseFilter{
			Status: model.Status(q.Get("status")),
			Limit:  limit,
			Offset: (page - 1) * limit,
		}
		if filter.Status != "" && !filter.Status.Valid() {
			http.Error(w, "Unknown status", http.StatusBadRequest)
			return
		}

		cases, err := repo.GetAll(r.Context(), filter)
		if err != nil {
			logger.Error("Error querying cases from database: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		totalCount, err := repo.GetTotalCount(r.Context(), filter)
		if err != nil {
			logger.Error("Error counting cases: %v", err)
			totalCount = len(cases)
		}

		infos := make([]dto.CaseInfo, 0, len(cases))
		for _, c := range cases {
			infos = append(infos, dto.CaseInfo{Case: c})
		}

		data := dto.CasesData{
			Cases:       infos,
			Length:      totalCount,
			TotalPages:  (totalCount + limit - 1) / limit,
			CurrentPage: page,
			Limit:       limit,
		}

		writeJSON(w, http.StatusOK, data, logger)
	}
}

// ViewCaseHandler returns a single case selected by the "id" query parameter.
func ViewCaseHandler(repo repository.CaseRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		if id == "" {
			http.Error(w, "ID parameter is required", http.StatusBadRequest)
			return
		}

		c, err := repo.GetByID(r.Context(), id)
		if errors.Is(err, model.ErrNotFound) {
			http.Error(w, "Case not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("Error loading case %s: %v", id, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, dto.CaseInfo{Case: *c}, logger)
	}
}

// UpdateCaseStatusHandler moves a case forward in its lifecycle.
func UpdateCaseStatusHandler(repo repository.CaseRepository, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var update dto.StatusUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if update.ID == "" || !update.Status.Valid() {
			http.Error(w, "ID and a valid status are required", http.StatusBadRequest)
			return
		}

		current, err := repo.GetByID(r.Context(), update.ID)
		if errors.Is(err, model.ErrNotFound) {
			http.Error(w, "Case not found", http.StatusNotFound)
			return
		}
		if err != nil {
			logger.Error("Error loading case %s: %v", update.ID, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if !current.Status.CanTransitionTo(update.Status) {
			http.Error(w, model.ErrInvalidTransition.Error(), http.StatusConflict)
			return
		}

		if err := repo.UpdateStatus(r.Context(), update.ID, update.Status); err != nil {
			logger.Error("Error updating case %s: %v", update.ID, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		logger.Info("Case %s moved %s → %s", update.ID, current.Status, update.Status)
		current.Status = update.Status
		writeJSON(w, http.StatusOK, dto.CaseInfo{Case: *current}, logger)
	}
}

// atoiDefault converts string to int or returns a default when conversion fails or value <= 0.
func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(s); err == nil && v > 0 {
		return v
	}
	return def
}

// allowMethod answers 405 when r does not use method.
func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Error encoding JSON response: %v", err)
	}
}
