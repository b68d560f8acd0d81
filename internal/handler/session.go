package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"visionreporter/internal/dto"
	"visionreporter/internal/logger"
	"visionreporter/internal/middleware"
	"visionreporter/internal/model"
	"visionreporter/internal/service/session"
	"visionreporter/internal/service/submission"
)

// StartSessionHandler opens the camera and detector and starts a capture session
// for the registered reporter.
func StartSessionHandler(manager *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		s, err := manager.Start(r.Context(), middleware.Reporter(r.Context()))
		switch {
		case errors.Is(err, session.ErrActive):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case errors.Is(err, model.ErrCapabilityUnavailable):
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		case err != nil:
			logger.Error("Failed to start session: %v", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusCreated, s.State(), logger)
	}
}

// StopSessionHandler tears the active session down.
func StopSessionHandler(manager *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		if err := manager.Stop(); err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SessionStateHandler returns the label, form and location of the active session.
func SessionStateHandler(manager *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := activeSession(w, manager)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, s.State(), logger)
	}
}

// SessionDescriptionHandler replaces the free-text description.
func SessionDescriptionHandler(manager *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		s, ok := activeSession(w, manager)
		if !ok {
			return
		}

		var update dto.DescriptionUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		s.SetDescription(update.Description)
		writeJSON(w, http.StatusOK, s.Form(), logger)
	}
}

// DraftReportHandler drafts report text for the current label.
func DraftReportHandler(manager *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		s, ok := activeSession(w, manager)
		if !ok {
			return
		}

		text := s.DraftReport(r.Context())
		writeJSON(w, http.StatusOK, dto.ReportResponse{Report: text}, logger)
	}
}

// SubmitCaseHandler stores the current evidence bundle as a NEW case.
func SubmitCaseHandler(manager *session.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		s, ok := activeSession(w, manager)
		if !ok {
			return
		}

		id, err := s.Submit(r.Context())
		switch {
		case errors.Is(err, submission.ErrBusy):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case err != nil:
			http.Error(w, "Failed to send report", http.StatusBadGateway)
			return
		}

		writeJSON(w, http.StatusCreated, dto.SubmitResponse{ID: id}, logger)
	}
}

func activeSession(w http.ResponseWriter, manager *session.Manager) (*session.Session, bool) {
	s, err := manager.Active()
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return s, true
}
