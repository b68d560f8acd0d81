package handler

import (
	"encoding/json"
	"net/http"
	"visionreporter/internal/dto"
	"visionreporter/internal/logger"
	"visionreporter/internal/service/report"
)

// AIReportHandler drafts a report for {"objectName": ...}. It always answers
// 200; drafting failures come back as placeholder text.
func AIReportHandler(drafter report.Drafter, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}

		var req dto.ReportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warning("Invalid AI report request: %v", err)
		}

		text := drafter.Draft(r.Context(), req.ObjectName)
		writeJSON(w, http.StatusOK, dto.ReportResponse{Report: text}, logger)
	}
}
