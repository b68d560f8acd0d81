package handler

import (
	"net/http"
	"net/url"
	"strings"
	"visionreporter/internal/logger"
	"visionreporter/internal/middleware"
)

// IdentityHandler handles POST /api/identity by storing the reporter name in a cookie.
func IdentityHandler(logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !allowMethod(w, r, http.MethodPost) {
			return
		}
		name := strings.TrimSpace(r.FormValue("name"))
		if name == "" {
			http.Error(w, "Name is required", http.StatusBadRequest)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.ReporterCookie,
			Value:    url.QueryEscape(name),
			Path:     "/",
			MaxAge:   2592000, // 30 days
			HttpOnly: true,
		})
		logger.Info("Reporter registered: %s", name)
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}
