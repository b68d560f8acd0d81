package route

import (
	"net/http"
	"os"
	"path/filepath"
	"visionreporter/internal/config"
	"visionreporter/internal/handler"
	"visionreporter/internal/logger"
	"visionreporter/internal/middleware"
	"visionreporter/internal/repository"
	"visionreporter/internal/service/report"
	"visionreporter/internal/service/session"
	"visionreporter/internal/service/websocket"
)

// Services groups what the HTTP surface talks to.
type Services struct {
	Sessions *session.Manager
	Cases    repository.CaseRepository
	Drafter  report.Drafter
	Hub      *websocket.HubService
}

// dynamicHTMLHandler serves /path as /static/path.html if the file exists; otherwise 404.
func dynamicHTMLHandler(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/" {
		path = "/index"
	}

	filePath := filepath.Join("static", path+".html")

	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, filePath)
}

// SetupRoutes registers static file serving, the session, case and report
// endpoints, and wraps the mux with the identity middleware.
func SetupRoutes(svc Services, cfg *config.Config, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	// Static files
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	// Capture session
	mux.HandleFunc("/api/session/view", handler.ViewWebsocketHandler(svc.Hub, svc.Sessions, log))
	mux.HandleFunc("/api/session/start", handler.StartSessionHandler(svc.Sessions, log))
	mux.HandleFunc("/api/session/stop", handler.StopSessionHandler(svc.Sessions, log))
	mux.HandleFunc("/api/session/state", handler.SessionStateHandler(svc.Sessions, log))
	mux.HandleFunc("/api/session/description", handler.SessionDescriptionHandler(svc.Sessions, log))
	mux.HandleFunc("/api/session/report", handler.DraftReportHandler(svc.Sessions, log))
	mux.HandleFunc("/api/session/submit", handler.SubmitCaseHandler(svc.Sessions, log))

	// Cases
	mux.HandleFunc("/api/cases", handler.GetCasesHandler(svc.Cases, log))
	mux.HandleFunc("/api/cases/view", handler.ViewCaseHandler(svc.Cases, log))
	mux.HandleFunc("/api/cases/status", handler.UpdateCaseStatusHandler(svc.Cases, log))

	mux.HandleFunc("/api/ai-report", handler.AIReportHandler(svc.Drafter, log))
	mux.HandleFunc("/api/identity", handler.IdentityHandler(log))

	// Log endpoints
	logFiles := map[string]string{
		"info":    logger.InfoFile,
		"warning": logger.WarningFile,
		"error":   logger.ErrorFile,
	}
	for name, file := range logFiles {
		mux.HandleFunc("/logs/"+name, handler.ShowLogsHandler(cfg, file))
		mux.HandleFunc("/logs/"+name+"/clear", handler.ClearLogsHandler(log, file))
	}

	// Automatic HTML handler mapping for example: /cases -> /static/cases.html
	mux.HandleFunc("/", dynamicHTMLHandler)

	return middleware.Identity(mux)
}
