package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rsawyer/homewarden/internal/backup"
	"github.com/rsawyer/homewarden/internal/clock"
	"github.com/rsawyer/homewarden/internal/handler"
	"github.com/rsawyer/homewarden/internal/middleware"
	"github.com/rsawyer/homewarden/internal/push"
	"github.com/rsawyer/homewarden/internal/store"
	ws "github.com/rsawyer/homewarden/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	maintenanceH  *handler.MaintenanceHandler
	taskH         *handler.TaskHandler
	dashboardH    *handler.DashboardHandler
	authH         *handler.AuthHandler
	settingsH     *handler.SettingsHandler
	pushH         *handler.PushHandler
	userStore     *store.UserStore
	sessionStore  *store.SessionStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	pushScheduler *push.Scheduler
	logger        *slog.Logger
}

func New(db *sql.DB, clk clock.Clock, backupCfg backup.Config, pushCfg push.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	maintenanceStore := store.NewMaintenanceStore(db)
	taskStore := store.NewTaskStore(db)
	settingsStore := store.NewSettingsStore(db)
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)
	pushStore := store.NewPushStore(db)
	backupStore := store.NewBackupStore(db)

	backupMgr := backup.NewManager(backupCfg, db, backupStore, settingsStore, func(s backup.Status) {
		hub.Broadcast(ws.Event{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra:  map[string]any{"error": s.Error},
		})
	}, logger.With("component", "backup"))

	var pushSvc *push.Service
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if pushCfg.VAPIDPublicKey != "" && pushCfg.VAPIDPrivateKey != "" {
		pushSvc = push.NewService(pushCfg.VAPIDPublicKey, pushCfg.VAPIDPrivateKey)
		pushSched = push.NewScheduler(pushSvc, pushStore, maintenanceStore, taskStore, clk,
			reminderInterval(settingsStore), logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushStore, pushSvc, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		maintenanceH:  handler.NewMaintenanceHandler(maintenanceStore, hub, clk, logger.With("component", "maintenance")),
		taskH:         handler.NewTaskHandler(taskStore, hub, clk, logger.With("component", "task")),
		dashboardH:    handler.NewDashboardHandler(maintenanceStore, taskStore, clk, logger.With("component", "dashboard")),
		authH:         handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		settingsH:     handler.NewSettingsHandler(settingsStore, backupStore, backupMgr, hub, logger.With("component", "settings")),
		pushH:         pushH,
		userStore:     userStore,
		sessionStore:  sessionStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		pushScheduler: pushSched,
		logger:        logger,
	}
}

// reminderInterval reads the configured reminder wake interval, falling
// back to an hour when the setting is missing or malformed.
func reminderInterval(ss *store.SettingsStore) time.Duration {
	v, err := ss.Get("reminder_interval_minutes")
	if err == nil {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			return time.Duration(n) * time.Minute
		}
	}
	return time.Hour
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// PushScheduler returns the reminder scheduler, nil when push is not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Maintenance API routes
	mux.HandleFunc("POST /api/maintenance", s.maintenanceH.Create)
	mux.HandleFunc("GET /api/maintenance", s.maintenanceH.List)
	mux.HandleFunc("GET /api/maintenance/{id}", s.maintenanceH.Get)
	mux.HandleFunc("PUT /api/maintenance/{id}", s.maintenanceH.Update)
	mux.HandleFunc("DELETE /api/maintenance/{id}", s.maintenanceH.Delete)
	mux.HandleFunc("POST /api/maintenance/{id}/complete", s.maintenanceH.Complete)
	mux.HandleFunc("POST /api/maintenance/{id}/start", s.maintenanceH.Start)
	mux.HandleFunc("POST /api/maintenance/{id}/cancel", s.maintenanceH.Cancel)
	mux.HandleFunc("GET /api/maintenance/{id}/records", s.maintenanceH.Records)

	// Task API routes
	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("PUT /api/tasks/{id}", s.taskH.Update)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("POST /api/tasks/{id}/start", s.taskH.Start)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/cancel", s.taskH.Cancel)

	// Dashboard API routes
	mux.HandleFunc("GET /api/dashboard/summary", s.dashboardH.Summary)
	mux.HandleFunc("GET /api/dashboard/charts", s.dashboardH.Charts)

	// Settings and backup API routes (admin only)
	mux.Handle("GET /api/settings", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.Get)))
	mux.Handle("PUT /api/settings", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.Update)))
	mux.Handle("POST /api/backup/run", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.RunBackup)))
	mux.Handle("GET /api/backup/status", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.BackupStatus)))
	mux.Handle("GET /api/backup/list", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.ListBackups)))
	mux.Handle("POST /api/backup/restore/{id}", middleware.RequireAdmin(http.HandlerFunc(s.settingsH.RestoreBackup)))

	// Push notification API routes
	if s.pushH != nil {
		mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
		mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	}

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))
}
