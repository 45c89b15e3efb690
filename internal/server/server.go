package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/tidyroom/internal/backup"
	"github.com/dukerupert/tidyroom/internal/config"
	"github.com/dukerupert/tidyroom/internal/engine"
	"github.com/dukerupert/tidyroom/internal/handler"
	"github.com/dukerupert/tidyroom/internal/middleware"
	"github.com/dukerupert/tidyroom/internal/push"
	"github.com/dukerupert/tidyroom/internal/store"
	ws "github.com/dukerupert/tidyroom/internal/websocket"
)

type Server struct {
	db            *sql.DB
	engine        *engine.Engine
	hub           *ws.Hub
	authH         *handler.AuthHandler
	childH        *handler.ChildHandler
	taskH         *handler.TaskHandler
	catalogH      *handler.CatalogHandler
	shopH         *handler.ShopHandler
	pushH         *handler.PushHandler
	backupH       *handler.BackupHandler
	sessionStore  *store.SessionStore
	profileStore  *store.ProfileStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	logger        *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, loc *time.Location, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	familyStore := store.NewFamilyStore(db)
	profileStore := store.NewProfileStore(db)
	sessionStore := store.NewSessionStore(db)
	childStore := store.NewChildStore(db)
	taskStore := store.NewTaskStore(db)
	roomStore := store.NewRoomStore(db)
	streakStore := store.NewStreakStore(db)
	pointsStore := store.NewPointsStore(db)
	levelStore := store.NewLevelStore(db)
	achievementStore := store.NewAchievementStore(db)
	catalogStore := store.NewCatalogStore(db)
	inventoryStore := store.NewInventoryStore(db)
	pushStore := store.NewPushStore(db)

	pushSvc := push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey)

	// Engine events fan out to live websocket clients and, when VAPID keys
	// are configured, to web push.
	sinks := []engine.Sink{hub.Publish}
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		notifier := push.NewNotifier(pushSvc, pushStore, childStore, logger.With("component", "push"))
		sinks = append(sinks, notifier.Notify)
	}
	eng := engine.New(db, loc, logger.With("component", "engine"), func(ev engine.Event) {
		for _, s := range sinks {
			s(ev)
		}
	})

	backupMgr := backup.NewManager(cfg.Backup, cfg.DBPath, db, logger.With("component", "backup"))

	return &Server{
		db:            db,
		engine:        eng,
		hub:           hub,
		authH:         handler.NewAuthHandler(familyStore, profileStore, sessionStore, childStore, cfg.SessionTTL, logger.With("component", "auth")),
		childH:        handler.NewChildHandler(eng, childStore, profileStore, roomStore, streakStore, pointsStore, achievementStore, logger.With("component", "child")),
		taskH:         handler.NewTaskHandler(eng, taskStore, childStore, catalogStore, logger.With("component", "task")),
		catalogH:      handler.NewCatalogHandler(levelStore, achievementStore, catalogStore, logger.With("component", "catalog")),
		shopH:         handler.NewShopHandler(eng, childStore, inventoryStore, logger.With("component", "shop")),
		pushH:         handler.NewPushHandler(pushSvc, pushStore, logger.With("component", "push_handler")),
		backupH:       handler.NewBackupHandler(backupMgr, logger.With("component", "backup_handler")),
		sessionStore:  sessionStore,
		profileStore:  profileStore,
		pushStore:     pushStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		logger:        logger,
	}
}

// Engine returns the game engine, used by the background sweeper.
func (s *Server) Engine() *engine.Engine {
	return s.engine
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// Sessions returns the session store for expiry cleanup.
func (s *Server) Sessions() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the limiter for periodic cleanup.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/join", s.rateLimitedHandler(s.authH.Join))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/pin-login", s.rateLimitedHandler(s.authH.PinLogin))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.profileStore)
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
	parent := func(h http.HandlerFunc) http.Handler {
		return middleware.RequireParent(h)
	}

	// Session
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Children
	mux.Handle("POST /api/children", parent(s.childH.Create))
	mux.HandleFunc("GET /api/children", s.childH.List)
	mux.HandleFunc("GET /api/children/{id}", s.childH.Get)
	mux.Handle("DELETE /api/children/{id}", parent(s.childH.Delete))
	mux.HandleFunc("GET /api/children/{id}/room", s.childH.Room)
	mux.HandleFunc("GET /api/children/{id}/streak", s.childH.Streak)
	mux.HandleFunc("GET /api/children/{id}/points", s.childH.Points)
	mux.HandleFunc("GET /api/children/{id}/achievements", s.childH.Achievements)
	mux.Handle("POST /api/children/{id}/adjust", parent(s.childH.Adjust))
	mux.Handle("POST /api/children/{id}/profile", parent(s.childH.CreateProfile))
	mux.Handle("POST /api/children/{id}/pin", parent(s.childH.SetPIN))
	mux.HandleFunc("POST /api/children/{id}/pin/verify", s.childH.VerifyPIN)

	// Tasks
	mux.Handle("POST /api/tasks", parent(s.taskH.Create))
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.Handle("DELETE /api/tasks/{id}", parent(s.taskH.Delete))
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)
	mux.HandleFunc("POST /api/tasks/{id}/resubmit", s.taskH.Resubmit)
	mux.Handle("POST /api/tasks/{id}/verify", parent(s.taskH.Verify))
	mux.Handle("POST /api/tasks/{id}/reject", parent(s.taskH.Reject))

	// Catalog
	mux.HandleFunc("GET /api/levels", s.catalogH.Levels)
	mux.HandleFunc("GET /api/achievements", s.catalogH.Achievements)
	mux.HandleFunc("GET /api/catalog/themes", s.catalogH.Themes)
	mux.HandleFunc("GET /api/catalog/decorations", s.catalogH.Decorations)
	mux.HandleFunc("GET /api/templates", s.catalogH.Templates)

	// Store purchases and room inventory
	mux.HandleFunc("POST /api/children/{id}/purchases", s.shopH.Purchase)
	mux.HandleFunc("GET /api/children/{id}/inventory", s.shopH.Inventory)
	mux.HandleFunc("POST /api/children/{id}/inventory/{inv_id}/equip", s.shopH.Equip)
	mux.HandleFunc("POST /api/children/{id}/inventory/{inv_id}/unequip", s.shopH.Unequip)
	mux.HandleFunc("PUT /api/children/{id}/inventory/{inv_id}/position", s.shopH.SetPosition)

	// Push notifications
	mux.HandleFunc("GET /api/push/vapid-key", s.pushH.VAPIDKey)
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)

	// Backups (parents only)
	mux.Handle("GET /api/backup", parent(s.backupH.List))
	mux.Handle("GET /api/backup/status", parent(s.backupH.Status))
	mux.Handle("POST /api/backup/run", parent(s.backupH.Run))
	mux.Handle("GET /api/backup/{id}/download", parent(s.backupH.Download))

	// Live updates
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))
}
