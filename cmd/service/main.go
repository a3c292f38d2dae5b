package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"music-service/internal/auth"
	"music-service/internal/config"
	"music-service/internal/httpx"
	"music-service/internal/playlist"
	"music-service/internal/song"
	"music-service/internal/storage"
	"music-service/internal/store"
	"music-service/internal/user"
)

func main() {
	ctx := context.Background()

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("music-service: config: %v", err)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("music-service: failed to connect to DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("music-service: db ping: %v", err)
	}

	if err := store.AutoMigrate(ctx, pool); err != nil {
		log.Fatalf("music-service: migrate: %v", err)
	}

	// Redis backs session-token revocation; without it logout still clears
	// the cookie but issued tokens stay valid until expiry.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	} else {
		log.Printf("music-service: REDIS_ADDR not set, token revocation disabled")
	}

	audio, err := storage.NewDisk(cfg.AudioDir)
	if err != nil {
		log.Fatalf("music-service: audio dir: %v", err)
	}
	uploads, err := storage.NewDisk(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("music-service: uploads dir: %v", err)
	}

	authSrv := auth.NewServer(pool, rdb, cfg)
	songSrv := song.NewServer(pool, audio)
	playlistSrv := playlist.NewServer(pool)
	userSrv := user.NewServer(pool, uploads, authSrv)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(httpx.CORS(cfg.CORSAllowedOrigin))
	r.Use(httpx.BodySizeLimit(cfg.MaxBodyBytes))
	r.Use(httpx.RateLimit(cfg.RateLimitMax, cfg.RateLimitWindow,
		"Too many requests from the same IP. Try again later."))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"service": "music-service"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", authSrv.Router())
		r.Mount("/songs", songSrv.Router(authSrv.RequireUser, authSrv.RequireAdmin))
		r.Mount("/playlists", playlistSrv.Router(authSrv.RequireUser, authSrv.RequireAdmin))
		r.Mount("/users", userSrv.Router(authSrv.RequireUser, authSrv.RequireAdmin))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      5 * time.Minute, // streaming a full track can take a while
		IdleTimeout:       2 * time.Minute,
	}

	log.Printf("music-service listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("music-service: %v", err)
	}
}
