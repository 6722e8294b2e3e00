package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/zurihub/places-cli/internal/category"
	"github.com/zurihub/places-cli/internal/model"
	"github.com/zurihub/places-cli/internal/snapshot"
	"github.com/zurihub/places-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve snapshots and run history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		catalog, err := category.Load(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		writer, err := snapshot.NewWriter(cfg.Output.Dir)
		if err != nil {
			return err
		}
		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           newRouter(catalog, writer, st),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

func newRouter(catalog *category.Catalog, writer *snapshot.Writer, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/api/categories", func(w http.ResponseWriter, _ *http.Request) {
		type categoryInfo struct {
			Key        string `json:"key"`
			Display    string `json:"display"`
			MinReviews int    `json:"min_reviews"`
			Queries    int    `json:"queries"`
		}
		out := make([]categoryInfo, 0, len(catalog.Categories))
		for _, c := range catalog.Categories {
			out = append(out, categoryInfo{
				Key:        c.Key,
				Display:    c.Display,
				MinReviews: c.MinReviews,
				Queries:    len(c.Queries),
			})
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Get("/api/snapshots/{category}", func(w http.ResponseWriter, req *http.Request) {
		key := chi.URLParam(req, "category")
		if _, ok := catalog.Get(key); !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown category"})
			return
		}
		doc, err := writer.ReadCategory(key)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no snapshot for category"})
			return
		}
		writeJSON(w, http.StatusOK, doc)
	})

	r.Get("/api/runs", func(w http.ResponseWriter, req *http.Request) {
		filter := store.RunFilter{
			Category: req.URL.Query().Get("category"),
		}
		runs, err := st.ListRuns(req.Context(), filter)
		if err != nil {
			zap.L().Error("list runs", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "list runs failed"})
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
