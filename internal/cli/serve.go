package cli

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	apperrors "github.com/PeterZhouSZ/string2shape/pkg/errors"
	"github.com/PeterZhouSZ/string2shape/pkg/pipeline"
)

// serveCommand creates the serve command, which exposes the pipeline entry
// points over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline entry points over HTTP",
		Long: `Serve the pipeline entry points as a JSON HTTP API.

Endpoints:
  GET  /healthz
  POST /collide     {"file": ..., "single": bool, "ids": bool}
  POST /variations  {"file_a": ..., "file_b": ...}
  POST /repair      {"file_a": ..., "file_b": ..., "target": ..., "out": ...}

File paths are resolved on the server's filesystem.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool) error {
	r, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer r.Close()

	if addr == "" {
		addr = r.Config.Server.Addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newRouter builds the HTTP API over a pipeline runner.
func newRouter(r *pipeline.Runner) http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(5 * time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Post("/collide", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			File   string `json:"file"`
			Single bool   `json:"single"`
			IDs    bool   `json:"ids"`
		}
		if !decode(w, req, &body) || !requireFields(w, body.File != "", "file") {
			return
		}
		var (
			text string
			err  error
		)
		if body.Single {
			text, err = r.ToCollisionString(req.Context(), body.File)
		} else {
			text, err = r.ToCollisionStrings(req.Context(), body.File, body.IDs)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	})

	router.Post("/variations", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FileA string `json:"file_a"`
			FileB string `json:"file_b"`
		}
		if !decode(w, req, &body) || !requireFields(w, body.FileA != "" && body.FileB != "", "file_a, file_b") {
			return
		}
		text, err := r.GenerateVariations(req.Context(), body.FileA, body.FileB)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"text": text})
	})

	router.Post("/repair", func(w http.ResponseWriter, req *http.Request) {
		var body struct {
			FileA  string `json:"file_a"`
			FileB  string `json:"file_b"`
			Target string `json:"target"`
			Out    string `json:"out"`
		}
		if !decode(w, req, &body) ||
			!requireFields(w, body.FileA != "" && body.FileB != "" && body.Target != "" && body.Out != "", "file_a, file_b, target, out") {
			return
		}
		status, err := r.Repair(req.Context(), body.FileA, body.FileB, body.Target, body.Out)
		if err != nil {
			// Repair outcomes are part of the API contract and keep their
			// numeric status; everything else is a server-side failure.
			switch apperrors.GetCode(err) {
			case apperrors.ErrCodeGrammarViolation, apperrors.ErrCodeRepairExhausted, apperrors.ErrCodeRepairInvalid:
				writeJSON(w, http.StatusOK, map[string]any{
					"status": status,
					"code":   string(apperrors.GetCode(err)),
					"error":  apperrors.UserMessage(err),
				})
			default:
				writeError(w, err)
			}
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"status": status})
	})

	return router
}

func decode(w http.ResponseWriter, req *http.Request, v any) bool {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func requireFields(w http.ResponseWriter, ok bool, fields string) bool {
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing required fields: " + fields})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	resp := map[string]string{"error": apperrors.UserMessage(err)}
	if code := apperrors.GetCode(err); code != "" {
		resp["code"] = string(code)
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
