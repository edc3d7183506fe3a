package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/masato-nasu/pocketbridge/internal/resolve"
	"github.com/masato-nasu/pocketbridge/internal/urlnorm"
)

// Handler exposes the share-target boundary over HTTP: the same query
// parameters the installable app accepts (url, text, title, and legacy
// aliases) resolve to a JSON article.
func (a *App) Handler(logger zerolog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /read", a.handleRead)
	mux.HandleFunc("GET /cache", a.handleCache)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})
	return hlog.NewHandler(logger)(access(mux))
}

func (a *App) handleRead(w http.ResponseWriter, r *http.Request) {
	u, param, err := urlnorm.FromQuery(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, "no URL found in request parameters")
		return
	}
	hlog.FromRequest(r).Debug().Str("param", param).Str("url", u).Msg("share target accepted")

	// u is already normalized by FromQuery, so errors here are resolution
	// failures, never input validation.
	art, err := a.Read(r.Context(), u)
	if err != nil {
		status := http.StatusBadGateway
		if !errors.Is(err, resolve.ErrAllSourcesFailed) {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, art)
}

func (a *App) handleCache(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.cache.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
