package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/lifeguide/pkg/domain/model"
	"github.com/secmon-lab/lifeguide/pkg/utils/errutil"
	"github.com/secmon-lab/lifeguide/pkg/utils/safe"
)

type chatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	Query      string   `json:"query"`
	Response   string   `json:"response"`
	Categories []string `json:"categories"`
	Route      string   `json:"route"`
	Cached     bool     `json:"cached"`
	SessionID  string   `json:"session_id"`
}

type cacheEntryResponse struct {
	Query      string   `json:"query"`
	Answer     string   `json:"answer"`
	Categories []string `json:"categories"`
}

type cacheResponse struct {
	Count   int                  `json:"count"`
	Entries []cacheEntryResponse `json:"entries"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req chatRequest
	body := http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to decode chat request"), status)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		errutil.HandleHTTP(ctx, w, goerr.New("query is required"), http.StatusBadRequest)
		return
	}

	session := s.sessions.Get(model.SessionID(req.SessionID))
	reply := s.chat.HandleQuery(ctx, session, req.Query)

	writeJSON(w, r, chatResponse{
		Query:      reply.Query,
		Response:   reply.Text,
		Categories: reply.CategoryStrings(),
		Route:      reply.Route.String(),
		Cached:     reply.Cached,
		SessionID:  string(session.ID),
	})
}

func (s *Server) cacheHandler(w http.ResponseWriter, r *http.Request) {
	entries := s.chat.CacheEntries()
	resp := cacheResponse{
		Count:   len(entries),
		Entries: make([]cacheEntryResponse, len(entries)),
	}
	for i, e := range entries {
		cats := make([]string, len(e.Categories))
		for j, c := range e.Categories {
			cats[j] = c.String()
		}
		resp.Entries[i] = cacheEntryResponse{
			Query:      e.Query,
			Answer:     e.Answer,
			Categories: cats,
		}
	}
	writeJSON(w, r, resp)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	safe.Write(r.Context(), w, data)
}
