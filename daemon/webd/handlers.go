package webd

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/jellydator/ttlcache/v3"
	"github.com/paulmach/orb/geojson"
	"github.com/rotblauer/catwatch/conceptual"
	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/metrics"
	"github.com/rotblauer/catwatch/params"
)

func pingPong(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}

type webDaemonStatus struct {
	StartedAt time.Time               `json:"started_at"`
	Uptime    string                  `json:"uptime"`
	Config    *params.WebDaemonConfig `json:"config"`
	WSOpen    bool                    `json:"ws_open"`
	WSConns   int                     `json:"ws_conns"`
	People    int                     `json:"people"`
	Records   int                     `json:"records"`
	Metrics   map[string]int64        `json:"metrics"`
}

func (s *WebDaemon) statusReport(w http.ResponseWriter, r *http.Request) {
	st := webDaemonStatus{
		StartedAt: s.started,
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		WSOpen:    !s.melodyInstance.IsClosed(),
		WSConns:   s.melodyInstance.Len(),
		Config:    s.Config,
		Metrics:   metrics.Counts(),
	}
	if store, err := s.source(); err == nil {
		st.People = len(store.People())
		st.Records = store.Count()
	} else {
		s.logger.Warn("Failed to load store for status", "error", err)
	}
	s.writeJSON(w, st)
}

func (s *WebDaemon) writeJSON(w http.ResponseWriter, v any) {
	j, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		s.logger.Error("Failed to marshal response", "error", err)
		http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
		return
	}
	if _, err := w.Write(j); err != nil {
		s.logger.Error("Failed to write response", "error", err)
	}
}

func (s *WebDaemon) store(w http.ResponseWriter) (*history.Store, bool) {
	store, err := s.source()
	if err != nil {
		s.logger.Warn("Failed to load store", "error", err)
		http.Error(w, "Failed to load store", http.StatusInternalServerError)
		return nil, false
	}
	return store, true
}

// requestPerson reads the {name} route variable, already unescaped by mux.
func requestPerson(r *http.Request) conceptual.PersonID {
	return conceptual.PersonID(mux.Vars(r)["name"])
}

func (s *WebDaemon) handlePeople(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w)
	if !ok {
		return
	}
	s.writeJSON(w, store.Latest())
}

func (s *WebDaemon) handleSummary(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w)
	if !ok {
		return
	}
	s.writeJSON(w, store.Summaries())
}

func (s *WebDaemon) handleLast(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w)
	if !ok {
		return
	}
	person := requestPerson(r)
	last, ok := store.Last(person)
	if !ok {
		http.Error(w, "no person that", http.StatusNotFound)
		return
	}
	s.writeJSON(w, history.Entry{Person: person, Record: last})
}

func (s *WebDaemon) handleHistory(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w)
	if !ok {
		return
	}
	h := store.History(requestPerson(r))
	if h == nil {
		http.Error(w, "no person that", http.StatusNotFound)
		return
	}
	s.writeJSON(w, h)
}

// handleGeoJSON renders a person's history as a FeatureCollection of points.
// Rendered collections are cached for Config.CacheTTL.
func (s *WebDaemon) handleGeoJSON(w http.ResponseWriter, r *http.Request) {
	person := requestPerson(r)
	if item := s.responses.Get(person.String()); item != nil {
		_, _ = w.Write(item.Value())
		return
	}
	store, ok := s.store(w)
	if !ok {
		return
	}
	h := store.History(person)
	if h == nil {
		http.Error(w, "no person that", http.StatusNotFound)
		return
	}
	fc := geojson.NewFeatureCollection()
	for _, rec := range h {
		fc.Append(rec.Feature(person.String()))
	}
	b, err := fc.MarshalJSON()
	if err != nil {
		s.logger.Error("Failed to marshal geojson", "error", err)
		http.Error(w, "Failed to marshal geojson", http.StatusInternalServerError)
		return
	}
	s.responses.Set(person.String(), b, ttlcache.DefaultTTL)
	_, _ = w.Write(b)
}
