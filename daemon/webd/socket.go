package webd

import (
	"encoding/json"

	"github.com/olahol/melody"
	"github.com/rotblauer/catwatch/events"
	"github.com/rotblauer/catwatch/history"
)

type websocketAction string

const (
	websocketActionLatest websocketAction = "latest"
	websocketActionMove   websocketAction = "move"
)

type broadcats struct {
	Action   websocketAction  `json:"action"`
	Latest   []history.Entry  `json:"latest,omitempty"`
	Movement *events.Movement `json:"movement,omitempty"`
}

// initMelody sets up the websocket hub: new connections get everyone's
// last position, then every movement as the collector reports it.
func (s *WebDaemon) initMelody() {
	s.melodyInstance = melody.New()

	s.melodyInstance.HandleConnect(func(session *melody.Session) {
		s.logger.Info("Websocket connected", "remote", session.Request.RemoteAddr)
		store, err := s.source()
		if err != nil {
			s.logger.Warn("Failed to load store for websocket", "error", err)
			return
		}
		b, err := json.Marshal(broadcats{Action: websocketActionLatest, Latest: store.Latest()})
		if err != nil {
			s.logger.Error("Failed to marshal latest", "error", err)
			return
		}
		_ = session.Write(b)
	})

	// Right now don't care about incoming messages from clients. Log and drop.
	s.melodyInstance.HandleMessage(func(session *melody.Session, msg []byte) {
		s.logger.Debug("Websocket message", "remote", session.Request.RemoteAddr, "message", string(msg))
	})

	s.melodyInstance.HandleDisconnect(func(session *melody.Session) {
		s.logger.Info("Websocket disconnected", "remote", session.Request.RemoteAddr)
	})

	s.melodyInstance.HandleError(func(session *melody.Session, e error) {
		s.logger.Warn("Websocket error", "remote", session.Request.RemoteAddr, "error", e)
	})

	s.movements = make(chan events.Movement, 16)
	s.movementsSub = events.MovementFeed.Subscribe(s.movements)
	go func(movements <-chan events.Movement, sub interface{ Err() <-chan error }) {
		for {
			select {
			case m := <-movements:
				b, err := json.Marshal(broadcats{Action: websocketActionMove, Movement: &m})
				if err != nil {
					s.logger.Error("Failed to marshal movement event", "error", err)
					continue
				}
				if err := s.melodyInstance.Broadcast(b); err != nil {
					s.logger.Warn("Failed to broadcast movement event", "error", err)
				}
			case err := <-sub.Err():
				// Closed on unsubscribe.
				if err != nil {
					s.logger.Error("Movement subscription failed", "error", err)
				}
				return
			}
		}
	}(s.movements, s.movementsSub)
}
