package webd

import (
	"net/http/httptest"
	"testing"

	"github.com/rotblauer/catwatch/history"
	"github.com/rotblauer/catwatch/params"
)

// newTestWebDaemon serves store through an httptest server.
func newTestWebDaemon(t *testing.T, config *params.WebDaemonConfig, store *history.Store) (*WebDaemon, *httptest.Server) {
	t.Helper()
	if config == nil {
		config = params.DefaultTestWebDaemonConfig()
	}
	d := NewLiveWebDaemon(config, store)
	srv := httptest.NewServer(d.NewRouter())
	t.Cleanup(func() {
		srv.Close()
		d.Close()
	})
	return d, srv
}
