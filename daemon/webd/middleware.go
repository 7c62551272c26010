package webd

import (
	"io"
	"net"
	"net/http"

	ghandlers "github.com/gorilla/handlers"
)

// tokenAuthenticationMiddleware checks for a valid token in the Authorization header.
// If the token is not valid, it returns a 403 Forbidden.
// If no token is configured, it allows all requests.
func (s *WebDaemon) tokenAuthenticationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		validToken := s.Config.Token
		if validToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := r.Header.Get("Authorization")
		if token == "" {
			// Header token not set. Check alternate protocol, which is using a query param with the name api_token.
			token = r.URL.Query().Get("api_token")
		}

		if token != validToken {
			s.logger.Warn("Invalid token", "method", r.Method, "url", r.URL.Path,
				"remote-addr", r.RemoteAddr, "user-agent", r.UserAgent())
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func permissiveCorsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Add("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept, Authorization")
		next.ServeHTTP(w, r)
	})
}

func contentTypeMiddlewareFunc(contentType string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", contentType)
			next.ServeHTTP(w, r)
		})
	}
}

// writeLog logs a request the way the rest of the daemon logs.
// The writer is unused; gorilla/handlers wants one.
func (s *WebDaemon) writeLog(_ io.Writer, params ghandlers.LogFormatterParams) {
	host, _, err := net.SplitHostPort(params.Request.RemoteAddr)
	if err != nil {
		host = params.Request.RemoteAddr
	}
	uri := params.Request.RequestURI
	if uri == "" {
		uri = params.URL.RequestURI()
	}
	s.logger.Debug("Request",
		"remote", host,
		"method", params.Request.Method,
		"uri", uri,
		"status", params.StatusCode,
		"size", params.Size)
}

func (s *WebDaemon) loggingMiddleware(next http.Handler) http.Handler {
	return ghandlers.CustomLoggingHandler(io.Discard, next, s.writeLog)
}
