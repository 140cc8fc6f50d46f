package panel

import "net/http"

// ServerBuilderOption configures a Server.
type ServerBuilderOption func(*server)

// WithAddr sets the listen address.
func WithAddr(addr string) ServerBuilderOption {
	return func(s *server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithMaxUpload sets the largest accepted upload in bytes.
func WithMaxUpload(n int64) ServerBuilderOption {
	return func(s *server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// WithOriginCheck sets the websocket origin check. The default accepts same-origin requests only.
func WithOriginCheck(check func(r *http.Request) bool) ServerBuilderOption {
	return func(s *server) {
		s.upgrader.CheckOrigin = check
	}
}
