package httpserver

import (
	"log"
	"net/http"
	"time"
)

// NewMux returns the bot's side HTTP surface. status is appended to the
// /healthz body; it may be nil.
func NewMux(status func() string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		body := "ok"
		if status != nil {
			if s := status(); s != "" {
				body += "\n" + s
			}
		}
		_, _ = w.Write([]byte(body))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("banner morphing check bot"))
	})
	return mux
}

func StartHTTP(addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("health server listening on %s/healthz", addr)
	return srv.ListenAndServe()
}
