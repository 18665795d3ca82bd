// telegram-mock stubs the Telegram Bot API for local runs: it accepts any
// bot method call and answers {"ok":true}, logging what was called. Point
// TELEGRAM_API_URL at it to exercise the gateway without a real bot token.
package main

import (
	"flag"
	"io"
	"log"
	"net/http"
	"strings"
)

func main() {
	var (
		port    = flag.String("port", "9099", "port to listen on")
		verbose = flag.Bool("verbose", false, "log request bodies")
	)
	flag.Parse()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// Bot API paths look like /bot<token>/<method>.
		if !strings.HasPrefix(r.URL.Path, "/bot") {
			http.NotFound(w, r)
			return
		}
		method := r.URL.Path
		if idx := strings.LastIndexByte(method, '/'); idx >= 0 {
			method = method[idx+1:]
		}

		if *verbose {
			payload, _ := io.ReadAll(io.LimitReader(r.Body, 4096))
			log.Printf("%s %s", method, strings.TrimSpace(string(payload)))
		} else {
			log.Printf("%s", method)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	addr := ":" + *port
	log.Printf("mock telegram api listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
