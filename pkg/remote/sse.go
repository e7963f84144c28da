package remote

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func streamEvents(b *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			respondError(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		events, cancel := b.Subscribe()
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)

		// Comment line so clients know the subscription is live
		fmt.Fprint(w, ": connected\n\n")
		flusher.Flush()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}

				data, err := json.Marshal(ev)
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
				flusher.Flush()

			case <-r.Context().Done():
				return
			}
		}
	}
}
