package route

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"stellarbot/src-server/metric"
	"stellarbot/src-server/utils"
	"stellarbot/src-server/vote"

	"github.com/go-chi/chi/v5"
)

const maxVoteBodyBytes = 64 << 10

type Enqueuer interface {
	Enqueue(v vote.Vote) bool
}

// Vote mounts one webhook per listing site. Votes are handed to q and
// processed in the background.
func Vote(r chi.Router, as *utils.AppState, q Enqueuer) {
	for _, site := range vote.Sites {
		r.Post(site.Path, AuthMiddleware(site.Name, site.Secret(as.Config), voteHandler(site, q)))
	}
}

func voteHandler(site vote.Site, q Enqueuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxVoteBodyBytes))
		if err != nil {
			metric.VotesRejected.WithLabelValues(site.Name, "bad_payload").Inc()
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				slog.Warn("rejected oversized vote", "site", site.Name, "limit", tooLarge.Limit)
				http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Can't read request body", http.StatusBadRequest)
			return
		}

		v, err := site.Parse(bytes.NewReader(body))
		if err != nil {
			metric.VotesRejected.WithLabelValues(site.Name, "bad_payload").Inc()
			slog.Warn("rejected malformed vote", "site", site.Name, "error", err)
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		if !q.Enqueue(v) {
			metric.VotesRejected.WithLabelValues(site.Name, "queue_full").Inc()
			slog.Error("vote queue is full, dropping vote", "site", site.Name, "user", v.UserID)
			http.Error(w, "Busy", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
