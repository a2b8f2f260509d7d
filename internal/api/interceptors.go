package api

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/fulldump/box"
	"github.com/rs/zerolog"
)

// accessLog records one line per handled request.
func accessLog(logger zerolog.Logger) box.I {
	return func(next box.H) box.H {
		return func(ctx context.Context) {
			start := time.Now()
			next(ctx)

			r := box.GetRequest(ctx)
			logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Str("remote", remoteAddr(r)).
				Dur("elapsed", time.Since(start)).
				Msg("request handled")
		}
	}
}

// renderError turns an error left behind by a handler into the JSON error
// envelope, with the status code chosen by the error's kind.
func renderError(next box.H) box.H {
	return func(ctx context.Context) {
		next(ctx)

		err := box.GetError(ctx)
		if err == nil {
			return
		}

		w := box.GetResponse(ctx)
		w.WriteHeader(statusFor(err))
		_ = json.NewEncoder(w).Encode(errorResponse{
			Error: errorDetail{Message: err.Error()},
		})
	}
}

func remoteAddr(r *http.Request) string {
	forwarded := strings.TrimSpace(strings.Split(r.Header.Get("X-Forwarded-For"), ",")[0])
	if forwarded != "" {
		return forwarded
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
