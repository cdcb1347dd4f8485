package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/nijaru/yt-summary/errors"
	"github.com/nijaru/yt-summary/utils"
	"golang.org/x/time/rate"
)

func Chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			handler = middlewares[i](handler)
		}
	}
	return handler
}

// RateLimit allows n requests per interval across all clients.
func RateLimit(n int, interval time.Duration) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Every(interval), n)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				GetLogger(r.Context()).Warn("Rate limit exceeded")
				utils.RespondWithError(w, errors.E(errors.KindRateLimited, "RateLimit", nil, "请求过于频繁，请稍后再试"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				err := errors.Internal("Recovery", fmt.Errorf("%v", rec), "服务器内部错误")
				GetLogger(r.Context()).WithError(err).WithField("stack", string(debug.Stack())).Error("Panic recovered")
				utils.RespondWithError(w, err)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
