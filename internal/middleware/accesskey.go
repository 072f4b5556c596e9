package middleware

import (
	"context"
	"net/http"
	"path"
	"strings"

	"github.com/GregMSThompson/moneylog/pkg/logger"
)

const AccessKeyParam = "key"

type keyApplier interface {
	ApplyAccessKey(ctx context.Context, present bool, value string) error
}

type accessKeyMiddleware struct {
	keys keyApplier
}

func NewAccessKeyMiddleware(keys keyApplier) *accessKeyMiddleware {
	return &accessKeyMiddleware{keys: keys}
}

// AccessKey reads the key query parameter on shell page loads, the way the
// installed app is opened. Sub-resource requests never carry it and are
// left alone.
func (m *accessKeyMiddleware) AccessKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && isDocument(r.URL.Path) {
			values, present := r.URL.Query()[AccessKeyParam]
			value := ""
			if present && len(values) > 0 {
				value = values[0]
			}
			if err := m.keys.ApplyAccessKey(r.Context(), present, value); err != nil {
				logger.FromContext(r.Context()).Error("access key not applied", "error", err)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func isDocument(p string) bool {
	if strings.HasSuffix(p, "/") {
		return true
	}
	return path.Ext(p) == ".html"
}
