package assetcache

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"

	"github.com/GregMSThompson/moneylog/pkg/logger"
)

const DefaultPrefix = "moneylog"

// DefaultManifest is the shell: page, styles, script, web manifest, icon and
// the third-party UI libraries it loads from CDNs.
var DefaultManifest = []string{
	"./",
	"./index.html",
	"./style.css",
	"./script.js",
	"./manifest.json",
	"./icon.svg",
	"https://unpkg.com/vue@3/dist/vue.global.js",
	"https://cdn.jsdelivr.net/npm/chart.js",
	"https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.1/css/all.min.css",
}

// SplitManifest parses a comma-separated manifest list; empty input gives
// DefaultManifest.
func SplitManifest(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultManifest...)
	}
	return out
}

// NewShellHandler proxies shell requests to origin through transport
// (normally the Registration). The key query parameter is consumed before
// proxying so cached shell pages match regardless of the caller's key.
func NewShellHandler(origin *url.URL, transport http.RoundTripper) http.Handler {
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(origin)
			q := pr.Out.URL.Query()
			if q.Has("key") {
				q.Del("key")
				pr.Out.URL.RawQuery = q.Encode()
			}
			pr.Out.Host = origin.Host
		},
		Transport: transport,
		ModifyResponse: func(resp *http.Response) error {
			if resp.Request == nil {
				return nil
			}
			if p := resp.Request.URL.Path; p == "/" || strings.HasSuffix(p, ".html") || strings.HasSuffix(p, "sw.js") {
				resp.Header.Set("Cache-Control", "no-cache")
			}
			return nil
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			logger.FromContext(r.Context()).Warn("shell unavailable", "path", r.URL.Path, "error", err)
			http.Error(w, "shell unavailable", http.StatusBadGateway)
		},
	}
}
