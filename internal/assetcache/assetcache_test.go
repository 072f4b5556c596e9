package assetcache

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/GregMSThompson/moneylog/pkg/helpers"
)

type stubTransport struct {
	mu     sync.Mutex
	bodies map[string]string
	down   bool
	calls  []string
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req.Method+" "+req.URL.String())
	if s.down {
		return nil, errors.New("offline")
	}
	body, ok := s.bodies[req.URL.String()]
	status := http.StatusOK
	if !ok {
		status = http.StatusNotFound
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"text/plain"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func (s *stubTransport) setDown(down bool) {
	s.mu.Lock()
	s.down = down
	s.mu.Unlock()
}

func (s *stubTransport) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func testOrigin(t *testing.T) *url.URL {
	t.Helper()
	u, err := url.Parse("http://shell.test")
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func shellTransport() *stubTransport {
	return &stubTransport{bodies: map[string]string{
		"http://shell.test/":           "<html>root</html>",
		"http://shell.test/index.html": "<html>index</html>",
		"http://shell.test/script.js":  "console.log(1)",
	}}
}

func testConfig(t *testing.T, version string, strategy Strategy) Config {
	return Config{
		Prefix:      "moneylog",
		Version:     version,
		Origin:      testOrigin(t),
		Manifest:    []string{"./", "./index.html", "./script.js"},
		Strategy:    strategy,
		BypassHosts: []string{"script.google.com"},
	}
}

func get(t *testing.T, rt http.RoundTripper, raw string) (*http.Response, string, error) {
	t.Helper()
	req, err := http.NewRequestWithContext(helpers.TestCtx(), http.MethodGet, raw, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := rt.RoundTrip(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp, string(b), nil
}

func TestInstallPopulatesStore(t *testing.T) {
	storage := NewStorage()
	w := NewWorker(testConfig(t, "v1", CacheFirst), storage, shellTransport())

	if err := w.Install(helpers.TestCtx()); err != nil {
		t.Fatalf("Install returned error: %v", err)
	}
	if w.State() != StateInstalled {
		t.Fatalf("state = %s, want installed", w.State())
	}
	st, ok := storage.Lookup("moneylog-v1")
	if !ok || st.Len() != 3 {
		t.Fatalf("expected 3 cached entries, got ok=%v", ok)
	}
}

func TestInstallIsAllOrNothing(t *testing.T) {
	storage := NewStorage()
	cfg := testConfig(t, "v1", CacheFirst)
	cfg.Manifest = append(cfg.Manifest, "./missing.css")
	w := NewWorker(cfg, storage, shellTransport())

	if err := w.Install(helpers.TestCtx()); err == nil {
		t.Fatal("expected install error")
	}
	if w.State() != StateRedundant {
		t.Fatalf("state = %s, want redundant", w.State())
	}
	if storage.Has("moneylog-v1") {
		t.Fatal("partial store must be deleted")
	}
}

func TestActivationKeepsOnlyCurrentGeneration(t *testing.T) {
	storage := NewStorage()
	transport := shellTransport()
	reg := NewRegistration(storage, transport)

	var found []string
	reg.OnUpdateFound(func(w *Worker) { found = append(found, w.CacheName()) })

	if _, err := reg.Update(helpers.TestCtx(), testConfig(t, "v1", CacheFirst)); err != nil {
		t.Fatalf("v1 update: %v", err)
	}
	if reg.Active() == nil || reg.Active().State() != StateActivated {
		t.Fatal("first install should activate immediately")
	}
	if len(found) != 0 {
		t.Fatalf("first install is not an update: %v", found)
	}

	v1 := reg.Active()
	if _, err := reg.Update(helpers.TestCtx(), testConfig(t, "v2", CacheFirst)); err != nil {
		t.Fatalf("v2 update: %v", err)
	}
	if reg.Active() != v1 || reg.Waiting() == nil {
		t.Fatal("v2 should wait while v1 serves")
	}
	if !reflect.DeepEqual(found, []string{"moneylog-v2"}) {
		t.Fatalf("update hooks = %v", found)
	}
	if got := storage.Keys(); !reflect.DeepEqual(got, []string{"moneylog-v1", "moneylog-v2"}) {
		t.Fatalf("keys before promote = %v", got)
	}

	if err := reg.Promote(helpers.TestCtx()); err != nil {
		t.Fatalf("Promote: %v", err)
	}
	if got := storage.Keys(); !reflect.DeepEqual(got, []string{"moneylog-v2"}) {
		t.Fatalf("keys after promote = %v", got)
	}
	if v1.State() != StateRedundant {
		t.Fatalf("old worker state = %s", v1.State())
	}
}

func TestFailedUpdateKeepsServingPreviousGeneration(t *testing.T) {
	storage := NewStorage()
	transport := shellTransport()
	reg := NewRegistration(storage, transport)
	if _, err := reg.Update(helpers.TestCtx(), testConfig(t, "v1", CacheFirst)); err != nil {
		t.Fatal(err)
	}

	bad := testConfig(t, "v2", CacheFirst)
	bad.Manifest = []string{"./index.html", "./gone.js"}
	if _, err := reg.Update(helpers.TestCtx(), bad); err == nil {
		t.Fatal("expected failed update")
	}
	if reg.Active().CacheName() != "moneylog-v1" || reg.Waiting() != nil {
		t.Fatal("v1 must keep serving")
	}
	if got := storage.Keys(); !reflect.DeepEqual(got, []string{"moneylog-v1"}) {
		t.Fatalf("keys = %v", got)
	}
}

func TestUpdateSameVersionIsNoop(t *testing.T) {
	reg := NewRegistration(NewStorage(), shellTransport())
	w1, err := reg.Update(helpers.TestCtx(), testConfig(t, "v1", CacheFirst))
	if err != nil {
		t.Fatal(err)
	}
	w2, err := reg.Update(helpers.TestCtx(), testConfig(t, "v1", CacheFirst))
	if err != nil || w1 != w2 {
		t.Fatalf("expected same worker, err=%v", err)
	}
}

func TestCacheFirstServesOffline(t *testing.T) {
	transport := shellTransport()
	reg := NewRegistration(NewStorage(), transport)
	if _, err := reg.Update(helpers.TestCtx(), testConfig(t, "v1", CacheFirst)); err != nil {
		t.Fatal(err)
	}
	transport.setDown(true)

	resp, body, err := get(t, reg, "http://shell.test/index.html")
	if err != nil {
		t.Fatalf("expected cached response, got %v", err)
	}
	if body != "<html>index</html>" || resp.Header.Get(HeaderCache) != "hit" {
		t.Fatalf("unexpected response %q header=%q", body, resp.Header.Get(HeaderCache))
	}

	if _, _, err := get(t, reg, "http://shell.test/uncached.png"); err == nil {
		t.Fatal("uncached asset offline should surface the transport error")
	}
}

func TestBypassAndPassThrough(t *testing.T) {
	transport := shellTransport()
	reg := NewRegistration(NewStorage(), transport)
	if _, err := reg.Update(helpers.TestCtx(), testConfig(t, "v1", CacheFirst)); err != nil {
		t.Fatal(err)
	}
	before := transport.callCount()

	if _, _, err := get(t, reg, "https://script.google.com/macros/s/x/exec?action=init"); err != nil {
		t.Fatal(err)
	}
	req, _ := http.NewRequestWithContext(helpers.TestCtx(), http.MethodPost, "http://shell.test/index.html", nil)
	if resp, err := reg.RoundTrip(req); err != nil {
		t.Fatal(err)
	} else {
		resp.Body.Close()
	}
	if got := transport.callCount() - before; got != 2 {
		t.Fatalf("expected 2 network calls, got %d", got)
	}

	if _, _, err := get(t, reg, "http://shell.test/index.html"); err != nil {
		t.Fatal(err)
	}
	if got := transport.callCount() - before; got != 2 {
		t.Fatal("cached GET must not hit the network")
	}
}

func TestBlobRequestsAreNotIntercepted(t *testing.T) {
	w := NewWorker(testConfig(t, "v1", CacheFirst), NewStorage(), shellTransport())
	if err := w.Install(helpers.TestCtx()); err != nil {
		t.Fatal(err)
	}
	if err := w.Activate(helpers.TestCtx()); err != nil {
		t.Fatal(err)
	}
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Scheme: "blob", Opaque: "http://shell.test/abc"}}
	if w.intercepts(req) {
		t.Fatal("blob URLs must not be intercepted")
	}
}

func TestNetworkFirstRefreshesAndFallsBack(t *testing.T) {
	storage := NewStorage()
	transport := shellTransport()
	reg := NewRegistration(storage, transport)
	if _, err := reg.Update(helpers.TestCtx(), testConfig(t, "v1", NetworkFirst)); err != nil {
		t.Fatal(err)
	}

	transport.mu.Lock()
	transport.bodies["http://shell.test/script.js"] = "console.log(2)"
	transport.mu.Unlock()

	if _, body, err := get(t, reg, "http://shell.test/script.js"); err != nil || body != "console.log(2)" {
		t.Fatalf("network-first should return fresh body, got %q err=%v", body, err)
	}

	transport.setDown(true)
	resp, body, err := get(t, reg, "http://shell.test/script.js")
	if err != nil {
		t.Fatalf("expected fallback, got %v", err)
	}
	if body != "console.log(2)" || resp.Header.Get(HeaderCache) != "hit" {
		t.Fatalf("fallback should serve refreshed entry, got %q", body)
	}
	if _, _, err := get(t, reg, "http://shell.test/other.js"); err == nil {
		t.Fatal("no cached entry: expected transport error")
	}
}

func TestActivateRequiresInstalled(t *testing.T) {
	w := NewWorker(testConfig(t, "v1", CacheFirst), NewStorage(), shellTransport())
	if err := w.Activate(helpers.TestCtx()); err == nil {
		t.Fatal("expected error activating an uninstalled worker")
	}
}

func TestShellHandlerStripsKeyAndServesFromCache(t *testing.T) {
	transport := shellTransport()
	reg := NewRegistration(NewStorage(), transport)
	if _, err := reg.Update(helpers.TestCtx(), testConfig(t, "v1", CacheFirst)); err != nil {
		t.Fatal(err)
	}
	transport.setDown(true)

	h := NewShellHandler(testOrigin(t), reg)
	req := httptest.NewRequest(http.MethodGet, "/?key=secret", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Body.String() != "<html>root</html>" {
		t.Fatalf("body = %q", rr.Body.String())
	}
	if rr.Header().Get("Cache-Control") != "no-cache" {
		t.Fatal("shell page should not be HTTP cached")
	}
}

func TestShellHandlerOfflineMiss(t *testing.T) {
	transport := shellTransport()
	transport.setDown(true)
	h := NewShellHandler(testOrigin(t), NewRegistration(NewStorage(), transport))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/style.css", nil))
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rr.Code)
	}
}

func TestSplitManifest(t *testing.T) {
	if got := SplitManifest(" a.js, ,b.css "); !reflect.DeepEqual(got, []string{"a.js", "b.css"}) {
		t.Fatalf("SplitManifest = %v", got)
	}
	if got := SplitManifest(""); len(got) != len(DefaultManifest) {
		t.Fatalf("empty manifest should fall back to defaults, got %v", got)
	}
}
