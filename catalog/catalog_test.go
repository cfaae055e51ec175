package catalog_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"ghostconf/catalog"
	"ghostconf/codec"
	"ghostconf/kv"
	"ghostconf/preset"
	"ghostconf/schema"
)

const indexURL = "https://presets.example.invalid/index.json"

type response struct {
	body string
	err  error
}

// fakeFetcher serves canned responses and counts calls per URL.
type fakeFetcher struct {
	mu        sync.Mutex
	responses map[string]response
	calls     map[string]int
}

func newFakeFetcher(responses map[string]response) *fakeFetcher {
	return &fakeFetcher{responses: responses, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	r, ok := f.responses[url]
	if !ok {
		return nil, errors.New("HTTP 404")
	}
	if r.err != nil {
		return nil, r.err
	}
	return []byte(r.body), nil
}

func (f *fakeFetcher) count(url string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[url]
}

func TestBundledCatalog(t *testing.T) {
	list, err := catalog.Bundled()
	if err != nil {
		t.Fatalf("Bundled: %v", err)
	}
	if len(list) == 0 {
		t.Fatal("bundled catalog is empty")
	}
	seen := map[string]bool{}
	for _, p := range list {
		if p.ID == "" || p.Name == "" {
			t.Errorf("bundled preset missing id or name: %+v", p)
		}
		if seen[p.ID] {
			t.Errorf("duplicate bundled id %q", p.ID)
		}
		seen[p.ID] = true
		if p.Config == "" && p.SourceURL == "" {
			t.Errorf("bundled preset %q has neither config nor source URL", p.ID)
		}
	}
}

func TestBundledConfigsUseKnownKeys(t *testing.T) {
	list, _ := catalog.Bundled()
	for _, p := range list {
		if p.Config == "" {
			continue
		}
		st := codec.Parse(p.Config, schema.Ghostty, nil)
		values := 0
		for _, v := range st {
			if l, ok := v.(schema.List); ok {
				values += len(l)
			} else {
				values++
			}
		}
		lines := len(strings.Split(strings.TrimSpace(p.Config), "\n"))
		if values != lines {
			t.Errorf("%s: %d config lines but %d recognized values", p.ID, lines, values)
		}
	}
}

// Scenario C: a failed remote fetch leaves the bundled catalog in place.
func TestRefreshFailureKeepsBundled(t *testing.T) {
	bundled, _ := catalog.Bundled()
	cases := map[string]response{
		"transport":  {err: errors.New("connection refused")},
		"malformed":  {body: "{not json"},
		"no-array":   {body: `{"items":[]}`},
		"wrong-type": {body: `{"presets":{"id":"x"}}`},
	}
	for name, r := range cases {
		t.Run(name, func(t *testing.T) {
			c := catalog.New(newFakeFetcher(map[string]response{indexURL: r}), indexURL)
			c.Refresh(context.Background())
			if got := c.Presets(); !reflect.DeepEqual(got, bundled) {
				t.Fatalf("catalog changed after failed refresh: %+v", got)
			}
		})
	}
}

func TestRefreshFailureThroughManager(t *testing.T) {
	bundled, _ := catalog.Bundled()
	c := catalog.New(newFakeFetcher(nil), indexURL)
	<-c.RefreshAsync(context.Background())

	m := preset.NewManager(kv.NewMemoryStore(), c)
	list := m.List()
	if len(list) != len(bundled) {
		t.Fatalf("expected %d community presets, got %d", len(bundled), len(list))
	}
	for i, p := range list {
		if p.ID != bundled[i].ID || p.Source != preset.SourceCommunity {
			t.Fatalf("entry %d = %+v, want bundled %q", i, p, bundled[i].ID)
		}
	}
}

func TestRefreshReplacesWholesale(t *testing.T) {
	f := newFakeFetcher(map[string]response{
		indexURL: {body: `{"presets":[{"id":"remote","name":"Remote","category":"Net","description":"d","config":"theme = r\n","source":"local"}]}`},
	})
	c := catalog.New(f, indexURL)
	c.Refresh(context.Background())

	got := c.Presets()
	if len(got) != 1 || got[0].ID != "remote" {
		t.Fatalf("expected only the remote preset, got %+v", got)
	}
	if got[0].Source != "" {
		t.Fatalf("source from the wire must be ignored, got %q", got[0].Source)
	}

	// a later failure keeps the fetched catalog
	f.mu.Lock()
	f.responses[indexURL] = response{err: errors.New("offline")}
	f.mu.Unlock()
	c.Refresh(context.Background())
	if got := c.Presets(); len(got) != 1 || got[0].ID != "remote" {
		t.Fatalf("catalog changed after failed refresh: %+v", got)
	}
}

func TestRefreshEmptyArray(t *testing.T) {
	c := catalog.New(newFakeFetcher(map[string]response{indexURL: {body: `{"presets":[]}`}}), indexURL)
	c.Refresh(context.Background())
	if got := c.Presets(); len(got) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(got))
	}
}

func TestRefreshWithoutURL(t *testing.T) {
	f := newFakeFetcher(nil)
	c := catalog.New(f, "")
	c.Refresh(context.Background())
	if len(f.calls) != 0 {
		t.Fatal("fetcher called without an index URL")
	}
}

func TestResolveCachesPerURL(t *testing.T) {
	const url = "https://presets.example.invalid/mocha.conf"
	f := newFakeFetcher(map[string]response{url: {body: "theme = mocha\n"}})
	c := catalog.New(f, "")
	p := preset.Preset{ID: "mocha", SourceURL: url}

	for i := 0; i < 3; i++ {
		text, ok := c.Resolve(context.Background(), p)
		if !ok || text != "theme = mocha\n" {
			t.Fatalf("Resolve = %q, %v", text, ok)
		}
	}
	if n := f.count(url); n != 1 {
		t.Fatalf("expected one fetch, got %d", n)
	}
}

func TestResolveCacheIgnoresMergedIDs(t *testing.T) {
	const (
		urlA = "https://presets.example.invalid/a.conf"
		urlB = "https://presets.example.invalid/b.conf"
	)
	f := newFakeFetcher(map[string]response{
		indexURL: {body: `{"presets":[
			{"id":"neon","name":"Neon","category":"Dark","sourceUrl":"` + urlA + `"},
			{"id":"neon-2","name":"Neon Two","category":"Dark","sourceUrl":"` + urlB + `"}]}`},
		urlA: {body: "theme = a\n"},
		urlB: {body: "theme = b\n"},
	})
	c := catalog.New(f, indexURL)
	m := preset.NewManager(kv.NewMemoryStore(), c)
	local, err := m.Create(preset.Draft{Name: "Neon", Config: "theme = mine\n"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	c.Refresh(context.Background())

	want := map[string]string{urlA: "theme = a\n", urlB: "theme = b\n"}
	check := func(stage string) {
		t.Helper()
		for _, p := range m.List() {
			if p.Source != preset.SourceCommunity {
				continue
			}
			text, ok := m.ResolveConfig(context.Background(), p)
			if !ok || text != want[p.SourceURL] {
				t.Fatalf("%s: %s (%s) resolved to %q, want %q", stage, p.ID, p.SourceURL, text, want[p.SourceURL])
			}
		}
	}

	// the local preset pushes the community ids to neon-2 and neon-3
	check("with local neon")
	if err := m.Delete(local.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	// now neon-2 names the second community entry
	check("after delete")
	if f.count(urlA) != 1 || f.count(urlB) != 1 {
		t.Fatalf("fetches: a=%d b=%d, want one each", f.count(urlA), f.count(urlB))
	}
}

func TestRefreshDropsResolvedConfigs(t *testing.T) {
	const url = "https://presets.example.invalid/tide.conf"
	f := newFakeFetcher(map[string]response{
		indexURL: {body: `{"presets":[{"id":"tide","name":"Tide","sourceUrl":"` + url + `"}]}`},
		url:      {body: "theme = old\n"},
	})
	c := catalog.New(f, indexURL)
	c.Refresh(context.Background())
	p := c.Presets()[0]
	if text, _ := c.Resolve(context.Background(), p); text != "theme = old\n" {
		t.Fatalf("first Resolve = %q", text)
	}

	f.mu.Lock()
	f.responses[url] = response{body: "theme = new\n"}
	f.mu.Unlock()
	if text, _ := c.Resolve(context.Background(), p); text != "theme = old\n" {
		t.Fatalf("cached Resolve = %q", text)
	}
	c.Refresh(context.Background())
	if text, _ := c.Resolve(context.Background(), c.Presets()[0]); text != "theme = new\n" {
		t.Fatalf("Resolve after Refresh = %q", text)
	}
	if n := f.count(url); n != 2 {
		t.Fatalf("expected two fetches, got %d", n)
	}
}

func TestResolveFailuresAreNotCached(t *testing.T) {
	const url = "https://presets.example.invalid/late.conf"
	f := newFakeFetcher(map[string]response{url: {body: ""}})
	c := catalog.New(f, "")
	p := preset.Preset{ID: "late", SourceURL: url}

	if _, ok := c.Resolve(context.Background(), p); ok {
		t.Fatal("empty body should resolve to absent")
	}
	f.mu.Lock()
	f.responses[url] = response{body: "theme = late\n"}
	f.mu.Unlock()
	if text, ok := c.Resolve(context.Background(), p); !ok || text != "theme = late\n" {
		t.Fatalf("Resolve after recovery = %q, %v", text, ok)
	}
}

func TestResolveEmbeddedAndMissing(t *testing.T) {
	f := newFakeFetcher(nil)
	c := catalog.New(f, "")
	if text, ok := c.Resolve(context.Background(), preset.Preset{ID: "x", Config: "a = b"}); !ok || text != "a = b" {
		t.Fatalf("embedded = %q, %v", text, ok)
	}
	if _, ok := c.Resolve(context.Background(), preset.Preset{ID: "y"}); ok {
		t.Fatal("preset without config or URL resolved")
	}
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"presets":[]}`))
	}))
	defer srv.Close()

	f := catalog.NewHTTPFetcher(time.Second, 100)
	data, err := f.Fetch(context.Background(), srv.URL+"/index.json")
	if err != nil || string(data) != `{"presets":[]}` {
		t.Fatalf("Fetch = %s, %v", data, err)
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatal("expected error for 404")
	}
}

func TestHTTPFetcherHonoursContext(t *testing.T) {
	f := catalog.NewHTTPFetcher(time.Second, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Fetch(ctx, "http://127.0.0.1:1/never"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
