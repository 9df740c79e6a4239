package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glorpus-work/aurseek/internal/logger"
	"github.com/glorpus-work/aurseek/pkg/aur"
)

// AURServer is an in-process stand-in for the AUR RPC endpoint.
type AURServer struct {
	*httptest.Server

	mu           sync.Mutex
	packages     []aur.PackageDetail
	searchErrors map[string]string
	statusCode   int
	rawBody      string
	delay        time.Duration

	searches atomic.Int32
	infos    atomic.Int32
}

// NewAURServer starts a fake AUR serving the given packages. The server is
// closed when the test ends.
func NewAURServer(t *testing.T, packages ...aur.PackageDetail) *AURServer {
	t.Helper()

	s := &AURServer{
		packages:     packages,
		searchErrors: make(map[string]string),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/rpc/v5/search/", s.handleSearch)
	mux.HandleFunc("/rpc/v5/info", s.handleInfo)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)

	return s
}

// Package builds a detail record with the fields most tests care about.
func Package(name, version, maintainer string) aur.PackageDetail {
	return aur.PackageDetail{
		PackageSummary: aur.PackageSummary{
			Name:         name,
			PackageBase:  name,
			Version:      version,
			Description:  "The " + name + " package",
			Maintainer:   maintainer,
			NumVotes:     10,
			Popularity:   0.5,
			LastModified: 1700000000,
			URLPath:      "/cgit/aur.git/snapshot/" + name + ".tar.gz",
		},
		License: []string{"MIT"},
	}
}

// SetSearchError makes searches for query answer with an RPC error string.
func (s *AURServer) SetSearchError(query, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchErrors[query] = message
}

// SetDelay delays every response by d.
func (s *AURServer) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// SetRawResponse makes every request answer with the given status and body.
func (s *AURServer) SetRawResponse(statusCode int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCode = statusCode
	s.rawBody = body
}

// AddPackage adds a package to the served set.
func (s *AURServer) AddPackage(pkg aur.PackageDetail) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packages = append(s.packages, pkg)
}

// SearchCount returns the number of search requests served.
func (s *AURServer) SearchCount() int {
	return int(s.searches.Load())
}

// InfoCount returns the number of info requests served.
func (s *AURServer) InfoCount() int {
	return int(s.infos.Load())
}

func (s *AURServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.searches.Add(1)
	if s.writeOverride(w, r) {
		return
	}

	arg := strings.TrimPrefix(r.URL.Path, "/rpc/v5/search/")
	by := r.URL.Query().Get("by")

	s.mu.Lock()
	message, failed := s.searchErrors[arg]
	var results []aur.PackageSummary
	for _, pkg := range s.packages {
		if matches(pkg, arg, by) {
			results = append(results, pkg.PackageSummary)
		}
	}
	s.mu.Unlock()

	if failed {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"resultcount": 0,
			"results":     []aur.PackageSummary{},
			"type":        "error",
			"version":     5,
			"error":       message,
		})
		return
	}
	if results == nil {
		results = []aur.PackageSummary{}
	}
	writeJSON(w, http.StatusOK, aur.Response{
		ResultCount: len(results),
		Results:     results,
		Type:        "search",
		Version:     5,
	})
}

func (s *AURServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.infos.Add(1)
	if s.writeOverride(w, r) {
		return
	}

	names := r.URL.Query()["arg[]"]
	s.mu.Lock()
	results := []aur.PackageDetail{}
	for _, name := range names {
		for _, pkg := range s.packages {
			if pkg.Name == name {
				results = append(results, pkg)
			}
		}
	}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"resultcount": len(results),
		"results":     results,
		"type":        "multiinfo",
		"version":     5,
	})
}

// writeOverride applies the configured delay and raw response. It reports
// whether the response has been written.
func (s *AURServer) writeOverride(w http.ResponseWriter, r *http.Request) bool {
	s.mu.Lock()
	delay, statusCode, body := s.delay, s.statusCode, s.rawBody
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return true
		}
	}
	if statusCode == 0 {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
	return true
}

func matches(pkg aur.PackageDetail, arg, by string) bool {
	switch by {
	case "maintainer":
		return pkg.Maintainer == arg
	case "makedepends":
		for _, dep := range pkg.MakeDepends {
			if dep == arg {
				return true
			}
		}
		return false
	default:
		return strings.Contains(pkg.Name, arg)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// SetupTestConfig writes a config file pointing at aurURL and a history
// database inside a temporary directory. It returns the config path.
func SetupTestConfig(t *testing.T, aurURL string) string {
	t.Helper()

	tempDir := t.TempDir()
	historyPath := filepath.Join(tempDir, "state", "history.db")
	configPath := filepath.Join(tempDir, "config.yaml")

	configStr := fmt.Sprintf(`settings:
  aur_url: %s
  http_timeout: 5s
  history_path: %s
  log_level: error
  color_output: false
`, aurURL, historyPath)
	logger.Debugf("Writing test config to: %s", configPath)

	if err := os.WriteFile(configPath, []byte(configStr), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	return configPath
}
