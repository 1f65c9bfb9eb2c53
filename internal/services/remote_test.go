package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
)

func newRemote(t *testing.T, srv *httptest.Server, opts RemoteOpts) *RemoteBackend {
	t.Helper()
	opts.BaseURL = srv.URL
	if opts.Client == nil {
		opts.Client = srv.Client()
	}
	backend, err := NewRemoteBackend(models.Provider{Name: "Far", Capabilities: models.CanBrowse}, opts)
	if err != nil {
		t.Fatalf("NewRemoteBackend() error = %v", err)
	}
	return backend
}

func nodeID(n models.Node) string {
	switch v := n.(type) {
	case models.Container:
		return v.ID
	case models.Leaf:
		return v.ID
	default:
		return n.Label()
	}
}

func TestNewRemoteBackend(t *testing.T) {
	tests := []struct {
		name    string
		opts    RemoteOpts
		wantErr bool
	}{
		{"valid", RemoteOpts{BaseURL: "http://localhost:7070"}, false},
		{"missing scheme", RemoteOpts{BaseURL: "localhost:7070"}, true},
		{"empty", RemoteOpts{}, true},
		{"client id without token url", RemoteOpts{BaseURL: "http://x", ClientID: "id"}, true},
		{"client credentials", RemoteOpts{BaseURL: "http://x", ClientID: "id", TokenURL: "http://x/token"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRemoteBackend(models.Provider{Name: "Far"}, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewRemoteBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRemoteBackend(t *testing.T) {
	t.Run("builds browse url", func(t *testing.T) {
		backend, err := NewRemoteBackend(models.Provider{Name: "Far"}, RemoteOpts{BaseURL: "http://host:7070/", RemoteName: "My Files"})
		if err != nil {
			t.Fatalf("NewRemoteBackend() error = %v", err)
		}
		box := models.NewContainer("Far", "a/b", "b")
		got := backend.BrowseURL(&box, models.Page{Offset: 10, Count: 5})
		want := "http://host:7070/providers/My%20Files/browse?container=a%2Fb&count=5&offset=10"
		if got != want {
			t.Errorf("BrowseURL() = %s, want %s", got, want)
		}
	})

	t.Run("streams nodes in order", func(t *testing.T) {
		var gotPath, gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath, gotQuery = r.URL.Path, r.URL.Query().Get("container")
			json.NewEncoder(w).Encode(BrowseResponse{
				Count: 2,
				More:  true,
				Nodes: []WireNode{
					{Kind: WireContainer, ID: "x", Title: "X"},
					{Kind: WireLeaf, ID: "y", Title: "Y", Media: "audio", URL: "http://cdn/y.mp3"},
				},
			})
		}))
		defer srv.Close()

		box := models.NewContainer("Far", "root/box", "box")
		var results []Result
		newRemote(t, srv, RemoteOpts{}).Browse(context.Background(), &box, models.Page{}, func(r Result) {
			results = append(results, r)
		})

		if gotPath != "/providers/Far/browse" || gotQuery != "root/box" {
			t.Errorf("unexpected request %s container=%s", gotPath, gotQuery)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].Remaining != 1 || results[0].Terminal() {
			t.Errorf("first result should not be terminal: %+v", results[0])
		}
		if !results[1].Terminal() || !results[1].More {
			t.Errorf("last result should be terminal with more: %+v", results[1])
		}
		leaf, ok := results[1].Node.(models.Leaf)
		if !ok || leaf.Provider != "Far" || leaf.Kind != models.KindAudio {
			t.Errorf("unexpected leaf %#v", results[1].Node)
		}
	})

	t.Run("empty page", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"count":0,"more":false,"nodes":[]}`))
		}))
		defer srv.Close()

		nodes, more, err := Collect(context.Background(), newRemote(t, srv, RemoteOpts{}), nil, models.Page{})
		if err != nil || len(nodes) != 0 || more {
			t.Errorf("Collect() = %v, %v, %v", nodes, more, err)
		}
	})

	errorCases := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, "", shared.ErrNotFound},
		{"server error", http.StatusInternalServerError, "", shared.ErrAPIRequest},
		{"malformed body", http.StatusOK, `{"count":1,"nodes":[{"kind":`, shared.ErrAPIRequest},
		{"not an object", http.StatusOK, `[]`, shared.ErrAPIRequest},
		{"missing nodes", http.StatusOK, `{"count":0}`, shared.ErrAPIRequest},
		{"unclosed object", http.StatusOK, `{"count":0,"nodes":[]`, shared.ErrAPIRequest},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, _, err := Collect(context.Background(), newRemote(t, srv, RemoteOpts{}), nil, models.Page{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	orderTests := []struct {
		name     string
		body     string
		wantIDs  string
		wantMore bool
	}{
		{"more after nodes", `{"nodes":[{"kind":"container","id":"a"},{"kind":"leaf","id":"b","media":"video"}],"more":true,"count":2}`, "a,b", true},
		{"more before nodes", `{"more":true,"count":1,"nodes":[{"kind":"container","id":"a"}]}`, "a", true},
		{"empty nodes then more", `{"nodes":[],"more":true}`, "", true},
		{"unknown kind skipped", `{"count":3,"nodes":[{"kind":"folder","id":"f"},{"kind":"container","id":"a"},{"kind":"playlist","id":"p"}]}`, "a", false},
	}

	for _, tt := range orderTests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			var results []Result
			newRemote(t, srv, RemoteOpts{}).Browse(context.Background(), nil, models.Page{}, func(r Result) {
				results = append(results, r)
			})

			var ids []string
			for _, r := range results {
				if r.Err != nil {
					t.Fatalf("unexpected error: %v", r.Err)
				}
				if r.Node != nil {
					ids = append(ids, nodeID(r.Node))
				}
			}
			last := results[len(results)-1]
			if strings.Join(ids, ",") != tt.wantIDs || !last.Terminal() || last.More != tt.wantMore {
				t.Errorf("ids = %v, last = %+v", ids, last)
			}
			for _, r := range results[:len(results)-1] {
				if r.Terminal() {
					t.Errorf("only the last result may be terminal: %+v", results)
				}
			}
		})
	}

	t.Run("unknown keys are skipped", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"version":{"major":1},"count":1,"nodes":[{"kind":"container","id":"a","title":"A"}]}`))
		}))
		defer srv.Close()

		nodes, _, err := Collect(context.Background(), newRemote(t, srv, RemoteOpts{}), nil, models.Page{})
		if err != nil || len(nodes) != 1 {
			t.Errorf("Collect() = %v, %v", nodes, err)
		}
	})

	t.Run("client credentials", func(t *testing.T) {
		var auth string
		mux := http.NewServeMux()
		mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"secret","token_type":"bearer","expires_in":3600}`))
		})
		mux.HandleFunc("/providers/Far/browse", func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Write([]byte(`{"count":0,"nodes":[]}`))
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		backend := newRemote(t, srv, RemoteOpts{ClientID: "id", ClientSecret: "s", TokenURL: srv.URL + "/token"})
		if _, _, err := Collect(context.Background(), backend, nil, models.Page{}); err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if !strings.EqualFold(auth, "Bearer secret") {
			t.Errorf("Authorization = %q", auth)
		}
	})

	t.Run("cancelled before request", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("request should not be sent")
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := Collect(ctx, newRemote(t, srv, RemoteOpts{RateLimit: 1}), nil, models.Page{})
		if err == nil {
			t.Error("expected an error for a cancelled context")
		}
	})
}
