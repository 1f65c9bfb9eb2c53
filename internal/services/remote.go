// Remote mbx server [Backend] implementation
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mbx/internal/models"
	"github.com/desertthunder/mbx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// RemoteOpts configures a [RemoteBackend].
type RemoteOpts struct {
	BaseURL    string // Root of the remote mbx server, e.g. http://host:7070
	RemoteName string // Provider name on the remote server; defaults to the local name
	RateLimit  float64
	Client     *http.Client
	Logger     *log.Logger

	// Client credentials; when ClientID is set requests carry a bearer token.
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// RemoteBackend browses a provider exported by another mbx server.
//
// The response is decoded as a stream so results reach the emitter while the body is still arriving.
type RemoteBackend struct {
	provider   models.Provider
	baseURL    string
	remoteName string
	client     *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewRemoteBackend creates a remote provider.
func NewRemoteBackend(provider models.Provider, opts RemoteOpts) (*RemoteBackend, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: remote url %q", shared.ErrInvalidConfig, opts.BaseURL)
	}

	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	if opts.ClientID != "" {
		if opts.TokenURL == "" {
			return nil, fmt.Errorf("%w: token_url is required with client_id", shared.ErrInvalidConfig)
		}
		cc := &clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, client)
		client = cc.Client(ctx)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	remoteName := opts.RemoteName
	if remoteName == "" {
		remoteName = provider.Name
	}
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewDiscardLogger()
	}

	return &RemoteBackend{
		provider:   provider,
		baseURL:    strings.TrimRight(base.String(), "/"),
		remoteName: remoteName,
		client:     client,
		limiter:    rate.NewLimiter(limit, 1),
		logger:     shared.WithLogger(logger, "provider", provider.Name),
	}, nil
}

// Provider returns the provider identity.
func (r *RemoteBackend) Provider() models.Provider { return r.provider }

// Browse fetches one page from the remote server.
func (r *RemoteBackend) Browse(ctx context.Context, container *models.Container, page models.Page, emit Emitter) {
	if err := validatePage(page); err != nil {
		emit(Result{Err: err})
		return
	}
	if err := r.limiter.Wait(ctx); err != nil {
		emit(Result{Err: err})
		return
	}

	resp, err := r.get(ctx, container, page)
	if err != nil {
		emit(Result{Err: err})
		return
	}
	defer resp.Body.Close()

	if err := r.stream(resp, emit); err != nil {
		emit(Result{Err: err})
	}
}

// BrowseURL builds the request URL for a page.
func (r *RemoteBackend) BrowseURL(container *models.Container, page models.Page) string {
	q := url.Values{}
	if container != nil {
		q.Set("container", container.ID)
	}
	if page.Offset > 0 {
		q.Set("offset", strconv.Itoa(page.Offset))
	}
	if page.Count > 0 {
		q.Set("count", strconv.Itoa(page.Count))
	}

	u := r.baseURL + "/providers/" + url.PathEscape(r.remoteName) + "/browse"
	if encoded := q.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

func (r *RemoteBackend) get(ctx context.Context, container *models.Container, page models.Page) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.BrowseURL(container, page), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s on %s", shared.ErrNotFound, r.remoteName, r.baseURL)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}
	return resp, nil
}

// stream decodes {"count":n,"more":b,"nodes":[...]} token by token, in any key order.
//
// Each node is emitted once the next one has been decoded, so the last node can carry More
// even when "more" follows "nodes". Nodes of an unknown kind are skipped.
func (r *RemoteBackend) stream(resp *http.Response, emit Emitter) error {
	dec := json.NewDecoder(resp.Body)

	if err := expectDelim(dec, '{'); err != nil {
		return err
	}

	var (
		count     int
		more      bool
		delivered int
		sawNodes  bool
		pending   models.Node
	)

	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return decodeErr(err)
		}

		switch key {
		case "count":
			if err := dec.Decode(&count); err != nil {
				return decodeErr(err)
			}
		case "more":
			if err := dec.Decode(&more); err != nil {
				return decodeErr(err)
			}
		case "nodes":
			sawNodes = true
			if err := expectDelim(dec, '['); err != nil {
				return err
			}
			for dec.More() {
				var w WireNode
				if err := dec.Decode(&w); err != nil {
					return decodeErr(err)
				}
				node, err := FromWire(r.provider.Name, w)
				if err != nil {
					r.logger.Warn("skipping remote node", "id", w.ID, "error", err)
					continue
				}
				if pending != nil {
					delivered++
					emit(Result{Node: pending, Remaining: max(count-delivered, 1)})
				}
				pending = node
			}
			if err := expectDelim(dec, ']'); err != nil {
				return err
			}
		default:
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return decodeErr(err)
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return err
	}

	if !sawNodes {
		return fmt.Errorf("%w: response has no nodes", shared.ErrAPIRequest)
	}
	emit(Result{Node: pending, Remaining: 0, More: more})
	return nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return decodeErr(err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("%w: expected %q in response, got %v", shared.ErrAPIRequest, want, tok)
	}
	return nil
}

func decodeErr(err error) error {
	return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
}
