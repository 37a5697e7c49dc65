// Package archive queries the exo.MAST service for adopted planetary-system
// parameters and TESS input catalog identifiers.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/troyzx/cmat/internal/domain"
	"github.com/troyzx/cmat/internal/ports"
)

const defaultMaxBodyBytes = 1024 * 1024 // 1MB

// Archive transit times are reported as BJD - 2400000.5.
const transitTimeOffset = 2400000.5

type Client struct {
	baseURL      string
	client       *http.Client
	maxBodyBytes int64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) { c.maxBodyBytes = n }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		client:       &http.Client{Timeout: timeout},
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ports.ArchiveClient = (*Client)(nil)

func (c *Client) ResolveTIC(ctx context.Context, planetName string) (int64, error) {
	endpoint := c.baseURL + "/exoplanets/identifiers/?name=" + url.QueryEscape(planetName)

	doc, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return 0, err
	}

	val, err := jsonpath.Get("$.tessID", doc)
	if err != nil {
		return 0, &domain.OpError{
			Op:   "archive.resolve_tic",
			Kind: domain.KindArchive,
			Path: planetName,
			Err:  fmt.Errorf("%w: no tessID in identifier response", domain.ErrArchive),
		}
	}

	tic, err := asInt64(val)
	if err != nil {
		return 0, &domain.OpError{
			Op:   "archive.resolve_tic",
			Kind: domain.KindArchive,
			Path: planetName,
			Err:  err,
		}
	}
	return tic, nil
}

func (c *Client) Properties(ctx context.Context, planetName string) (domain.Target, error) {
	endpoint := c.baseURL + "/exoplanets/" + url.PathEscape(planetName) + "/properties/"

	doc, err := c.getJSON(ctx, endpoint)
	if err != nil {
		return domain.Target{}, err
	}

	// The properties endpoint returns one record per catalog; the first
	// entry carries the adopted values.
	entries, ok := doc.([]any)
	if !ok || len(entries) == 0 {
		return domain.Target{}, &domain.OpError{
			Op:   "archive.properties",
			Kind: domain.KindArchive,
			Path: planetName,
			Err:  fmt.Errorf("%w: empty properties response", domain.ErrArchive),
		}
	}
	props := entries[0]

	period, err := valueField(props, "orbital_period")
	if err != nil {
		return domain.Target{}, propsError(planetName, err)
	}
	epoch, err := valueField(props, "transit_time")
	if err != nil {
		return domain.Target{}, propsError(planetName, err)
	}
	epoch.N += transitTimeOffset

	starMass, err := valueField(props, "Ms")
	if err != nil {
		return domain.Target{}, propsError(planetName, err)
	}

	// Depth and duration have no error budget in the fit seeding, so the
	// nominal values are enough.
	depth, _ := numberField(props, "transit_depth")
	duration, _ := numberField(props, "transit_duration")

	return domain.Target{
		Name: planetName,
		Star: domain.Star{MassMsun: starMass},
		Ephemeris: domain.Ephemeris{
			Period:    period,
			ZeroEpoch: epoch,
		},
		Transit: domain.TransitShape{
			Depth:        depth,
			DurationDays: duration,
		},
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "archive.get",
			Kind: domain.KindArchive,
			Path: endpoint,
			Err:  err,
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "archive.get",
			Kind: domain.KindArchive,
			Path: endpoint,
			Err:  err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.OpError{
			Op:   "archive.get",
			Kind: domain.KindArchive,
			Path: endpoint,
			Err:  fmt.Errorf("%w: status %d", domain.ErrArchive, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes))
	if err != nil {
		return nil, &domain.OpError{
			Op:   "archive.get",
			Kind: domain.KindArchive,
			Path: endpoint,
			Err:  err,
		}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, &domain.OpError{
			Op:   "archive.get",
			Kind: domain.KindArchive,
			Path: endpoint,
			Err:  fmt.Errorf("%w: %v", domain.ErrArchive, err),
		}
	}
	return doc, nil
}

// valueField reads a nominal value together with its asymmetric error
// bounds; the larger bound becomes the symmetric uncertainty.
func valueField(doc any, name string) (domain.Value, error) {
	nominal, err := numberField(doc, name)
	if err != nil {
		return domain.Value{}, err
	}
	lower, _ := numberField(doc, name+"_lower")
	upper, _ := numberField(doc, name+"_upper")
	return domain.Value{N: nominal, S: maxAbs(lower, upper)}, nil
}

func numberField(doc any, name string) (float64, error) {
	val, err := jsonpath.Get("$."+name, doc)
	if err != nil {
		return 0, fmt.Errorf("%w: missing field %q", domain.ErrArchive, name)
	}
	return asFloat(val, name)
}

func asFloat(val any, name string) (float64, error) {
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: field %q is not numeric", domain.ErrArchive, name)
		}
		return f, nil
	case nil:
		return 0, nil
	default:
		return 0, fmt.Errorf("%w: field %q is not numeric", domain.ErrArchive, name)
	}
}

func asInt64(val any) (int64, error) {
	switch v := val.(type) {
	case float64:
		return int64(v), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: tessID is not an integer", domain.ErrArchive)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("%w: tessID is not an integer", domain.ErrArchive)
	}
}

func maxAbs(a, b float64) float64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	if a > b {
		return a
	}
	return b
}

func propsError(planetName string, err error) error {
	return &domain.OpError{
		Op:   "archive.properties",
		Kind: domain.KindArchive,
		Path: planetName,
		Err:  err,
	}
}
