package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"lifeview/src/grid"
	"lifeview/src/logger"
)

//Source supplies grid states: the initial board and every next generation
type Source interface {
	Load(ctx context.Context, width int, height int, density float64) (grid.State, error)
	Step(ctx context.Context) (grid.State, error)
}

//ErrMalformedResponse is reported when the response body is not a grid state
var ErrMalformedResponse = errors.New("malformed grid response")

//StatusError is reported when the simulation process answers with a non-200 status
type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %d", e.URL, e.Status)
}

//HTTPSource fetches grid states from the board server
type HTTPSource struct {
	base   string
	client *http.Client
}

//NewHTTPSource creates the source for the server at baseURL, nil client means http.DefaultClient
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{
		base:   strings.TrimRight(baseURL, "/"),
		client: client,
	}
}

//Load requests the new randomized board
func (s *HTTPSource) Load(ctx context.Context, width int, height int, density float64) (grid.State, error) {
	q := url.Values{}
	q.Set("width", strconv.Itoa(width))
	q.Set("height", strconv.Itoa(height))
	q.Set("density", strconv.FormatFloat(density, 'f', -1, 64))
	return s.get(ctx, s.base+"/board?"+q.Encode())
}

//Step requests the next generation
func (s *HTTPSource) Step(ctx context.Context) (grid.State, error) {
	return s.get(ctx, s.base+"/step")
}

func (s *HTTPSource) get(ctx context.Context, u string) (grid.State, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: get %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{URL: u, Status: resp.StatusCode}
	}

	var rows grid.State
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("client: %w: %v", ErrMalformedResponse, err)
	}
	logger.Logger().Debug("state fetched", "url", u, "rows", len(rows), "took", time.Since(start))
	return rows, nil
}
