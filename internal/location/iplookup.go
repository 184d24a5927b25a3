package location

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/rongwang/sitecrew-server/internal/models"
)

// IPLookup resolves the caller's approximate position from their IP address.
//
// The lookup service is called as GET <baseURL>/<ip> and must answer with a
// JSON body of the form {"status":"success","lat":..,"lon":..}.
type IPLookup struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

type ipLookupResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

// NewIPLookup creates a lookup against baseURL. The request deadline comes
// from the caller's context.
func NewIPLookup(baseURL string, logger *zap.Logger) *IPLookup {
	return &IPLookup{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger.Named("iplookup"),
	}
}

// Locate implements Locator
func (l *IPLookup) Locate(ctx context.Context) (*models.Location, error) {
	ip := net.ParseIP(clientIP(ctx))
	if ip == nil || ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() {
		return nil, ErrUnavailable
	}

	endpoint := l.baseURL + "/" + url.PathEscape(ip.String())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call location service: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		l.logger.Debug("Location service returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("location service returned status %d", resp.StatusCode)
	}

	var result ipLookupResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if result.Status != "" && result.Status != "success" {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, result.Message)
	}
	if result.Lat == nil || result.Lon == nil {
		return nil, ErrUnavailable
	}

	return &models.Location{Lat: *result.Lat, Lng: *result.Lon}, nil
}
