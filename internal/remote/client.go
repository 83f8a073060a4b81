// Package remote talks to the remote layout store over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/page-builder/backend/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrUnexpectedStatus is matched by every *StatusError.
var ErrUnexpectedStatus = errors.New("unexpected status from layout store")

// StatusError reports a non-2xx answer from the remote store.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("layout store returned %d: %s", e.StatusCode, e.Body)
}

// Is lets errors.Is(err, ErrUnexpectedStatus) match.
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Ack is the remote store's acknowledgement of a save. The body is kept
// raw because the store may answer with anything.
type Ack struct {
	StatusCode int             `json:"statusCode"`
	Body       json.RawMessage `json:"body,omitempty"`
}

// maxErrorBody caps how much of a failed response is kept for the error.
const maxErrorBody = 4 * 1024

// Client loads and saves layouts keyed by user id.
type Client struct {
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewClient creates a client for the store rooted at baseURL
// (e.g. "http://localhost:8090"). A zero timeout means no client timeout.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tracer:  otel.Tracer("github.com/page-builder/backend/internal/remote"),
		logger:  logger.Named("remote"),
	}
}

func (c *Client) layoutURL(userID string) string {
	return c.baseURL + "/api/layout/" + url.PathEscape(userID)
}

// Load fetches the stored document for userID. Fields missing from the
// response stay nil in the returned document.
func (c *Client) Load(ctx context.Context, userID string) (doc *models.LayoutDocument, err error) {
	ctx, span := c.tracer.Start(ctx, "layout.load", trace.WithAttributes(attribute.String("user.id", userID)))
	defer func() { endSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.layoutURL(userID), nil)
	if err != nil {
		return nil, fmt.Errorf("building load request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("loading layout: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	doc = &models.LayoutDocument{}
	if err := json.NewDecoder(resp.Body).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding layout: %w", err)
	}

	c.logger.Debug("layout loaded",
		zap.String("userId", userID),
		zap.Int("sections", len(doc.Sections)),
		zap.Int("elements", len(doc.Elements)))
	return doc, nil
}

// Save posts the full layout for userID.
func (c *Client) Save(ctx context.Context, userID string, layout models.Layout) (ack *Ack, err error) {
	ctx, span := c.tracer.Start(ctx, "layout.save", trace.WithAttributes(
		attribute.String("user.id", userID),
		attribute.Int("layout.sections", len(layout.Sections)),
		attribute.Int("layout.elements", len(layout.Elements)),
	))
	defer func() { endSpan(span, err) }()

	body, err := json.Marshal(layout)
	if err != nil {
		return nil, fmt.Errorf("encoding layout: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.layoutURL(userID), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("saving layout: %w", err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading save response: %w", err)
	}
	ack = &Ack{StatusCode: resp.StatusCode}
	if json.Valid(raw) {
		ack.Body = raw
	} else if len(raw) > 0 {
		// Non-JSON acknowledgements are kept as a JSON string.
		ack.Body, _ = json.Marshal(string(raw))
	}
	return ack, nil
}

func statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
