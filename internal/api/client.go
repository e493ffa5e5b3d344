// Package api provides the Practica platform REST client.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/practica/practica-link/internal/config"
	"github.com/practica/practica-link/internal/httputil"
	"github.com/practica/practica-link/internal/logging"
	"github.com/practica/practica-link/internal/models"
)

// retryLogger adapts zerolog to the retryablehttp.LeveledLogger interface.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Msgf("retry: %s %v", msg, keysAndValues)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Msgf("retry: %s %v", msg, keysAndValues)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {}

// Client is the Practica API client.
//
// Browse and list calls go through a retrying transport. Uploads use a
// plain client: an upload is a single attempt by contract, and a streamed
// multipart body is not replayable anyway. Batch-level retry belongs to
// the upload session.
type Client struct {
	httpClient   *nethttp.Client // retrying, for idempotent GETs
	uploadClient *nethttp.Client // single-attempt, for multipart POSTs
	baseURL      string
	token        string
	log          *logging.Logger
}

// NewClient creates a Practica API client from connection settings.
// A missing platform URL or token is a fatal precondition, reported
// before any network call is attempted.
func NewClient(cfg *config.APIConfig, log *logging.Logger) (*Client, error) {
	if err := cfg.ValidateForConnection(); err != nil {
		return nil, err
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httputil.NewClient()
	retryClient.RetryMax = 4
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = &retryLogger{log: log}

	return &Client{
		httpClient:   retryClient.StandardClient(),
		uploadClient: httputil.NewClient(),
		baseURL:      strings.TrimSuffix(cfg.PlatformURL, "/"),
		token:        cfg.APIToken,
		log:          log,
	}, nil
}

// envelope is the response shape shared by all Practica endpoints.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// doGet performs an authenticated GET and decodes the standard envelope,
// returning the raw data payload.
func (c *Client) doGet(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeEnvelope(resp)
}

// decodeEnvelope validates status and the success flag, returning data.
func decodeEnvelope(resp *nethttp.Response) (json.RawMessage, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    serverMessage(body),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    "malformed response body",
		}
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return env.Data, nil
}

// serverMessage digs a human-readable message out of an error body,
// falling back to the raw text.
func serverMessage(body []byte) string {
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Message != "" {
		return env.Message
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return text
}

// folderID tolerates both string and numeric ids on the wire.
type folderID string

func (f *folderID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*f = folderID(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = folderID(n.String())
	return nil
}

// folderPayload matches the browse endpoint, where some deployments send
// "title" and others "name".
type folderPayload struct {
	ID    folderID `json:"id"`
	Title string   `json:"title"`
	Name  string   `json:"name"`
}

func (p folderPayload) displayName() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Name
}

// BrowseFolders lists destination folders. An empty parentID lists the
// portal roots; otherwise the children of that folder.
func (c *Client) BrowseFolders(ctx context.Context, parentID string) ([]models.Folder, error) {
	path := "/folders/browse/"
	if parentID != "" {
		path += "?folder_id=" + url.QueryEscape(parentID)
	}

	data, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("browse folders failed: %w", err)
	}

	var payload struct {
		Folders []folderPayload `json:"folders"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode folder list: %w", err)
	}

	folders := make([]models.Folder, 0, len(payload.Folders))
	for _, f := range payload.Folders {
		folders = append(folders, models.Folder{
			ID:   string(f.ID),
			Name: f.displayName(),
		})
	}
	return folders, nil
}

// ListDocumentRequests lists the firm's open document requests for this
// taxpayer.
func (c *Client) ListDocumentRequests(ctx context.Context) ([]models.DocumentRequest, error) {
	data, err := c.doGet(ctx, "/document-requests/")
	if err != nil {
		return nil, fmt.Errorf("list document requests failed: %w", err)
	}

	var payload struct {
		Requests []struct {
			ID     folderID `json:"id"`
			Title  string   `json:"title"`
			Status string   `json:"status"`
		} `json:"requests"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode document requests: %w", err)
	}

	requests := make([]models.DocumentRequest, 0, len(payload.Requests))
	for _, r := range payload.Requests {
		requests = append(requests, models.DocumentRequest{
			ID:     string(r.ID),
			Title:  r.Title,
			Status: r.Status,
		})
	}
	return requests, nil
}

// UploadDocument uploads one file into a portal folder via multipart POST.
// The body streams; progress, when non-nil, receives the cumulative byte
// count read from the source.
func (c *Client) UploadDocument(ctx context.Context, src models.FileSource, destFolderID string, progress func(written int64)) error {
	fields := map[string]string{"folder_id": destFolderID}
	return c.doMultipartPost(ctx, "/documents/upload/", "file", src, fields, progress)
}

// SubmitRequestFile uploads one file against a document request.
// The request-driven endpoint takes a files[] field instead of file.
func (c *Client) SubmitRequestFile(ctx context.Context, requestID string, src models.FileSource, progress func(written int64)) error {
	path := "/document-requests/" + url.PathEscape(requestID) + "/submit/"
	return c.doMultipartPost(ctx, path, "files[]", src, nil, progress)
}

// countingReader reports cumulative bytes read to a callback.
type countingReader struct {
	r        io.Reader
	written  int64
	progress func(int64)
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.written += int64(n)
		if cr.progress != nil {
			cr.progress(cr.written)
		}
	}
	return n, err
}

func (c *Client) doMultipartPost(ctx context.Context, path, fileField string, src models.FileSource, fields map[string]string, progress func(int64)) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile(fileField, src.Name())
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		rc, err := src.Open()
		if err != nil {
			pw.CloseWithError(err)
			return
		}

		_, copyErr := io.Copy(part, &countingReader{r: rc, progress: progress})
		rc.Close()
		if copyErr != nil {
			pw.CloseWithError(copyErr)
			return
		}

		for key, value := range fields {
			if err := mw.WriteField(key, value); err != nil {
				pw.CloseWithError(err)
				return
			}
		}

		pw.CloseWithError(mw.Close())
	}()

	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodPost, c.baseURL+path, pr)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if _, err := decodeEnvelope(resp); err != nil {
		return err
	}
	return nil
}
