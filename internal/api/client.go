package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TokenSource supplies the admin bearer token for authorized calls.
// An empty token means no Authorization header is attached.
type TokenSource interface {
	AdminToken() string
}

// Client is a thin HTTP client for the Examport platform API. All calls
// decode the platform envelope {success, message, data} and normalize every
// failure mode into the Result error state.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	log     zerolog.Logger
}

// New creates a Client for the given API base URL.
func New(baseURL string, timeout time.Duration, tokens TokenSource, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		log:     log.With().Str("component", "api_client").Logger(),
	}
}

// envelope is the platform's JSON response wrapper.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Get performs an authorized-if-possible GET and decodes the envelope.
func Get[T any](ctx context.Context, c *Client, path string) Result[T] {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return Err[T](err.Error())
	}
	return do[T](c, req)
}

// Post performs a JSON POST and decodes the envelope.
func Post[T any](ctx context.Context, c *Client, path string, body any) Result[T] {
	payload, err := json.Marshal(body)
	if err != nil {
		return Errf[T]("encode request: %v", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, bytes.NewReader(payload), "application/json")
	if err != nil {
		return Err[T](err.Error())
	}
	return do[T](c, req)
}

// FileField names one file part of a multipart upload.
type FileField struct {
	Field string
	Path  string
}

// PostMultipart uploads scalar fields plus one or more files as
// multipart/form-data. Each file part carries a sniffed content type,
// falling back to a type derived from the file extension.
func PostMultipart[T any](ctx context.Context, c *Client, path string, fields map[string]string, files ...FileField) Result[T] {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return Errf[T]("write field %s: %v", k, err)
		}
	}

	for _, f := range files {
		if err := writeFilePart(mw, f); err != nil {
			return Err[T](err.Error())
		}
	}

	if err := mw.Close(); err != nil {
		return Errf[T]("finalize upload: %v", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, &buf, mw.FormDataContentType())
	if err != nil {
		return Err[T](err.Error())
	}
	return do[T](c, req)
}

// Download streams the response body of an authorized GET into dest.
// The successful result carries the destination path.
func (c *Client) Download(ctx context.Context, path, dest string) Result[string] {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return Err[string](err.Error())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Err[string](transportMessage(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Error bodies still use the JSON envelope.
		var env envelope[json.RawMessage]
		if decodeErr := json.NewDecoder(resp.Body).Decode(&env); decodeErr == nil && env.Message != "" {
			return Err[string](env.Message)
		}
		return Errf[string]("download failed with status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return Errf[string]("create %s: %v", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return Errf[string]("write %s: %v", dest, err)
	}

	return Ok(dest)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-ID", uuid.New().String())
	if c.tokens != nil {
		if token := c.tokens.AdminToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, nil
}

// do executes the request and collapses all failure modes into the
// Result error state. HTTP status codes are not inspected beyond decode:
// the envelope's success flag is the source of truth.
func do[T any](c *Client, req *http.Request) Result[T] {
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", req.URL.Path).Msg("Request failed")
		return Err[T](transportMessage(err))
	}
	defer resp.Body.Close()

	var env envelope[T]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		c.log.Warn().Err(err).Str("path", req.URL.Path).Msg("Decode failed")
		return Err[T](genericErrorMessage)
	}

	c.log.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Bool("success", env.Success).
		Msg("Request completed")

	if !env.Success {
		return Err[T](env.Message)
	}
	return OkMsg(env.Data, env.Message)
}

func writeFilePart(mw *multipart.Writer, f FileField) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open %s: %w", f.Path, err)
	}
	defer file.Close()

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, filepath.Base(f.Path)))
	header.Set("Content-Type", detectContentType(f.Path))

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part %s: %w", f.Field, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy %s: %w", f.Path, err)
	}
	return nil
}

// detectContentType sniffs the file content, falling back to the extension
// for formats the sniffer reports too generically (a bare CSV sniffs as
// text/plain).
func detectContentType(path string) string {
	byExt := map[string]string{
		".csv":  "text/csv",
		".xls":  "application/vnd.ms-excel",
		".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	}

	mtype, err := mimetype.DetectFile(path)
	if err == nil && !mtype.Is("text/plain") && !mtype.Is("application/octet-stream") {
		return mtype.String()
	}
	if ct, ok := byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return ct
	}
	if err == nil {
		return mtype.String()
	}
	return "application/octet-stream"
}

func transportMessage(err error) string {
	if err == nil {
		return genericErrorMessage
	}
	return "Network error: " + err.Error()
}
