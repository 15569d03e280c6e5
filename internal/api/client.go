// Package api is the REST transport for the Tracks API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olivier-w/trackshelf/internal/media"
	"github.com/olivier-w/trackshelf/internal/track"
	"go.uber.org/zap"
)

const errorBodyLimit = 64 * 1024

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client performs Tracks API requests.
type Client struct {
	base *url.URL
	http *http.Client
	log  *zap.Logger
}

// New creates a Client for the API rooted at opts.BaseURL.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{base: base, http: hc, log: log}, nil
}

// request describes one API call.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
}

func jsonRequest(op, method, path string, v any) (request, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return request{}, &Error{Op: op, Kind: KindTransport, Message: "could not encode request", Err: err}
	}
	return request{op: op, method: method, path: path, body: bytes.NewReader(data), contentType: "application/json"}, nil
}

// url resolves r.path, which is already escaped, against the base URL.
func (c *Client) url(r request) (string, error) {
	u, err := c.base.Parse(strings.TrimLeft(r.path, "/"))
	if err != nil {
		return "", err
	}
	if len(r.query) > 0 {
		u.RawQuery = r.query.Encode()
	}
	return u.String(), nil
}

// do runs r and returns the response body of a 2xx answer.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	resp, err := c.send(ctx, r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.transportErr(ctx, r.op, err)
	}
	return data, nil
}

func (c *Client) send(ctx context.Context, r request) (*http.Response, error) {
	target, err := c.url(r)
	if err != nil {
		return nil, &Error{Op: r.op, Kind: KindTransport, Message: "could not build request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, r.body)
	if err != nil {
		return nil, &Error{Op: r.op, Kind: KindTransport, Message: "could not build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, c.transportErr(ctx, r.op, err)
	}
	c.log.Debug("api request",
		zap.String("op", r.op),
		zap.String("method", r.method),
		zap.String("url", req.URL.String()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &Error{
			Op:      r.op,
			Kind:    KindStatus,
			Status:  resp.StatusCode,
			Message: serverMessage(resp.StatusCode, body),
		}
	}
	return resp, nil
}

func (c *Client) transportErr(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		return &Error{Op: op, Kind: KindCanceled, Message: "request canceled", Err: err}
	}
	c.log.Warn("api transport failure", zap.String("op", op), zap.Error(err))
	return &Error{Op: op, Kind: KindTransport, Message: "Network error, please try again", Err: err}
}

func schemaErr(op string, err error) error {
	return &Error{Op: op, Kind: KindSchema, Message: "Invalid data received from server", Err: err}
}

// serverMessage picks the most useful message out of an error body.
func serverMessage(status int, body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !strings.HasPrefix(text, "<") {
		return text
	}
	return http.StatusText(status)
}

// ListTracks fetches one page of tracks. Empty filter fields are omitted.
func (c *Client) ListTracks(ctx context.Context, q track.Query) (track.Page, error) {
	params := url.Values{}
	set := func(k, v string) {
		if v != "" {
			params.Set(k, v)
		}
	}
	if q.Page > 0 {
		set("page", strconv.Itoa(q.Page))
	}
	set("sort", q.Sort)
	set("order", string(q.Order))
	set("genre", q.Genre)
	set("search", q.Search)
	set("artist", q.Artist)

	r := request{op: "list tracks", method: http.MethodGet, path: "tracks", query: params}
	data, err := c.do(ctx, r)
	if err != nil {
		return track.Page{}, err
	}
	page, err := track.DecodeTrackPage(data)
	if err != nil {
		return track.Page{}, schemaErr(r.op, err)
	}
	return page, nil
}

// Genres fetches the list of known genres.
func (c *Client) Genres(ctx context.Context) ([]string, error) {
	const op = "get genres"
	data, err := c.do(ctx, request{op: op, method: http.MethodGet, path: "genres"})
	if err != nil {
		return nil, err
	}
	genres, err := track.DecodeGenres(data)
	if err != nil {
		return nil, schemaErr(op, err)
	}
	return genres, nil
}

// TrackBySlug fetches one track by its slug.
func (c *Client) TrackBySlug(ctx context.Context, slug string) (track.Track, error) {
	const op = "get track"
	data, err := c.do(ctx, request{op: op, method: http.MethodGet, path: "tracks/" + url.PathEscape(slug)})
	if err != nil {
		return track.Track{}, err
	}
	return decodeTrack(op, data)
}

// CreateTrack creates a track from d.
func (c *Client) CreateTrack(ctx context.Context, d track.Draft) (track.Track, error) {
	const op = "create track"
	if d.Genres == nil {
		d.Genres = []string{}
	}
	r, err := jsonRequest(op, http.MethodPost, "tracks", d)
	if err != nil {
		return track.Track{}, err
	}
	data, err := c.do(ctx, r)
	if err != nil {
		return track.Track{}, err
	}
	return decodeTrack(op, data)
}

// UpdateTrack applies p to the track with the given id.
func (c *Client) UpdateTrack(ctx context.Context, id string, p track.Patch) (track.Track, error) {
	const op = "update track"
	r, err := jsonRequest(op, http.MethodPut, "tracks/"+url.PathEscape(id), p)
	if err != nil {
		return track.Track{}, err
	}
	data, err := c.do(ctx, r)
	if err != nil {
		return track.Track{}, err
	}
	return decodeTrack(op, data)
}

// DeleteTrack deletes the track with the given id.
func (c *Client) DeleteTrack(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{op: "delete track", method: http.MethodDelete, path: "tracks/" + url.PathEscape(id)})
	return err
}

// UploadResult is the answer to an audio upload.
type UploadResult struct {
	URL string `json:"url"`
}

// UploadAudio attaches the audio file at path to the track with the given id.
// The file is sent as the multipart field "file".
func (c *Client) UploadAudio(ctx context.Context, id, path string, info media.FileInfo) (UploadResult, error) {
	const op = "upload audio"
	f, err := os.Open(path)
	if err != nil {
		return UploadResult{}, &Error{Op: op, Kind: KindTransport, Message: "could not open file", Err: err}
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(filepath.Base(path))))
		h.Set("Content-Type", info.MIME)
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, f)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	r := request{
		op:          op,
		method:      http.MethodPost,
		path:        "tracks/" + url.PathEscape(id) + "/upload",
		body:        pr,
		contentType: mw.FormDataContentType(),
	}
	data, err := c.do(ctx, r)
	pr.Close()
	if err != nil {
		return UploadResult{}, err
	}

	var res UploadResult
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &res); err != nil {
			return UploadResult{}, schemaErr(op, err)
		}
	}
	return res, nil
}

// DeleteAudio removes the audio file attached to the track with the given id.
func (c *Client) DeleteAudio(ctx context.Context, id string) error {
	_, err := c.do(ctx, request{op: "delete audio", method: http.MethodDelete, path: "tracks/" + url.PathEscape(id) + "/file"})
	return err
}

// DownloadFile streams /files/:filename into w and returns the byte count.
func (c *Client) DownloadFile(ctx context.Context, filename string, w io.Writer) (int64, error) {
	const op = "download file"
	resp, err := c.send(ctx, request{op: op, method: http.MethodGet, path: "files/" + url.PathEscape(filename)})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, c.transportErr(ctx, op, err)
	}
	if n == 0 {
		return 0, schemaErr(op, errors.New("empty audio payload"))
	}
	return n, nil
}

func decodeTrack(op string, data []byte) (track.Track, error) {
	t, err := track.DecodeTrack(data)
	if err != nil {
		return track.Track{}, schemaErr(op, err)
	}
	return t, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
