/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fetch loads background images by URL. Only a single GET (or a local
// file read for file:// URLs) is performed per request; there are no retries.
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/ratelimit"
	"golang.org/x/sync/singleflight"

	applog "emojiart/internal/log"
)

var (
	// ErrNotImage is returned when the fetched bytes do not decode as an image.
	ErrNotImage = errors.New("fetch: not an image")
	// ErrStatus wraps non-2xx HTTP responses.
	ErrStatus = errors.New("fetch: unexpected status")
	// ErrTooLarge is returned when the body exceeds Options.MaxBytes.
	ErrTooLarge = errors.New("fetch: response too large")
)

// Image is a fetched and decoded background image.
type Image struct {
	URL    string
	Data   []byte
	Bounds image.Rectangle
	Format string // jpeg, png, gif, ...
	Pixels image.Image
}

// Size returns the pixel dimensions of the image.
func (i *Image) Size() (w, h int) {
	if i == nil {
		return 0, 0
	}
	return i.Bounds.Dx(), i.Bounds.Dy()
}

// Fetcher loads an image from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*Image, error)
}

// Func adapts a function to Fetcher.
type Func func(ctx context.Context, rawURL string) (*Image, error)

func (f Func) Fetch(ctx context.Context, rawURL string) (*Image, error) { return f(ctx, rawURL) }

// Options configures an HTTPFetcher. Zero values mean "no limit".
type Options struct {
	Token        string // bearer token sent with http(s) requests
	UserAgent    string
	Timeout      time.Duration
	MaxBytes     int64
	MaxPerSecond int
	Client       *http.Client
}

// HTTPFetcher fetches images over http(s) and from local files. Concurrent
// fetches of the same URL share one request.
type HTTPFetcher struct {
	opts    Options
	client  *http.Client
	limiter ratelimit.Limiter
	group   singleflight.Group
}

// New creates a fetcher from opts.
func New(opts Options) *HTTPFetcher {
	c := opts.Client
	if c == nil {
		c = &http.Client{Timeout: opts.Timeout}
	}
	f := &HTTPFetcher{opts: opts, client: c}
	if opts.MaxPerSecond > 0 {
		f.limiter = ratelimit.New(opts.MaxPerSecond, ratelimit.WithoutSlack)
	}
	return f
}

// Fetch loads rawURL and decodes it as an image.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Image, error) {
	ch := f.group.DoChan(rawURL, func() (any, error) {
		return f.fetch(ctx, rawURL)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			// A shared call may have failed because its leader was cancelled.
			if res.Shared && errors.Is(res.Err, context.Canceled) && ctx.Err() == nil {
				return f.fetch(ctx, rawURL)
			}
			return nil, res.Err
		}
		return res.Val.(*Image), nil
	}
}

func (f *HTTPFetcher) fetch(ctx context.Context, rawURL string) (*Image, error) {
	l := applog.WithOperation(applog.WithComponent("fetch"), "fetch").With(slog.String("url", rawURL))
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	var data []byte
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		data, err = f.get(ctx, u)
	case "file":
		data, err = f.readFile(u)
	default:
		err = fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		l.Debug("fetch failed", slog.Any("err", err))
		return nil, err
	}
	img, err := decode(rawURL, data)
	if err != nil {
		l.Debug("decode failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("fetched", slog.Int("bytes", len(data)), slog.String("format", img.Format))
	return img, nil
}

func (f *HTTPFetcher) get(ctx context.Context, u *url.URL) ([]byte, error) {
	if f.limiter != nil {
		f.limiter.Take()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if f.opts.Token != "" {
		req.Header.Set("Authorization", "Bearer "+f.opts.Token)
	}
	if f.opts.UserAgent != "" {
		req.Header.Set("User-Agent", f.opts.UserAgent)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: GET %s: %s", ErrStatus, u.Redacted(), resp.Status)
	}
	return f.readAll(resp.Body)
}

func (f *HTTPFetcher) readFile(u *url.URL) ([]byte, error) {
	p := u.Path
	if p == "" {
		p = u.Opaque
	}
	file, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p, err)
	}
	defer file.Close()
	return f.readAll(file)
}

func (f *HTTPFetcher) readAll(r io.Reader) ([]byte, error) {
	if f.opts.MaxBytes <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, f.opts.MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > f.opts.MaxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.opts.MaxBytes)
	}
	return data, nil
}

// decode sniffs the content type and decodes data, honouring EXIF orientation.
func decode(rawURL string, data []byte) (*Image, error) {
	if ct := http.DetectContentType(data); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("%w: content type %s", ErrNotImage, ct)
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	px, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return &Image{URL: rawURL, Data: data, Bounds: px.Bounds(), Format: format, Pixels: px}, nil
}

// Decode builds an Image from bytes that were obtained elsewhere.
func Decode(rawURL string, data []byte) (*Image, error) { return decode(rawURL, data) }
