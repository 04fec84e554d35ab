/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fetch

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 255, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestFetchDecodesPNG(t *testing.T) {
	data := pngBytes(t, 30, 20)
	var gotAuth, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := New(Options{Token: "tok", UserAgent: "emojiart-test"})
	img, err := f.Fetch(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)
	require.Equal(t, "png", img.Format)
	w, h := img.Size()
	require.Equal(t, 30, w)
	require.Equal(t, 20, h)
	require.Equal(t, data, img.Data)
	require.Equal(t, "Bearer tok", gotAuth)
	require.Equal(t, "emojiart-test", gotUA)
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/text":
			_, _ = w.Write([]byte("hello, not an image"))
		case "/big":
			_, _ = w.Write(bytes.Repeat([]byte{0x89}, 4096))
		}
	}))
	defer srv.Close()

	f := New(Options{MaxBytes: 1024})
	ctx := context.Background()

	_, err := f.Fetch(ctx, srv.URL+"/missing")
	require.ErrorIs(t, err, ErrStatus)

	_, err = f.Fetch(ctx, srv.URL+"/text")
	require.ErrorIs(t, err, ErrNotImage)

	_, err = f.Fetch(ctx, srv.URL+"/big")
	require.ErrorIs(t, err, ErrTooLarge)

	_, err = f.Fetch(ctx, "ftp://example.com/a.png")
	require.Error(t, err)
}

func TestFetchFileURL(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bg.png")
	require.NoError(t, os.WriteFile(p, pngBytes(t, 4, 4), 0o644))
	img, err := New(Options{}).Fetch(context.Background(), "file://"+filepath.ToSlash(p))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 4, 4), img.Bounds)
}

func TestFetchHonoursCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := New(Options{}).Fetch(ctx, srv.URL)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConcurrentFetchesShareOneRequest(t *testing.T) {
	data := pngBytes(t, 2, 2)
	var hits int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	f := New(Options{})
	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Fetch(context.Background(), srv.URL+"/same.png")
			errs <- err
		}()
	}
	// Let all callers join the in-flight request before answering it.
	require.Eventually(t, func() bool { return atomic.LoadInt32(&hits) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestFuncAdapter(t *testing.T) {
	var f Fetcher = Func(func(ctx context.Context, u string) (*Image, error) {
		return &Image{URL: u}, nil
	})
	img, err := f.Fetch(context.Background(), "https://example.com/x.png")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/x.png", img.URL)
}
