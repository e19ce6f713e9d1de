package crawlers

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/andybalholm/brotli"
)

// staticHeaders 固定头部的HeaderProvider
type staticHeaders struct {
	headers http.Header
	hosts   []string
}

func (s *staticHeaders) GetHeaders(host string) (http.Header, error) {
	s.hosts = append(s.hosts, host)
	return s.headers.Clone(), nil
}

func TestFetcher_Fetch(t *testing.T) {
	page := []byte("<html><a href=\"/x\">x</a></html>")

	mux := http.NewServeMux()
	mux.HandleFunc("/plain", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=GBK")
		w.Write(page)
	})
	mux.HandleFunc("/gzip", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		gz.Write(page)
		gz.Close()
	})
	mux.HandleFunc("/br", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Encoding", "br")
		bw := brotli.NewWriter(w)
		bw.Write(page)
		bw.Close()
	})
	mux.HandleFunc("/cookie", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, r.Header.Get("Cookie")+"|"+r.Header.Get("User-Agent"))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	headers := &staticHeaders{headers: http.Header{
		"Cookie":     []string{"session=abc"},
		"User-Agent": []string{"webmirror-test"},
	}}
	fetcher := NewFetcher(FetcherConfig{}, headers)

	tests := []struct {
		name        string
		path        string
		wantBody    []byte
		wantType    string
		wantCharset string
	}{
		{"未压缩带字符集", "/plain", page, "text/html", "GBK"},
		{"gzip解压", "/gzip", page, "text/html", "utf-8"},
		{"brotli解压", "/br", page, "application/octet-stream", "utf-8"},
		{"携带cookie与UA", "/cookie", []byte("session=abc|webmirror-test"), "text/plain", "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := fetcher.Fetch(context.Background(), server.URL+tt.path)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			defer result.Body.Close()

			body, err := io.ReadAll(result.Body)
			if err != nil {
				t.Fatalf("读取响应体失败: %v", err)
			}
			if !bytes.Equal(body, tt.wantBody) {
				t.Errorf("body = %q, want %q", body, tt.wantBody)
			}
			if result.ContentType != tt.wantType {
				t.Errorf("ContentType = %q, want %q", result.ContentType, tt.wantType)
			}
			if result.Charset != tt.wantCharset {
				t.Errorf("Charset = %q, want %q", result.Charset, tt.wantCharset)
			}
		})
	}

	if len(headers.hosts) == 0 || headers.hosts[0] != server.Listener.Addr().String() {
		t.Errorf("HeaderProvider应按目标主机调用, got %v", headers.hosts)
	}

	t.Run("非2xx返回FetchError", func(t *testing.T) {
		_, err := fetcher.Fetch(context.Background(), server.URL+"/missing")
		var fetchErr *models.FetchError
		if !errors.As(err, &fetchErr) {
			t.Fatalf("期望FetchError, 得到 %v", err)
		}
		if fetchErr.StatusCode != http.StatusNotFound {
			t.Errorf("StatusCode = %d", fetchErr.StatusCode)
		}
	})

	t.Run("连接失败返回FetchError", func(t *testing.T) {
		closed := httptest.NewServer(http.NotFoundHandler())
		addr := closed.URL
		closed.Close()

		_, err := fetcher.Fetch(context.Background(), addr+"/")
		var fetchErr *models.FetchError
		if !errors.As(err, &fetchErr) || fetchErr.StatusCode != 0 {
			t.Fatalf("期望传输层FetchError, 得到 %v", err)
		}
	})
}

func TestParseContentType(t *testing.T) {
	tests := []struct {
		in          string
		wantType    string
		wantCharset string
	}{
		{"text/html; charset=ISO-8859-1", "text/html", "ISO-8859-1"},
		{"TEXT/HTML", "text/html", "utf-8"},
		{"", "", "utf-8"},
		{"text/html; charset=\"utf-8\"", "text/html", "utf-8"},
		{"text/html;;bad", "text/html", "utf-8"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			gotType, gotCharset := ParseContentType(tt.in)
			if gotType != tt.wantType || gotCharset != tt.wantCharset {
				t.Errorf("ParseContentType(%q) = %q, %q", tt.in, gotType, gotCharset)
			}
		})
	}
}
