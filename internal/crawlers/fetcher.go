package crawlers

import (
	"compress/flate"
	"compress/gzip"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
	"github.com/andybalholm/brotli"
)

// PageFetcher 执行单次HTTP GET
type PageFetcher interface {
	// Fetch 抓取URL,成功时调用方负责关闭 FetchResult.Body
	Fetch(ctx context.Context, rawURL string) (*models.FetchResult, error)
}

// FetcherConfig HTTP抓取配置
type FetcherConfig struct {
	Timeout            time.Duration // 等待响应头的超时
	InsecureSkipVerify bool          // 跳过TLS证书验证
}

// Fetcher 基于net/http的抓取器
// 请求头由 HeaderProvider 按目标主机提供 (含cookie)
type Fetcher struct {
	client  *http.Client
	headers models.HeaderProvider
}

// NewFetcher 创建抓取器
func NewFetcher(config FetcherConfig, headers models.HeaderProvider) *Fetcher {
	if config.Timeout <= 0 {
		config.Timeout = models.DefaultTimeout * time.Second
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{Timeout: config.Timeout}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: config.InsecureSkipVerify,
		},
		// 超时只约束到响应头为止,响应体按分块流式读取
		ResponseHeaderTimeout: config.Timeout,
		TLSHandshakeTimeout:   config.Timeout,
		// 自行处理 Content-Encoding (含brotli)
		DisableCompression: true,
	}
	if config.InsecureSkipVerify {
		utils.Warnf("TLS证书验证已禁用")
	}

	return &Fetcher{
		client:  &http.Client{Transport: transport},
		headers: headers,
	}
}

// Fetch 实现PageFetcher接口
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*models.FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &models.FetchError{URL: rawURL, Cause: err}
	}

	if f.headers != nil {
		headers, err := f.headers.GetHeaders(req.URL.Host)
		if err != nil {
			return nil, &models.FetchError{URL: rawURL, Cause: fmt.Errorf("获取请求头失败: %w", err)}
		}
		for name, values := range headers {
			req.Header[name] = values
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &models.FetchError{URL: rawURL, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &models.FetchError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("HTTP %s", resp.Status),
		}
	}

	body, err := decompressBody(resp.Header.Get("Content-Encoding"), resp.Body)
	if err != nil {
		resp.Body.Close()
		return nil, &models.FetchError{URL: rawURL, StatusCode: resp.StatusCode, Cause: err}
	}

	mediaType, charsetName := ParseContentType(resp.Header.Get("Content-Type"))
	return &models.FetchResult{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		Header:      resp.Header,
		ContentType: mediaType,
		Charset:     charsetName,
		Body:        body,
	}, nil
}

// ParseContentType 解析Content-Type头部
// 返回小写媒体类型与字符集,未声明字符集时为 DefaultCharset
func ParseContentType(contentType string) (mediaType, charsetName string) {
	charsetName = models.DefaultCharset
	if contentType == "" {
		return "", charsetName
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// 参数格式不规范时仍取分号前的媒体类型
		mediaType = strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
		return strings.ToLower(mediaType), charsetName
	}

	if cs := strings.TrimSpace(params["charset"]); cs != "" {
		charsetName = strings.Trim(cs, `"'`)
	}
	return strings.ToLower(mediaType), charsetName
}

// decompressBody 按 Content-Encoding 包装响应体
// 支持 gzip, deflate, br (Brotli),未知编码原样返回
func decompressBody(contentEncoding string, body io.ReadCloser) (io.ReadCloser, error) {
	encoding := strings.ToLower(strings.TrimSpace(contentEncoding))

	switch encoding {
	case "gzip", "x-gzip":
		reader, err := gzip.NewReader(body)
		if err != nil {
			return nil, fmt.Errorf("gzip解压失败: %w", err)
		}
		return &decodedBody{Reader: reader, closers: []io.Closer{reader, body}}, nil

	case "deflate":
		reader := flate.NewReader(body)
		return &decodedBody{Reader: reader, closers: []io.Closer{reader, body}}, nil

	case "br":
		return &decodedBody{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil

	case "", "identity":
		return body, nil

	default:
		utils.Warnf("未知的Content-Encoding: %s", contentEncoding)
		return body, nil
	}
}

// decodedBody 解压后的响应体,关闭时同时关闭底层连接
type decodedBody struct {
	io.Reader
	closers []io.Closer
}

// Close 实现io.Closer接口
func (b *decodedBody) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
