package crawlers

import (
	"regexp"
	"strings"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

var (
	// anchorHrefPattern 匹配 <a ... href="..."> 中第一个href值
	// 标签与属性名不区分大小写,值可用单引号或双引号
	// href之前的属性可以是带引号的值 (其中允许出现 ">"),匹配不会越过标签结尾
	anchorHrefPattern = regexp.MustCompile(`(?is)<a\s+(?:(?:[^>"']|"[^"]*"|'[^']*')*?\s)?href\s*=\s*["']([^"']*)["']`)

	// schemePrefixPattern 判断是否带有 "scheme:" 前缀
	schemePrefixPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*:`)
)

// LinkExtractor 链接提取器
// 用单个锚点正则扫描HTML文本,不构建DOM
type LinkExtractor struct {
	pattern *regexp.Regexp
}

// NewLinkExtractor 创建链接提取器
func NewLinkExtractor() *LinkExtractor {
	return &LinkExtractor{pattern: anchorHrefPattern}
}

// ExtractHrefs 返回页面中所有锚点的原始href值
func (e *LinkExtractor) ExtractHrefs(htmlContent string) []string {
	matches := e.pattern.FindAllStringSubmatch(htmlContent, -1)
	hrefs := make([]string, 0, len(matches))
	for _, m := range matches {
		hrefs = append(hrefs, m[1])
	}
	return hrefs
}

// Extract 提取并解析页面中的链接
// 返回已解析为绝对地址(尚未规范化)的URL列表,被丢弃的href不出现在结果中
func (e *LinkExtractor) Extract(htmlContent string, current *models.URLParts) []string {
	hrefs := e.ExtractHrefs(htmlContent)
	links := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		if link, ok := ResolveLink(href, current); ok {
			links = append(links, link)
		}
	}
	return links
}

// ResolveLink 按优先级规则将href解析为绝对地址
// 规则:
//  1. "/" 开头: scheme://authority + href
//  2. "#" 开头: scheme://authority + 当前路径 + href
//  3. "http://" 开头: 原样使用
//  4. 不带 scheme 前缀: scheme://authority + 当前路径 + href
//  5. 其它 (mailto:, javascript:, https:// 等): 丢弃
//
// 规则4直接拼接当前路径,不去掉当前文档的文件名段
func ResolveLink(href string, current *models.URLParts) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}

	origin := current.Scheme + "://" + current.Authority
	currentPath := current.Path
	if currentPath == "" {
		currentPath = "/"
	}

	switch {
	case strings.HasPrefix(href, "/"):
		return origin + href, true
	case strings.HasPrefix(href, "#"):
		return origin + currentPath + href, true
	case len(href) >= len("http://") && strings.EqualFold(href[:len("http://")], "http://"):
		return href, true
	case !schemePrefixPattern.MatchString(href):
		return origin + currentPath + href, true
	default:
		return "", false
	}
}
