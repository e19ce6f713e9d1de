package models

import (
	"fmt"
	"net/url"
	"strings"
)

// URLParts URL的组成部分
// Authority 为 userinfo@host[:port],规范化后为小写
type URLParts struct {
	Scheme    string
	Authority string
	Path      string
	RawQuery  string
	Fragment  string

	// HasQuery 原URL是否带有 "?" (区分空查询与无查询)
	HasQuery bool
}

// SplitURL 将绝对URL拆分为各组成部分
// 路径保留原始编码,查询串原样保留不做解析或排序
func SplitURL(rawURL string) (*URLParts, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("URL格式无效: %w", err)
	}
	if parsed.Scheme == "" {
		return nil, fmt.Errorf("URL缺少协议: %s", rawURL)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("URL缺少主机名: %s", rawURL)
	}

	authority := parsed.Host
	if parsed.User != nil {
		authority = parsed.User.String() + "@" + authority
	}

	return &URLParts{
		Scheme:    parsed.Scheme,
		Authority: authority,
		Path:      parsed.EscapedPath(),
		RawQuery:  parsed.RawQuery,
		Fragment:  parsed.EscapedFragment(),
		HasQuery:  parsed.ForceQuery || parsed.RawQuery != "",
	}, nil
}

// Host 返回去掉userinfo后的 host[:port]
func (u *URLParts) Host() string {
	if i := strings.LastIndex(u.Authority, "@"); i >= 0 {
		return u.Authority[i+1:]
	}
	return u.Authority
}

// Canonical 返回规范化后的副本
// 处理流程:
//  1. authority 转小写
//  2. 路径经 PathSegments 解析 "."/".." 并合并重复分隔符
//  3. 丢弃片段 (片段不区分抓取目标)
func (u *URLParts) Canonical() *URLParts {
	return &URLParts{
		Scheme:    strings.ToLower(u.Scheme),
		Authority: strings.ToLower(u.Authority),
		Path:      NormalizePath(u.Path),
		RawQuery:  u.RawQuery,
		HasQuery:  u.HasQuery,
	}
}

// String 重新组装为 scheme://authority/path?query#fragment
func (u *URLParts) String() string {
	var b strings.Builder
	b.WriteString(u.Scheme)
	b.WriteString("://")
	b.WriteString(u.Authority)
	b.WriteString(u.Path)
	if u.HasQuery {
		b.WriteString("?")
		b.WriteString(u.RawQuery)
	}
	if u.Fragment != "" {
		b.WriteString("#")
		b.WriteString(u.Fragment)
	}
	return b.String()
}

// Canonicalize 规范化URL字符串
// 满足幂等性: Canonicalize(Canonicalize(u)) == Canonicalize(u)
func Canonicalize(rawURL string) (string, error) {
	parts, err := SplitURL(rawURL)
	if err != nil {
		return "", err
	}
	return parts.Canonical().String(), nil
}
