package models

import "strings"

// PathSeparator 默认路径分隔符
const PathSeparator = "/"

// PathSegments 分层路径的分段表示
// 不变量:
//   - Segments 中不含空字符串 (连续分隔符合并为一个边界)
//   - 未规范化时按标志位重新序列化即可还原原始路径
type PathSegments struct {
	// Segments 路径分段
	Segments []string

	// LeadsWithSeparator 原路径是否以分隔符开头
	LeadsWithSeparator bool

	// EndsWithSeparator 原路径是否以分隔符结尾 (表示目录)
	EndsWithSeparator bool

	// sep 分隔符
	sep string
}

// SplitPath 使用默认分隔符 "/" 切分路径
func SplitPath(p string) *PathSegments {
	return SplitPathSep(p, PathSeparator)
}

// SplitPathSep 使用指定分隔符切分路径
// 单次扫描: 分隔符连续出现时合并为一个边界,边界之间的空串不记为分段
func SplitPathSep(p string, sep string) *PathSegments {
	if sep == "" {
		sep = PathSeparator
	}

	ps := &PathSegments{
		Segments: make([]string, 0, strings.Count(p, sep)+1),
		sep:      sep,
	}
	if p == "" {
		return ps
	}

	ps.LeadsWithSeparator = strings.HasPrefix(p, sep)
	ps.EndsWithSeparator = strings.HasSuffix(p, sep)

	for _, part := range strings.Split(p, sep) {
		if part != "" {
			ps.Segments = append(ps.Segments, part)
		}
	}
	return ps
}

// Normalize 解析 "." 与 ".." 分段
// 规则:
//  1. "." 直接丢弃
//  2. ".." 与前一个保留的普通分段相互抵消
//  3. 没有可抵消的前驱时保留 ".." (无法确定路径是否以根为锚点)
//  4. 最后处理的分段若被删除,路径以分隔符结尾
func (p *PathSegments) Normalize() {
	out := make([]string, 0, len(p.Segments))
	endsAtRemoved := false

	for _, seg := range p.Segments {
		switch {
		case seg == ".":
			endsAtRemoved = true
		case seg == ".." && len(out) > 0 && out[len(out)-1] != "..":
			out = out[:len(out)-1]
			endsAtRemoved = true
		default:
			out = append(out, seg)
			endsAtRemoved = false
		}
	}

	if endsAtRemoved {
		p.EndsWithSeparator = true
	}
	p.Segments = out
}

// Updir 进入上一级目录
// 先规范化;若最后一段是文件(不以分隔符结尾)则先去掉文件,再上移一级
// 返回: 是否发生了上移 (已在顶层时返回false)
func (p *PathSegments) Updir() bool {
	p.Normalize()

	if len(p.Segments) > 0 && !p.EndsWithSeparator {
		p.Segments = p.Segments[:len(p.Segments)-1]
	}

	ascended := false
	if len(p.Segments) > 0 {
		p.Segments = p.Segments[:len(p.Segments)-1]
		ascended = true
	}

	p.EndsWithSeparator = len(p.Segments) > 0
	return ascended
}

// IsEmpty 没有分段且没有任何标志位
func (p *PathSegments) IsEmpty() bool {
	return len(p.Segments) == 0 && !p.LeadsWithSeparator && !p.EndsWithSeparator
}

// String 重新序列化路径
func (p *PathSegments) String() string {
	sep := p.sep
	if sep == "" {
		sep = PathSeparator
	}

	if len(p.Segments) == 0 {
		if p.LeadsWithSeparator || p.EndsWithSeparator {
			return sep
		}
		return ""
	}

	var b strings.Builder
	if p.LeadsWithSeparator {
		b.WriteString(sep)
	}
	b.WriteString(strings.Join(p.Segments, sep))
	if p.EndsWithSeparator {
		b.WriteString(sep)
	}
	return b.String()
}

// NormalizePath 规范化路径字符串的快捷方法
func NormalizePath(p string) string {
	ps := SplitPath(p)
	ps.Normalize()
	return ps.String()
}
