package models

// URLItem 表示待爬集合中的一个URL项
type URLItem struct {
	// URL 规范化后的URL
	URL string

	// Depth 发现层级,仅用于日志与报告
	//   - 0: 种子URL
	//   - 1: 从种子页面发现的链接
	//   - 以此类推...
	Depth int

	// SourceURL 发现此URL的源页面(种子为空)
	SourceURL string
}
