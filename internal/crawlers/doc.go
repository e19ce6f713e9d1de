// Package crawlers 提供单线程网站镜像所需的抓取组件
//
// # 概述
//
// crawlers包实现爬取循环依赖的各个部件: 待爬集合、链接提取、HTTP抓取、
// 字符集解码,以及URL到本地文件的映射与分块写入。循环本身位于 core 包。
//
// # 核心组件
//
// ## Frontier
//
// 待爬队列(FIFO)加已访问集合。已访问集合使用Colly的 storage.Storage,
// 以规范化URL的FNV-1a 64位哈希为键。已访问的URL不会再次入队。
//
//	frontier, err := NewFrontier([]string{"http://example.test/"}, nil)
//	item, ok := frontier.Pop()
//	_ = frontier.MarkVisited(item.URL)
//
// ## LinkExtractor
//
// 用单个锚点正则扫描HTML,按 ResolveLink 的五条规则把href解析为绝对地址。
//
// ## Fetcher
//
// 基于net/http的GET,请求头由 models.HeaderProvider 按主机提供;
// 自动解压 gzip/deflate/br,响应体以流的形式交给调用方。
//
// ## LocalPathMapper 与 Saver
//
// URL映射为 authority/解码路径,根路径文档命名为 "_root_"。
// Saver按固定分块写入并汇报进度,目标文件已存在时跳过。
//
//	mapper := NewLocalPathMapper(".")
//	saver := NewSaver(mapper, 8192, utils.NopProgress{})
//	saved, err := saver.Save(ctx, url, contentType, body)
package crawlers
