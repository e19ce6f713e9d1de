package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/RecoveryAshes/webmirror/internal/config"
	"github.com/RecoveryAshes/webmirror/internal/crawlers"
	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
)

// Crawler 镜像爬取循环
// 配置在构造时固定;待爬/已访问集合由循环独占,单线程执行
type Crawler struct {
	config models.CrawlConfig

	// filter 递归过滤正则,为nil时不跟随任何链接
	filter *regexp.Regexp

	frontier  *crawlers.Frontier
	fetcher   crawlers.PageFetcher
	extractor *crawlers.LinkExtractor
	saver     *crawlers.Saver
	progress  utils.ProgressSink

	state  models.CrawlState
	stats  models.TaskStats
	report *models.CrawlReport
}

// NewCrawler 创建爬取器
// fetcher 由调用方提供 (测试中可替换);progress 为nil时不输出进度
func NewCrawler(cfg models.CrawlConfig, fetcher crawlers.PageFetcher, progress utils.ProgressSink) (*Crawler, error) {
	filter, err := cfg.FilterPattern()
	if err != nil {
		return nil, &models.ConfigError{Source: "--regex", Cause: err}
	}

	frontier, err := crawlers.NewFrontier(cfg.Seeds, nil)
	if err != nil {
		return nil, &models.ConfigError{Source: "seeds", Cause: err}
	}
	if frontier.PendingCount() == 0 {
		return nil, &models.ConfigError{Source: "seeds", Cause: models.ErrNoSeeds}
	}

	if progress == nil {
		progress = utils.NopProgress{}
	}

	return &Crawler{
		config:    cfg,
		filter:    filter,
		frontier:  frontier,
		fetcher:   fetcher,
		extractor: crawlers.NewLinkExtractor(),
		saver:     crawlers.NewSaver(crawlers.NewLocalPathMapper(cfg.OutputDir), cfg.ChunkSize, progress),
		progress:  progress,
		state:     models.StateRunning,
	}, nil
}

// NewHTTPCrawler 按配置组装完整的爬取器
// 加载cookie文件与额外头部文件,任一失败均为配置错误
func NewHTTPCrawler(cfg models.CrawlConfig, cliHeaders []string, progress utils.ProgressSink) (*Crawler, error) {
	var cookies *models.CookieTable
	if cfg.CookieFile != "" {
		table, err := config.NewCookieFileLoader(cfg.CookieFile).Load()
		if err != nil {
			return nil, err
		}
		cookies = table
	}

	headerManager, err := NewHeaderManager(cfg.HeaderFile, cliHeaders, cookies)
	if err != nil {
		return nil, err
	}
	if err := headerManager.LoadConfig(); err != nil {
		return nil, err
	}
	utils.Debugf("请求头部: %v", headerManager.GetSafeHeaders())

	fetcher := crawlers.NewFetcher(crawlers.FetcherConfig{
		Timeout:            time.Duration(cfg.Timeout) * time.Second,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, headerManager)

	return NewCrawler(cfg, fetcher, progress)
}

// Run 执行爬取直到待爬集合为空
// 致命错误或ctx取消时立即返回,报告中保留已完成部分的统计
func (c *Crawler) Run(ctx context.Context) (*models.CrawlReport, error) {
	startTime := time.Now()
	c.report = models.NewCrawlReport(c.config, startTime)
	defer c.progress.Finish()

	utils.Infof("开始镜像: %d 个种子, 输出目录: %s", c.frontier.PendingCount(), c.config.OutputDir)
	if c.filter == nil {
		utils.Infof("未配置过滤正则,只抓取种子URL")
	} else {
		utils.Infof("递归过滤正则: %s", c.config.Regex)
	}

	for {
		if err := ctx.Err(); err != nil {
			utils.Warnf("爬取被中断: %v", err)
			c.finish(startTime)
			return c.report, err
		}

		item, ok := c.frontier.Pop()
		if !ok {
			break
		}
		c.setState(models.StateDraining)

		outcome := c.step(ctx, item)
		switch outcome.Kind {
		case models.StepSuccess:
		case models.StepTransient:
			c.recordFailure(outcome)
		case models.StepFatal:
			c.finish(startTime)
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(outcome.Err, ctxErr) {
				utils.Warnf("爬取被中断: %v", ctxErr)
				return c.report, ctxErr
			}
			utils.Error(outcome.Err, "致命错误,终止爬取")
			return c.report, outcome.Err
		}

		if c.frontier.PendingCount() > 0 {
			c.setState(models.StateRunning)
		}
	}

	c.setState(models.StateDone)
	c.finish(startTime)

	utils.Infof("镜像完成: 访问 %d, 保存 %d, 跳过 %d, 失败 %d, 耗时 %.2f秒",
		c.stats.VisitedURLs, c.stats.SavedFiles, c.stats.SkippedFiles, c.stats.FailedURLs, c.stats.Duration)
	return c.report, nil
}

// step 处理一个URL: 抓取,提取链接(HTML),保存
func (c *Crawler) step(ctx context.Context, item models.URLItem) models.StepOutcome {
	utils.Debugf("抓取: %s (层级 %d)", item.URL, item.Depth)

	result, err := c.fetcher.Fetch(ctx, item.URL)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.StepOutcome{Kind: models.StepFatal, URL: item.URL, Err: ctxErr}
		}
		return models.StepOutcome{Kind: models.StepTransient, URL: item.URL, Err: err}
	}
	defer result.Body.Close()

	// 抓取成功即标记已访问,页面指向自身的链接不会再入队
	if err := c.frontier.MarkVisited(item.URL); err != nil {
		return models.StepOutcome{Kind: models.StepFatal, URL: item.URL, Err: err}
	}
	c.stats.VisitedURLs++

	var body io.Reader = result.Body
	if result.IsHTML() {
		data, err := io.ReadAll(result.Body)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return models.StepOutcome{Kind: models.StepFatal, URL: item.URL, Err: ctxErr}
			}
			return models.StepOutcome{
				Kind: models.StepTransient,
				URL:  item.URL,
				Err:  &models.ReadError{URL: item.URL, Cause: err},
			}
		}
		c.discoverLinks(item, result.Charset, data)
		body = bytes.NewReader(data)
	}

	saved, err := c.saver.Save(ctx, item.URL, result.ContentType, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.StepOutcome{Kind: models.StepFatal, URL: item.URL, Err: ctxErr}
		}
		var readErr *models.ReadError
		if errors.As(err, &readErr) {
			return models.StepOutcome{Kind: models.StepTransient, URL: item.URL, Err: err}
		}
		return models.StepOutcome{Kind: models.StepFatal, URL: item.URL, Err: err}
	}

	c.recordSaved(saved)
	return models.StepOutcome{Kind: models.StepSuccess, URL: item.URL}
}

// discoverLinks 解码页面,提取链接并按过滤正则加入待爬集合
// 解码失败只记录日志,不影响保存原始内容
func (c *Crawler) discoverLinks(item models.URLItem, charsetName string, data []byte) {
	text, err := crawlers.DecodeBody(item.URL, charsetName, data)
	if err != nil {
		c.stats.DecodeErrors++
		utils.Warnf("跳过链接提取: %v", err)
		return
	}

	current, err := models.SplitURL(item.URL)
	if err != nil {
		utils.Warnf("解析当前URL失败 [%s]: %v", item.URL, err)
		return
	}

	for _, link := range c.extractor.Extract(text, current.Canonical()) {
		canonical, err := models.Canonicalize(link)
		if err != nil {
			utils.Debugf("忽略无效链接 [%s]: %v", link, err)
			continue
		}

		if c.frontier.IsVisited(canonical) {
			continue
		}

		if c.filter == nil || !c.filter.MatchString(canonical) {
			c.stats.FilteredLinks++
			utils.Debugf("未通过过滤: %s", canonical)
			continue
		}

		if c.frontier.Push(models.URLItem{URL: canonical, Depth: item.Depth + 1, SourceURL: item.URL}) {
			c.stats.QueuedLinks++
			utils.Debugf("加入待爬: %s", canonical)
		}
	}
}

// recordSaved 记录保存结果
func (c *Crawler) recordSaved(saved *models.SavedFile) {
	switch saved.Status {
	case models.SaveWritten:
		c.stats.SavedFiles++
		c.stats.TotalSize += saved.Size
	case models.SaveSkipped:
		c.stats.SkippedFiles++
	}
	c.report.SavedFiles = append(c.report.SavedFiles, saved)
}

// recordFailure 记录可恢复的失败,该URL本次运行不再重试
func (c *Crawler) recordFailure(outcome models.StepOutcome) {
	c.stats.FailedURLs++
	utils.Warnf("放弃URL [%s]: %v", outcome.URL, outcome.Err)

	c.report.FailedURLs = append(c.report.FailedURLs, models.FailedURLInfo{
		URL:       outcome.URL,
		ErrorType: errorType(outcome.Err),
		ErrorMsg:  outcome.Err.Error(),
	})
}

// errorType 失败类别,写入报告
func errorType(err error) string {
	var readErr *models.ReadError
	var decodeErr *models.DecodeError
	switch {
	case errors.As(err, &readErr):
		return "read"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "fetch"
	}
}

// setState 切换循环状态
func (c *Crawler) setState(state models.CrawlState) {
	if c.state == state {
		return
	}
	utils.Debugf("爬取状态: %s -> %s (待爬 %d)", c.state, state, c.frontier.PendingCount())
	c.state = state
}

// finish 填充报告的结束信息
func (c *Crawler) finish(startTime time.Time) {
	endTime := time.Now()
	c.stats.Duration = endTime.Sub(startTime).Seconds()
	c.report.EndTime = endTime
	c.report.Duration = c.stats.Duration
	c.report.Stats = c.stats
}

// State 返回当前循环状态
func (c *Crawler) State() models.CrawlState {
	return c.state
}

// GetStats 获取统计信息
func (c *Crawler) GetStats() models.TaskStats {
	return c.stats
}

// String 实现fmt.Stringer
func (c *Crawler) String() string {
	return fmt.Sprintf("Crawler{state=%s, pending=%d, visited=%d}",
		c.state, c.frontier.PendingCount(), c.frontier.VisitedCount())
}
