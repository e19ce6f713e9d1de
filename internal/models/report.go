package models

import (
	"encoding/json"
	"time"
)

// CrawlReport 爬取报告
type CrawlReport struct {
	// 任务信息
	RunID string   `json:"run_id"`
	Seeds []string `json:"seeds"`
	Regex string   `json:"regex,omitempty"`

	// 时间信息
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  float64   `json:"duration"` // 秒

	// 统计信息
	Stats TaskStats `json:"stats"`

	// 文件列表
	SavedFiles []*SavedFile    `json:"saved_files"`
	FailedURLs []FailedURLInfo `json:"failed_urls"`

	// 输出路径
	OutputDir string `json:"output_dir"`
}

// FailedURLInfo 失败URL信息
type FailedURLInfo struct {
	URL       string `json:"url"`
	ErrorType string `json:"error_type"` // fetch, decode, read
	ErrorMsg  string `json:"error_msg"`
}

// NewCrawlReport 创建报告
func NewCrawlReport(config CrawlConfig, startTime time.Time) *CrawlReport {
	return &CrawlReport{
		RunID:      generateID(),
		Seeds:      config.Seeds,
		Regex:      config.Regex,
		StartTime:  startTime,
		SavedFiles: make([]*SavedFile, 0),
		FailedURLs: make([]FailedURLInfo, 0),
		OutputDir:  config.OutputDir,
	}
}

// ToJSON 序列化为JSON
func (r *CrawlReport) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON 从JSON反序列化
func (r *CrawlReport) FromJSON(data []byte) error {
	return json.Unmarshal(data, r)
}
