package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/webmirror/internal/models"
)

// Reporter 报告生成器
type Reporter struct {
	reportPath string
}

// NewReporter 创建报告生成器
// reportPath 为空时 GenerateReport 不做任何事
func NewReporter(reportPath string) *Reporter {
	return &Reporter{
		reportPath: reportPath,
	}
}

// Enabled 是否配置了报告路径
func (r *Reporter) Enabled() bool {
	return r.reportPath != ""
}

// GenerateReport 将爬取报告写为JSON文件
func (r *Reporter) GenerateReport(report *models.CrawlReport) error {
	if !r.Enabled() {
		return nil
	}

	if dir := filepath.Dir(r.reportPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("创建报告目录失败: %w", err)
		}
	}

	if err := r.saveJSONReport(r.reportPath, report); err != nil {
		return err
	}

	Infof("报告已生成: %s", r.reportPath)
	return nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}
