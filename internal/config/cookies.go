package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/RecoveryAshes/webmirror/internal/models"
	"github.com/RecoveryAshes/webmirror/internal/utils"
)

const (
	// cookieFieldCount Netscape格式每行字段数
	// domain, includeSubdomains, path, secure, expiry, name, value
	cookieFieldCount = 7

	// cookieNameField cookie名所在的字段下标
	cookieNameField = 5
)

// CookieFileLoader Netscape格式cookie文件加载器
type CookieFileLoader struct {
	path string
}

// NewCookieFileLoader 创建cookie文件加载器
func NewCookieFileLoader(path string) *CookieFileLoader {
	return &CookieFileLoader{path: path}
}

// Load 读取并解析cookie文件
// 文件不存在或无法读取属于配置错误,单行格式问题只记录警告
func (l *CookieFileLoader) Load() (*models.CookieTable, error) {
	file, err := os.Open(l.path)
	if err != nil {
		return nil, &models.ConfigError{Source: l.path, Cause: err}
	}
	defer file.Close()

	table, err := ParseCookies(file)
	if err != nil {
		return nil, &models.ConfigError{Source: l.path, Cause: err}
	}

	utils.Infof("从cookie文件加载了 %d 个cookie (%d 个域名): %s",
		table.Len(), len(table.Domains()), l.path)
	return table, nil
}

// ParseCookies 解析Netscape/Mozilla格式的cookie内容
// 规则:
//  1. 空行和以 "#" 开头的行为注释
//  2. 按制表符切分,第1列为域名,第6列为名称,第7列为值
//  3. 只有6列时记录名称,值为空
//  4. 连名称都没有的行跳过并警告
//  5. 名称或值无法放入 "Cookie:" 头部的行跳过并警告
func ParseCookies(r io.Reader) (*models.CookieTable, error) {
	table := models.NewCookieTable()
	validator := utils.NewHeaderValidator()
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r\n")

		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) <= cookieNameField {
			utils.Warnf("跳过无效cookie行 (行 %d): 只有 %d 个字段", lineNum, len(fields))
			continue
		}

		domain := strings.TrimSpace(fields[0])
		name := strings.TrimSpace(fields[cookieNameField])
		if domain == "" || name == "" {
			utils.Warnf("跳过无效cookie行 (行 %d): 缺少域名或名称", lineNum)
			continue
		}

		value := ""
		if len(fields) >= cookieFieldCount {
			// 值中可能包含制表符
			value = strings.Join(fields[cookieFieldCount-1:], "\t")
		}

		if err := validator.ValidateCookie(name, value); err != nil {
			utils.Warnf("跳过无效cookie行 (行 %d): %v", lineNum, err)
			continue
		}

		table.Set(domain, name, value)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取cookie文件失败: %w", err)
	}

	return table, nil
}
