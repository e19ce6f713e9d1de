package models

import (
	"encoding/json"
	"time"
)

// SaveStatus 持久化结果
type SaveStatus string

const (
	SaveWritten SaveStatus = "written" // 已写入
	SaveSkipped SaveStatus = "skipped" // 目标已存在或被拒绝,未写入
)

// SavedFile 本地保存的文件
type SavedFile struct {
	// 标识信息
	ID        string `json:"id"`         // 文件唯一ID
	URL       string `json:"url"`        // 规范化URL
	LocalPath string `json:"local_path"` // 本地存储路径

	// 元数据
	Size        int64      `json:"size"`         // 写入字节数
	ContentType string     `json:"content_type"` // HTTP Content-Type
	Status      SaveStatus `json:"status"`
	Reason      string     `json:"reason,omitempty"` // 跳过原因

	// 时间戳
	SavedAt time.Time `json:"saved_at"`
}

// NewSavedFile 创建保存记录
func NewSavedFile(url, localPath, contentType string) *SavedFile {
	return &SavedFile{
		ID:          generateID(),
		URL:         url,
		LocalPath:   localPath,
		ContentType: contentType,
		SavedAt:     time.Now(),
	}
}

// ToJSON 序列化为JSON
func (f *SavedFile) ToJSON() ([]byte, error) {
	return json.MarshalIndent(f, "", "  ")
}
