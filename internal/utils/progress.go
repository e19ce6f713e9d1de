package utils

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressSink 进度输出接口
// 持久化每写入一个分块调用一次 Update,bytesDone 为当前文件已写入字节数
type ProgressSink interface {
	Update(bytesDone int64, message string)
	Finish()
}

// NopProgress 不输出任何进度
type NopProgress struct{}

// Update 实现ProgressSink接口
func (NopProgress) Update(int64, string) {}

// Finish 实现ProgressSink接口
func (NopProgress) Finish() {}

// TerminalProgress 终端进度条
// 下载长度事先未知,使用字节计数的不定长进度条;message 变化时重置计数
type TerminalProgress struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	message string
}

// NewTerminalProgress 创建写入到w的终端进度条
func NewTerminalProgress(w io.Writer) *TerminalProgress {
	return &TerminalProgress{
		bar: NewProgressBar(w, -1, "准备中"),
	}
}

// Update 实现ProgressSink接口
func (p *TerminalProgress) Update(bytesDone int64, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if message != p.message {
		p.bar.Reset()
		p.bar.Describe(message)
		p.message = message
	}
	_ = p.bar.Set64(bytesDone)
}

// Finish 实现ProgressSink接口
func (p *TerminalProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}

// NewProgressBar 创建按字节计数的进度条
// max 为 -1 时显示为不定长的旋转指示
func NewProgressBar(w io.Writer, max int64, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(max,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
