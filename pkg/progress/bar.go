package progress

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/schollz/progressbar/v3"
)

// Bar 终端进度条实现
type Bar struct {
	desc  string
	bar   *progressbar.ProgressBar
	bytes int64
	mu    sync.Mutex
}

// NewBar 创建新的进度条，desc 为显示在条前面的动作描述
func NewBar(desc string) *Bar {
	return &Bar{desc: desc}
}

// Init 初始化进度条
func (b *Bar) Init(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	atomic.StoreInt64(&b.bytes, 0)

	// 未知总数时使用不确定模式
	if total <= 0 {
		total = -1
	}

	b.bar = progressbar.NewOptions64(
		total,
		progressbar.OptionSetDescription(b.desc),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("B"),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(os.Stderr, "\n")
		}),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "─",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

// Add 增加已处理的字节数
func (b *Bar) Add(n int64) {
	if b.bar == nil {
		return
	}
	atomic.AddInt64(&b.bytes, n)
	b.bar.Add64(n)
}

// Complete 标记完成
func (b *Bar) Complete() {
	if b.bar == nil {
		return
	}
	b.bar.Finish()
}

// Close 关闭进度条
func (b *Bar) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar == nil {
		return nil
	}
	b.bar.Finish()
	b.bar = nil
	return nil
}

// Write 实现 io.Writer，方便接在数据流中间统计进度
func (b *Bar) Write(p []byte) (int, error) {
	n := len(p)
	b.Add(int64(n))
	return n, nil
}

// GetBytes 获取已处理字节数
func (b *Bar) GetBytes() int64 {
	return atomic.LoadInt64(&b.bytes)
}
