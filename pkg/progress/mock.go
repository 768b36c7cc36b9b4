package progress

import (
	"sync/atomic"
)

// MockReporter 测试用的报告器：只记录各回调的调用次数和累计字节数，
// 归档测试用它确认打包/展开把进度接到了报告器上
type MockReporter struct {
	InitCalled     atomic.Int64
	AddCalled      atomic.Int64
	CompleteCalled atomic.Int64
	CloseCalled    atomic.Int64
	AddTotal       atomic.Int64
}

// NewMockReporter 创建计数报告器
func NewMockReporter() *MockReporter {
	return &MockReporter{}
}

// Init 记一次初始化
func (m *MockReporter) Init(total int64) {
	m.InitCalled.Add(1)
}

// Add 记一次进度增量并累计字节数
func (m *MockReporter) Add(n int64) {
	m.AddCalled.Add(1)
	m.AddTotal.Add(n)
}

// Complete 记一次完成
func (m *MockReporter) Complete() {
	m.CompleteCalled.Add(1)
}

// Close 记一次关闭
func (m *MockReporter) Close() error {
	m.CloseCalled.Add(1)
	return nil
}

// Reset 清零全部计数，供同一个报告器跨多次操作复用
func (m *MockReporter) Reset() {
	m.InitCalled.Store(0)
	m.AddCalled.Store(0)
	m.CompleteCalled.Store(0)
	m.CloseCalled.Store(0)
	m.AddTotal.Store(0)
}
