package progress

// Silent 安静模式的报告器：-q 下所有进度回调都是空操作，
// 归档流程不感知进度显示是否开启
type Silent struct{}

// NewSilent 创建安静报告器
func NewSilent() *Silent {
	return &Silent{}
}

// Init 忽略总量
func (s *Silent) Init(total int64) {}

// Add 忽略进度增量
func (s *Silent) Add(n int64) {}

// Complete 忽略完成信号
func (s *Silent) Complete() {}

// Close 没有需要释放的资源
func (s *Silent) Close() error {
	return nil
}
