// Package mock 为测试提供进程内 oracle，使约简引擎的属性测试永远不需要
// 启动真实子进程。
package mock

import (
	"context"
	"os"

	"lithium/pkg/contract"
)

// Options 配置 mock oracle。Predicate 若设置则直接被查询，优先于一切
// 其他逻辑；它是为以 Go 代码直接构造 mock.Oracle（而非经由 JSON 注册
// 表）的测试而存在的。
type Options struct {
	// Predicate 以 TestcasePath 文件的当前内容为参数被调用。不可序列
	// 化，只在 Go 代码中直接构造 mock.Oracle 时设置。
	Predicate func(data []byte) bool `json:"-"`

	// TestcasePath 是 mock 读取并传给 Predicate 的文件。
	TestcasePath string `json:"testcase_path"`
}

// Oracle 在每次 Test 调用时针对当前文件内容求值 Options.Predicate。
type Oracle struct {
	opts         Options
	initCalls    int
	cleanupCalls int
}

// New 构造一个 mock oracle。
func New(opts Options) *Oracle {
	return &Oracle{opts: opts}
}

func (o *Oracle) Init(ctx context.Context, args []string) error {
	o.initCalls++
	if o.opts.TestcasePath == "" && len(args) > 0 {
		o.opts.TestcasePath = args[len(args)-1]
	}
	return nil
}

func (o *Oracle) Test(ctx context.Context, tempdirPrefix string) (contract.Verdict, error) {
	data, err := os.ReadFile(o.opts.TestcasePath)
	if err != nil {
		return contract.Uninteresting, err
	}
	if o.opts.Predicate != nil && o.opts.Predicate(data) {
		return contract.Interesting, nil
	}
	return contract.Uninteresting, nil
}

func (o *Oracle) Cleanup(ctx context.Context) error {
	o.cleanupCalls++
	return nil
}

// InitCalls 报告 Init 被调用的次数，供测试使用。
func (o *Oracle) InitCalls() int { return o.initCalls }

// CleanupCalls 报告 Cleanup 被调用的次数，供测试使用。
func (o *Oracle) CleanupCalls() int { return o.cleanupCalls }
