// Package exec 实现默认的 oracle 传输方式：每次 Test 调用启动一个全新
// 子进程，退出码 0 表示 Interesting。
package exec

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"lithium/pkg/contract"
)

// Options 配置 exec oracle 传输方式。
type Options struct {
	// Command 是要运行的可执行文件；为空时使用 Init 传入的 args[0]
	// 作为命令。
	Command string `json:"command"`
	// TimeoutMS 限制每次子进程调用的时长；0 表示不设超时。
	TimeoutMS int `json:"timeout_ms"`
}

// Oracle 每次 Test 调用都执行一次外部命令。args 在各次调用之间原样
// 传递；调用方被期望已经将候选测试用例路径嵌入 args（按惯例是其最后
// 一个元素）。
type Oracle struct {
	opts Options
	args []string
}

// New 构造一个 exec oracle 传输方式。
func New(opts Options) *Oracle {
	return &Oracle{opts: opts}
}

// Init 保存 oracle-args，供之后每次 Test 原样使用。它永不失败：命令是否存在只在
// 首次使用时才被验证。
func (o *Oracle) Init(ctx context.Context, args []string) error {
	o.args = append([]string(nil), args...)
	return nil
}

// Test 将 oracle-args 作为子进程运行。候选测试用例路径已存在于 args
// 之中（按 oracle 插件约定，通常是其最后一个元素），引擎保证该路径上
// 的文件在本次调用期间保持稳定；tempdirPrefix 通过环境变量传给子进程，
// 使其可以在不与其他调用冲突的前提下构建临时文件。退出码 0 表示
// Interesting；其他任何退出方式（包括信号致死或 context 超时被杀）都
// 表示 Uninteresting。
func (o *Oracle) Test(ctx context.Context, tempdirPrefix string) (contract.Verdict, error) {
	if o.opts.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(o.opts.TimeoutMS)*time.Millisecond)
		defer cancel()
	}
	cmdName, cmdArgs := o.resolveCommand()
	cmd := exec.CommandContext(ctx, cmdName, cmdArgs...)
	cmd.Env = append(cmd.Environ(), "LITHIUM_TEMPDIR_PREFIX="+tempdirPrefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return contract.Interesting, nil
	}
	var exitErr *exec.ExitError
	if asExitError(err, &exitErr) {
		return contract.Uninteresting, nil
	}
	// 连进程都没能启动：视为基础设施失败，交由 driver 的三振策略处理。
	return contract.Uninteresting, err
}

// Cleanup 是空操作：exec 每次调用都生成全新进程，没有持久状态需要释放。
func (o *Oracle) Cleanup(ctx context.Context) error { return nil }

func (o *Oracle) resolveCommand() (string, []string) {
	name := o.opts.Command
	rest := o.args
	if name == "" && len(o.args) > 0 {
		name = o.args[0]
		rest = o.args[1:]
	}
	return name, rest
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}
