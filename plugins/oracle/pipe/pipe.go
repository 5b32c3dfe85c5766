// Package pipe 为启动开销较大的有趣性判据实现一种 oracle 传输方式：
// Init 只启动一次辅助进程，此后在每次 Test 调用之间保持存活，经其
// stdin/stdout 以行分隔 JSON 的请求/响应通信。
package pipe

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"sync"

	"lithium/pkg/contract"
)

// Options 配置 pipe oracle 传输方式。
type Options struct {
	Command string `json:"command"`
}

type request struct {
	Op   string `json:"op"`
	Path string `json:"path"`
}

type response struct {
	OK          bool   `json:"ok"`
	Interesting bool   `json:"interesting"`
	Error       string `json:"error,omitempty"`
}

// Oracle 与单个长存活的子进程以 pipe 协议通信。
type Oracle struct {
	mu      sync.Mutex
	cmdName string
	cmd     *exec.Cmd
	in      *bufio.Writer
	out     *bufio.Scanner
	args    []string
}

// New 构造一个 pipe oracle 传输方式。
func New(opts Options) *Oracle {
	return &Oracle{cmdName: opts.Command}
}

func (o *Oracle) Init(ctx context.Context, args []string) error {
	o.args = append([]string(nil), args...)
	cmd := exec.CommandContext(ctx, o.cmdName, o.args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start oracle process: %w", err)
	}
	o.cmd = cmd
	o.in = bufio.NewWriter(stdin)
	o.out = bufio.NewScanner(stdout)
	o.out.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return nil
}

// Test 发送一行 JSON 请求并读取一行 JSON 响应。任何协议层失败（写入
// 错误、管道关闭、响应无法解析，或显式的 {"ok":false}）都作为错误暴露，
// 以便 driver 的基础设施失败策略加以分类；干净的 {"ok":true} 且
// interesting=false 的响应是正常的 Uninteresting 判定，不是失败。
func (o *Oracle) Test(ctx context.Context, tempdirPrefix string) (contract.Verdict, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	req := request{Op: "test", Path: tempdirPrefix}
	line, err := json.Marshal(req)
	if err != nil {
		return contract.Uninteresting, err
	}
	if _, err := o.in.Write(append(line, '\n')); err != nil {
		return contract.Uninteresting, fmt.Errorf("write request: %w", err)
	}
	if err := o.in.Flush(); err != nil {
		return contract.Uninteresting, fmt.Errorf("flush request: %w", err)
	}
	if !o.out.Scan() {
		if err := o.out.Err(); err != nil {
			return contract.Uninteresting, fmt.Errorf("read response: %w", err)
		}
		return contract.Uninteresting, fmt.Errorf("oracle process closed its output")
	}
	var resp response
	if err := json.Unmarshal(o.out.Bytes(), &resp); err != nil {
		return contract.Uninteresting, fmt.Errorf("unparseable oracle response: %w", err)
	}
	if !resp.OK {
		return contract.Uninteresting, fmt.Errorf("oracle reported error: %s", resp.Error)
	}
	if resp.Interesting {
		return contract.Interesting, nil
	}
	return contract.Uninteresting, nil
}

// Cleanup 刷新 stdin 缓冲，结束（kill）子进程并等待其退出；不会先关闭
// stdin 让子进程自行退出。
func (o *Oracle) Cleanup(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cmd == nil {
		return nil
	}
	if o.in != nil {
		_ = o.in.Flush()
	}
	if o.cmd.Process != nil {
		_ = o.cmd.Process.Kill()
	}
	_ = o.cmd.Wait()
	return nil
}
