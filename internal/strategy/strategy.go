// Package strategy 实现驱动 Testcase 针对 Oracle 收敛到不动点的各种
// 约简策略：CheckOnly、默认的 chunk 减半 Minimize 及其成对感知变体、
// 空大括号折叠后处理，以及两个 JavaScript 重写变换。
package strategy

import (
	"context"

	"lithium/internal/oracle"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// Config 携带所有基于 chunk 的策略共享的参数。
type Config struct {
	ChunkMax int
	ChunkMin int
	Repeat   contract.RepeatPolicy
}

// Strategy 是每个已注册约简策略都要实现的接口。
type Strategy interface {
	Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg Config) (contract.ReductionReport, error)
}

// attemptRemove 实现所有“删 chunk”类策略共享的推测/测试/接受或回滚
// 协议：快照、删除、保存、测试，然后要么保留删除，要么恢复并重新保存。
func attemptRemove(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, lo, hi int) (bool, error) {
	if lo >= hi {
		return false, nil
	}
	snap := tc.Snapshot()
	tc.Remove(lo, hi)
	if err := tc.Save(); err != nil {
		return false, err
	}
	verdict, err := drv.Test(ctx)
	if err != nil {
		return false, err
	}
	if verdict == contract.Interesting {
		return true, nil
	}
	tc.Restore(snap)
	if err := tc.Save(); err != nil {
		return false, err
	}
	return false, nil
}

// attemptRemoveRanges 将多个不相交的区间作为单一的全有或全无变更推测性
// 删除：只快照一次，按偏移量从高到低删除每个区间（使较早的下标保持
// 有效），保存、测试，然后要么全部保留要么全部恢复。供需要成组删除
// 匹配对的策略使用（MinimizeSurroundingPairs、CollapseEmptyBraces）。
func attemptRemoveRanges(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, ranges []contract.Chunk) (bool, error) {
	live := make([]contract.Chunk, 0, len(ranges))
	for _, r := range ranges {
		if !r.Empty() {
			live = append(live, r)
		}
	}
	if len(live) == 0 {
		return false, nil
	}
	snap := tc.Snapshot()
	for i := len(live) - 1; i >= 0; i-- {
		tc.Remove(live[i].Lo, live[i].Hi)
	}
	if err := tc.Save(); err != nil {
		return false, err
	}
	verdict, err := drv.Test(ctx)
	if err != nil {
		return false, err
	}
	if verdict == contract.Interesting {
		return true, nil
	}
	tc.Restore(snap)
	if err := tc.Save(); err != nil {
		return false, err
	}
	return false, nil
}

// defaultChunkMax 取不超过 len(parts)/2 的最大二的幂次，但至少为 1，
// 与 --max 未设置时的默认值约定一致。
func defaultChunkMax(n int) int {
	c := n / 2
	if c < 1 {
		return 1
	}
	p := 1
	for p*2 <= c {
		p *= 2
	}
	return p
}

// NormalizeConfig 在 ChunkMax 未设置时由测试用例长度填充，并校验二的
// 幂次要求。
func NormalizeConfig(cfg Config, partsLen int) (Config, error) {
	if cfg.ChunkMin == 0 {
		cfg.ChunkMin = 1
	}
	if cfg.ChunkMax == 0 {
		cfg.ChunkMax = defaultChunkMax(partsLen)
	}
	if !isPowerOfTwo(cfg.ChunkMin) || !isPowerOfTwo(cfg.ChunkMax) {
		return cfg, contract.ErrNotPowerOfTwo
	}
	if cfg.ChunkMax < cfg.ChunkMin {
		cfg.ChunkMax = cfg.ChunkMin
	}
	return cfg, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
