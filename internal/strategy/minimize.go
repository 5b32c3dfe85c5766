package strategy

import (
	"context"
	"fmt"
	"time"

	"lithium/internal/diag"
	"lithium/internal/oracle"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// Minimize 是默认的 chunk 减半贪心约简器（脱胎于 ddmin）。
//
// 前置条件：初始测试用例必须是 Interesting；若不是，策略立即以
// ErrInitialNotInteresting 返回。
//
// 终止性：每一轮要么移除至少一个原子（原子数严格递减），要么将 chunk
// 大小减半——减半 log2(ChunkMax/ChunkMin) 次即可到达 ChunkMin，因此
// 无论 oracle 行为如何（包括非单调的情况），策略都在至多
// O(len(parts) * log(ChunkMax)) 次 oracle 调用内停止。

type Minimize struct{}

func (Minimize) Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg Config) (contract.ReductionReport, error) {
	cfg, err := NormalizeConfig(cfg, tc.Len())
	if err != nil {
		return contract.ReductionReport{}, err
	}

	initialAtoms := tc.Len()
	if err := tc.Save(); err != nil {
		return contract.ReductionReport{}, err
	}
	initialVerdict, err := drv.Test(ctx)
	if err != nil {
		return contract.ReductionReport{}, err
	}
	if initialVerdict != contract.Interesting {
		return contract.ReductionReport{
			Strategy:       "minimize",
			InitialAtoms:   initialAtoms,
			FinalAtoms:     tc.Len(),
			OracleCalls:    drv.Calls(),
			InitialVerdict: initialVerdict,
		}, fmt.Errorf("%w", contract.ErrInitialNotInteresting)
	}

	anyRemovedEver := false
	c := cfg.ChunkMax
	round := 0
	term := diag.GetTerminal()
	for {
		round++
		roundStart := time.Now()
		term.RoundStart(round, c, tc.Len())

		anyRemovedThisRound := false
		i := 0
		for i < tc.Len() {
			hi := i + c
			if hi > tc.Len() {
				hi = tc.Len()
			}
			ok, err := attemptRemove(ctx, tc, drv, i, hi)
			if err != nil {
				return contract.ReductionReport{}, err
			}
			if ok {
				anyRemovedThisRound = true
				anyRemovedEver = true
				term.RoundProgress(tc.Len(), drv.Calls())
				// i 保持不变：parts[i:] 已整体左移。
				continue
			}
			i += c
		}
		term.RoundFinish(true, time.Since(roundStart))

		repeat := false
		switch cfg.Repeat {
		case contract.RepeatAlways:
			repeat = anyRemovedThisRound
		case contract.RepeatLast:
			repeat = c == cfg.ChunkMin && anyRemovedThisRound
		case contract.RepeatNever:
			repeat = false
		}
		if repeat {
			continue
		}
		if c == cfg.ChunkMin {
			break
		}
		c = c / 2
		if c < cfg.ChunkMin {
			c = cfg.ChunkMin
		}
	}

	return contract.ReductionReport{
		Strategy:       "minimize",
		InitialAtoms:   initialAtoms,
		FinalAtoms:     tc.Len(),
		OracleCalls:    drv.Calls(),
		AnyRemoved:     anyRemovedEver,
		InitialVerdict: initialVerdict,
	}, nil
}
