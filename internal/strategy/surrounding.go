package strategy

import (
	"context"
	"fmt"

	"lithium/internal/oracle"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// MinimizeSurroundingPairs（"minimize-around"）使用与 Minimize 相同的
// chunk 减半框架，但每一步尝试同时移除两个 chunk：当前位置一个，以及
// parts 另一端的镜像 chunk。针对那些有趣区域依赖于成对的前缀/后缀
// （例如匹配的开闭标签）一同消失的测试用例。
type MinimizeSurroundingPairs struct{}

func (MinimizeSurroundingPairs) Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg Config) (contract.ReductionReport, error) {
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
		return contract.ReductionReport{Strategy: "minimize-around", InitialAtoms: initialAtoms, FinalAtoms: tc.Len(), OracleCalls: drv.Calls(), InitialVerdict: initialVerdict},
			fmt.Errorf("%w", contract.ErrInitialNotInteresting)
	}

	anyRemovedEver := false
	c := cfg.ChunkMax
	for {
		anyRemovedThisRound := false
		i := 0
		for i < tc.Len() {
			hiFront := min(i+c, tc.Len())
			front := contract.Chunk{Lo: i, Hi: hiFront}

			loBack := max(hiFront, tc.Len()-c)
			back := contract.Chunk{Lo: loBack, Hi: tc.Len()}

			var ranges []contract.Chunk
			if back.Lo > front.Hi {
				ranges = []contract.Chunk{front, back}
			} else {
				ranges = []contract.Chunk{front}
			}

			ok, err := attemptRemoveRanges(ctx, tc, drv, ranges)
			if err != nil {
				return contract.ReductionReport{}, err
			}
			if ok {
				anyRemovedThisRound = true
				anyRemovedEver = true
				continue
			}
			i += c
		}

		repeat := false
		switch cfg.Repeat {
		case contract.RepeatAlways:
			repeat = anyRemovedThisRound
		case contract.RepeatLast:
			repeat = c == cfg.ChunkMin && anyRemovedThisRound
		}
		if repeat {
			continue
		}
		if c == cfg.ChunkMin {
			break
		}
		c = max(c/2, cfg.ChunkMin)
	}

	return contract.ReductionReport{
		Strategy:       "minimize-around",
		InitialAtoms:   initialAtoms,
		FinalAtoms:     tc.Len(),
		OracleCalls:    drv.Calls(),
		AnyRemoved:     anyRemovedEver,
		InitialVerdict: initialVerdict,
	}, nil
}
