package strategy

import (
	"context"

	"lithium/internal/oracle"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// CollapseEmptyBraces（"minimize-collapse-brace"）是一个在其他任意策略
// 之后运行的后处理：扫描内部为空（闭括号紧跟开括号之后）的相邻开闭括号
// 原子对，并尝试同时删除两者。
type CollapseEmptyBraces struct{}

func (CollapseEmptyBraces) Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg Config) (contract.ReductionReport, error) {
	initialAtoms := tc.Len()
	anyRemovedEver := false

	i := 0
	for i < tc.Len()-1 {
		open := string(tc.Part(i))
		want, isOpen := bracketPairs[open]
		if !isOpen || string(tc.Part(i+1)) != want {
			i++
			continue
		}
		ok, err := attemptRemoveRanges(ctx, tc, drv, []contract.Chunk{{Lo: i, Hi: i + 2}})
		if err != nil {
			return contract.ReductionReport{}, err
		}
		if ok {
			anyRemovedEver = true
			continue
		}
		i++
	}

	return contract.ReductionReport{
		Strategy:     "minimize-collapse-brace",
		InitialAtoms: initialAtoms,
		FinalAtoms:   tc.Len(),
		OracleCalls:  drv.Calls(),
		AnyRemoved:   anyRemovedEver,
	}, nil
}
