package strategy

import (
	"context"
	"fmt"

	"lithium/internal/oracle"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

var bracketPairs = map[string]string{
	"(": ")",
	"{": "}",
	"[": "]",
	"<": ">",
}

// MinimizeBalancedPairs（"minimize-balanced"）删除的是由一对匹配的类
// 括号原子界定、并尊重嵌套关系的区间，而非固定大小的 chunk：这样可以
// 避免为括号语言产生语法破损的中间态。若某个位置不是匹配区间的起点，
// 则跳过该位置而不询问 oracle。
//
// 与 Minimize 不同，括号匹配区间没有天然的 chunk 大小，因此本策略不做
// chunk_size 减半；它每轮从左到右扫描一遍，并按 cfg.Repeat 的设定在
// 本轮仍有移除时重复扫描。
type MinimizeBalancedPairs struct{}

func (MinimizeBalancedPairs) Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg Config) (contract.ReductionReport, error) {
	initialAtoms := tc.Len()
	if err := tc.Save(); err != nil {
		return contract.ReductionReport{}, err
	}
	initialVerdict, err := drv.Test(ctx)
	if err != nil {
		return contract.ReductionReport{}, err
	}
	if initialVerdict != contract.Interesting {
		return contract.ReductionReport{Strategy: "minimize-balanced", InitialAtoms: initialAtoms, FinalAtoms: tc.Len(), OracleCalls: drv.Calls(), InitialVerdict: initialVerdict},
			fmt.Errorf("%w", contract.ErrInitialNotInteresting)
	}

	anyRemovedEver := false
	for {
		anyRemovedThisRound := false
		i := 0
		for i < tc.Len() {
			j, ok := matchBracket(tc, i)
			if !ok {
				i++
				continue
			}
			removed, err := attemptRemove(ctx, tc, drv, i, j+1)
			if err != nil {
				return contract.ReductionReport{}, err
			}
			if removed {
				anyRemovedThisRound = true
				anyRemovedEver = true
				continue
			}
			i++
		}
		if cfg.Repeat == contract.RepeatNever || !anyRemovedThisRound {
			break
		}
	}

	return contract.ReductionReport{
		Strategy:       "minimize-balanced",
		InitialAtoms:   initialAtoms,
		FinalAtoms:     tc.Len(),
		OracleCalls:    drv.Calls(),
		AnyRemoved:     anyRemovedEver,
		InitialVerdict: initialVerdict,
	}, nil
}

// matchBracket 报告与 i 处开括号匹配的原子下标，尊重同类括号的嵌套关
// 系；若 i 处原子不是可识别的开括号，或找不到匹配，返回 ok=false。
func matchBracket(tc *testcase.Testcase, i int) (j int, ok bool) {
	open := string(tc.Part(i))
	close, isOpen := bracketPairs[open]
	if !isOpen {
		return 0, false
	}
	depth := 1
	for k := i + 1; k < tc.Len(); k++ {
		switch string(tc.Part(k)) {
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return k, true
			}
		}
	}
	return 0, false
}
