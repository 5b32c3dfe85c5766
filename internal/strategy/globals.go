package strategy

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"lithium/internal/oracle"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
)

// propertyRe 与 argumentRe 是刻意从简的尽力而为模式：真正理解 JavaScript
// 语法的重写需要一个真正的解析器，超出此处范围（见设计笔记中的相关
// 未决问题）。它们足以找到约简过程通常想要剥离的常见
// `this.prop` / `arguments[n]` 形态。
var (
	propertyRe = regexp.MustCompile(`\bthis\.([A-Za-z_$][A-Za-z0-9_$]*)\b`)
	argumentRe = regexp.MustCompile(`\barguments\[(\d+)\]`)
)

// globalsRewrite 将共享的推测/测试/接受或回滚协议应用于整文件的正则
// 替换，而非原子删除：ReplacePropertiesByGlobals 与
// ReplaceArgumentsByGlobals 不删除原子，而是重写子序列，因此它们直接
// 操作文件字节而非经由 Testcase.Remove。
func globalsRewrite(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, name string, re *regexp.Regexp, replacement func(match []string) string) (contract.ReductionReport, error) {
	initialAtoms := tc.Len()
	if err := tc.Save(); err != nil {
		return contract.ReductionReport{}, err
	}
	initialVerdict, err := drv.Test(ctx)
	if err != nil {
		return contract.ReductionReport{}, err
	}
	if initialVerdict != contract.Interesting {
		return contract.ReductionReport{Strategy: name, InitialAtoms: initialAtoms, FinalAtoms: tc.Len(), OracleCalls: drv.Calls(), InitialVerdict: initialVerdict},
			fmt.Errorf("%w", contract.ErrInitialNotInteresting)
	}

	anyRemoved := false
	searchFrom := 0
	for {
		data, err := os.ReadFile(tc.Path)
		if err != nil {
			return contract.ReductionReport{}, err
		}
		if searchFrom > len(data) {
			break
		}
		rel := re.FindSubmatchIndex(data[searchFrom:])
		if rel == nil {
			break
		}
		loc := make([]int, len(rel))
		for i, v := range rel {
			if v < 0 {
				loc[i] = -1
				continue
			}
			loc[i] = v + searchFrom
		}
		match := make([]string, len(loc)/2)
		for i := range match {
			if loc[2*i] < 0 {
				continue
			}
			match[i] = string(data[loc[2*i]:loc[2*i+1]])
		}
		rewritten := append(append(append([]byte{}, data[:loc[0]]...), []byte(replacement(match))...), data[loc[1]:]...)

		prev := data
		if err := testcase.WriteFileAtomic(tc.Path, rewritten); err != nil {
			return contract.ReductionReport{}, err
		}
		verdict, err := drv.Test(ctx)
		if err != nil {
			return contract.ReductionReport{}, err
		}
		if verdict == contract.Interesting {
			anyRemoved = true
			// 重写改变了其后所有偏移量；下一轮从头重新扫描。
			searchFrom = 0
			continue
		}
		if err := testcase.WriteFileAtomic(tc.Path, prev); err != nil {
			return contract.ReductionReport{}, err
		}
		// 本次匹配被拒绝；越过它，尝试下一个匹配。
		searchFrom = loc[1]
	}

	return contract.ReductionReport{
		Strategy:       name,
		InitialAtoms:   initialAtoms,
		FinalAtoms:     tc.Len(),
		OracleCalls:    drv.Calls(),
		AnyRemoved:     anyRemoved,
		InitialVerdict: initialVerdict,
	}, nil
}

// ReplacePropertiesByGlobals 将 `this.prop` 引用逐次重写为裸露的全局
// `prop` 引用，仅在重写后结果仍然 interesting 时保留该次重写。
type ReplacePropertiesByGlobals struct{}

func (ReplacePropertiesByGlobals) Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg Config) (contract.ReductionReport, error) {
	return globalsRewrite(ctx, tc, drv, "replace-properties-by-globals", propertyRe, func(m []string) string {
		return m[1]
	})
}

// ReplaceArgumentsByGlobals 将 `arguments[n]` 引用逐次重写为合成的全局
// `argN`，仅在重写后结果仍然 interesting 时保留该次重写。
type ReplaceArgumentsByGlobals struct{}

func (ReplaceArgumentsByGlobals) Run(ctx context.Context, tc *testcase.Testcase, drv *oracle.Driver, cfg Config) (contract.ReductionReport, error) {
	return globalsRewrite(ctx, tc, drv, "replace-arguments-by-globals", argumentRe, func(m []string) string {
		return "arg" + m[1]
	})
}
