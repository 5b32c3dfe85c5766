package config

import (
	"fmt"

	"lithium/internal/oracle"
	"lithium/internal/strategy"
	"lithium/internal/testcase"
	"lithium/pkg/contract"
	"lithium/pkg/registry"
)

// Validate 检查最基本的边界：未知的 strategy/atomizer/oracle 名字、
// 无法解析的 repeat 策略、非二的幂次的 chunk 边界，均作为 Config 错误
// 在任何文件 I/O 或 oracle 调用之前暴露出来。
func Validate(cfg Config) error {
	if _, ok := registry.Atomizer[effName(cfg.Atomizer, Defaults().Atomizer)]; !ok {
		return fmt.Errorf("%w: %q", contract.ErrUnknownAtomizer, cfg.Atomizer)
	}
	if _, ok := registry.Strategy[effName(cfg.Strategy, Defaults().Strategy)]; !ok {
		return fmt.Errorf("%w: %q", contract.ErrUnknownStrategy, cfg.Strategy)
	}
	if _, ok := registry.Oracle[effName(cfg.OracleSpec, Defaults().OracleSpec)]; !ok {
		return fmt.Errorf("config: oracle transport %q not registered", cfg.OracleSpec)
	}
	if _, err := contract.ParseRepeatPolicy(effName(cfg.Repeat, Defaults().Repeat)); err != nil {
		return fmt.Errorf("config: bad --repeat value %q", cfg.Repeat)
	}
	if cfg.ChunkMax != 0 && !isPowerOfTwo(cfg.ChunkMax) {
		return fmt.Errorf("%w: --max=%d", contract.ErrNotPowerOfTwo, cfg.ChunkMax)
	}
	if cfg.ChunkMin != 0 && !isPowerOfTwo(cfg.ChunkMin) {
		return fmt.Errorf("%w: --min=%d", contract.ErrNotPowerOfTwo, cfg.ChunkMin)
	}
	if cfg.Testcase == "" {
		return fmt.Errorf("config: no testcase path (set --testcase or pass it as the last oracle-arg)")
	}
	return nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Atomizer 从注册表解析出所配置的原子化方式。
func Atomizer(cfg Config) testcase.Atomizer {
	return registry.Atomizer[effName(cfg.Atomizer, Defaults().Atomizer)]
}

// Strategy 从注册表解析出所配置的约简策略。
func Strategy(cfg Config) strategy.Strategy {
	return registry.Strategy[effName(cfg.Strategy, Defaults().Strategy)]
}

// StrategyConfig 由已解析的 Config 构造一个 strategy.Config。
func StrategyConfig(cfg Config) (strategy.Config, error) {
	repeat, err := contract.ParseRepeatPolicy(effName(cfg.Repeat, Defaults().Repeat))
	if err != nil {
		return strategy.Config{}, err
	}
	return strategy.Config{
		ChunkMax: cfg.ChunkMax,
		ChunkMin: cfg.ChunkMin,
		Repeat:   repeat,
	}, nil
}

// NewOracle 解析并构造所配置的 oracle 传输方式。raw 原样传给工厂函数
// 用于解析其 Options。
func NewOracle(cfg Config, raw []byte) (oracle.Oracle, error) {
	factory := registry.Oracle[effName(cfg.OracleSpec, Defaults().OracleSpec)]
	return factory(raw)
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
