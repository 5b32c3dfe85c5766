package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	cfgpkg "lithium/internal/config"
	"lithium/internal/diag"
	"lithium/internal/runner"
)

// 用法：lithium [options] <oracle-spec> [oracle-args...]
//
// oracle-spec 是已注册的 oracle 传输方式名字（默认 "exec"，每次调用
// 一个子进程；"pipe" 为常驻辅助进程）；oracle-args 在每次调用时原样
// 传给 oracle。
func main() {
	os.Exit(run())
}

func run() int {
	corrID := genCorrID()
	logger := diag.NewLogger(corrID, "info")

	var (
		flagTestcase  string
		flagChar      bool
		flagSymbol    bool
		flagStrategy  string
		flagRepeat    string
		flagMax       int
		flagMin       int
		flagChunkSize int
		flagConfig    string
		flagVerbose   bool
		flagLogLevel  string
	)
	flag.StringVar(&flagTestcase, "testcase", "", "待约简文件的路径；默认取 oracle-args 的最后一个元素")
	flag.BoolVar(&flagChar, "char", false, "按 Unicode 码点而非按行原子化")
	flag.BoolVar(&flagSymbol, "symbol", false, "按固定 ASCII 分隔符集合而非按行原子化")
	flag.StringVar(&flagStrategy, "strategy", "", "约简策略（默认 minimize）")
	flag.StringVar(&flagRepeat, "repeat", "", "重试策略：never|last|always（默认 last）")
	flag.IntVar(&flagMax, "max", 0, "起始的最大 chunk 大小（必须是二的幂次）")
	flag.IntVar(&flagMin, "min", 0, "停止时的最小 chunk 大小（必须是二的幂次）")
	flag.IntVar(&flagChunkSize, "chunk-size", 0, "--repeat=never --min=N --max=N 的简写")
	flag.StringVar(&flagConfig, "config", "", "可选的 JSON 配置文件，叠加在 CLI flag 之下")
	flag.BoolVar(&flagVerbose, "v", false, "将日志级别提升为 debug 并打印每次 oracle 调用的进度")
	flag.BoolVar(&flagVerbose, "verbose", false, "将日志级别提升为 debug 并打印每次 oracle 调用的进度")
	flag.StringVar(&flagLogLevel, "log-level", "", "覆盖默认的 info 日志级别")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: lithium [options] <oracle-spec> [oracle-args...]")
		return 2 // 缺少 oracle-spec
	}
	oracleSpec := args[0]
	oracleArgs := args[1:]

	cfg := cfgpkg.Defaults()
	if flagConfig != "" {
		fileCfg, err := cfgpkg.LoadJSON(flagConfig, nil)
		if err != nil {
			return fail(logger, "config: %v", err)
		}
		cfg = cfgpkg.Merge(cfg, fileCfg)
	}

	var overCLI cfgpkg.Config
	overCLI.OracleSpec = oracleSpec
	if flagTestcase != "" {
		overCLI.Testcase = flagTestcase
	} else if len(oracleArgs) > 0 {
		overCLI.Testcase = oracleArgs[len(oracleArgs)-1]
	}
	if flagChar {
		overCLI.Atomizer = "char"
	} else if flagSymbol {
		overCLI.Atomizer = "symbol"
	}
	if flagStrategy != "" {
		overCLI.Strategy = flagStrategy
	}
	if flagChunkSize > 0 {
		overCLI.Repeat = "never"
		overCLI.ChunkMin = flagChunkSize
		overCLI.ChunkMax = flagChunkSize
	}
	if flagRepeat != "" {
		overCLI.Repeat = flagRepeat
	}
	if flagMax > 0 {
		overCLI.ChunkMax = flagMax
	}
	if flagMin > 0 {
		overCLI.ChunkMin = flagMin
	}
	if flagLogLevel != "" {
		overCLI.LogLevel = flagLogLevel
	}
	cfg = cfgpkg.Merge(cfg, overCLI)
	if flagVerbose {
		cfg.LogLevel = "debug"
	}

	if err := cfgpkg.Validate(cfg); err != nil {
		return fail(logger, "config: %v", err)
	}

	logger = diag.NewLogger(corrID, cfg.LogLevel)

	term := diag.NewTerminal(os.Stderr, true)
	diag.SetTerminal(term)
	defer diag.SetTerminal(nil)
	term.RunStart(cfg.OracleSpec)

	o, err := cfgpkg.NewOracle(cfg, nil)
	if err != nil {
		return fail(logger, "oracle: %v", err)
	}
	strategyCfg, err := cfgpkg.StrategyConfig(cfg)
	if err != nil {
		return fail(logger, "config: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	start := time.Now()
	report, err := runner.Run(ctx, o, runner.Options{
		TestcasePath: cfg.Testcase,
		OracleArgs:   oracleArgs,
		Atomizer:     cfgpkg.Atomizer(cfg),
		Strategy:     cfgpkg.Strategy(cfg),
		StrategyCfg:  strategyCfg,
	}, logger)
	dur := time.Since(start)

	if err != nil {
		code := diag.Classify(err)
		logger.Error("runner", string(code), "reduction failed", &start)
		term.RunFinish(false, dur)
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "lithium: %v\n", err)
		}
		return diag.ExitCode(code)
	}

	term.RunFinish(true, dur)
	fmt.Fprintf(os.Stderr, "%s: %d -> %d atoms, %d oracle calls, %s\n",
		report.Strategy, report.InitialAtoms, report.FinalAtoms, report.OracleCalls, dur.Round(time.Millisecond))
	return 0
}

func fail(logger *diag.Logger, format string, args ...any) int {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, "lithium: "+msg)
	logger.Error("config", string(diag.CodeConfig), msg, nil)
	return 2
}

func genCorrID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return ""
	}
	return hex.EncodeToString(b[:])
}
