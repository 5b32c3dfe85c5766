package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
)

// Defaults 返回填充了内置默认值的 Config：line 原子化方式、minimize
// 策略、repeat=last、chunk_min=1、exec oracle 传输方式。
func Defaults() Config {
	return Config{
		Atomizer:   "line",
		Strategy:   "minimize",
		Repeat:     "last",
		ChunkMin:   1,
		OracleSpec: "exec",
		LogLevel:   "info",
	}
}

// LoadJSON 从文件路径或原始 JSON 字节解析 Config（严格模式：未知字段
// 解析失败，与本次运行其余输入处理的做法一致）。
func LoadJSON(path string, raw []byte) (Config, error) {
	var cfg Config
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, err
		}
		defer f.Close()
		r = f
	default:
		return cfg, errors.New("no config source provided")
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Merge 将 over 叠加在 base 之上：over 中任何非零值字段都会替换 base
// 中对应字段。用于 defaults-then-file 与 file-then-CLI-flags 两层叠加。
func Merge(base, over Config) Config {
	out := base
	if strings.TrimSpace(over.Testcase) != "" {
		out.Testcase = over.Testcase
	}
	if strings.TrimSpace(over.Atomizer) != "" {
		out.Atomizer = over.Atomizer
	}
	if strings.TrimSpace(over.Strategy) != "" {
		out.Strategy = over.Strategy
	}
	if strings.TrimSpace(over.Repeat) != "" {
		out.Repeat = over.Repeat
	}
	if over.ChunkMax != 0 {
		out.ChunkMax = over.ChunkMax
	}
	if over.ChunkMin != 0 {
		out.ChunkMin = over.ChunkMin
	}
	if strings.TrimSpace(over.LogLevel) != "" {
		out.LogLevel = over.LogLevel
	}
	if strings.TrimSpace(over.OracleSpec) != "" {
		out.OracleSpec = over.OracleSpec
	}
	return out
}
