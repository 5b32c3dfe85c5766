package config

// Config: 约简器的运行期配置，解析一次，运行期间保持不变。JSON 使用
// snake_case；未知字段解析失败（见 LoadJSON）。
type Config struct {
	// Testcase: 待约简文件的路径。为空时默认取 OracleArgs 的最后一个
	// 元素。
	Testcase string `json:"testcase"`

	// Atomizer: 所用的已注册原子化方式名字——"line"（默认）、"char"、
	// "symbol"、"jsstr" 或 "attribute"。
	Atomizer string `json:"atomizer"`

	// Strategy: 所用的已注册约简策略名字。
	Strategy string `json:"strategy"`

	// Repeat: 基于 chunk 的策略的重试策略——"always"、"last"（默认）
	// 或 "never"。
	Repeat string `json:"repeat"`

	// ChunkMax / ChunkMin: chunk 减半循环的边界。0 表示“使用该策略的
	// 默认值”（见 strategy.NormalizeConfig）。
	ChunkMax int `json:"chunk_max"`
	ChunkMin int `json:"chunk_min"`

	LogLevel string `json:"log_level"`

	// OracleSpec: 所用的已注册 oracle 传输方式名字（默认 "exec"）。
	// OracleArgs 是来自 CLI 的完整、未改动的 oracle-args 列表；因其天然
	// 是位置参数，不属于 JSON 配置文件的一部分。
	OracleSpec string `json:"oracle_spec"`
}
