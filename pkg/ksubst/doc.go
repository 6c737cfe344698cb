// Package ksubst 提供受限的 ${NAME} 占位符替换，语义接近 GNU envsubst。
//
// 与 envsubst 不同，本包只识别花括号形式，变量值来自调用方显式传入的映射，
// 不读取进程环境，也不做嵌套展开。
//
// # 设计参考
//
//   - GNU envsubst: https://www.gnu.org/software/gettext/manual/html_node/envsubst-Invocation.html
//
// # 语法
//
//	${NAME}          名称: [A-Za-z_][A-Za-z0-9_]*
//	${NAME.suffix}   后缀以 "." 开头，直到第一个 "}"
//	${NAME-suffix}   后缀以 "-" 开头，直到第一个 "}"
//
// # 语义说明
//
//  1. 变量值非空: 输出 值 + 后缀（后缀包含起始的 "." 或 "-"）
//  2. 变量值为空: 整个占位符连同后缀一起消失
//  3. 变量不存在: 占位符原样保留，便于多轮替换或检测残留
//  4. 无法识别的 ${ 原样保留，从不因模板内容报错
//
// 后缀可以当作条件分隔符使用：${PREFIX-} 在 PREFIX 为空时不会留下孤立的 "-"。
//
// # 校验
//
// 变量名与变量值都不允许包含 "$"、"{"、"}"，否则替换结果可能再次形成占位符。
// 校验在每次 [Substitute] 调用时执行一次，失败时返回 [*ValidationError]，不产生任何输出。
//
// # 快速开始
//
//	vars := map[string]string{"protocol": "https", "hostname": "example.com"}
//	out, err := ksubst.Substitute("${protocol}://${hostname}/", vars)
//
// 详见 [Substitute] 文档。
package ksubst
