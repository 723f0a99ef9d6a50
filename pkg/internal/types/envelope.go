package types

import (
	"github.com/bytedance/sonic"
)

// Operation 存储 API 支持的操作类型.
type Operation string

const (
	OpAdd    Operation = "add"
	OpCheck  Operation = "check"
	OpUpdate Operation = "update"
	OpIsDel  Operation = "isdel"
)

// Valid 判断操作是否受支持.
func (o Operation) Valid() bool {
	switch o {
	case OpAdd, OpCheck, OpUpdate, OpIsDel:
		return true
	default:
		return false
	}
}

// Targeted 操作是否必须能定位到目标记录.
func (o Operation) Targeted() bool {
	return o == OpUpdate || o == OpIsDel
}

// 谓词运算符.
const (
	OperatorEq   = "="
	OperatorLike = "LIKE"
)

// Predicate 单个过滤条件 (field, operator, value).
type Predicate struct {
	Field    string `json:"field"    rule:"required"`
	Operator string `json:"operator" rule:"required,predicate_operator"`
	Value    any    `json:"value"`
}

// Eq 构造等值条件.
func Eq(field string, value any) Predicate {
	return Predicate{Field: field, Operator: OperatorEq, Value: value}
}

// Like 构造 LIKE 条件.
func Like(field, pattern string) Predicate {
	return Predicate{Field: field, Operator: OperatorLike, Value: pattern}
}

// SoftDeleteConfig 软删除配置，value 以字符串形式传输.
type SoftDeleteConfig struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// DefaultSoftDelete 默认软删除配置.
func DefaultSoftDelete() SoftDeleteConfig {
	return SoftDeleteConfig{Field: FieldIsDel, Value: "true"}
}

// Envelope 发送到存储的完整请求.
type Envelope struct {
	FileType         string
	Operation        Operation
	Data             Record
	Where            []Predicate
	Audit            bool
	SoftDeleteConfig *SoftDeleteConfig
}

// wireEnvelope 线上 JSON 结构.
// where_conditions 对 add 省略，对 check 可以为 null.
type wireEnvelope struct {
	FileType         string            `json:"file_type"`
	Operation        Operation         `json:"operation"`
	Data             Record            `json:"data"`
	WhereConditions  *[]Predicate      `json:"where_conditions,omitempty"`
	Audit            *bool             `json:"audit,omitempty"`
	SoftDeleteConfig *SoftDeleteConfig `json:"soft_delete_config,omitempty"`
}

// wire 返回按操作类型裁剪过的线上结构.
func (e Envelope) wire() wireEnvelope {
	w := wireEnvelope{
		FileType:  e.FileType,
		Operation: e.Operation,
		Data:      e.Data,
	}
	if w.Data == nil {
		w.Data = Record{}
	}

	if e.Operation != OpAdd {
		where := e.Where
		w.WhereConditions = &where
	}

	switch e.Operation {
	case OpCheck:
		audit := e.Audit
		w.Audit = &audit
	case OpIsDel:
		cfg := DefaultSoftDelete()
		if e.SoftDeleteConfig != nil {
			cfg = *e.SoftDeleteConfig
		}

		w.SoftDeleteConfig = &cfg
	}

	return w
}

// MarshalJSON 实现 json.Marshaler.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return sonic.Marshal(e.wire())
}

// Path 返回操作对应的 API 路径（相对 base url）.
func (e Envelope) Path() string {
	return "/v1/" + string(e.Operation)
}
