package envelope

import (
	"strings"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

// ForList 列表查询的谓词：不显示已删除记录时过滤 is_del=false，否则不过滤（nil）.
func ForList(showAll bool) []types.Predicate {
	if showAll {
		return nil
	}

	return []types.Predicate{types.Eq(types.FieldIsDel, false)}
}

// ForSearch 搜索谓词. 关键字为空时与 ForList 完全一致.
func ForSearch(showAll bool, keyword string) []types.Predicate {
	keyword = strings.TrimSpace(keyword)

	preds := ForList(showAll)
	if keyword == "" {
		return preds
	}

	return append(preds, types.Like(types.FieldFileName, "%"+keyword+"%"))
}

// ByID 按存储分配的 id 定位单条记录.
func ByID(id any) []types.Predicate {
	return []types.Predicate{types.Eq(types.FieldID, id)}
}

// FromPayloadFields 为载荷中每个字段生成一个等值条件，按字段名排序.
// 空载荷返回 nil，调用方必须拒绝.
func FromPayloadFields(data types.Record) []types.Predicate {
	if len(data) == 0 {
		return nil
	}

	preds := make([]types.Predicate, 0, len(data))
	for _, k := range data.Keys() {
		preds = append(preds, types.Eq(k, data[k]))
	}

	return preds
}

// malformedWhere where_conditions 不是条件对象数组时的错误信息.
const malformedWhere = "where_conditions must be an array of {field, operator, value} objects"

// liftWhere 取出载荷中内嵌的 where_conditions，并将其从载荷中删除.
// 键存在但形状不对时返回校验错误，不回退到载荷推导的条件.
func liftWhere(op types.Operation, data types.Record) ([]types.Predicate, bool, error) {
	raw, ok := data[types.FieldWhereConditions]
	if !ok {
		return nil, false, nil
	}

	delete(data, types.FieldWhereConditions)

	preds, ok := toPredicates(raw)
	if !ok {
		return nil, true, validationError(op, malformedWhere)
	}

	return preds, true, nil
}

// toPredicates 兼容 []types.Predicate 以及从 JSON 解码出的 []any.
// 任一元素不是 {field, operator, value} 对象时返回 false.
func toPredicates(raw any) ([]types.Predicate, bool) {
	switch v := raw.(type) {
	case []types.Predicate:
		return v, true
	case []any:
		preds := make([]types.Predicate, 0, len(v))

		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}

			field, fok := m["field"].(string)
			op, ook := m["operator"].(string)

			if !fok || !ook {
				return nil, false
			}

			preds = append(preds, types.Predicate{Field: field, Operator: op, Value: m["value"]})
		}

		return preds, true
	default:
		return nil, false
	}
}

// Resolve 按操作确定最终谓词列表. 显式列表优先；其次是载荷中内嵌的 where_conditions；
// 最后才使用从载荷推导的兜底：update 使用 payload.id，isdel 对每个字段生成等值条件.
// data 中的 where_conditions 会被移除.
func Resolve(op types.Operation, explicit []types.Predicate, data types.Record) ([]types.Predicate, error) {
	lifted, hasLifted, err := liftWhere(op, data)
	if err != nil {
		return nil, err
	}

	if len(explicit) > 0 {
		return explicit, nil
	}

	if hasLifted && len(lifted) > 0 {
		return lifted, nil
	}

	switch op {
	case types.OpUpdate:
		if len(data) == 0 {
			return nil, validationError(op, "update requires data describing the new field values")
		}

		if id, ok := data[types.FieldID]; ok && id != nil && id != "" {
			return ByID(id), nil
		}

		return nil, validationError(op, "update requires where_conditions or an id field to identify the record")
	case types.OpIsDel:
		if preds := FromPayloadFields(data); len(preds) > 0 {
			return preds, nil
		}

		return nil, validationError(op, "isdel requires where_conditions to identify the record")
	case types.OpCheck:
		return []types.Predicate{}, nil
	default:
		return nil, nil
	}
}
