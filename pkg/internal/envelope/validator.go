package envelope

import (
	"github.com/yeisme/storeclient/pkg/internal/types"
	"github.com/yeisme/storeclient/pkg/rule"
)

// contentFieldNames 所有形态可能使用的内容字段.
var contentFieldNames = []string{types.FieldFileContent, types.FieldImageContent}

// Validate 在发送前检查信封是否完整、与操作类型一致. 失败返回 KindValidation 的 *Error.
//
//	add     载荷不能为空
//	check   无要求，空谓词列表表示匹配全部
//	update  谓词列表和载荷都不能为空
//	isdel   谓词列表不能为空
func Validate(env types.Envelope) error {
	op := env.Operation
	if !op.Valid() {
		return validationError(op, "unsupported operation %q", op)
	}

	if env.FileType == "" {
		return validationError(op, "file_type is required")
	}

	for i, p := range env.Where {
		if err := rule.ValidateStruct(p); err != nil {
			return validationError(op, "where_conditions[%d]: %s", i, predicateProblem(err))
		}
	}

	if op.Targeted() && len(env.Where) == 0 {
		return validationError(op, "%s requires where_conditions to identify the record", op)
	}

	switch op {
	case types.OpAdd:
		if len(env.Data) == 0 {
			return validationError(op, "add requires a non-empty payload or a file")
		}

		return validateVariant(env)
	case types.OpUpdate:
		if len(env.Data) == 0 {
			return validationError(op, "update requires data describing the new field values")
		}
	case types.OpCheck, types.OpIsDel:
	}

	return nil
}

// predicateProblem 把谓词的校验错误转换为可读信息.
func predicateProblem(err error) string {
	errs := rule.Errors(err)
	if _, bad := errs["Field"]; bad {
		return "field is required"
	}

	if _, bad := errs["Operator"]; bad {
		return "unsupported operator, expected = or LIKE"
	}

	return err.Error()
}

// validateVariant 内容字段必须与形态一致：形态的内容字段存在时，其他内容字段不能同时出现在扩展字段中.
func validateVariant(env types.Envelope) error {
	v := types.VariantOf(env.FileType)

	known, extra := v.Split(env.Data)
	if !known.Has(v.ContentField) {
		return nil
	}

	for _, f := range contentFieldNames {
		if extra.Has(f) {
			return validationError(env.Operation, "%s records carry content in %s, not %s",
				v.Classifier, v.ContentField, f)
		}
	}

	return nil
}
