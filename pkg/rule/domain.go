package rule

import (
	"slices"

	"github.com/go-playground/validator/v10"
)

var (
	// storeOperations 存储 API 支持的操作.
	storeOperations = []string{"add", "check", "update", "isdel"}
	// predicateOperators 查询条件支持的比较运算符.
	predicateOperators = []string{"=", "LIKE"}
)

// registerDomainRules 注册存储客户端使用的自定义规则：store_operation、predicate_operator.
func registerDomainRules(v *validator.Validate) {
	_ = v.RegisterValidation("store_operation", oneOfFunc(storeOperations))
	_ = v.RegisterValidation("predicate_operator", oneOfFunc(predicateOperators))
}

func oneOfFunc(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}
