package envelope

import (
	"slices"

	"github.com/yeisme/storeclient/pkg/internal/types"
)

// Merge 返回 base 与 overlay 合并后的新记录，键冲突时 overlay 胜出；
// protected 中的键若在 base 中存在，则保持 base 的值. 不修改入参.
func Merge(base, overlay types.Record, protected ...string) types.Record {
	out := base.Clone()

	for k, v := range overlay {
		if _, inBase := base[k]; inBase && slices.Contains(protected, k) {
			continue
		}

		out[k] = v
	}

	return out
}

// overrideAliases 调用方覆盖字段的别名，映射到记录中的目标字段.
var overrideAliases = map[string]string{
	"description": types.FieldFileDescription,
}

// normalizeOverrides 将别名字段改写为目标字段名，content 映射到形态的内容字段.
// 目标字段已存在时保留原值并丢弃别名.
func normalizeOverrides(overrides types.Record, v types.Variant) types.Record {
	out := overrides.Clone()

	aliases := map[string]string{"content": v.ContentField}
	for k, dst := range overrideAliases {
		aliases[k] = dst
	}

	for alias, dst := range aliases {
		val, ok := out[alias]
		if !ok {
			continue
		}

		delete(out, alias)

		if _, exists := out[dst]; !exists {
			out[dst] = val
		}
	}

	return out
}
