package types

import "slices"

// 常用类型分类器（file_type）.
const (
	ClassifierAll       = "all"
	ClassifierImage     = "image"
	ClassifierImg2Dicom = "img2dicom"
	ClassifierDicom     = "dicom"
)

// Variant 描述某个类型分类器下记录的形态：内容字段、由服务端填充的占位字段以及已知字段集合.
// 构建器和校验器按 Variant 分派，而不是在运行时探测字段.
type Variant struct {
	Classifier   string
	ContentField string
	Placeholders []string
	KnownFields  []string
}

var baseFields = []string{
	FieldID, FieldFileID, FieldFileName, FieldFileType, FieldFileSize, FieldFileSHA256,
	FieldFileDescription, FieldUploadTime, FieldUploadUser, FieldUploadIP, FieldRoles,
	FieldStatus, FieldIsDel,
}

// VariantOf 返回分类器对应的记录形态.
func VariantOf(classifier string) Variant {
	if classifier == ClassifierImg2Dicom {
		return Variant{
			Classifier:   classifier,
			ContentField: FieldImageContent,
			Placeholders: []string{FieldDicomPath, FieldDicomContent},
			KnownFields:  append(slices.Clone(baseFields), FieldImageContent, FieldDicomPath, FieldDicomContent),
		}
	}

	return Variant{
		Classifier:   classifier,
		ContentField: FieldFileContent,
		KnownFields:  append(slices.Clone(baseFields), FieldFileContent),
	}
}

// IsSpecial 分类器是否需要特殊的内容映射.
func (v Variant) IsSpecial() bool {
	return len(v.Placeholders) > 0
}

// Knows 判断字段是否属于该形态的已知字段.
func (v Variant) Knows(field string) bool {
	return slices.Contains(v.KnownFields, field)
}

// Split 将记录拆分为已知字段和开放扩展字段.
func (v Variant) Split(r Record) (known, extra Record) {
	known, extra = Record{}, Record{}

	for k, val := range r {
		if v.Knows(k) {
			known[k] = val
		} else {
			extra[k] = val
		}
	}

	return known, extra
}
