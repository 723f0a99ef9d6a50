// Package types 定义存储 API 的线上数据结构以及网关/CLI 使用的请求意图结构体.
package types

import (
	"maps"
	"slices"
)

// 具有系统含义的记录字段名.
const (
	FieldID              = "id"
	FieldFileID          = "file_id"
	FieldFileName        = "file_name"
	FieldFileType        = "file_type"
	FieldFileSize        = "file_size"
	FieldFileSHA256      = "file_sha256"
	FieldFileDescription = "file_description"
	FieldUploadTime      = "file_upload_time"
	FieldUploadUser      = "file_upload_user"
	FieldUploadIP        = "file_upload_ip"
	FieldRoles           = "file_roles"
	FieldStatus          = "file_status"
	FieldIsDel           = "is_del"
	FieldFileContent     = "file_content"
	FieldImageContent    = "image_content"
	FieldDicomContent    = "dicom_content"
	FieldDicomPath       = "dicom_path"
	FieldWhereConditions = "where_conditions"
)

// Record 存储中的一条记录，字段集合不固定.
type Record map[string]any

// Clone 返回记录的浅拷贝，nil 记录返回空记录.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	maps.Copy(out, r)

	return out
}

// Has 判断字段是否存在.
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// String 以字符串形式读取字段，不存在或类型不符时返回空串.
func (r Record) String(field string) string {
	s, _ := r[field].(string)
	return s
}

// Keys 返回按字典序排序的字段名.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r))
}
