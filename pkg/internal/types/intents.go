package types

import (
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

// octetStream 未声明具体类型时浏览器和 curl 使用的媒体类型.
const octetStream = "application/octet-stream"

// Attachment 随请求上传的二进制内容.
type Attachment struct {
	Name      string
	MediaType string
	Content   []byte
}

// Size 返回内容字节数.
func (a *Attachment) Size() int64 {
	if a == nil {
		return 0
	}

	return int64(len(a.Content))
}

// NewAttachment 创建附件. declared 为空或为 application/octet-stream 时按内容探测；
// 媒体类型只保留 type/subtype，与浏览器 File.type 一致.
func NewAttachment(name, declared string, content []byte) *Attachment {
	mediaType := bareMediaType(declared)
	if mediaType == "" || mediaType == octetStream {
		mediaType = bareMediaType(mimetype.Detect(content).String())
	}

	return &Attachment{Name: name, MediaType: mediaType, Content: content}
}

// bareMediaType 去掉 charset 等参数，无法解析时返回空.
func bareMediaType(v string) string {
	if v == "" {
		return ""
	}

	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}

	return mt
}

// UploadRequest 图片上传请求.
type UploadRequest struct {
	Description string `form:"description" json:"description,omitempty"`
	// Classifier 显式指定的特殊分类器（如 img2dicom），为空时使用文件的媒体类型
	Classifier string `form:"classifier" json:"classifier,omitempty" rule:"omitempty,max=64"`
}

// ListQuery 列表/搜索查询.
type ListQuery struct {
	ShowAll bool   `form:"show_all" json:"show_all"`
	Keyword string `form:"keyword"  json:"keyword,omitempty"`
}

// EditRequest 编辑保存请求.
type EditRequest struct {
	FileName    string `form:"file_name"        json:"file_name"                  rule:"required"`
	FileType    string `form:"file_type"        json:"file_type,omitempty"`
	Description string `form:"file_description" json:"file_description,omitempty"`
}

// DeleteRequest 删除请求，Deleted 表示记录已被软删除（再次删除即真实删除）.
type DeleteRequest struct {
	ID      string `json:"id"      rule:"required,numeric"`
	Deleted bool   `json:"deleted" form:"deleted"`
}

// ProbeRequest 通用 API 探测请求.
type ProbeRequest struct {
	FileType   string    `form:"file_type"   json:"file_type"             rule:"required"`
	Operation  Operation `form:"operation"   json:"operation"             rule:"required,store_operation"`
	Data       string    `form:"data"        json:"data,omitempty"`
	Audit      bool      `form:"audit"       json:"audit,omitempty"`
	IsDelField string    `form:"isdel_field" json:"isdel_field,omitempty"`
	IsDelValue string    `form:"isdel_value" json:"isdel_value,omitempty"`
}

// TableAddRequest 按表名写入原始 JSON 数据的请求.
type TableAddRequest struct {
	Table string `json:"table" rule:"required"`
	Data  string `json:"data"  rule:"required"`
}
