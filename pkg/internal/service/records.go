// Package service 实现面向用户的记录工作流：上传、列表、搜索、详情、编辑、删除以及通用 API 探测.
// 每个工作流的所有失败都在边界处转换为一条 types.Notification，不会继续向上传播.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yeisme/storeclient/pkg/internal/envelope"
	"github.com/yeisme/storeclient/pkg/internal/types"
	nlog "github.com/yeisme/storeclient/pkg/log"
)

// Sender 发送信封的存储客户端.
type Sender interface {
	Send(ctx context.Context, env types.Envelope) (envelope.Result, error)
	Probe(ctx context.Context, env types.Envelope) (types.ProbeOutcome, error)
}

// Reply 工作流结果. Err 非空时 Notice 为错误提示，Data 为零值.
type Reply[T any] struct {
	Data   T
	Notice types.Notification
	Err    error
}

// OK 工作流是否成功.
func (r Reply[T]) OK() bool {
	return r.Err == nil
}

func succeed[T any](data T, msg string) Reply[T] {
	return Reply[T]{Data: data, Notice: types.Success(msg)}
}

// fail 在工作流边界记录错误并转换为提示. prefix 为空时直接展示错误文本.
func fail[T any](workflow, prefix string, err error) Reply[T] {
	msg := envelope.UserMessage(err)
	if prefix != "" {
		msg = prefix + ": " + msg
	}

	event := nlog.Logger().Error()
	if errors.Is(err, ErrStaleTarget) || errors.Is(err, envelope.ErrValidation) {
		event = nlog.Logger().Warn()
	}

	event.Err(err).Str("workflow", workflow).Str("kind", string(envelope.KindOf(err))).Msg("workflow failed")

	return Reply[T]{Notice: types.Failure(msg), Err: err}
}

// ErrRecordNotFound 按 id 查询没有返回记录.
var ErrRecordNotFound = &envelope.Error{Kind: envelope.KindApplication, Op: types.OpCheck, Message: "record not found"}

// IsNotFound 判断错误是否为 ErrRecordNotFound 本身. errors.Is 按分类匹配，
// 会把其它 check 的应用失败也当作未找到.
func IsNotFound(err error) bool {
	var e *envelope.Error

	return errors.As(err, &e) && e == ErrRecordNotFound
}

// DeleteOutcome 删除结果.
type DeleteOutcome struct {
	ID        string `json:"id"`
	Permanent bool   `json:"permanent"`
	// SelectionClosed 被删除的记录正是当前打开的目标
	SelectionClosed bool `json:"selection_closed"`
}

// DetailView 详情或编辑加载的结果.
type DetailView struct {
	Context WorkflowContext `json:"context"`
	Record  types.Record    `json:"record"`
}

// RecordService 记录工作流.
type RecordService struct {
	sender    Sender
	builder   *envelope.Builder
	selection *Selection
}

// NewRecordService 创建 RecordService. selection 为 nil 时新建空槽位.
func NewRecordService(sender Sender, builder *envelope.Builder, selection *Selection) *RecordService {
	if selection == nil {
		selection = NewSelection()
	}

	return &RecordService{sender: sender, builder: builder, selection: selection}
}

// Selection 返回当前目标槽位.
func (s *RecordService) Selection() *Selection {
	return s.selection
}

// ParseID 校验并转换存储分配的数字 id.
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &envelope.Error{Kind: envelope.KindValidation, Message: "invalid image id"}
	}

	return id, nil
}

// Upload 上传图片并创建记录.
func (s *RecordService) Upload(ctx context.Context, att *types.Attachment, req types.UploadRequest) Reply[types.Record] {
	env, err := s.builder.Upload(ctx, att, req)
	if err != nil {
		return fail[types.Record]("upload", "upload failed", err)
	}

	res, err := s.sender.Send(ctx, env)
	if err != nil {
		return fail[types.Record]("upload", "upload failed", err)
	}

	created := env.Data
	if len(res.Records) > 0 {
		created = envelope.Merge(env.Data, res.Records[0])
	}

	return succeed(created, "image uploaded successfully")
}

// List 列出记录，showAll 为 false 时不包含已删除记录.
func (s *RecordService) List(ctx context.Context, showAll bool) Reply[[]types.Record] {
	res, err := s.sender.Send(ctx, s.builder.List(showAll))
	if err != nil {
		return fail[[]types.Record]("list", "load image list failed", err)
	}

	return succeed(res.Records, fmt.Sprintf("%d images", len(res.Records)))
}

// Search 按文件名关键字搜索，关键字为空时等同于 List.
func (s *RecordService) Search(ctx context.Context, q types.ListQuery) Reply[[]types.Record] {
	res, err := s.sender.Send(ctx, s.builder.Search(q))
	if err != nil {
		return fail[[]types.Record]("search", "search images failed", err)
	}

	return succeed(res.Records, fmt.Sprintf("%d images", len(res.Records)))
}

// Detail 打开详情. 会替换当前目标.
func (s *RecordService) Detail(ctx context.Context, rawID string) Reply[DetailView] {
	return s.open(ctx, rawID, PurposeDetail, types.ClassifierAll, "load image detail failed")
}

// OpenEdit 打开编辑目标并加载当前字段值.
func (s *RecordService) OpenEdit(ctx context.Context, rawID string) Reply[DetailView] {
	return s.open(ctx, rawID, PurposeEdit, types.ClassifierImage, "load edit form failed")
}

func (s *RecordService) open(ctx context.Context, rawID string, purpose Purpose, classifier, prefix string) Reply[DetailView] {
	workflow := string(purpose)

	id, err := ParseID(rawID)
	if err != nil {
		return fail[DetailView](workflow, "", err)
	}

	wc := s.selection.Open(strconv.FormatInt(id, 10), purpose)

	res, err := s.sender.Send(ctx, s.builder.Detail(classifier, id))

	if !s.selection.IsCurrent(wc) {
		return fail[DetailView](workflow, "", fmt.Errorf("%w: target %s", ErrStaleTarget, wc.TargetID))
	}

	if err != nil {
		return fail[DetailView](workflow, prefix, err)
	}

	if len(res.Records) == 0 {
		return fail[DetailView](workflow, prefix, ErrRecordNotFound)
	}

	return succeed(DetailView{Context: wc, Record: res.Records[0]}, "image "+wc.TargetID+" loaded")
}

// SaveEdit 保存当前打开目标的修改. att 非空时同时替换内容.
func (s *RecordService) SaveEdit(ctx context.Context, req types.EditRequest, att *types.Attachment) Reply[types.Record] {
	wc, ok := s.selection.Current()
	if !ok {
		return fail[types.Record]("save_edit", "", ErrNoSelection)
	}

	req.FileName = strings.TrimSpace(req.FileName)
	req.FileType = strings.TrimSpace(req.FileType)
	req.Description = strings.TrimSpace(req.Description)

	id, err := ParseID(wc.TargetID)
	if err != nil {
		return fail[types.Record]("save_edit", "", err)
	}

	env, err := s.builder.SaveEdit(id, req, att)
	if err != nil {
		return fail[types.Record]("save_edit", "update image failed", err)
	}

	if _, err := s.sender.Send(ctx, env); err != nil {
		return fail[types.Record]("save_edit", "update image failed", err)
	}

	return succeed(env.Data, "image updated successfully")
}

// CloseSelection 关闭当前目标.
func (s *RecordService) CloseSelection() Reply[WorkflowContext] {
	wc, ok := s.selection.Close()
	if !ok {
		return Reply[WorkflowContext]{Notice: types.Notification{Level: types.LevelInfo, Message: "nothing to close"}}
	}

	return Reply[WorkflowContext]{Data: wc, Notice: types.Notification{Level: types.LevelInfo, Message: "selection closed"}}
}

// Delete 删除记录. alreadyDeleted 为 true 时表示记录已被标记删除，本次为永久删除；
// 两种情况都发送 isdel，由存储决定删除方式.
func (s *RecordService) Delete(ctx context.Context, rawID string, alreadyDeleted bool) Reply[DeleteOutcome] {
	id, err := ParseID(rawID)
	if err != nil {
		return fail[DeleteOutcome]("delete", "", err)
	}

	if _, err := s.sender.Send(ctx, s.builder.Delete(id)); err != nil {
		return fail[DeleteOutcome]("delete", "delete image failed", err)
	}

	target := strconv.FormatInt(id, 10)
	out := DeleteOutcome{
		ID:              target,
		Permanent:       alreadyDeleted,
		SelectionClosed: s.selection.CloseTarget(target),
	}

	msg := "image marked as deleted"
	if alreadyDeleted {
		msg = "image permanently deleted"
	}

	return succeed(out, msg)
}
