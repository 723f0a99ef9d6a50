package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/yeisme/storeclient/pkg/internal/envelope"
	"github.com/yeisme/storeclient/pkg/internal/types"
	"github.com/yeisme/storeclient/pkg/rule"
)

// parseData 解析调用方提供的 JSON 对象，空文本返回空记录.
func parseData(op types.Operation, raw string) (types.Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return types.Record{}, nil
	}

	var data types.Record
	if err := sonic.UnmarshalString(raw, &data); err != nil {
		return nil, &envelope.Error{Kind: envelope.KindValidation, Op: op, Message: "invalid JSON data", Err: err}
	}

	if data == nil {
		data = types.Record{}
	}

	return data, nil
}

// Probe 按任意分类器和操作构建信封并发送，返回请求与原始响应. 非 2xx 响应视为失败.
func (s *RecordService) Probe(ctx context.Context, req types.ProbeRequest, att *types.Attachment) Reply[types.ProbeOutcome] {
	if err := rule.ValidateStruct(req); err != nil {
		return fail[types.ProbeOutcome]("probe", "API test failed",
			&envelope.Error{Kind: envelope.KindValidation, Op: req.Operation, Message: "file_type and a supported operation are required", Err: err})
	}

	data, err := parseData(req.Operation, req.Data)
	if err != nil {
		return fail[types.ProbeOutcome]("probe", "API test failed", err)
	}

	if req.Operation == types.OpAdd && len(data) == 0 && att == nil {
		return fail[types.ProbeOutcome]("probe", "API test failed",
			&envelope.Error{Kind: envelope.KindValidation, Op: req.Operation, Message: "provide JSON data or choose a file"})
	}

	spec := envelope.ProbeSpec{
		FileType:   strings.TrimSpace(req.FileType),
		Operation:  req.Operation,
		Data:       data,
		Attachment: att,
		Audit:      req.Audit,
	}

	if req.IsDelField != "" || req.IsDelValue != "" {
		spec.SoftDelete = &types.SoftDeleteConfig{Field: req.IsDelField, Value: req.IsDelValue}
	}

	env, err := s.builder.Probe(ctx, spec)
	if err != nil {
		return fail[types.ProbeOutcome]("probe", "API test failed", err)
	}

	out, err := s.sender.Probe(ctx, env)
	if err != nil {
		return fail[types.ProbeOutcome]("probe", "API request failed", err)
	}

	if out.Status < 200 || out.Status >= 300 {
		return Reply[types.ProbeOutcome]{
			Data:   out,
			Notice: types.Failure("API test failed"),
			Err:    &envelope.Error{Kind: envelope.KindTransport, Op: env.Operation, Message: fmt.Sprintf("HTTP error! status: %d", out.Status)},
		}
	}

	return succeed(out, "API test succeeded")
}

// TableAdd 向指定表写入原始 JSON 数据.
func (s *RecordService) TableAdd(ctx context.Context, req types.TableAddRequest) Reply[types.Record] {
	req.Table = strings.TrimSpace(req.Table)
	if req.Table == "" {
		return fail[types.Record]("table_add", "", &envelope.Error{Kind: envelope.KindValidation, Op: types.OpAdd, Message: "table name is required"})
	}

	if strings.TrimSpace(req.Data) == "" {
		return fail[types.Record]("table_add", "", &envelope.Error{Kind: envelope.KindValidation, Op: types.OpAdd, Message: "JSON data is required"})
	}

	data, err := parseData(types.OpAdd, req.Data)
	if err != nil {
		return fail[types.Record]("table_add", "", err)
	}

	env, err := s.builder.TableAdd(ctx, req.Table, data)
	if err != nil {
		return fail[types.Record]("table_add", "write failed", err)
	}

	if _, err := s.sender.Send(ctx, env); err != nil {
		return fail[types.Record]("table_add", "write failed", err)
	}

	return succeed(env.Data, "data written successfully")
}
