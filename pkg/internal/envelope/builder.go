package envelope

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/yeisme/storeclient/pkg/internal/types"
	nlog "github.com/yeisme/storeclient/pkg/log"
)

const (
	// UploadTimeLayout 与 JavaScript Date.toISOString 一致的 UTC 时间格式.
	UploadTimeLayout = "2006-01-02T15:04:05.000Z07:00"
	// TableResources 需要补全文件元数据的表名.
	TableResources = "resources"
	// testFingerprintPrefix 表写入探测中生成的测试指纹前缀.
	testFingerprintPrefix = "test"
	defaultMediaType      = "application/octet-stream"
)

// protectedOnAdd add 时一旦计算出来就不允许调用方覆盖的字段.
var protectedOnAdd = []string{types.FieldFileID, types.FieldFileSHA256}

// AddressResolver 获取调用方出口地址，尽力而为，不返回错误.
type AddressResolver interface {
	Resolve(ctx context.Context) string
}

// StaticAddress 固定地址的 AddressResolver.
type StaticAddress string

// Resolve 实现 AddressResolver.
func (s StaticAddress) Resolve(context.Context) string {
	return string(s)
}

// Defaults 派生字段的默认值.
type Defaults struct {
	User       string
	Roles      []string
	Status     string
	SoftDelete types.SoftDeleteConfig
	TestUser   string
	TestRoles  []string
}

// DefaultDefaults 返回内置默认值.
func DefaultDefaults() Defaults {
	return Defaults{
		User:       "current_user",
		Roles:      []string{"user"},
		Status:     "active",
		SoftDelete: types.DefaultSoftDelete(),
		TestUser:   "test_user",
		TestRoles:  []string{"test_role"},
	}
}

// Builder 把意图组装成信封：意图必需字段、内容派生字段与调用方覆盖字段按操作规定的优先级合并.
type Builder struct {
	hasher   *Hasher
	ids      *IdentifierGenerator
	address  AddressResolver
	defaults Defaults
	now      func() time.Time
	intn     func(n int) int
}

// BuilderOption 配置 Builder.
type BuilderOption func(*Builder)

// WithBuilderClock 替换时钟.
func WithBuilderClock(fn func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = fn }
}

// WithBuilderRand 替换随机数来源.
func WithBuilderRand(fn func(n int) int) BuilderOption {
	return func(b *Builder) { b.intn = fn }
}

// NewBuilder 创建 Builder. nil 依赖使用默认实现.
func NewBuilder(h *Hasher, ids *IdentifierGenerator, addr AddressResolver, d Defaults, opts ...BuilderOption) *Builder {
	if h == nil {
		h = NewHasher()
	}

	if ids == nil {
		ids = NewIdentifierGenerator(nil)
	}

	if addr == nil {
		addr = StaticAddress("127.0.0.1")
	}

	b := &Builder{
		hasher:   h,
		ids:      ids,
		address:  addr,
		defaults: d,
		now:      time.Now,
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(b)
	}

	return b
}

// EncodeContent 以 data URL 形式编码二进制内容.
func EncodeContent(att *types.Attachment) string {
	mt := att.MediaType
	if mt == "" {
		mt = defaultMediaType
	}

	return fmt.Sprintf("data:%s;base64,%s", mt, base64.StdEncoding.EncodeToString(att.Content))
}

func (b *Builder) uploadTime() string {
	return b.now().UTC().Format(UploadTimeLayout)
}

// contentFields 按形态生成内容字段；特殊形态额外初始化服务端填充的占位字段.
func contentFields(v types.Variant, att *types.Attachment) types.Record {
	r := types.Record{v.ContentField: EncodeContent(att)}
	for _, p := range v.Placeholders {
		r[p] = ""
	}

	return r
}

// fileMetadata 附件派生的元数据（不含 file_id）.
func (b *Builder) fileMetadata(ctx context.Context, att *types.Attachment, v types.Variant) (types.Record, Fingerprint) {
	fp := b.hasher.FingerprintBytes(att.Content)

	meta := types.Record{
		types.FieldFileName:   att.Name,
		types.FieldFileType:   att.MediaType,
		types.FieldFileSize:   att.Size(),
		types.FieldFileSHA256: fp.Value,
		types.FieldUploadTime: b.uploadTime(),
		types.FieldUploadUser: b.defaults.User,
		types.FieldUploadIP:   b.address.Resolve(ctx),
	}

	return Merge(meta, contentFields(v, att)), fp
}

// fullMetadata 创建记录时的完整派生元数据.
func (b *Builder) fullMetadata(ctx context.Context, att *types.Attachment, v types.Variant) (types.Record, error) {
	meta, fp := b.fileMetadata(ctx, att, v)

	fileID, err := b.ids.FileID(fp.Value)
	if err != nil {
		return nil, fmt.Errorf("derive file id: %w", err)
	}

	base := types.Record{
		types.FieldFileID: fileID,
		types.FieldRoles:  slices.Clone(b.defaults.Roles),
		types.FieldStatus: b.defaults.Status,
	}

	return Merge(base, meta), nil
}

// resolveClassifier add 时的分类器：特殊分类器原样保留，否则使用附件媒体类型.
func resolveClassifier(requested string, att *types.Attachment) string {
	if att == nil {
		return requested
	}

	if types.VariantOf(requested).IsSpecial() {
		return requested
	}

	return att.MediaType
}

// Upload 构建图片上传的 add 信封.
func (b *Builder) Upload(ctx context.Context, att *types.Attachment, req types.UploadRequest) (types.Envelope, error) {
	if att == nil {
		return types.Envelope{}, validationError(types.OpAdd, "no file selected")
	}

	classifier := resolveClassifier(req.Classifier, att)
	v := types.VariantOf(classifier)

	full, err := b.fullMetadata(ctx, att, v)
	if err != nil {
		return types.Envelope{}, err
	}

	full[types.FieldFileDescription] = "uploaded image: " + att.Name

	overrides := types.Record{}
	if req.Description != "" {
		overrides["description"] = req.Description
	}

	data := Merge(full, normalizeOverrides(overrides, v), protectedOnAdd...)

	return types.Envelope{FileType: classifier, Operation: types.OpAdd, Data: data}, nil
}

// List 构建列表查询信封.
func (b *Builder) List(showAll bool) types.Envelope {
	return types.Envelope{
		FileType:  types.ClassifierAll,
		Operation: types.OpCheck,
		Data:      types.Record{},
		Where:     ForList(showAll),
	}
}

// Search 构建搜索信封，关键字为空时等同于 List.
func (b *Builder) Search(q types.ListQuery) types.Envelope {
	env := b.List(q.ShowAll)
	env.Where = ForSearch(q.ShowAll, q.Keyword)

	return env
}

// Detail 构建按 id 查询单条记录的信封，带审计标记.
func (b *Builder) Detail(classifier string, id any) types.Envelope {
	return types.Envelope{
		FileType:  classifier,
		Operation: types.OpCheck,
		Data:      types.Record{},
		Where:     ByID(id),
		Audit:     true,
	}
}

// SaveEdit 构建编辑保存的 update 信封. 有新附件时新计算的内容、指纹和时间覆盖调用方字段.
func (b *Builder) SaveEdit(id any, req types.EditRequest, att *types.Attachment) (types.Envelope, error) {
	if req.FileName == "" {
		return types.Envelope{}, validationError(types.OpUpdate, "file name must not be empty")
	}

	data := types.Record{types.FieldFileName: req.FileName}
	if req.FileType != "" {
		data[types.FieldFileType] = req.FileType
	}

	if req.Description != "" {
		data[types.FieldFileDescription] = req.Description
	}

	if att != nil {
		v := types.VariantOf(types.ClassifierImage)
		fp := b.hasher.FingerprintBytes(att.Content)

		fresh := contentFields(v, att)
		fresh[types.FieldFileSHA256] = fp.Value
		fresh[types.FieldUploadTime] = b.uploadTime()

		data = Merge(data, fresh)
	}

	return types.Envelope{
		FileType:  types.ClassifierImage,
		Operation: types.OpUpdate,
		Data:      data,
		Where:     ByID(id),
	}, nil
}

// Delete 构建 isdel 信封.
func (b *Builder) Delete(id any) types.Envelope {
	cfg := b.defaults.SoftDelete

	return types.Envelope{
		FileType:         types.ClassifierImage,
		Operation:        types.OpIsDel,
		Data:             types.Record{},
		Where:            ByID(id),
		SoftDeleteConfig: &cfg,
	}
}

// ProbeSpec 通用探测的输入.
type ProbeSpec struct {
	FileType   string
	Operation  types.Operation
	Data       types.Record
	Attachment *types.Attachment
	Audit      bool
	SoftDelete *types.SoftDeleteConfig
	Where      []types.Predicate
}

// Probe 构建任意操作的探测信封.
// add: 派生元数据为底，调用方字段覆盖（file_id、file_sha256 除外）；
// update: 调用方字段为底，新计算的文件元数据覆盖.
func (b *Builder) Probe(ctx context.Context, in ProbeSpec) (types.Envelope, error) {
	op := in.Operation
	if !op.Valid() {
		return types.Envelope{}, validationError(op, "unsupported operation %q", op)
	}

	userData := in.Data.Clone()
	att := in.Attachment

	env := types.Envelope{FileType: in.FileType, Operation: op}
	if op == types.OpAdd {
		env.FileType = resolveClassifier(in.FileType, att)
	}

	v := types.VariantOf(in.FileType)

	switch {
	case op == types.OpAdd && att != nil:
		full, err := b.fullMetadata(ctx, att, v)
		if err != nil {
			return types.Envelope{}, err
		}

		env.Data = Merge(full, normalizeOverrides(userData, v), protectedOnAdd...)
	case op == types.OpUpdate && att != nil:
		meta, _ := b.fileMetadata(ctx, att, v)
		env.Data = Merge(userData, meta)
	default:
		env.Data = userData
	}

	switch op {
	case types.OpCheck:
		env.Audit = in.Audit
	case types.OpIsDel:
		cfg := b.defaults.SoftDelete
		if in.SoftDelete != nil {
			cfg = *in.SoftDelete
			if cfg.Field == "" {
				cfg.Field = b.defaults.SoftDelete.Field
			}

			if cfg.Value == "" {
				cfg.Value = b.defaults.SoftDelete.Value
			}
		}

		env.SoftDeleteConfig = &cfg
	}

	if op != types.OpAdd {
		where, err := Resolve(op, in.Where, env.Data)
		if err != nil {
			return types.Envelope{}, err
		}

		env.Where = where
	}

	return env, nil
}

// TableAdd 构建按表名写入原始数据的 add 信封. resources 表中带 content 却缺少指纹的记录会补全文件元数据，
// 仅填充缺失字段.
func (b *Builder) TableAdd(ctx context.Context, table string, data types.Record) (types.Envelope, error) {
	if table == "" {
		return types.Envelope{}, validationError(types.OpAdd, "table name is required")
	}

	processed := data.Clone()

	if table == TableResources && processed.Has("content") && !processed.Has(types.FieldFileSHA256) {
		b.enrichResource(ctx, processed)
	}

	classifier := processed.String(types.FieldFileType)
	if classifier == "" {
		classifier = table
	}

	return types.Envelope{FileType: classifier, Operation: types.OpAdd, Data: processed}, nil
}

func (b *Builder) enrichResource(ctx context.Context, r types.Record) {
	fp := SyntheticFingerprint(testFingerprintPrefix, b.now(), syntheticSuffix(b.intn))
	nlog.Logger().Warn().Str("fingerprint", fp).Msg("resource record has content but no file_sha256, using test fingerprint")

	r[types.FieldFileSHA256] = fp

	setMissing := func(field string, value func() any) {
		if !r.Has(field) {
			r[field] = value()
		}
	}

	setMissing(types.FieldFileID, func() any {
		id, _ := b.ids.FileID(fp)
		return id
	})
	setMissing(types.FieldUploadTime, func() any { return b.uploadTime() })
	setMissing(types.FieldUploadUser, func() any { return b.defaults.TestUser })
	setMissing(types.FieldUploadIP, func() any { return b.address.Resolve(ctx) })
	setMissing(types.FieldRoles, func() any { return slices.Clone(b.defaults.TestRoles) })
	setMissing(types.FieldStatus, func() any { return b.defaults.Status })

	for alias, dst := range map[string]string{"content": types.FieldFileContent, "description": types.FieldFileDescription} {
		if val, ok := r[alias]; ok && !r.Has(dst) {
			r[dst] = val
			delete(r, alias)
		}
	}
}
