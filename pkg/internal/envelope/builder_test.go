package envelope_test

import (
	"context"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/storeclient/pkg/internal/envelope"
	"github.com/yeisme/storeclient/pkg/internal/types"
)

const abcSHA = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func newBuilder() *envelope.Builder {
	return envelope.NewBuilder(
		envelope.NewHasher(),
		envelope.NewIdentifierGenerator(func(int) int { return 234 }),
		envelope.StaticAddress("198.51.100.7"),
		envelope.DefaultDefaults(),
		envelope.WithBuilderClock(func() time.Time { return fixedNow }),
		envelope.WithBuilderRand(func(int) int { return 42 }),
	)
}

func pngAttachment() *types.Attachment {
	return &types.Attachment{Name: "cat.png", MediaType: "image/png", Content: []byte("abc")}
}

func TestBuilder_Upload(t *testing.T) {
	env, err := newBuilder().Upload(context.Background(), pngAttachment(), types.UploadRequest{})
	require.NoError(t, err)

	assert.Equal(t, types.OpAdd, env.Operation)
	assert.Equal(t, "image/png", env.FileType)
	assert.Nil(t, env.Where)

	assert.Equal(t, types.Record{
		types.FieldFileID:          "file_ba7816bf8f01cfea_1234",
		types.FieldFileName:        "cat.png",
		types.FieldFileType:        "image/png",
		types.FieldFileSize:        int64(3),
		types.FieldFileSHA256:      abcSHA,
		types.FieldFileDescription: "uploaded image: cat.png",
		types.FieldUploadTime:      "2024-05-01T12:00:00.000Z",
		types.FieldUploadUser:      "current_user",
		types.FieldUploadIP:        "198.51.100.7",
		types.FieldRoles:           []string{"user"},
		types.FieldStatus:          "active",
		types.FieldFileContent:     "data:image/png;base64,YWJj",
	}, env.Data)
}

func TestBuilder_UploadDescription(t *testing.T) {
	env, err := newBuilder().Upload(context.Background(), pngAttachment(), types.UploadRequest{Description: "a cat"})
	require.NoError(t, err)

	assert.Equal(t, "a cat", env.Data[types.FieldFileDescription])
	assert.NotContains(t, env.Data, "description")
}

func TestBuilder_UploadImg2Dicom(t *testing.T) {
	env, err := newBuilder().Upload(context.Background(), pngAttachment(), types.UploadRequest{Classifier: types.ClassifierImg2Dicom})
	require.NoError(t, err)

	assert.Equal(t, types.ClassifierImg2Dicom, env.FileType)
	assert.Equal(t, "data:image/png;base64,YWJj", env.Data[types.FieldImageContent])
	assert.Equal(t, "", env.Data[types.FieldDicomPath])
	assert.Equal(t, "", env.Data[types.FieldDicomContent])
	assert.NotContains(t, env.Data, types.FieldFileContent)
	require.NoError(t, envelope.Validate(env))
}

func TestBuilder_ProbeAddProtectsDerivedIdentity(t *testing.T) {
	env, err := newBuilder().Probe(context.Background(), envelope.ProbeSpec{
		FileType:  "image",
		Operation: types.OpAdd,
		Data: types.Record{
			"file_id":         "mine",
			"file_sha256":     "forged",
			"description":     "from caller",
			types.FieldStatus: "draft",
			"custom":          1,
		},
		Attachment: pngAttachment(),
	})
	require.NoError(t, err)

	assert.Equal(t, "file_ba7816bf8f01cfea_1234", env.Data[types.FieldFileID])
	assert.Equal(t, abcSHA, env.Data[types.FieldFileSHA256])
	assert.Equal(t, "from caller", env.Data[types.FieldFileDescription])
	assert.Equal(t, "draft", env.Data[types.FieldStatus])
	assert.Equal(t, 1, env.Data["custom"])
	assert.Equal(t, "image/png", env.FileType)
}

func TestBuilder_ProbeAddWithoutFile(t *testing.T) {
	env, err := newBuilder().Probe(context.Background(), envelope.ProbeSpec{
		FileType:  "notes",
		Operation: types.OpAdd,
		Data:      types.Record{"title": "t"},
	})
	require.NoError(t, err)

	assert.Equal(t, "notes", env.FileType)
	assert.Equal(t, types.Record{"title": "t"}, env.Data)
}

func TestBuilder_ProbeUpdateFreshMetadataWins(t *testing.T) {
	env, err := newBuilder().Probe(context.Background(), envelope.ProbeSpec{
		FileType:   "image",
		Operation:  types.OpUpdate,
		Data:       types.Record{"id": float64(5), "file_sha256": "stale", "file_description": "keep"},
		Attachment: pngAttachment(),
	})
	require.NoError(t, err)

	assert.Equal(t, abcSHA, env.Data[types.FieldFileSHA256])
	assert.Equal(t, "keep", env.Data[types.FieldFileDescription])
	assert.Equal(t, "2024-05-01T12:00:00.000Z", env.Data[types.FieldUploadTime])
	assert.NotContains(t, env.Data, types.FieldFileID)
	assert.Equal(t, envelope.ByID(float64(5)), env.Where)
}

func TestBuilder_ProbeCheckAndIsDel(t *testing.T) {
	b := newBuilder()

	check, err := b.Probe(context.Background(), envelope.ProbeSpec{FileType: "image", Operation: types.OpCheck, Audit: true})
	require.NoError(t, err)
	assert.True(t, check.Audit)
	assert.Equal(t, []types.Predicate{}, check.Where)

	isdel, err := b.Probe(context.Background(), envelope.ProbeSpec{
		FileType:   "image",
		Operation:  types.OpIsDel,
		Data:       types.Record{"id": 3},
		SoftDelete: &types.SoftDeleteConfig{Value: "1"},
	})
	require.NoError(t, err)
	assert.Equal(t, types.SoftDeleteConfig{Field: "is_del", Value: "1"}, *isdel.SoftDeleteConfig)
	assert.Equal(t, []types.Predicate{types.Eq("id", 3)}, isdel.Where)
}

func TestBuilder_MalformedWhereNeverWidens(t *testing.T) {
	b := newBuilder()

	_, err := b.Probe(context.Background(), envelope.ProbeSpec{
		FileType:  "image",
		Operation: types.OpIsDel,
		Data:      types.Record{"file_status": "active", "where_conditions": "id = 3"},
	})
	assert.ErrorIs(t, err, envelope.ErrValidation)

	_, err = b.Probe(context.Background(), envelope.ProbeSpec{
		FileType:  "image",
		Operation: types.OpCheck,
		Data:      types.Record{"where_conditions": []any{"id=3"}},
	})
	assert.ErrorIs(t, err, envelope.ErrValidation)
}

func TestBuilder_SaveEdit(t *testing.T) {
	b := newBuilder()

	env, err := b.SaveEdit(int64(4), types.EditRequest{FileName: "n.png"}, nil)
	require.NoError(t, err)
	assert.Equal(t, types.Record{"file_name": "n.png"}, env.Data)
	assert.Equal(t, types.ClassifierImage, env.FileType)

	_, err = b.SaveEdit(int64(4), types.EditRequest{}, nil)
	assert.ErrorIs(t, err, envelope.ErrValidation)
}

func TestBuilder_TableAdd(t *testing.T) {
	b := newBuilder()

	env, err := b.TableAdd(context.Background(), envelope.TableResources, types.Record{"content": "abc", "file_name": "r.txt"})
	require.NoError(t, err)

	assert.Equal(t, "test_1714564800000_1042", env.Data[types.FieldFileSHA256])
	assert.Equal(t, "file_test_17145648000_1234", env.Data[types.FieldFileID])
	assert.Equal(t, "test_user", env.Data[types.FieldUploadUser])
	assert.Equal(t, []string{"test_role"}, env.Data[types.FieldRoles])
	assert.Equal(t, "abc", env.Data[types.FieldFileContent])

	plain, err := b.TableAdd(context.Background(), "notes", types.Record{"content": "abc"})
	require.NoError(t, err)
	assert.Equal(t, types.Record{"content": "abc"}, plain.Data)
	assert.Equal(t, "notes", plain.FileType)
}

func TestEnvelope_WireShape(t *testing.T) {
	b := newBuilder()

	list, err := sonic.Marshal(b.List(true))
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_type":"all","operation":"check","data":{},"where_conditions":null,"audit":false}`, string(list))

	detail, err := sonic.Marshal(b.Detail("all", 7))
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_type":"all","operation":"check","data":{},
		"where_conditions":[{"field":"id","operator":"=","value":7}],"audit":true}`, string(detail))

	del, err := sonic.Marshal(b.Delete(7))
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_type":"image","operation":"isdel","data":{},
		"where_conditions":[{"field":"id","operator":"=","value":7}],
		"soft_delete_config":{"field":"is_del","value":"true"}}`, string(del))

	add, err := sonic.Marshal(types.Envelope{FileType: "x", Operation: types.OpAdd, Data: types.Record{"a": 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"file_type":"x","operation":"add","data":{"a":1}}`, string(add))
}
