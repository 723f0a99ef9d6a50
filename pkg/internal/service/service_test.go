package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/storeclient/pkg/internal/envelope"
	"github.com/yeisme/storeclient/pkg/internal/service"
	"github.com/yeisme/storeclient/pkg/internal/types"
)

// fakeSender 记录发送的信封并按顺序返回预设结果.
type fakeSender struct {
	mu      sync.Mutex
	sent    []types.Envelope
	results []envelope.Result
	errs    []error
	// hold 非空时 Send 在返回前等待该通道
	hold chan struct{}
	// entered Send 开始处理时通知
	entered chan struct{}
}

func (f *fakeSender) next() (envelope.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	i := len(f.sent) - 1

	var (
		res envelope.Result
		err error
	)

	if i < len(f.results) {
		res = f.results[i]
	} else {
		res = envelope.Result{Status: http.StatusOK, Success: true, Records: []types.Record{}}
	}

	if i < len(f.errs) {
		err = f.errs[i]
	}

	return res, err
}

func (f *fakeSender) Send(ctx context.Context, env types.Envelope) (envelope.Result, error) {
	if err := envelope.Validate(env); err != nil {
		return envelope.Result{}, err
	}

	f.mu.Lock()
	f.sent = append(f.sent, env)
	hold, entered := f.hold, f.entered
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}

	if hold != nil {
		<-hold
	}

	return f.next()
}

func (f *fakeSender) Probe(ctx context.Context, env types.Envelope) (types.ProbeOutcome, error) {
	if err := envelope.Validate(env); err != nil {
		return types.ProbeOutcome{}, err
	}

	f.mu.Lock()
	f.sent = append(f.sent, env)
	f.mu.Unlock()

	res, err := f.next()
	if err != nil {
		return types.ProbeOutcome{}, err
	}

	return types.ProbeOutcome{Status: res.Status, StatusText: http.StatusText(res.Status), Request: &env, Response: res.Body}, nil
}

func (f *fakeSender) last() types.Envelope {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sent[len(f.sent)-1]
}

func ok(records ...types.Record) envelope.Result {
	if records == nil {
		records = []types.Record{}
	}

	return envelope.Result{Status: http.StatusOK, Success: true, Records: records}
}

func newService(sender *fakeSender) *service.RecordService {
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	builder := envelope.NewBuilder(
		envelope.NewHasher(),
		envelope.NewIdentifierGenerator(func(int) int { return 234 }),
		envelope.StaticAddress("203.0.113.1"),
		envelope.DefaultDefaults(),
		envelope.WithBuilderClock(func() time.Time { return fixed }),
	)

	return service.NewRecordService(sender, builder, nil)
}

func TestUpload(t *testing.T) {
	sender := &fakeSender{results: []envelope.Result{ok(types.Record{"id": float64(7)})}}
	svc := newService(sender)

	att := &types.Attachment{Name: "cat.png", MediaType: "image/png", Content: []byte("png")}

	reply := svc.Upload(context.Background(), att, types.UploadRequest{Description: "my cat"})
	require.True(t, reply.OK(), reply.Notice.Message)

	assert.Equal(t, types.LevelSuccess, reply.Notice.Level)
	assert.Equal(t, float64(7), reply.Data["id"])

	env := sender.last()
	assert.Equal(t, types.OpAdd, env.Operation)
	assert.Equal(t, "image/png", env.FileType)
	assert.Equal(t, "my cat", env.Data[types.FieldFileDescription])
	assert.Equal(t, "203.0.113.1", env.Data[types.FieldUploadIP])
}

func TestUpload_NoFile(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender)

	reply := svc.Upload(context.Background(), nil, types.UploadRequest{})
	require.False(t, reply.OK())
	assert.Equal(t, types.LevelError, reply.Notice.Level)
	assert.Contains(t, reply.Notice.Message, "no file selected")
	assert.Empty(t, sender.sent)
}

func TestListAndSearch(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender)

	require.True(t, svc.List(context.Background(), false).OK())
	list := sender.last()

	require.True(t, svc.Search(context.Background(), types.ListQuery{Keyword: "  "}).OK())
	assert.Equal(t, list, sender.last())

	require.True(t, svc.Search(context.Background(), types.ListQuery{Keyword: "cat"}).OK())
	assert.Equal(t, []types.Predicate{
		{Field: "is_del", Operator: "=", Value: false},
		{Field: "file_name", Operator: "LIKE", Value: "%cat%"},
	}, sender.last().Where)
}

func TestList_TransportFailure(t *testing.T) {
	sender := &fakeSender{
		results: []envelope.Result{{Status: 500}},
		errs:    []error{&envelope.Error{Kind: envelope.KindTransport, Op: types.OpCheck, Message: "HTTP error! status: 500"}},
	}
	svc := newService(sender)

	reply := svc.List(context.Background(), true)
	require.False(t, reply.OK())
	assert.Equal(t, "load image list failed: HTTP error! status: 500", reply.Notice.Message)
}

func TestDetail(t *testing.T) {
	sender := &fakeSender{results: []envelope.Result{ok(types.Record{"id": float64(5), "file_name": "a.png"})}}
	svc := newService(sender)

	reply := svc.Detail(context.Background(), "5")
	require.True(t, reply.OK(), reply.Notice.Message)
	assert.Equal(t, "a.png", reply.Data.Record.String("file_name"))
	assert.Equal(t, "5", reply.Data.Context.TargetID)
	assert.Equal(t, service.PurposeDetail, reply.Data.Context.Purpose)

	env := sender.last()
	assert.Equal(t, types.ClassifierAll, env.FileType)
	assert.True(t, env.Audit)
	assert.Equal(t, []types.Predicate{types.Eq("id", int64(5))}, env.Where)
}

func TestDetail_InvalidID(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender)

	reply := svc.Detail(context.Background(), "abc")
	require.False(t, reply.OK())
	assert.Equal(t, "invalid image id", reply.Notice.Message)
	assert.Empty(t, sender.sent)

	_, open := svc.Selection().Current()
	assert.False(t, open)
}

func TestDetail_NotFound(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender)

	reply := svc.OpenEdit(context.Background(), "9")
	require.False(t, reply.OK())
	assert.ErrorIs(t, reply.Err, service.ErrRecordNotFound)
	assert.Equal(t, types.ClassifierImage, sender.last().FileType)
}

func TestDetail_StaleResponseDiscarded(t *testing.T) {
	hold := make(chan struct{})
	entered := make(chan struct{}, 2)
	sender := &fakeSender{hold: hold, entered: entered}
	svc := newService(sender)

	first := make(chan service.Reply[service.DetailView], 1)

	go func() {
		first <- svc.Detail(context.Background(), "1")
	}()

	<-entered

	sender.mu.Lock()
	sender.hold = nil
	sender.results = []envelope.Result{ok(types.Record{"id": float64(1)}), ok(types.Record{"id": float64(2)})}
	sender.mu.Unlock()

	second := svc.Detail(context.Background(), "2")
	<-entered
	require.True(t, second.OK(), second.Notice.Message)

	close(hold)

	stale := <-first
	require.False(t, stale.OK())
	assert.ErrorIs(t, stale.Err, service.ErrStaleTarget)

	wc, open := svc.Selection().Current()
	require.True(t, open)
	assert.Equal(t, "2", wc.TargetID)
}

func TestSaveEdit(t *testing.T) {
	sender := &fakeSender{results: []envelope.Result{ok(types.Record{"id": float64(3)}), ok()}}
	svc := newService(sender)

	reply := svc.SaveEdit(context.Background(), types.EditRequest{FileName: "x.png"}, nil)
	require.False(t, reply.OK())
	assert.ErrorIs(t, reply.Err, service.ErrNoSelection)

	require.True(t, svc.OpenEdit(context.Background(), "3").OK())

	att := &types.Attachment{Name: "new.png", MediaType: "image/png", Content: []byte("new")}
	reply = svc.SaveEdit(context.Background(), types.EditRequest{FileName: " new.png ", Description: "d"}, att)
	require.True(t, reply.OK(), reply.Notice.Message)

	env := sender.last()
	assert.Equal(t, types.OpUpdate, env.Operation)
	assert.Equal(t, types.ClassifierImage, env.FileType)
	assert.Equal(t, []types.Predicate{types.Eq("id", int64(3))}, env.Where)
	assert.Equal(t, "new.png", env.Data[types.FieldFileName])
	assert.Equal(t, "d", env.Data[types.FieldFileDescription])
	assert.Contains(t, env.Data, types.FieldFileSHA256)
	assert.Contains(t, env.Data, types.FieldFileContent)
}

func TestSaveEdit_EmptyName(t *testing.T) {
	sender := &fakeSender{results: []envelope.Result{ok(types.Record{"id": float64(3)})}}
	svc := newService(sender)

	require.True(t, svc.OpenEdit(context.Background(), "3").OK())

	reply := svc.SaveEdit(context.Background(), types.EditRequest{FileName: "   "}, nil)
	require.False(t, reply.OK())
	assert.ErrorIs(t, reply.Err, envelope.ErrValidation)
	assert.Len(t, sender.sent, 1)
}

func TestDelete_ClosesSelection(t *testing.T) {
	sender := &fakeSender{results: []envelope.Result{ok(types.Record{"id": float64(4)}), ok()}}
	svc := newService(sender)

	require.True(t, svc.Detail(context.Background(), "4").OK())

	reply := svc.Delete(context.Background(), "4", true)
	require.True(t, reply.OK(), reply.Notice.Message)
	assert.True(t, reply.Data.Permanent)
	assert.True(t, reply.Data.SelectionClosed)
	assert.Equal(t, "image permanently deleted", reply.Notice.Message)

	env := sender.last()
	assert.Equal(t, types.OpIsDel, env.Operation)
	require.NotNil(t, env.SoftDeleteConfig)
	assert.Equal(t, types.SoftDeleteConfig{Field: "is_del", Value: "true"}, *env.SoftDeleteConfig)

	_, open := svc.Selection().Current()
	assert.False(t, open)
}

func TestDelete_ApplicationFailure(t *testing.T) {
	sender := &fakeSender{
		results: []envelope.Result{{Status: 200, Failure: envelope.KindApplication, Message: "locked"}},
		errs:    []error{&envelope.Error{Kind: envelope.KindApplication, Op: types.OpIsDel, Message: "locked"}},
	}
	svc := newService(sender)

	reply := svc.Delete(context.Background(), "8", false)
	require.False(t, reply.OK())
	assert.Equal(t, "delete image failed: locked", reply.Notice.Message)
}

func TestProbe_UpdateRequiresTarget(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender)

	reply := svc.Probe(context.Background(), types.ProbeRequest{
		FileType: "image", Operation: types.OpUpdate, Data: `{"file_name":"x"}`,
	}, nil)
	require.False(t, reply.OK())
	assert.ErrorIs(t, reply.Err, envelope.ErrValidation)
	assert.Empty(t, sender.sent)
}

func TestProbe_InvalidJSON(t *testing.T) {
	svc := newService(&fakeSender{})

	reply := svc.Probe(context.Background(), types.ProbeRequest{
		FileType: "image", Operation: types.OpCheck, Data: `{broken`,
	}, nil)
	require.False(t, reply.OK())
	assert.Contains(t, reply.Notice.Message, "invalid JSON data")
}

func TestProbe_UnknownOperation(t *testing.T) {
	svc := newService(&fakeSender{})

	reply := svc.Probe(context.Background(), types.ProbeRequest{FileType: "image", Operation: "drop"}, nil)
	require.False(t, reply.OK())
	assert.ErrorIs(t, reply.Err, envelope.ErrValidation)
}

func TestProbe_IsDelFallbackAndConfig(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender)

	reply := svc.Probe(context.Background(), types.ProbeRequest{
		FileType: "image", Operation: types.OpIsDel, Data: `{"file_name":"a","status":"active"}`,
		IsDelField: "deleted",
	}, nil)
	require.True(t, reply.OK(), reply.Notice.Message)

	env := sender.last()
	assert.Equal(t, []types.Predicate{types.Eq("file_name", "a"), types.Eq("status", "active")}, env.Where)
	assert.Equal(t, types.SoftDeleteConfig{Field: "deleted", Value: "true"}, *env.SoftDeleteConfig)
}

func TestProbe_HTTPErrorKeepsOutcome(t *testing.T) {
	sender := &fakeSender{results: []envelope.Result{{Status: http.StatusInternalServerError, Raw: "oops"}}}
	svc := newService(sender)

	reply := svc.Probe(context.Background(), types.ProbeRequest{FileType: "image", Operation: types.OpCheck}, nil)
	require.False(t, reply.OK())
	assert.Equal(t, http.StatusInternalServerError, reply.Data.Status)
	assert.Equal(t, "API test failed", reply.Notice.Message)
}

func TestProbe_TransportError(t *testing.T) {
	sender := &fakeSender{errs: []error{errors.New("connection refused")}}
	svc := newService(sender)

	reply := svc.Probe(context.Background(), types.ProbeRequest{FileType: "image", Operation: types.OpCheck}, nil)
	require.False(t, reply.OK())
	assert.Equal(t, "API request failed: connection refused", reply.Notice.Message)
}

func TestTableAdd(t *testing.T) {
	sender := &fakeSender{}
	svc := newService(sender)

	reply := svc.TableAdd(context.Background(), types.TableAddRequest{Table: "resources", Data: `{"content":"abc"}`})
	require.True(t, reply.OK(), reply.Notice.Message)

	env := sender.last()
	assert.Equal(t, "resources", env.FileType)
	assert.Regexp(t, `^test_\d+_\d+$`, env.Data[types.FieldFileSHA256])
	assert.Equal(t, "abc", env.Data[types.FieldFileContent])
	assert.NotContains(t, env.Data, "content")

	reply = svc.TableAdd(context.Background(), types.TableAddRequest{Table: "", Data: `{}`})
	require.False(t, reply.OK())
	assert.Equal(t, "table name is required", reply.Notice.Message)
}

func TestCloseSelection(t *testing.T) {
	sender := &fakeSender{results: []envelope.Result{ok(types.Record{"id": float64(1)})}}
	svc := newService(sender)

	assert.Equal(t, "nothing to close", svc.CloseSelection().Notice.Message)

	require.True(t, svc.Detail(context.Background(), "1").OK())

	reply := svc.CloseSelection()
	assert.Equal(t, "1", reply.Data.TargetID)
	assert.Equal(t, types.LevelInfo, reply.Notice.Level)
}
