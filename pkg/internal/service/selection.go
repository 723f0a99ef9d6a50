package service

import (
	crand "crypto/rand"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid"

	nlog "github.com/yeisme/storeclient/pkg/log"
)

var (
	// ErrStaleTarget 响应返回时当前目标已经切换，结果被丢弃.
	ErrStaleTarget = errors.New("selection changed while the request was in flight")
	// ErrNoSelection 没有打开的详情或编辑目标.
	ErrNoSelection = errors.New("no image selected")
)

// Purpose 打开目标的用途.
type Purpose string

const (
	PurposeDetail Purpose = "detail"
	PurposeEdit   Purpose = "edit"
)

// WorkflowContext 一次打开操作的不可变上下文. 每次打开生成新的 Token.
type WorkflowContext struct {
	Token    ulid.ULID `json:"token"`
	TargetID string    `json:"target_id"`
	Purpose  Purpose   `json:"purpose"`
	OpenedAt time.Time `json:"opened_at"`
}

// Selection 唯一的当前目标槽位，后打开者覆盖先打开者.
type Selection struct {
	mu      sync.Mutex
	current *WorkflowContext
	entropy io.Reader
	now     func() time.Time
}

// NewSelection 创建空槽位.
func NewSelection() *Selection {
	return &Selection{
		entropy: ulid.Monotonic(crand.Reader, 0),
		now:     time.Now,
	}
}

// Open 以新的上下文替换当前目标并返回该上下文.
func (s *Selection) Open(targetID string, purpose Purpose) WorkflowContext {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	wc := WorkflowContext{
		Token:    ulid.MustNew(ulid.Timestamp(now), s.entropy),
		TargetID: targetID,
		Purpose:  purpose,
		OpenedAt: now,
	}

	event := nlog.Logger().Info().Str("target_id", targetID).Str("purpose", string(purpose)).Str("token", wc.Token.String())
	if s.current != nil {
		event = event.Str("replaced_target_id", s.current.TargetID)
	}

	event.Msg("selection opened")

	s.current = &wc

	return wc
}

// Current 返回当前上下文.
func (s *Selection) Current() (WorkflowContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return WorkflowContext{}, false
	}

	return *s.current, true
}

// IsCurrent 判断 wc 是否仍是当前上下文.
func (s *Selection) IsCurrent(wc WorkflowContext) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current != nil && s.current.Token == wc.Token
}

// Close 清空槽位，返回被关闭的上下文.
func (s *Selection) Close() (WorkflowContext, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closeLocked()
}

// CloseTarget 仅当当前目标为 targetID 时清空槽位.
func (s *Selection) CloseTarget(targetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.TargetID != targetID {
		return false
	}

	_, ok := s.closeLocked()

	return ok
}

func (s *Selection) closeLocked() (WorkflowContext, bool) {
	if s.current == nil {
		return WorkflowContext{}, false
	}

	wc := *s.current
	s.current = nil

	nlog.Logger().Info().Str("target_id", wc.TargetID).Str("token", wc.Token.String()).Msg("selection closed")

	return wc, true
}
