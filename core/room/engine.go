package room

import (
	"context"
	"fmt"
	"time"

	"ListenTogether/logger"
	"ListenTogether/metrics"
	"ListenTogether/model"
)

// ActionType 房主动作类型
type ActionType string

const (
	ActionPlay        ActionType = "play"
	ActionPause       ActionType = "pause"
	ActionSeek        ActionType = "seek"
	ActionChangeTrack ActionType = "change_track"
	ActionUpdateTime  ActionType = "update_time"
)

// ActionPayload 动作参数，字段均可缺省
type ActionPayload struct {
	Time  *float64     `json:"time,omitempty"`
	Track *model.Track `json:"track,omitempty"`
}

// ActionRequest 房主动作请求
type ActionRequest struct {
	SessionID string         `json:"sessionId"`
	UserID    string         `json:"userId"`
	Action    ActionType     `json:"action"`
	Payload   *ActionPayload `json:"payload,omitempty"`
}

// Store SyncEngine 依赖的会话存储，cache.SessionStore 满足该接口
type Store interface {
	Get(ctx context.Context, id string) *model.Session
	Set(ctx context.Context, id string, session *model.Session)
	Delete(ctx context.Context, id string) bool
	ListAll(ctx context.Context) []*model.Session
}

// SyncEngine 会话播放状态机。
// 每个动作只做一次读取和至多一次整条写回，不加锁，并发写入时后写者覆盖先写者。
type SyncEngine struct {
	store Store
	now   func() time.Time
}

// EngineOption 配置 SyncEngine
type EngineOption func(*SyncEngine)

// WithEngineClock 替换时钟，测试用
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *SyncEngine) {
		e.now = now
	}
}

// NewSyncEngine 创建同步引擎
func NewSyncEngine(store Store, opts ...EngineOption) *SyncEngine {
	e := &SyncEngine{store: store, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// touch 刷新 updatedAt，保证同一会话的 updatedAt 不倒退
func touch(session *model.Session, now time.Time) {
	ts := now.UnixMilli()
	if ts > session.UpdatedAt {
		session.UpdatedAt = ts
	}
}

// Apply 校验房主身份并应用动作，成功后整条写回并返回更新后的会话
func (e *SyncEngine) Apply(ctx context.Context, req ActionRequest) (*model.Session, error) {
	if req.SessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", ErrBadRequest)
	}

	session := e.store.Get(ctx, req.SessionID)
	if session == nil {
		metrics.ActionsTotal.WithLabelValues(actionLabel(req.Action), "not_found").Inc()
		return nil, ErrNotFound
	}

	// 非房主不修改也不回写
	if req.UserID != session.HostID {
		metrics.ActionsTotal.WithLabelValues(actionLabel(req.Action), "forbidden").Inc()
		logger.Warn("非房主尝试控制播放",
			logger.String("sessionId", req.SessionID),
			logger.String("userId", req.UserID),
			logger.String("action", string(req.Action)),
			logger.Any("payload", req.Payload))
		return nil, ErrForbidden
	}

	applyAction(session, req.Action, req.Payload)
	touch(session, e.now())
	e.store.Set(ctx, req.SessionID, session)

	metrics.ActionsTotal.WithLabelValues(actionLabel(req.Action), "ok").Inc()
	logger.Debug("播放动作已应用",
		logger.String("sessionId", req.SessionID),
		logger.String("action", string(req.Action)),
		logger.String("state", string(session.State())),
		logger.Bool("isPlaying", session.IsPlaying),
		logger.Float64("currentTime", session.CurrentTime),
		logger.Int64("updatedAt", session.UpdatedAt))

	return session, nil
}

// actionLabel 未知动作统一记为 unknown，避免指标标签无限增长
func actionLabel(action ActionType) string {
	switch action {
	case ActionPlay, ActionPause, ActionSeek, ActionChangeTrack, ActionUpdateTime:
		return string(action)
	default:
		return "unknown"
	}
}

// applyAction 纯状态转移。未知动作不改变状态，但调用方仍会回写以刷新 updatedAt
func applyAction(session *model.Session, action ActionType, payload *ActionPayload) {
	if payload == nil {
		payload = &ActionPayload{}
	}

	switch action {
	case ActionPlay:
		session.IsPlaying = true
		if payload.Time != nil {
			session.CurrentTime = *payload.Time
		}
	case ActionPause:
		session.IsPlaying = false
		if payload.Time != nil {
			session.CurrentTime = *payload.Time
		}
	case ActionSeek, ActionUpdateTime:
		if payload.Time != nil {
			session.CurrentTime = *payload.Time
		}
	case ActionChangeTrack:
		if payload.Track != nil {
			session.CurrentTrack = payload.Track.Clone()
			session.CurrentTime = 0
			session.IsPlaying = true
		}
	}
}

// Poll 听众轮询，返回不含房主身份的投影
func (e *SyncEngine) Poll(ctx context.Context, sessionID string) (*model.SessionView, error) {
	if sessionID == "" {
		metrics.PollsTotal.WithLabelValues("bad_request").Inc()
		return nil, fmt.Errorf("%w: sessionId is required", ErrBadRequest)
	}

	session := e.store.Get(ctx, sessionID)
	if session == nil {
		metrics.PollsTotal.WithLabelValues("not_found").Inc()
		return nil, ErrNotFound
	}

	metrics.PollsTotal.WithLabelValues("ok").Inc()
	return session.View(), nil
}
