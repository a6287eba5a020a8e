package room

import (
	"context"
	"fmt"
	"time"

	"ListenTogether/logger"
	"ListenTogether/model"

	"github.com/google/uuid"
)

const (
	defaultHostName     = "Host"
	defaultListenerName = "Listener"
)

// Manager 会话生命周期管理：创建、加入、离开、结束
type Manager struct {
	store Store
	codes *CodeGenerator
	now   func() time.Time
}

// ManagerOption 配置 Manager
type ManagerOption func(*Manager)

// WithManagerClock 替换时钟，测试用
func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager 创建会话管理器，codes 为 nil 时使用默认生成器
func NewManager(store Store, codes *CodeGenerator, opts ...ManagerOption) *Manager {
	if codes == nil {
		codes = NewCodeGenerator()
	}
	m := &Manager{store: store, codes: codes, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateRequest 创建会话请求
type CreateRequest struct {
	HostID   string `json:"hostId"`
	HostName string `json:"hostName"`
	Avatar   string `json:"avatar,omitempty"`
}

// Create 创建会话，房主自动成为第一个成员
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*model.Session, error) {
	code, err := m.codes.GenerateUnique(ctx, func(ctx context.Context, code string) bool {
		return m.store.Get(ctx, code) != nil
	})
	if err != nil {
		return nil, fmt.Errorf("生成房间码失败: %w", err)
	}

	if req.HostID == "" {
		req.HostID = uuid.NewString()
	}
	if req.HostName == "" {
		req.HostName = defaultHostName
	}

	ts := m.now().UnixMilli()
	session := &model.Session{
		ID:       code,
		HostID:   req.HostID,
		HostName: req.HostName,
		Participants: []model.Participant{{
			ID:       req.HostID,
			Name:     req.HostName,
			Avatar:   req.Avatar,
			JoinedAt: ts,
			IsHost:   true,
		}},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	m.store.Set(ctx, code, session)

	logger.Info("会话创建成功",
		logger.String("sessionId", code),
		logger.String("hostId", req.HostID),
		logger.String("hostName", req.HostName))

	return session, nil
}

// JoinRequest 加入会话请求，身份由调用方提供，不做校验
type JoinRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// Join 加入会话。已在成员列表中的用户重复加入不会产生写入
func (m *Manager) Join(ctx context.Context, sessionID string, req JoinRequest) (*model.Session, *model.Participant, error) {
	if sessionID == "" {
		return nil, nil, fmt.Errorf("%w: sessionId is required", ErrBadRequest)
	}

	session := m.store.Get(ctx, sessionID)
	if session == nil {
		return nil, nil, ErrNotFound
	}

	if req.UserID != "" {
		if i := session.FindParticipant(req.UserID); i >= 0 {
			p := session.Participants[i]
			return session, &p, nil
		}
	} else {
		req.UserID = uuid.NewString()
	}
	if req.Name == "" {
		req.Name = defaultListenerName
	}

	now := m.now()
	p := model.Participant{
		ID:       req.UserID,
		Name:     req.Name,
		Avatar:   req.Avatar,
		JoinedAt: now.UnixMilli(),
	}
	session.Participants = append(session.Participants, p)
	touch(session, now)
	m.store.Set(ctx, sessionID, session)

	logger.Info("用户加入会话",
		logger.String("sessionId", sessionID),
		logger.String("userId", p.ID),
		logger.String("name", p.Name),
		logger.Int("participants", len(session.Participants)))

	return session, &p, nil
}

// Leave 离开会话。房主离开即结束会话（不支持转让），返回会话是否已结束
func (m *Manager) Leave(ctx context.Context, sessionID, userID string) (bool, error) {
	if sessionID == "" {
		return false, fmt.Errorf("%w: sessionId is required", ErrBadRequest)
	}

	session := m.store.Get(ctx, sessionID)
	if session == nil {
		return false, ErrNotFound
	}

	if userID == session.HostID {
		m.store.Delete(ctx, sessionID)
		logger.Info("房主离开，会话结束", logger.String("sessionId", sessionID))
		return true, nil
	}

	i := session.FindParticipant(userID)
	if i < 0 {
		return false, nil
	}
	session.Participants = append(session.Participants[:i], session.Participants[i+1:]...)
	touch(session, m.now())
	m.store.Set(ctx, sessionID, session)

	logger.Info("用户离开会话",
		logger.String("sessionId", sessionID),
		logger.String("userId", userID))

	return false, nil
}

// End 房主结束会话
func (m *Manager) End(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" {
		return fmt.Errorf("%w: sessionId is required", ErrBadRequest)
	}

	session := m.store.Get(ctx, sessionID)
	if session == nil {
		return ErrNotFound
	}
	if userID != session.HostID {
		return ErrForbidden
	}

	m.store.Delete(ctx, sessionID)
	logger.Info("会话已结束", logger.String("sessionId", sessionID), logger.String("hostId", userID))
	return nil
}

// List 列出所有会话，管理用途
func (m *Manager) List(ctx context.Context) []*model.Session {
	return m.store.ListAll(ctx)
}
