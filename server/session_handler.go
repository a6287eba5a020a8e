package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"ListenTogether/core/room"
	"ListenTogether/logger"
	"ListenTogether/model"

	"github.com/gorilla/mux"
)

// SessionHandler 会话 HTTP 处理器
type SessionHandler struct {
	engine  *room.SyncEngine
	manager *room.Manager
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(engine *room.SyncEngine, manager *room.Manager) *SessionHandler {
	return &SessionHandler{engine: engine, manager: manager}
}

// ErrorResponse 错误响应体
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("写入响应失败", logger.ErrorField(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, &ErrorResponse{Error: msg})
}

// writeProtocolError 协议层错误映射为状态码，其余按 500 处理
func writeProtocolError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, room.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, room.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		logger.Error("处理会话请求失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// ========== 同步协议 ==========

// ActionHandler 房主动作，成功返回完整会话
func (h *SessionHandler) ActionHandler(w http.ResponseWriter, r *http.Request) {
	var req room.ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.engine.Apply(r.Context(), req)
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// StateHandler 听众轮询，响应禁止缓存
func (h *SessionHandler) StateHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	view, err := h.engine.Poll(r.Context(), r.URL.Query().Get("sessionId"))
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ========== 会话生命周期 ==========

// CreateSessionHandler 创建会话
func (h *SessionHandler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req room.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.manager.Create(r.Context(), req)
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// JoinSessionResponse 加入会话响应
type JoinSessionResponse struct {
	Session     *model.SessionView `json:"session"`
	Participant *model.Participant `json:"participant"`
}

// JoinSessionHandler 加入会话，返回投影而不是完整会话
func (h *SessionHandler) JoinSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req room.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, participant, err := h.manager.Join(r.Context(), mux.Vars(r)["session_id"], req)
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, &JoinSessionResponse{Session: session.View(), Participant: participant})
}

// LeaveSessionRequest 离开会话请求
type LeaveSessionRequest struct {
	UserID string `json:"userId"`
}

// LeaveSessionHandler 离开会话
func (h *SessionHandler) LeaveSessionHandler(w http.ResponseWriter, r *http.Request) {
	var req LeaveSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ended, err := h.manager.Leave(r.Context(), mux.Vars(r)["session_id"], req.UserID)
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ended": ended})
}

// EndSessionHandler 房主结束会话，身份通过 userId 查询参数传递
func (h *SessionHandler) EndSessionHandler(w http.ResponseWriter, r *http.Request) {
	err := h.manager.End(r.Context(), mux.Vars(r)["session_id"], r.URL.Query().Get("userId"))
	if err != nil {
		writeProtocolError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListSessionsHandler 列出所有会话，管理用途
func (h *SessionHandler) ListSessionsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, h.manager.List(r.Context()))
}

// RegisterSessionRoutes 注册会话相关路由
func RegisterSessionRoutes(router *mux.Router, handler *SessionHandler) {
	router.HandleFunc("/api/sessions/action", handler.ActionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/state", handler.StateHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions", handler.CreateSessionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions", handler.ListSessionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions/{session_id}/join", handler.JoinSessionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{session_id}/leave", handler.LeaveSessionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{session_id}", handler.EndSessionHandler).Methods(http.MethodDelete)

	logger.Info("会话API端点注册完成",
		logger.String("endpoints", "POST /api/sessions/action, GET /api/sessions/state, POST /api/sessions, GET /api/sessions, POST /api/sessions/{id}/join, POST /api/sessions/{id}/leave, DELETE /api/sessions/{id}"))
}
