package room

import "errors"

// 协议层错误，原样返回给调用方
var (
	ErrNotFound   = errors.New("session not found")
	ErrForbidden  = errors.New("only the host can control playback")
	ErrBadRequest = errors.New("bad request")
)
