package model

// Session 共享收听会话（Redis 或内存回退存储中的完整记录）
type Session struct {
	ID           string        `json:"id"`
	HostID       string        `json:"hostId"`
	HostName     string        `json:"hostName"`
	CurrentTrack *Track        `json:"currentTrack"` // nil 表示未加载歌曲
	IsPlaying    bool          `json:"isPlaying"`
	CurrentTime  float64       `json:"currentTime"` // 播放进度（秒）
	Participants []Participant `json:"participants"`
	CreatedAt    int64         `json:"createdAt"` // 时间戳毫秒
	UpdatedAt    int64         `json:"updatedAt"` // 时间戳毫秒，每次写入都会刷新
}

// Participant 会话成员，切片顺序即加入顺序
type Participant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar,omitempty"`
	JoinedAt int64  `json:"joinedAt"` // 时间戳毫秒
	IsHost   bool   `json:"isHost"`
}

// SessionView 听众轮询时返回的投影，不包含房主身份字段
type SessionView struct {
	CurrentTrack *Track        `json:"currentTrack"`
	IsPlaying    bool          `json:"isPlaying"`
	CurrentTime  float64       `json:"currentTime"`
	Participants []Participant `json:"participants"`
	UpdatedAt    int64         `json:"updatedAt"`
}

// PlaybackState 会话在动作层面观察到的状态
type PlaybackState string

const (
	StateIdle    PlaybackState = "idle"    // 未加载歌曲
	StatePaused  PlaybackState = "paused"  // 已加载，暂停
	StatePlaying PlaybackState = "playing" // 已加载，播放中
)

// State 根据当前歌曲和播放标志推导状态
func (s *Session) State() PlaybackState {
	switch {
	case s.CurrentTrack == nil:
		return StateIdle
	case s.IsPlaying:
		return StatePlaying
	default:
		return StatePaused
	}
}

// Clone 深拷贝会话，存储层返回副本以避免共享可变状态
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.CurrentTrack = s.CurrentTrack.Clone()
	if s.Participants != nil {
		c.Participants = make([]Participant, len(s.Participants))
		copy(c.Participants, s.Participants)
	}
	return &c
}

// View 生成听众投影
func (s *Session) View() *SessionView {
	participants := make([]Participant, len(s.Participants))
	copy(participants, s.Participants)
	return &SessionView{
		CurrentTrack: s.CurrentTrack.Clone(),
		IsPlaying:    s.IsPlaying,
		CurrentTime:  s.CurrentTime,
		Participants: participants,
		UpdatedAt:    s.UpdatedAt,
	}
}

// FindParticipant 按 ID 查找成员，返回下标，不存在返回 -1
func (s *Session) FindParticipant(id string) int {
	for i := range s.Participants {
		if s.Participants[i].ID == id {
			return i
		}
	}
	return -1
}
