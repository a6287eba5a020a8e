package model

// Track 共享收听房间中正在播放的歌曲描述
type Track struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	ImageURL string  `json:"imageUrl"`
	AudioURL string  `json:"audioUrl"`
	Duration float64 `json:"duration"`         // 时长（秒）
	Lyrics   *string `json:"lyrics,omitempty"` // 歌词，可为空
}

// Clone 深拷贝歌曲
func (t *Track) Clone() *Track {
	if t == nil {
		return nil
	}
	c := *t
	if t.Lyrics != nil {
		lyrics := *t.Lyrics
		c.Lyrics = &lyrics
	}
	return &c
}
