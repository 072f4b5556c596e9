package services

import (
	"slices"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
)

const DefaultNoticeTTL = 2 * time.Second

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarn    NoticeLevel = "warn"
	NoticeError   NoticeLevel = "error"
)

// Notice is a transient message (toast). It disappears after the board's TTL.
type Notice struct {
	ID        string      `json:"id"`
	Level     NoticeLevel `json:"level"`
	Message   string      `json:"message"`
	CreatedAt time.Time   `json:"createdAt"`
	seq       uint64
}

type noticeBoard struct {
	items *cache.Cache
	seq   atomic.Uint64
}

func NewNoticeBoard(ttl time.Duration) *noticeBoard {
	if ttl <= 0 {
		ttl = DefaultNoticeTTL
	}
	return &noticeBoard{items: cache.New(ttl, 10*ttl)}
}

func (b *noticeBoard) Push(level NoticeLevel, msg string) Notice {
	seq := b.seq.Add(1)
	n := Notice{
		ID:        strconv.FormatUint(seq, 10),
		Level:     level,
		Message:   msg,
		CreatedAt: time.Now(),
		seq:       seq,
	}
	b.items.SetDefault(n.ID, n)
	return n
}

// Active returns unexpired notices, oldest first.
func (b *noticeBoard) Active() []Notice {
	items := b.items.Items()
	out := make([]Notice, 0, len(items))
	for _, it := range items {
		out = append(out, it.Object.(Notice))
	}
	slices.SortFunc(out, func(a, b Notice) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return out
}

// Latest returns the most recent unexpired notice.
func (b *noticeBoard) Latest() (Notice, bool) {
	all := b.Active()
	if len(all) == 0 {
		return Notice{}, false
	}
	return all[len(all)-1], true
}
