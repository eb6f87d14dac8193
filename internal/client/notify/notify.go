// Package notify は画面上の一時通知を管理します。
// 各通知は表示から一定時間（既定5秒）で自動的に消えます。
// キューイングや重複排除は行わず、複数の通知は独立して共存します。
package notify

import (
	"sort"
	"sync"
	"time"
)

// DefaultDismissAfter は通知が自動的に消えるまでの既定時間です。
const DefaultDismissAfter = 5 * time.Second

// Center manages transient notifications. Safe for concurrent use.
type Center struct {
	mu           sync.Mutex
	dismissAfter time.Duration
	nextID       int
	active       map[int]string
	sink         func(message string) // optional: receives each shown message
}

// Option configures a Center.
type Option func(*Center)

// WithDismissAfter overrides the auto-dismiss delay. Used by tests.
func WithDismissAfter(d time.Duration) Option {
	return func(c *Center) {
		if d > 0 {
			c.dismissAfter = d
		}
	}
}

// WithSink registers a callback invoked for every shown message.
func WithSink(sink func(message string)) Option {
	return func(c *Center) {
		c.sink = sink
	}
}

// NewCenter はCenterの新しいインスタンスを生成します。
func NewCenter(opts ...Option) *Center {
	c := &Center{
		dismissAfter: DefaultDismissAfter,
		active:       map[int]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notify は通知を表示し、自動消去タイマーを開始します。
// 同一メッセージでも毎回独立した通知として表示されます。
func (c *Center) Notify(message string) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.active[id] = message
	sink := c.sink
	c.mu.Unlock()

	if sink != nil {
		sink(message)
	}

	time.AfterFunc(c.dismissAfter, func() {
		c.mu.Lock()
		delete(c.active, id)
		c.mu.Unlock()
	})
}

// Visible は現在表示中の通知メッセージを表示順で返します。
func (c *Center) Visible() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]int, 0, len(c.active))
	for id := range c.active {
		ids = append(ids, id)
	}
	// mapの走査順は不定なのでIDでソートして表示順を復元する
	sort.Ints(ids)

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.active[id])
	}
	return out
}
