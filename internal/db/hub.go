package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"
)

// Table names as GORM derives them from the models
const (
	TableTasks             = "tasks"
	TableChecklistItems    = "checklist_items"
	TableWorkspaces        = "workspaces"
	TableHabits            = "habits"
	TableHabitHistories    = "habit_histories"
	TableCourses           = "courses"
	TableAttendanceRecords = "attendance_records"
)

// hub fans out "table changed" signals to subscribers. Each subscriber gets a
// channel with a buffer of one, so bursts of writes coalesce into one signal.
type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
	closed bool
}

type subscription struct {
	tables map[string]bool // empty means every table
	ch     chan struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[int]*subscription)}
}

// register hooks the hub into GORM's create, update and delete chains
func (h *hub) register(db *gorm.DB) error {
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register("tend:publish_create", h.afterWrite); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("tend:publish_update", h.afterWrite); err != nil {
		return err
	}
	return cb.Delete().After("gorm:delete").Register("tend:publish_delete", h.afterWrite)
}

// afterWrite publishes the written table, or parks it on the enclosing
// transaction until commit.
func (h *hub) afterWrite(tx *gorm.DB) {
	if tx.Error != nil || tx.Statement.Table == "" {
		return
	}
	table := tx.Statement.Table

	if ctx := tx.Statement.Context; ctx != nil {
		if pending, ok := ctx.Value(pendingKey{}).(*pendingTables); ok {
			pending.add(table)
			return
		}
	}
	h.publish(table)
}

func (h *hub) subscribe(tables ...string) (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sub := &subscription{
		tables: make(map[string]bool, len(tables)),
		ch:     make(chan struct{}, 1),
	}
	for _, t := range tables {
		sub.tables[t] = true
	}
	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub.ch)
			}
		})
	}
	return sub.ch, cancel
}

func (h *hub) publish(tables ...string) {
	if len(tables) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subs {
		if !sub.matches(tables) {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default: // a signal is already pending
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
	h.closed = true
}

func (s *subscription) matches(tables []string) bool {
	if len(s.tables) == 0 {
		return true
	}
	for _, t := range tables {
		if s.tables[t] {
			return true
		}
	}
	return false
}

type pendingKey struct{}

// pendingTables collects tables written inside a transaction
type pendingTables struct {
	mu     sync.Mutex
	tables map[string]bool
}

func (p *pendingTables) add(table string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.tables == nil {
		p.tables = make(map[string]bool)
	}
	p.tables[table] = true
}

func (p *pendingTables) list() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.tables))
	for t := range p.tables {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Subscribe returns a channel that receives a signal after every committed
// write to one of the given tables (any table when none are given). The
// channel is closed by cancel or when the store closes.
func (s *Store) Subscribe(tables ...string) (<-chan struct{}, func()) {
	return s.hub.subscribe(tables...)
}

// watch emits load's result once immediately and again after every change to
// tables, until ctx ends. Commits made through other connections to the same
// file are picked up by polling and reload the snapshot whatever table they
// touched. Load failures are logged and skipped.
func watch[T any](ctx context.Context, s *Store, load func(context.Context) (T, error), tables ...string) <-chan T {
	out := make(chan T)
	signals, cancel := s.hub.subscribe(tables...)

	go func() {
		defer close(out)
		defer cancel()

		pollCtx, stopPolling := context.WithCancel(ctx)
		defer stopPolling()
		external := s.pollExternal(pollCtx)

		for ctx.Err() == nil {
			snapshot, err := load(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.log.Warn("watch query failed", "tables", tables, "err", err)
			} else {
				select {
				case out <- snapshot:
				case <-ctx.Done():
					return
				}
			}

			select {
			case _, ok := <-signals:
				if !ok {
					return
				}
			case <-external:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

// pollExternal signals whenever another connection commits to the database.
// SQLite bumps a connection's data_version when any other connection, in this
// process or another one, commits. The poll holds one pooled connection until
// ctx ends. It returns once the starting version is read, so any commit after
// that is seen. The channel is never closed; a failed poll just stops
// signalling.
func (s *Store) pollExternal(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)
	ready := make(chan struct{})
	var once sync.Once
	markReady := func() { once.Do(func() { close(ready) }) }

	go func() {
		defer markReady()
		err := s.db.WithContext(ctx).Connection(func(conn *gorm.DB) error {
			var last int64
			err := conn.Raw("PRAGMA data_version").Scan(&last).Error
			markReady()
			if err != nil {
				return err
			}

			ticker := time.NewTicker(s.poll)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
				case <-ctx.Done():
					return nil
				}

				var version int64
				if err := conn.Raw("PRAGMA data_version").Scan(&version).Error; err != nil {
					return err
				}
				if version == last {
					continue
				}
				last = version
				select {
				case ch <- struct{}{}:
				default:
				}
			}
		})
		if err != nil && ctx.Err() == nil {
			s.log.Debug("stopped polling for external changes", "err", err)
		}
	}()

	<-ready
	return ch
}
