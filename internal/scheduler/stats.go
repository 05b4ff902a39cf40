package scheduler

import (
	"sort"
	"sync"
	"time"
)

// JobStats 任务运行时状态
type JobStats struct {
	Name        string    `json:"name"`
	CronExpr    string    `json:"cron_expr"`
	Status      string    `json:"status"`      // Idle, Running, Error
	LastRunTime string    `json:"last_run"`    // 格式化后的时间
	NextRunTime string    `json:"next_run"`    // 格式化后的时间
	LastResult  string    `json:"last_result"` // 成功或错误信息
	RunCount    int64     `json:"run_count"`
	rawNext     time.Time // 用于内部计算
}

type StatManager struct {
	stats map[string]*JobStats
	mu    sync.RWMutex
}

func NewStatManager() *StatManager {
	return &StatManager{
		stats: make(map[string]*JobStats),
	}
}

func (m *StatManager) Set(name string, stat *JobStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats[name] = stat
}

// Update 在锁内原地修改任务状态，任务执行和状态接口并发读写
// 都必须走这里
func (m *StatManager) Update(name string, fn func(*JobStats)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stats[name]; ok {
		fn(s)
	}
}

// Get 返回状态副本
func (m *StatManager) Get(name string) *JobStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[name]
	if !ok {
		return nil
	}
	cp := *s
	return &cp
}

// GetAll 返回全部状态的副本，按名称排序
func (m *StatManager) GetAll() []*JobStats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*JobStats, 0, len(m.stats))
	for _, s := range m.stats {
		cp := *s
		list = append(list, &cp)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
	return list
}
