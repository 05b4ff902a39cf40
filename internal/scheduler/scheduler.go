package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// JobFunc 一次任务执行，返回处理的条数。
// 任务失败只记录不重试，下一个调度周期自然会再跑；
// 三个内置任务（热度刷新、点赞同步、孤儿清理）都是幂等的，
// 并发或重叠执行不会破坏数据。
type JobFunc func(ctx context.Context) (int, error)

// Job 一个定时任务
type Job struct {
	Name string
	Cron string // cron 表达式，如 "@every 1h"
	Run  JobFunc
}

// Scheduler 进程级的周期任务调度器
type Scheduler struct {
	cron       *cron.Cron
	Stats      *StatManager
	registered map[string]*Job

	startupDelay time.Duration
	startupJobs  []string
	startupTimer *time.Timer

	jobTimeout time.Duration
}

func New(startupDelay time.Duration) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		Stats:        NewStatManager(),
		registered:   make(map[string]*Job),
		startupDelay: startupDelay,
		jobTimeout:   10 * time.Minute,
	}
}

// AddJob 添加任务
func (s *Scheduler) AddJob(job *Job) error {
	// 初始化状态
	s.Stats.Set(job.Name, &JobStats{
		Name:       job.Name,
		CronExpr:   job.Cron,
		Status:     "Idle",
		LastResult: "Pending",
	})

	// 保存引用以便手动触发
	s.registered[job.Name] = job

	// 包装执行逻辑
	wrapper := func() {
		s.runJobWithStats(job)
	}

	entryID, err := s.cron.AddFunc(job.Cron, wrapper)
	if err == nil {
		next := s.cron.Entry(entryID).Next
		s.Stats.Update(job.Name, func(stat *JobStats) {
			stat.rawNext = next
			stat.NextRunTime = next.Format("2006-01-02 15:04:05")
		})
	}
	return err
}

// RunAtStartup 进程启动后延迟一段时间按序跑一遍指定任务，
// 给存储连接留出建立时间
func (s *Scheduler) RunAtStartup(names ...string) {
	s.startupJobs = append(s.startupJobs, names...)
}

// runJobWithStats 执行并记录状态
func (s *Scheduler) runJobWithStats(job *Job) {
	// 更新开始状态
	s.Stats.Update(job.Name, func(stat *JobStats) {
		stat.Status = "Running"
		stat.LastRunTime = time.Now().Format("2006-01-02 15:04:05")
		stat.RunCount++
	})

	log.Printf("🚀 [Schedule] Starting job: %s", job.Name)

	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	count, err := job.Run(ctx)

	// 更新结束状态
	if err != nil {
		s.Stats.Update(job.Name, func(stat *JobStats) {
			stat.LastResult = fmt.Sprintf("Error: %v", err)
			stat.Status = "Error"
		})
		log.Printf("❌ [Schedule] Job failed: %s, err: %v", job.Name, err)
	} else {
		s.Stats.Update(job.Name, func(stat *JobStats) {
			stat.LastResult = fmt.Sprintf("Success (%d processed)", count)
			stat.Status = "Idle"
		})
		log.Printf("✅ [Schedule] Job finished: %s, processed: %d", job.Name, count)
	}
}

// ManualRun 手动触发
func (s *Scheduler) ManualRun(name string) error {
	job, ok := s.registered[name]
	if !ok {
		return fmt.Errorf("job not found")
	}
	go s.runJobWithStats(job)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()

	if len(s.startupJobs) > 0 {
		s.startupTimer = time.AfterFunc(s.startupDelay, func() {
			for _, name := range s.startupJobs {
				if job, ok := s.registered[name]; ok {
					s.runJobWithStats(job)
				}
			}
		})
	}
}

func (s *Scheduler) Stop() {
	if s.startupTimer != nil {
		s.startupTimer.Stop()
	}
	s.cron.Stop()
}
