package trend

import "time"

// 热度公式的权重和衰减窗口：
// score = views*1 + likes*3 + recencyFactor
// recencyFactor 从 10 开始随距上次浏览的小时数线性衰减到 0。
const (
	viewWeight   = 1
	likeWeight   = 3
	recencyCeil  = 10.0
	recencyHours = 10.0
)

// Score 计算热度分。纯函数，相同输入必得相同输出。
// now 早于 lastViewed（时钟漂移）时按间隔 0 处理。
func Score(views, likes int64, lastViewed, now time.Time) float64 {
	elapsed := now.Sub(lastViewed)
	if elapsed < 0 {
		elapsed = 0
	}
	hoursSince := elapsed.Hours()

	recencyFactor := recencyCeil - hoursSince*(recencyCeil/recencyHours)
	if recencyFactor < 0 {
		recencyFactor = 0
	}

	return float64(views)*viewWeight + float64(likes)*likeWeight + recencyFactor
}
