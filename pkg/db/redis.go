package db

import (
	"fmt"
	"sync"

	conf "github.com/iceymoss/news-hub/pkg/config"

	"github.com/go-redis/redis/v8"
)

const NEWSHUB_RDB = "main"

var redisConn = make(map[string]*redis.Client)
var redisMutex sync.RWMutex

func GetRedisConn() *redis.Client {
	redisMutex.RLock()
	rdb, ok := redisConn[NEWSHUB_RDB]
	redisMutex.RUnlock()
	if !ok {
		redisMutex.Lock()
		defer redisMutex.Unlock()
		if rdb, ok = redisConn[NEWSHUB_RDB]; ok {
			return rdb
		}
		opt := redis.Options{
			Addr:     fmt.Sprintf("%s:%d", conf.ServiceConf.RedisDB.Host, conf.ServiceConf.RedisDB.Port),
			Password: conf.ServiceConf.RedisDB.PassWord,
			DB:       0,
		}
		rdb = redis.NewClient(&opt)
		redisConn[NEWSHUB_RDB] = rdb
	}
	return rdb
}
