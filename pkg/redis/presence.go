package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// 在线状态相关常量
const (
	PresenceKeyPrefix = keyPrefix + "presence:user:" // 用户在线状态key前缀
	OnlineUsersKey    = keyPrefix + "online:users"   // 在线用户集合key
	PresenceTTL       = 2 * time.Minute              // 在线状态TTL（约两个心跳周期）
)

// PresenceData 在线状态数据
type PresenceData struct {
	UserID   uint      `json:"user_id"`
	LastSeen time.Time `json:"last_seen"`
}

// Presence 记录WebSocket连接的在线状态，rdb 为 nil 时所有操作为空
type Presence struct {
	rdb *redis.Client
}

// NewPresence 创建在线状态存储
func NewPresence(rdb *redis.Client) *Presence {
	return &Presence{rdb: rdb}
}

// SetOnline 标记用户在线
func (p *Presence) SetOnline(ctx context.Context, userID uint) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	data, err := json.Marshal(PresenceData{UserID: userID, LastSeen: time.Now()})
	if err != nil {
		return fmt.Errorf("序列化在线状态失败: %w", err)
	}

	pipe := p.rdb.TxPipeline()
	pipe.Set(ctx, presenceKey(userID), data, PresenceTTL)
	pipe.SAdd(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("设置用户在线状态失败: %w", err)
	}
	return nil
}

// SetOffline 移除用户在线状态
func (p *Presence) SetOffline(ctx context.Context, userID uint) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	pipe := p.rdb.TxPipeline()
	pipe.Del(ctx, presenceKey(userID))
	pipe.SRem(ctx, OnlineUsersKey, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("删除用户在线状态失败: %w", err)
	}
	return nil
}

// Refresh 心跳时延长TTL
func (p *Presence) Refresh(ctx context.Context, userID uint) error {
	if p == nil || p.rdb == nil {
		return nil
	}
	ok, err := p.rdb.Expire(ctx, presenceKey(userID), PresenceTTL).Result()
	if err != nil {
		return fmt.Errorf("刷新用户在线状态失败: %w", err)
	}
	if !ok {
		// key 已过期，重新写入
		return p.SetOnline(ctx, userID)
	}
	return nil
}

// IsOnline 检查用户是否在线
func (p *Presence) IsOnline(ctx context.Context, userID uint) (bool, error) {
	if p == nil || p.rdb == nil {
		return false, nil
	}
	n, err := p.rdb.Exists(ctx, presenceKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("检查用户在线状态失败: %w", err)
	}
	return n > 0, nil
}

// OnlineUsers 获取在线用户ID列表
func (p *Presence) OnlineUsers(ctx context.Context) ([]uint, error) {
	if p == nil || p.rdb == nil {
		return nil, nil
	}
	members, err := p.rdb.SMembers(ctx, OnlineUsersKey).Result()
	if err != nil {
		return nil, fmt.Errorf("获取在线用户列表失败: %w", err)
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		if id, err := strconv.ParseUint(m, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}

// CleanExpired 从在线集合中移除状态key已过期的用户（定时任务调用），返回移除数量
func (p *Presence) CleanExpired(ctx context.Context) (int, error) {
	ids, err := p.OnlineUsers(ctx)
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, id := range ids {
		online, err := p.IsOnline(ctx, id)
		if err != nil {
			continue
		}
		if !online {
			if err := p.rdb.SRem(ctx, OnlineUsersKey, id).Err(); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}

func presenceKey(userID uint) string {
	return fmt.Sprintf("%s%d", PresenceKeyPrefix, userID)
}
