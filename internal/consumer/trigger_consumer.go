// Package consumer drives ingestion from the trigger stream: one message per
// "data changed for user" notification, payload a decimal user id.
package consumer

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/liftlog/coach/internal/config"
)

type Ingestor interface {
	ProcessUser(ctx context.Context, userID int64) error
}

// TriggerConsumer reads the stream through a durable consumer group, so
// delivery is at-least-once and offsets survive restarts. Messages are acked
// only after processing: a crash mid-pipeline redelivers the trigger, which
// is safe because ingestion is idempotent. A pipeline failure is logged and
// the message is acked anyway - redelivery of poison events is not this
// worker's job.
type TriggerConsumer struct {
	rdb      *redis.Client
	cfg      config.TriggerConfig
	ingestor Ingestor
}

func NewTriggerConsumer(cfg config.TriggerConfig, ingestor Ingestor) (*TriggerConsumer, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		DialTimeout: 5 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &TriggerConsumer{rdb: rdb, cfg: cfg, ingestor: ingestor}, nil
}

// Run blocks until ctx is cancelled, processing triggers strictly one at a
// time. One consumer loop means two batches for the same user can never be in
// flight concurrently.
func (c *TriggerConsumer) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx).With(
		zap.String("stream", c.cfg.Stream),
		zap.String("group", c.cfg.Group),
	)
	err := c.rdb.XGroupCreateMkStream(ctx, c.cfg.Stream, c.cfg.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("create consumer group: %w", err)
	}
	logger.Info("trigger consumer started", zap.String("consumer", c.cfg.Consumer))

	block := time.Duration(c.cfg.BlockMS) * time.Millisecond
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		streams, err := c.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.cfg.Group,
			Consumer: c.cfg.Consumer,
			Streams:  []string{c.cfg.Stream, ">"},
			Count:    1,
			Block:    block,
		}).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("read trigger stream failed", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				c.handle(ctx, msg)
			}
		}
	}
}

func (c *TriggerConsumer) handle(ctx context.Context, msg redis.XMessage) {
	logger := logutil.GetLogger(ctx).With(zap.String("message_id", msg.ID))
	userID, err := ParseTrigger(msg.Values)
	if err != nil {
		logger.Warn("dropping malformed trigger", zap.Error(err))
		c.ack(ctx, msg.ID)
		return
	}
	logger.Info("trigger received", zap.Int64("user_id", userID))
	if err := c.ingestor.ProcessUser(ctx, userID); err != nil {
		logger.Error("embedding pipeline failed, dropping trigger",
			zap.Int64("user_id", userID), zap.Error(err))
	} else {
		logger.Info("embedding pipeline finished", zap.Int64("user_id", userID))
	}
	c.ack(ctx, msg.ID)
}

func (c *TriggerConsumer) ack(ctx context.Context, id string) {
	if err := c.rdb.XAck(ctx, c.cfg.Stream, c.cfg.Group, id).Err(); err != nil {
		logutil.GetLogger(ctx).Error("ack trigger failed", zap.String("message_id", id), zap.Error(err))
	}
}

// ParseTrigger extracts the user id from a trigger message: the value of the
// user_id field, or the sole value when the producer used another field name.
func ParseTrigger(values map[string]interface{}) (int64, error) {
	raw, ok := values["user_id"]
	if !ok && len(values) == 1 {
		for _, v := range values {
			raw = v
		}
		ok = true
	}
	if !ok {
		return 0, fmt.Errorf("trigger has no user_id field")
	}
	text, ok := raw.(string)
	if !ok {
		return 0, fmt.Errorf("trigger user_id is not a string: %T", raw)
	}
	userID, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("trigger user_id %q is not numeric", text)
	}
	return userID, nil
}

func (c *TriggerConsumer) Close() error {
	return c.rdb.Close()
}
