package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/npda-audit/platform/pkg/common/logger"
	"github.com/npda-audit/platform/pkg/common/models"
)

// ReportCache keeps assembled reports warm in Redis between submissions.
// A new active submission for the year invalidates every scope, since
// network and national roll-ups share the underlying patients.
type ReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{client: client, ttl: ttl}
}

func reportKey(auditYear int, scope models.Scope) string {
	return fmt.Sprintf("npda:report:%d:%s:%s", auditYear, scope.Level, scope.Code)
}

func (c *ReportCache) Get(ctx context.Context, auditYear int, scope models.Scope) (*models.Report, bool) {
	data, err := c.client.Get(ctx, reportKey(auditYear, scope)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.WithError(err).Warn("report cache read failed")
		}
		return nil, false
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		logger.Log.WithError(err).Warn("discarding undecodable cached report")
		return nil, false
	}
	return &report, true
}

func (c *ReportCache) Set(ctx context.Context, report *models.Report) {
	data, err := json.Marshal(report)
	if err != nil {
		logger.Log.WithError(err).Warn("report cache encode failed")
		return
	}
	key := reportKey(report.AuditYear, report.Scope)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Log.WithError(err).WithField("key", key).Warn("report cache write failed")
	}
}

// InvalidateYear drops every cached report for an audit year.
func (c *ReportCache) InvalidateYear(ctx context.Context, auditYear int) {
	pattern := fmt.Sprintf("npda:report:%d:*", auditYear)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Log.WithError(err).Warn("report cache scan failed")
		return
	}
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		logger.Log.WithError(err).Warn("report cache invalidation failed")
		return
	}
	logger.Log.WithFields(map[string]interface{}{
		"audit_year": auditYear,
		"keys":       len(keys),
	}).Info("Invalidated cached reports")
}
