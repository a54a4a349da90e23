package service

import (
	"puspa_backend/internal/assessment"
	"puspa_backend/internal/config"
	"puspa_backend/pkg/logger"
	"sync/atomic"

	"go.uber.org/zap"
)

// RangeStore 历史视图与小节使用的区间表，配置热更新时整体替换
type RangeStore struct {
	v atomic.Pointer[map[string][]assessment.Range]
}

func NewRangeStore(cfg config.HistoryConfig) *RangeStore {
	r := &RangeStore{}
	r.Update(cfg)
	return r
}

func (r *RangeStore) Update(cfg config.HistoryConfig) {
	ranges := RangesFromConfig(cfg)
	r.v.Store(&ranges)
}

func (r *RangeStore) Get() map[string][]assessment.Range {
	if p := r.v.Load(); p != nil {
		return *p
	}
	return assessment.DefaultRanges()
}

// RangesFromConfig 在默认区间表上覆盖配置中出现的表，非法区间丢弃
func RangesFromConfig(cfg config.HistoryConfig) map[string][]assessment.Range {
	ranges := assessment.DefaultRanges()
	for name, list := range cfg.Ranges {
		converted := make([]assessment.Range, 0, len(list))
		for _, rc := range list {
			if rc.Key == "" || rc.Min > rc.Max {
				logger.Log.Warn("Ignoring invalid history range",
					zap.String("table", name),
					zap.String("key", rc.Key),
					zap.Int("min", rc.Min),
					zap.Int("max", rc.Max))
				continue
			}
			converted = append(converted, assessment.Range{Key: rc.Key, Title: rc.Title, Min: rc.Min, Max: rc.Max})
		}
		ranges[name] = converted
	}
	return ranges
}
