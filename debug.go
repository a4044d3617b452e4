package hitplot

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-rebuild timing and size metrics.
// Only logged when Chart.debug is true.
type debugStats struct {
	siteTime     time.Duration
	tessTime     time.Duration
	siteCount    int
	cellCount    int
	droppedSites int
}

// debugLog writes rebuild stats to the chart logger at debug level.
func (c *Chart) debugLog(stats debugStats) {
	if !c.debug {
		return
	}
	total := stats.siteTime + stats.tessTime
	c.logger.Debug("interaction layer rebuilt",
		zap.Stringer("chart", c.id),
		zap.Duration("sites_time", stats.siteTime),
		zap.Duration("tessellate_time", stats.tessTime),
		zap.Duration("total", total),
		zap.Int("sites", stats.siteCount),
		zap.Int("cells", stats.cellCount),
		zap.Int("deduplicated", stats.droppedSites),
	)
}

// debugCheckShapes warns about shapes that will be coerced or ignored.
func (c *Chart) debugCheckShapes(shapes []Shape) {
	for i, s := range shapes {
		if !finite(s.X.Center) || !finite(s.Y.Center) {
			c.logger.Debug("non-finite shape center coerced to zero",
				zap.Int("index", i), zap.Float64("x", s.X.Center), zap.Float64("y", s.Y.Center))
		}
		if s.X.Radius < 0 || s.Y.Radius < 0 {
			c.logger.Debug("negative shape radius",
				zap.Int("index", i), zap.Float64("rx", s.X.Radius), zap.Float64("ry", s.Y.Radius))
		}
	}
}

func zapPointerKind(k PointerKind) zap.Field {
	return zap.Stringer("pointer", k)
}

func zapState(s SchedulerState) zap.Field {
	return zap.Stringer("state", s)
}
