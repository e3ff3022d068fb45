package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"ws-backend/runtime"

	"github.com/shirou/gopsutil/process"
)

// StatsWorker periodically logs the registry size and the process footprint.
type StatsWorker struct {
	log      *slog.Logger
	registry *runtime.Registry
	interval time.Duration
}

func NewStatsWorker(log *slog.Logger, registry *runtime.Registry, interval time.Duration) *StatsWorker {
	return &StatsWorker{log: log, registry: registry, interval: interval}
}

type SelfStats struct {
	RSS        uint64
	CPUPercent float64
}

func (w *StatsWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *StatsWorker) report(p *process.Process) {
	stats := w.registry.Stats()
	attrs := []any{
		"connections", stats.Connections,
		"rooms", stats.Rooms,
		"memberships", stats.Memberships,
	}
	self, err := getSelfStats(p)
	if err != nil {
		w.log.Debug("Failed to collect self stats", "error", err)
	} else {
		attrs = append(attrs, "rss_mb", self.RSS/1024/1024, "cpu_percent", self.CPUPercent)
	}
	w.log.Info("Server stats", attrs...)
}

func getSelfStats(p *process.Process) (SelfStats, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return SelfStats{}, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return SelfStats{}, err
	}
	return SelfStats{RSS: memInfo.RSS, CPUPercent: cpuPercent}, nil
}
