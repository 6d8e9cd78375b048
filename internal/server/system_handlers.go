package server

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/veritaslabs/veritas/internal/database"
	"github.com/veritaslabs/veritas/internal/scheduler"
)

// SystemHandlers serves system monitoring endpoints.
type SystemHandlers struct {
	log           zerolog.Logger
	statementsDB  *database.DB
	assessmentsDB *database.DB
	sched         *scheduler.Scheduler
}

// NewSystemHandlers creates the system monitoring handlers. The scheduler
// may be nil when background monitoring is disabled.
func NewSystemHandlers(log zerolog.Logger, statementsDB, assessmentsDB *database.DB, sched *scheduler.Scheduler) *SystemHandlers {
	return &SystemHandlers{
		log:           log.With().Str("handler", "system").Logger(),
		statementsDB:  statementsDB,
		assessmentsDB: assessmentsDB,
		sched:         sched,
	}
}

// HandleSystemHealth handles GET /api/system/health
func (h *SystemHandlers) HandleSystemHealth(w http.ResponseWriter, r *http.Request) {
	cpuAvg, ramPct := h.systemStats()

	writeData(h.log, w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"cpu_percent": cpuAvg,
		"ram_percent": ramPct,
		"goroutines":  runtime.NumGoroutine(),
		"databases": map[string]interface{}{
			"statements":  h.databaseStats(h.statementsDB),
			"assessments": h.databaseStats(h.assessmentsDB),
		},
	})
}

// HandleJobsStatus handles GET /api/system/jobs
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	jobs := []string{}
	if h.sched != nil {
		jobs = h.sched.Jobs()
	}

	writeData(h.log, w, http.StatusOK, map[string]interface{}{
		"scheduler_enabled": h.sched != nil,
		"jobs":              jobs,
	})
}

// systemStats returns CPU and RAM usage percentages. The CPU sample uses a
// 100ms window to keep the endpoint fast.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}
	return cpuAvg, memStat.UsedPercent
}

// databaseStats reports reachability and on-disk size for one database.
func (h *SystemHandlers) databaseStats(db *database.DB) map[string]interface{} {
	if db == nil {
		return map[string]interface{}{"status": "not configured"}
	}

	stats := map[string]interface{}{
		"path":   db.Path(),
		"status": "ok",
	}
	if err := db.Conn().Ping(); err != nil {
		stats["status"] = "unreachable"
		return stats
	}
	if info, err := os.Stat(db.Path()); err == nil {
		stats["size_mb"] = float64(info.Size()) / 1024 / 1024
	}
	return stats
}
