package utils

import (
	"log/slog"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

type SystemUsage struct {
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryUsedPercent float64 `json:"memory_used_percent"`
}

// GetCPUUsage returns CPU usage since the previous call as a percentage.
// It does not block; the first call after startup may report 0.
func GetCPUUsage() float64 {
	percentage, err := cpu.Percent(0, false)
	if err != nil {
		slog.Warn("read cpu usage", "error", err)
		return 0
	}
	if len(percentage) > 0 {
		return percentage[0]
	}
	return 0
}

// GetMemoryUsage returns the used share of physical memory as a percentage.
func GetMemoryUsage() float64 {
	vm, err := mem.VirtualMemory()
	if err != nil {
		slog.Warn("read memory usage", "error", err)
		return 0
	}
	return vm.UsedPercent
}

func GetSystemUsage() SystemUsage {
	return SystemUsage{
		CPUPercent:        GetCPUUsage(),
		MemoryUsedPercent: GetMemoryUsage(),
	}
}
