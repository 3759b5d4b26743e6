// Package hostinfo describes the machine a benchmark runs on.
package hostinfo

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Info is a snapshot of the host.
type Info struct {
	Arch            string  `json:"arch"`
	OS              string  `json:"os"`
	Hostname        string  `json:"hostname"`
	Platform        string  `json:"platform"`
	PlatformVersion string  `json:"platform_version"`
	CPUModel        string  `json:"cpu_model"`
	CPUCount        int     `json:"cpu_count"`
	CPUFreqMHz      float64 `json:"cpu_freq_mhz"`
	RAMGiB          float64 `json:"ram_gib"`
	GoVersion       string  `json:"go_version"`
	GOMAXPROCS      int     `json:"gomaxprocs"`
}

// Collect gathers host information. Lookups that fail leave their fields
// zeroed; their errors are joined into the returned error alongside the
// partial Info.
func Collect(ctx context.Context) (Info, error) {
	info := Info{
		Arch:       runtime.GOARCH,
		OS:         runtime.GOOS,
		CPUCount:   runtime.NumCPU(),
		GoVersion:  runtime.Version(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
	}

	var errs []error
	if hostStat, err := host.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("host info: %w", err))
	} else {
		info.Hostname = hostStat.Hostname
		info.Platform = hostStat.Platform
		info.PlatformVersion = hostStat.PlatformVersion
	}

	if cpuStat, err := cpu.InfoWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("cpu info: %w", err))
	} else if len(cpuStat) > 0 {
		totalFreq := 0.0
		for _, c := range cpuStat {
			totalFreq += c.Mhz
		}
		info.CPUModel = cpuStat[0].ModelName
		info.CPUFreqMHz = totalFreq / float64(len(cpuStat))
	}

	if vmStat, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		errs = append(errs, fmt.Errorf("memory info: %w", err))
	} else {
		info.RAMGiB = float64(vmStat.Total) / 1024 / 1024 / 1024
	}

	return info, errors.Join(errs...)
}

// Fields returns the info as alternating keys and values for structured
// logging.
func (i Info) Fields() []any {
	return []any{
		"arch", i.Arch,
		"os", i.OS,
		"hostname", i.Hostname,
		"platform", i.Platform,
		"platform_version", i.PlatformVersion,
		"cpu_model", i.CPUModel,
		"cpu_count", i.CPUCount,
		"cpu_freq_mhz", i.CPUFreqMHz,
		"ram_gib", fmt.Sprintf("%.1f", i.RAMGiB),
		"go_version", i.GoVersion,
		"gomaxprocs", i.GOMAXPROCS,
	}
}
