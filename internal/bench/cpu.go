package bench

import (
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// CPUSampler returns the cumulative user and system CPU time of the process.
type CPUSampler func() (user, system time.Duration, err error)

// ProcessCPU samples the CPU times of the running process.
func ProcessCPU() CPUSampler {
	pid := int32(os.Getpid())
	return func() (time.Duration, time.Duration, error) {
		p, err := process.NewProcess(pid)
		if err != nil {
			return 0, 0, fmt.Errorf("open process %d: %w", pid, err)
		}
		times, err := p.Times()
		if err != nil {
			return 0, 0, fmt.Errorf("cpu times: %w", err)
		}
		return seconds(times.User), seconds(times.System), nil
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
