//go:build !linux && !darwin

package system

import (
	"context"

	"github.com/shirou/gopsutil/v4/disk"
)

func diskUsage(ctx context.Context, path string) (float64, error) {
	u, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return 0, err
	}
	return u.UsedPercent, nil
}
