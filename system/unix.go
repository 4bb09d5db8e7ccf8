//go:build linux || darwin

package system

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"
)

// diskUsage computes usage the way df does: used blocks over the blocks
// available to unprivileged users plus used blocks.
func diskUsage(_ context.Context, path string) (float64, error) {
	var st unix.Statfs_t
	if err := unix.Statfs(path, &st); err != nil {
		return 0, err
	}

	bsize := uint64(st.Bsize)
	used := (uint64(st.Blocks) - uint64(st.Bfree)) * bsize
	avail := uint64(st.Bavail) * bsize
	if used+avail == 0 {
		return 0, fmt.Errorf("filesystem reports no capacity")
	}
	return float64(used) / float64(used+avail) * 100, nil
}
