package core

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

// HostSummary holds the machine facts shown above a scan table. Zero values
// mean the fact could not be collected.
type HostSummary struct {
	OS            string
	FreeMemory    uint64
	DiskFree      uint64
	DiskTotal     uint64
	DiskMountPath string
}

// CollectHostSummary gathers OS version, reclaimable memory and free space on
// the root volume. Each probe is independent; a failing probe leaves its
// field empty.
func CollectHostSummary(ctx context.Context) HostSummary {
	s := HostSummary{DiskMountPath: "/"}

	if info, err := host.InfoWithContext(ctx); err == nil {
		s.OS = OSVersionString(info.Platform, info.PlatformVersion)
	}

	// Available already folds in inactive and speculative pages on darwin.
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		s.FreeMemory = vm.Available
	}

	if usage, err := disk.UsageWithContext(ctx, s.DiskMountPath); err == nil {
		s.DiskFree = usage.Free
		s.DiskTotal = usage.Total
	}

	return s
}

// OSVersionString returns a human-readable OS name.
// Examples: "macOS 14.5", "ubuntu 24.04"
func OSVersionString(platform, version string) string {
	name := platform
	switch platform {
	case "darwin", "macos", "macOS":
		name = "macOS"
	case "":
		name = "unknown OS"
	}
	if version == "" {
		return name
	}
	return fmt.Sprintf("%s %s", name, version)
}
