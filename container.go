package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// DockerRuntime drives containers through the docker CLI, the same way the
// benchmark shells out for every other external tool.
type DockerRuntime struct {
	Bin     string
	Retries int
}

func NewDockerRuntime(retries int) *DockerRuntime {
	return &DockerRuntime{Bin: "docker", Retries: retries}
}

func (d *DockerRuntime) Start(ctx context.Context, spec EngineSpec) (string, error) {
	name := fmt.Sprintf("crossbench-%v-%v", spec.Name, uuid.NewString()[:8])
	args := []string{
		"run", "-d",
		"--name", name,
		"--cpus", fmt.Sprintf("%v", spec.CPUs),
		"--memory", fmt.Sprintf("%vm", spec.MemoryMB),
	}
	for key, value := range spec.Env {
		args = append(args, "-e", fmt.Sprintf("%v=%v", key, value))
	}
	for container, host := range spec.Ports {
		args = append(args, "-p", fmt.Sprintf("%v:%v", host, container))
	}
	args = append(args, fmt.Sprintf("%v:%v", spec.Image, spec.Tag))

	Logger.Infof("starting container %v for engine %v", name, spec.Name)
	output, err := exec.CommandContext(ctx, d.Bin, args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("docker run failed: err=%w, out=%v", err, string(output))
	}
	id := strings.TrimSpace(string(output))
	Logger.Infof("started container %v (%v)", name, id[:min(12, len(id))])
	return id, nil
}

// Remove is idempotent: a container that already exited or was never created
// is not an error. Real failures are retried a bounded number of times.
func (d *DockerRuntime) Remove(ctx context.Context, id string) error {
	retries := max(1, d.Retries)
	var lastErr error
	for i := 0; i < retries; i++ {
		output, err := exec.CommandContext(ctx, d.Bin, "rm", "-f", "-v", id).CombinedOutput()
		if err == nil || strings.Contains(string(output), "No such container") {
			return nil
		}
		lastErr = fmt.Errorf("docker rm failed: err=%w, out=%v", err, string(output))
		Logger.Warnf("container %v removal attempt %v/%v failed: %v", id[:min(12, len(id))], i+1, retries, lastErr)
		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(time.Second):
		}
	}
	return lastErr
}

func (d *DockerRuntime) Target(id string) StatTarget {
	return &dockerTarget{bin: d.Bin, id: id}
}

type dockerTarget struct {
	bin string
	id  string
}

// dockerStatsLine is the JSON shape of `docker stats --format {{json .}}`.
// All sizes come as human-readable pairs like "14.2MiB / 1.94GiB".
type dockerStatsLine struct {
	CPUPerc  string `json:"CPUPerc"`
	MemUsage string `json:"MemUsage"`
	MemPerc  string `json:"MemPerc"`
	NetIO    string `json:"NetIO"`
	BlockIO  string `json:"BlockIO"`
}

func (t *dockerTarget) Stats(ctx context.Context) (ContainerStats, error) {
	output, err := exec.CommandContext(ctx, t.bin, "stats", "--no-stream", "--format", "{{json .}}", t.id).Output()
	if err != nil {
		return ContainerStats{}, fmt.Errorf("docker stats failed for %v: %w", t.id, err)
	}
	return parseDockerStats(output)
}

func parseDockerStats(output []byte) (ContainerStats, error) {
	var line dockerStatsLine
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(output))), &line); err != nil {
		return ContainerStats{}, fmt.Errorf("failed to parse docker stats output %q: %w", string(output), err)
	}
	memUsed, _, err := parseSizePair(line.MemUsage)
	if err != nil {
		return ContainerStats{}, err
	}
	netIn, netOut, err := parseSizePair(line.NetIO)
	if err != nil {
		return ContainerStats{}, err
	}
	blockRead, blockWrite, err := parseSizePair(line.BlockIO)
	if err != nil {
		return ContainerStats{}, err
	}
	return ContainerStats{
		CPUPercent:   parsePercent(line.CPUPerc),
		MemUsageMB:   memUsed,
		MemPercent:   parsePercent(line.MemPerc),
		BlockReadMB:  blockRead,
		BlockWriteMB: blockWrite,
		NetInMB:      netIn,
		NetOutMB:     netOut,
	}, nil
}

// parseSizePair turns "1.2MiB / 3.4GiB" into two MB values.
func parseSizePair(pair string) (float64, float64, error) {
	parts := strings.SplitN(pair, "/", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed size pair %q", pair)
	}
	first, err := humanize.ParseBytes(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed size %q: %w", parts[0], err)
	}
	second, err := humanize.ParseBytes(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("malformed size %q: %w", parts[1], err)
	}
	return toMB(first), toMB(second), nil
}

func parsePercent(s string) float64 {
	var value float64
	fmt.Sscanf(strings.TrimSpace(s), "%f%%", &value)
	return value
}

func toMB(bytes uint64) float64 {
	return float64(bytes) / 1024 / 1024
}

// processTarget samples this process via gopsutil. Used for in-process
// engines (DuckDB) that have no container to read counters from. Per-process
// network counters are not available, those stay zero.
type processTarget struct {
	pid int32
}

func SelfTarget() StatTarget {
	return &processTarget{pid: int32(os.Getpid())}
}

func (t *processTarget) Stats(ctx context.Context) (ContainerStats, error) {
	proc, err := process.NewProcessWithContext(ctx, t.pid)
	if err != nil {
		return ContainerStats{}, fmt.Errorf("process %v vanished: %w", t.pid, err)
	}
	stats := ContainerStats{}
	if cpu, err := proc.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = cpu
	}
	if info, err := proc.MemoryInfoWithContext(ctx); err == nil {
		stats.MemUsageMB = toMB(info.RSS)
	}
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
		stats.MemPercent = stats.MemUsageMB / toMB(vm.Total) * 100
	}
	if io, err := proc.IOCountersWithContext(ctx); err == nil {
		stats.BlockReadMB = toMB(io.ReadBytes)
		stats.BlockWriteMB = toMB(io.WriteBytes)
	}
	return stats, nil
}
