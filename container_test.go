package main

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDockerStats(t *testing.T) {
	output := []byte(`{"BlockIO":"1.5MB / 3MB","CPUPerc":"12.34%","Container":"abc","MemPerc":"0.71%","MemUsage":"14.2MiB / 1.944GiB","NetIO":"1.2kB / 3.4kB"}` + "\n")
	stats, err := parseDockerStats(output)
	require.Nil(t, err)

	require.InDelta(t, 12.34, stats.CPUPercent, 0.001)
	require.InDelta(t, 14.2, stats.MemUsageMB, 0.001)
	require.InDelta(t, 0.71, stats.MemPercent, 0.001)
	require.InDelta(t, 1.5*1000*1000/1024/1024, stats.BlockReadMB, 0.001)
	require.InDelta(t, 3.0*1000*1000/1024/1024, stats.BlockWriteMB, 0.001)
	require.InDelta(t, 1200.0/1024/1024, stats.NetInMB, 0.0001)
	require.InDelta(t, 3400.0/1024/1024, stats.NetOutMB, 0.0001)
}

func TestParseDockerStatsMalformed(t *testing.T) {
	_, err := parseDockerStats([]byte("not json"))
	require.NotNil(t, err)

	_, err = parseDockerStats([]byte(`{"MemUsage":"14.2MiB","NetIO":"0B / 0B","BlockIO":"0B / 0B"}`))
	require.NotNil(t, err)
}

func TestParseSizePair(t *testing.T) {
	first, second, err := parseSizePair("0B / 0B")
	require.Nil(t, err)
	require.Equal(t, float64(0), first)
	require.Equal(t, float64(0), second)

	first, second, err = parseSizePair("1MiB / 2GiB")
	require.Nil(t, err)
	require.Equal(t, float64(1), first)
	require.Equal(t, float64(2048), second)
}

func TestRemoveStopsRetryingOnCancelledContext(t *testing.T) {
	runtime := &DockerRuntime{Bin: "docker-binary-that-does-not-exist", Retries: 5}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := runtime.Remove(ctx, "abc123")
	require.NotNil(t, err)
	// no one-second backoff per remaining retry once the context is gone
	require.Less(t, time.Since(start), time.Second)
}

func TestParsePercent(t *testing.T) {
	require.Equal(t, 1.25, parsePercent("1.25%"))
	require.Equal(t, float64(0), parsePercent("--"))
	require.Equal(t, float64(0), parsePercent(""))
}
