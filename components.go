package main

import (
	"context"
	"time"
)

// RowSet is the shape of a successful query result: how many rows came back
// and their approximate serialized size.
type RowSet struct {
	Rows  int64
	Bytes int64
}

// ContainerStats is one point-in-time reading of a target's resource
// counters. CPU and memory are gauges; block and network I/O are cumulative
// counters since process start.
type ContainerStats struct {
	CPUPercent   float64
	MemUsageMB   float64
	MemPercent   float64
	BlockReadMB  float64
	BlockWriteMB float64
	NetInMB      float64
	NetOutMB     float64
}

// StatTarget reads resource counters for one running engine, whether it lives
// in a container or in this process.
type StatTarget interface {
	Stats(ctx context.Context) (ContainerStats, error)
}

// ContainerRuntime is the container boundary: any runtime that can start a
// resource-limited instance, read its counters and remove it is
// interchangeable here.
type ContainerRuntime interface {
	Start(ctx context.Context, spec EngineSpec) (string, error)
	Remove(ctx context.Context, id string) error
	Target(id string) StatTarget
}

// Executor runs one statement against a live engine.
type Executor interface {
	Spec() EngineSpec
	Execute(ctx context.Context, query string) (RowSet, error)
	Target() StatTarget
}

// Handle is the full engine lifecycle the orchestrator drives.
type Handle interface {
	Executor
	Provision(ctx context.Context, timeout time.Duration) error
	Exec(ctx context.Context, query string, args ...any) error
	Teardown(ctx context.Context) error
	State() HandleState
}
