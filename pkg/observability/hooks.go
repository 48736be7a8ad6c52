// Package observability carries optional event hooks.
//
// The pipeline, cache lookups and HTTP server report events to whatever
// hooks are registered; until something registers, the no-op sets are used.
// The CLI installs pipeline hooks to drive its spinner:
//
//	prev := observability.Pipeline()
//	observability.SetPipelineHooks(spinnerHooks{s})
//	defer observability.SetPipelineHooks(prev)
//
// Emitting:
//
//	observability.Pipeline().OnSheetStart(ctx, "deck")
//	// ... render ...
//	observability.Pipeline().OnSheetComplete(ctx, "deck", cells, time.Since(start), err)
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// PipelineHooks receives events from sheet builds and splits.
type PipelineHooks interface {
	OnSheetStart(ctx context.Context, sheet string)
	OnSheetComplete(ctx context.Context, sheet string, cells int, duration time.Duration, err error)

	OnSplitStart(ctx context.Context, split string, chunks int)
	OnSplitComplete(ctx context.Context, split string, tiles int, duration time.Duration, err error)
}

// CacheHooks receives events from cache lookups. keyType is "sheet",
// "split" or "tile".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// ServerHooks receives events from the HTTP surface.
type ServerHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnSheetStart(context.Context, string)                               {}
func (NoopPipelineHooks) OnSheetComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnSplitStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnSplitComplete(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopServerHooks is a no-op implementation of ServerHooks.
type NoopServerHooks struct{}

func (NoopServerHooks) OnRequest(context.Context, string, string)                      {}
func (NoopServerHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// slot holds one registered hook set, falling back to noop.
type slot[T any] struct {
	p    atomic.Pointer[T]
	noop T
}

func (s *slot[T]) get() T {
	if h := s.p.Load(); h != nil {
		return *h
	}
	return s.noop
}

func (s *slot[T]) set(h T) {
	if any(h) == nil {
		return
	}
	s.p.Store(&h)
}

var (
	pipelineSlot = slot[PipelineHooks]{noop: NoopPipelineHooks{}}
	cacheSlot    = slot[CacheHooks]{noop: NoopCacheHooks{}}
	serverSlot   = slot[ServerHooks]{noop: NoopServerHooks{}}
)

// SetPipelineHooks registers pipeline hooks. Nil is ignored.
func SetPipelineHooks(h PipelineHooks) { pipelineSlot.set(h) }

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) { cacheSlot.set(h) }

// SetServerHooks registers HTTP server hooks. Nil is ignored.
func SetServerHooks(h ServerHooks) { serverSlot.set(h) }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return pipelineSlot.get() }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return cacheSlot.get() }

// Server returns the registered server hooks.
func Server() ServerHooks { return serverSlot.get() }

// Reset restores the no-op hooks.
func Reset() {
	pipelineSlot.p.Store(nil)
	cacheSlot.p.Store(nil)
	serverSlot.p.Store(nil)
}
