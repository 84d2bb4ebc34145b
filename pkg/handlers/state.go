package handlers

import (
	"net/http"
	"runtime"
	"time"
)

type StateResponse struct {
	Version string      `json:"version"`
	Uptime  float64     `json:"uptime"`
	Memory  MemoryState `json:"memory"`
}

type MemoryState struct {
	HeapUsed   uint64 `json:"heapUsed"`
	HeapTotal  uint64 `json:"heapTotal"`
	Sys        uint64 `json:"sys"`
	NumGC      uint32 `json:"numGC"`
	Goroutines int    `json:"goroutines"`
}

// GetState reports version, uptime and a memory snapshot.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	setNoCacheHeaders(w)

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	JSON(w, http.StatusOK, StateResponse{
		Version: h.Config.Version,
		Uptime:  time.Since(h.StartedAt).Seconds(),
		Memory: MemoryState{
			HeapUsed:   m.HeapAlloc,
			HeapTotal:  m.HeapSys,
			Sys:        m.Sys,
			NumGC:      m.NumGC,
			Goroutines: runtime.NumGoroutine(),
		},
	})
}
