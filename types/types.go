package types

// ------------------------
// Generic replies
// ------------------------

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ------------------------
// Node state (retained)
// ------------------------

type NodeState struct {
	Level  string `json:"level"`  // "idle", "ready", "stopped"
	Status string `json:"status"` // freeform short code
	TSms   int64  `json:"ts_ms"`
}

// FrameStats is published retained at a coarse decimation of the frame rate.
type FrameStats struct {
	Frames uint32 `json:"frames"`
	TSms   int64  `json:"ts_ms"`
}

// DemoState mirrors the sequencer's activity for observers.
type DemoState struct {
	Active bool  `json:"active"`
	Preset int   `json:"preset"` // index currently shown/targeted, -1 when idle
	TSms   int64 `json:"ts_ms"`
}
