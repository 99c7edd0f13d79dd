package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Populate embeddedConfigs at build time (e.g. via code generation) or
// manually during development.
// Key: node ID (same value placed in ctx under CtxNodeKey)
// Val: raw JSON bytes for that node
// -----------------------------------------------------------------------------

const cfgStagebar = `{
  "dmx": {
      "fixture_base": 1,
      "frame_hz": 40,
      "fade_ms": 5000
  },
  "heartbeat": {
      "interval": 5
  }
}`

var embeddedConfigs = map[string][]byte{
	"stagebar": []byte(cfgStagebar),
}
