//go:build !rp2040

package main

import (
	"bufio"
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/shlex"

	"dmxnode-go/bus"
	"dmxnode-go/types"
)

const startupDelay = 100 * time.Millisecond

const consoleHelp = `commands:
  set <channel> <value>          write one channel
  batch <ch=val> [ch=val ...]    write several channels atomically
  demo [moveMs [holdMs]]         start the demo with the built-in presets
  stop                           stop the demo
  help`

// Built-in demo presets for console runs: two looks a fixture can
// alternate between. pan/tilt coarse+fine, speed, then the colour bank.
var consolePresets = []types.Preset{
	{30, 0, 60, 0, 0, 255, 0, 255, 0, 0, 0},
	{200, 0, 120, 0, 0, 255, 0, 0, 0, 255, 0},
}

// startConsole reads commands from stdin and turns them into bus requests,
// so the whole node can be driven from a workstation shell.
func startConsole(ctx context.Context, conn *bus.Connection) {
	go consoleLoop(ctx, conn)
}

func consoleLoop(ctx context.Context, conn *bus.Connection) {
	sc := bufio.NewScanner(os.Stdin)
	println(consoleHelp)
	for sc.Scan() {
		args, err := shlex.Split(sc.Text())
		if err != nil {
			println("[console] parse:", err.Error())
			continue
		}
		if len(args) == 0 {
			continue
		}
		runCommand(ctx, conn, args)
	}
}

func runCommand(ctx context.Context, conn *bus.Connection, args []string) {
	switch args[0] {
	case "set":
		if len(args) != 3 {
			println("usage: set <channel> <value>")
			return
		}
		ch, err1 := strconv.ParseUint(args[1], 10, 16)
		val, err2 := strconv.ParseUint(args[2], 10, 16)
		if err1 != nil || err2 != nil {
			println("set: channel and value must be numbers")
			return
		}
		request(ctx, conn, bus.T("dmx", "ctrl", "set"),
			types.SetChannel{Channel: uint16(ch), Value: uint16(val)})

	case "batch":
		if len(args) < 2 {
			println("usage: batch <ch=val> [ch=val ...]")
			return
		}
		var pairs []types.ChannelValue
		for _, a := range args[1:] {
			ch, val, ok := splitPair(a)
			if !ok {
				println("batch: bad pair:", a)
				return
			}
			pairs = append(pairs, types.ChannelValue{Channel: ch, Value: val})
		}
		request(ctx, conn, bus.T("dmx", "ctrl", "batch"), types.SetBatch{Pairs: pairs})

	case "demo":
		start := types.DemoStart{Presets: consolePresets}
		if len(args) > 1 {
			ms, err := strconv.ParseUint(args[1], 10, 32)
			if err != nil {
				println("demo: moveMs must be a number")
				return
			}
			start.MoveDelayMs = uint32(ms)
		}
		if len(args) > 2 {
			ms, err := strconv.ParseUint(args[2], 10, 32)
			if err != nil {
				println("demo: holdMs must be a number")
				return
			}
			start.HoldTimeMs = uint32(ms)
		}
		request(ctx, conn, bus.T("dmx", "ctrl", "demo_start"), start)

	case "stop":
		request(ctx, conn, bus.T("dmx", "ctrl", "demo_stop"), types.DemoStop{})

	case "help":
		println(consoleHelp)

	default:
		println("unknown command:", args[0], "(try 'help')")
	}
}

func request(ctx context.Context, conn *bus.Connection, topic bus.Topic, payload any) {
	rctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	reply, err := conn.RequestWait(rctx, conn.NewMessage(topic, payload, false))
	if err != nil {
		println("[console] no reply:", err.Error())
		return
	}
	switch p := reply.Payload.(type) {
	case types.OKReply:
		println("ok")
	case types.ErrorReply:
		println("error:", p.Error)
	default:
		println("reply:", topicString(reply.Topic))
	}
}

func splitPair(s string) (uint16, uint16, bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 || i == len(s)-1 {
		return 0, 0, false
	}
	ch, err1 := strconv.ParseUint(s[:i], 10, 16)
	val, err2 := strconv.ParseUint(s[i+1:], 10, 16)
	if err1 != nil || err2 != nil {
		return 0, 0, false
	}
	return uint16(ch), uint16(val), true
}

func topicString(t bus.Topic) string {
	var b strings.Builder
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			b.WriteByte('/')
		}
		switch v := t.At(i).(type) {
		case string:
			b.WriteString(v)
		case int:
			b.WriteString(strconv.Itoa(v))
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
