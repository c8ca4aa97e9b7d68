package system

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"
)

// LogTitle tags every record with the subsystem it comes from.
type LogTitle int

const (
	LTAll LogTitle = iota
	LTBadSIPMessage
	LTConfiguration
	LTDTMF
	LTMediaCapability
	LTMediaStack
	LTPlayback
	LTRegistration
	LTRTPStack
	LTScheduler
	LTSDPStack
	LTSessionState
	LTSIPStack
	LTSystem
	LTUnhandledCritical
	LTWebserver
	LTWebSocketData
	LTNone
)

var titles = [...]string{
	LTAll:               "All",
	LTBadSIPMessage:     "BadSIPMessage",
	LTConfiguration:     "Configuration",
	LTDTMF:              "DTMF",
	LTMediaCapability:   "MediaCapability",
	LTMediaStack:        "MediaStack",
	LTPlayback:          "Playback",
	LTRegistration:      "Registration",
	LTRTPStack:          "RTPStack",
	LTScheduler:         "Scheduler",
	LTSDPStack:          "SDPStack",
	LTSessionState:      "SessionState",
	LTSIPStack:          "SIPStack",
	LTSystem:            "System",
	LTUnhandledCritical: "UnhandledCritical",
	LTWebserver:         "Webserver",
	LTWebSocketData:     "WebSocketData",
	LTNone:              "None",
}

func (lt LogTitle) String() string {
	return titles[lt]
}

// LogCallStack logs a recovered panic with the current goroutine stack.
func LogCallStack(r any) {
	buf := make([]byte, 4096)
	n := runtime.Stack(buf, false)
	LogHandler(slog.LevelError, LTUnhandledCritical, fmt.Sprintf("Panic recovered: %v", r), slog.String("stack", string(buf[:n])))
}

func LogDebug(lt LogTitle, msg string)   { LogHandler(slog.LevelDebug, lt, msg) }
func LogInfo(lt LogTitle, msg string)    { LogHandler(slog.LevelInfo, lt, msg) }
func LogWarning(lt LogTitle, msg string) { LogHandler(slog.LevelWarn, lt, msg) }
func LogError(lt LogTitle, msg string)   { LogHandler(slog.LevelError, lt, msg) }

// LogHandler records msg with the caller of the Log* helper as source.
func LogHandler(lvl slog.Level, lt LogTitle, msg string, attrs ...slog.Attr) {
	lgr := Logger()
	ctx := context.Background()
	if !lgr.Enabled(ctx, lvl) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(3, pcs[:])
	r := slog.NewRecord(time.Now(), lvl, msg, pcs[0])
	r.AddAttrs(slog.String("title", lt.String()))
	r.AddAttrs(attrs...)
	_ = lgr.Handler().Handle(ctx, r)
}
