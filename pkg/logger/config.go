package logger

import "log/slog"

type Backend string

const (
	BackendStd Backend = "std" // text handler on stdout
	BackendZap Backend = "zap" // zap core behind a slog handler
)

type Config struct {
	// identity attrs attached to every record
	Service    string
	Version    string
	InstanceID string

	// output control
	Level   slog.Level
	Env     Env
	Backend Backend // default: zap for stage/prod, std for dev
	Debug   bool

	// zap sampling under log bursts
	SampleInitial    int
	SampleThereafter int
	SampleTick       int

	AddSource bool
}
