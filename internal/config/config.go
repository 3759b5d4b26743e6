package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/seantiz/linebench/internal/model"
)

const (
	defaultFileCount = 5
	defaultLineCount = 100_000
	defaultIsolation = model.IsolationActor
	defaultLogFormat = "console"

	envFileCount   = "LINEBENCH_FILE_COUNT"
	envLineCount   = "LINEBENCH_LINE_COUNT"
	envPoolSize    = "LINEBENCH_POOL_SIZE"
	envWorkDir     = "LINEBENCH_WORK_DIR"
	envKeepFiles   = "LINEBENCH_KEEP_FILES"
	envStrategies  = "LINEBENCH_STRATEGIES"
	envIsolation   = "LINEBENCH_ISOLATION"
	envMetricsAddr = "LINEBENCH_METRICS_ADDR"
	envBuffered    = "LINEBENCH_BUFFERED"
	envLogLevel    = "LINEBENCH_LOG_LEVEL"
	envLogFormat   = "LINEBENCH_LOG_FORMAT"
)

// Config holds benchmark configuration loaded from environment variables.
// A PoolSize of 0 means one pool worker per CPU. Buffered batches emitted
// lines in memory instead of issuing one write per line to stdout.
type Config struct {
	FileCount   int
	LineCount   int
	PoolSize    int
	WorkDir     string
	KeepFiles   bool
	Strategies  []string
	Isolation   string
	MetricsAddr string
	Buffered    bool
	LogLevel    zapcore.Level
	LogFormat   string
}

// Load reads configuration from environment variables with sensible defaults.
// Malformed numeric values fall back to the default.
func Load() Config {
	cfg := Config{
		FileCount:  defaultFileCount,
		LineCount:  defaultLineCount,
		PoolSize:   runtime.NumCPU(),
		Strategies: slices.Clone(model.DefaultStrategies),
		Isolation:  defaultIsolation,
		LogLevel:   zapcore.InfoLevel,
		LogFormat:  defaultLogFormat,
	}

	cfg.FileCount = intEnv(envFileCount, cfg.FileCount)
	cfg.LineCount = intEnv(envLineCount, cfg.LineCount)
	cfg.PoolSize = intEnv(envPoolSize, cfg.PoolSize)

	if v := os.Getenv(envWorkDir); v != "" {
		cfg.WorkDir = v
	}
	if v := os.Getenv(envKeepFiles); v != "" {
		keep, err := strconv.ParseBool(v)
		if err == nil {
			cfg.KeepFiles = keep
		}
	}
	if v := os.Getenv(envBuffered); v != "" {
		buffered, err := strconv.ParseBool(v)
		if err == nil {
			cfg.Buffered = buffered
		}
	}
	if v := os.Getenv(envStrategies); v != "" {
		cfg.Strategies = ParseList(v)
	}
	if v := os.Getenv(envIsolation); v != "" {
		cfg.Isolation = strings.ToLower(v)
	}
	if v := os.Getenv(envMetricsAddr); v != "" {
		cfg.MetricsAddr = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}
	if v := os.Getenv(envLogFormat); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	return cfg
}

// LoadEnvFile loads variables from a dotenv file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.FileCount < 1 {
		return fmt.Errorf("file count must be positive, got %d", c.FileCount)
	}
	if c.LineCount < 0 {
		return fmt.Errorf("line count must not be negative, got %d", c.LineCount)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("pool size must not be negative, got %d", c.PoolSize)
	}
	if c.Isolation != model.IsolationActor && c.Isolation != model.IsolationProcess {
		return fmt.Errorf("unknown isolation mode %q", c.Isolation)
	}
	if len(c.Strategies) == 0 {
		return errors.New("no strategies selected")
	}
	for _, name := range c.Strategies {
		if !slices.Contains(model.DefaultStrategies, name) {
			return fmt.Errorf("unknown strategy %q", name)
		}
	}
	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// ParseList splits a comma separated list, trimming blanks and dropping
// empty entries.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return parsed
}

func parseLogLevel(s string) zapcore.Level {
	switch strings.ToLower(s) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger creates a structured logger writing to w at the given level.
// format is either "console" or "json".
func NewLogger(w io.Writer, level zapcore.Level, format string) *zap.SugaredLogger {
	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      zapcore.OmitKey,
		FunctionKey:    zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	var encoder zapcore.Encoder
	if format == "json" {
		encoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core).Sugar()
}
