package logging

import (
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type LoggingOptions struct {
	Pretty  bool
	Verbose bool
	Writer  io.Writer
}

func SetupLogger(opts LoggingOptions) zerolog.Logger {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	out := writer
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: writer, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(level)
	log.Logger = logger

	return logger
}

// LogRuleEngineBuilt records the per-request rule engine construction (spec:
// "the rule engine is constructed per request"), mirroring the teacher's
// practice of logging expensive setup steps at debug level.
func LogRuleEngineBuilt(logger *zerolog.Logger, root string, useGitignore bool) {
	if logger == nil {
		return
	}
	logger.Debug().Str("root", root).Bool("useGitignore", useGitignore).Msg("gitignore matcher built")
}

// LogWarning surfaces a Selection Walker warning (maxDepth/maxFiles ceiling
// reached) as a structured log event rather than letting it only travel
// through the response payload.
func LogWarning(logger *zerolog.Logger, warning string) {
	if logger == nil {
		return
	}
	logger.Warn().Msg(warning)
}

// LogFileNote records a per-file outcome note emitted by the Streaming
// Exporter (file skipped or truncated under the large-file strategy).
func LogFileNote(logger *zerolog.Logger, note string) {
	if logger == nil {
		return
	}
	logger.Debug().Msg(note)
}

// LogExportComplete records the terminal summary of a runExport call, with
// the byte total rendered human-readable for console consumers.
func LogExportComplete(logger *zerolog.Logger, exportedFiles, skippedFiles int, totalBytesWritten int64) {
	if logger == nil {
		return
	}
	logger.Info().
		Int("exportedFiles", exportedFiles).
		Int("skippedFiles", skippedFiles).
		Str("totalBytesWritten", humanize.Bytes(uint64(totalBytesWritten))).
		Msg("export complete")
}
