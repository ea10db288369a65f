package logging

import (
	"io"
	stdlog "log"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger and redirects the standard library
// logger (used by gin and asynq internals) through it.
func Setup(level string, out ...io.Writer) {
	if len(out) == 0 {
		out = []io.Writer{os.Stdout}
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	writer := zerolog.ConsoleWriter{
		Out:        zerolog.MultiLevelWriter(out...),
		TimeFormat: "01-02 15:04:05",
	}
	log.Logger = zerolog.New(writer).Level(lvl).With().Timestamp().Logger()

	stdlog.SetOutput(writer)
	stdlog.SetPrefix("")
	stdlog.SetFlags(0)

	if err != nil {
		log.Warn().Str("level", level).Msg("Unknown LOG_LEVEL, falling back to info.")
	}
}
