package config

import (
	"fmt"
	"io"
	"os"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"

	clienterrors "github.com/Revolution-Populi/revpop-samples/client/errors"
)

// NewLogger builds the client logger from the log level and format settings.
// A nil writer logs to stderr.
func (c *Config) NewLogger(w io.Writer) (log.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	level := zerolog.InfoLevel
	if c.LogLevel != "" {
		parsed, err := zerolog.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, clienterrors.WrapError(err, clienterrors.ErrInvalidConfig, "log level %q", c.LogLevel)
		}
		level = parsed
	}

	opts := []log.Option{log.LevelOption(level)}
	switch c.LogFormat {
	case "", "text":
		opts = append(opts, log.ColorOption(false))
	case "json":
		opts = append(opts, log.OutputJSONOption())
	default:
		return nil, clienterrors.WrapError(fmt.Errorf("unknown format %q", c.LogFormat), clienterrors.ErrInvalidConfig, "log format")
	}

	return log.NewLogger(w, opts...), nil
}
