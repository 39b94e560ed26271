package utils

import (
	"io"

	"github.com/MrSnakeDoc/rainbow/internal/logger"
)

// Close closes c and ignores any error.
// Use for best-effort cleanup in defer where error handling is not critical.
func Close(c io.Closer) {
	_ = c.Close()
}

// CloseLogged closes c and logs a failure under what.
func CloseLogged(c io.Closer, log logger.Logger, what string) error {
	err := c.Close()
	if err != nil {
		log.Warn("failed to close", logger.String("what", what), logger.Error(err))
	}
	return err
}
