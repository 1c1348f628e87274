package types

import (
	"go.uber.org/zap"
)

// Logger wraps a named zap sugared logger.
type Logger struct {
	*zap.SugaredLogger
	LogsPath string
	Name     string
}
