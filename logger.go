package reactor

import (
	"github.com/flowcell-dev/reactor/internal/graph"
	"github.com/sirupsen/logrus"
)

// NewLogrusLogger returns a graph.Logger backed by a fresh *logrus.Logger,
// for callers who want structured compute/listener-panic diagnostics
// without building their own adapter — *logrus.Logger already satisfies
// Debugf/Warnf, so this is just a convenient default.
func NewLogrusLogger() graph.Logger {
	return logrus.New()
}
