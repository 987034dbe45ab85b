package grebe

import (
	"github.com/grebekit/grebe/internal/logger"
)

func UseColorLogger(p logger.Printer, printDebug bool) OptionFunc {
	return func(o *Orchestrator) error {
		o.lg = logger.NewColorLogger(p, printDebug)
		return nil
	}
}

func UseLogger(p logger.Printer, printDebug bool) OptionFunc {
	return func(o *Orchestrator) error {
		o.lg = logger.NewBWLogger(p, printDebug)
		return nil
	}
}
