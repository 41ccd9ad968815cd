package observability

import (
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// RecoverPanic recovers from a panic and logs it with the stack trace.
// Meant for defer statements in background goroutines (cron jobs, cache
// warmers) where a panic would otherwise kill the process. The panic is not
// re-raised.
func RecoverPanic(where string) {
	if r := recover(); r != nil {
		logrus.WithFields(logrus.Fields{
			"panic": r,
			"stack": string(debug.Stack()),
			"where": where,
		}).Error("panic recovered")
	}
}
