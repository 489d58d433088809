package observability

import (
	"log"
	"os"
)

// Logger is the small leveled logger injected into services. Failures that
// are deliberately swallowed (auto-rejection evaluation, notification
// fan-out) go through Error so the swallow is still visible in the output.
type Logger struct {
	info *log.Logger
	err  *log.Logger
}

func NewLogger() *Logger {
	return &Logger{
		info: log.New(os.Stdout, "INFO ", log.LstdFlags|log.LUTC),
		err:  log.New(os.Stderr, "ERROR ", log.LstdFlags|log.LUTC),
	}
}

func (l *Logger) Info(msg string) {
	if l == nil {
		return
	}
	l.info.Println(msg)
}

func (l *Logger) Error(msg string) {
	if l == nil {
		return
	}
	l.err.Println(msg)
}
