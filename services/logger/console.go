package logsvc

import (
	"io"
	"log"

	"github.com/trezcool/scorebook/core"
)

// ConsoleLogger only prints. It is used in debug mode and in tests.
type ConsoleLogger struct {
	std *log.Logger
}

var _ core.Logger = (*ConsoleLogger)(nil)

func NewConsoleLogger(std *log.Logger) *ConsoleLogger {
	return &ConsoleLogger{std: std}
}

// NewDiscardLogger returns a logger that prints nothing.
func NewDiscardLogger() *ConsoleLogger {
	return &ConsoleLogger{std: log.New(io.Discard, "", 0)}
}

func printArgs(std *log.Logger, msg string, args []interface{}) {
	std.Println(msg)
	for _, arg := range args {
		if arg != nil {
			std.Printf("%+v\n", arg)
		}
	}
}

func (l ConsoleLogger) Debug(msg string, args ...interface{})   { printArgs(l.std, "DEBUG: "+msg, args) }
func (l ConsoleLogger) Info(msg string, args ...interface{})    { printArgs(l.std, "INFO: "+msg, args) }
func (l ConsoleLogger) Warning(msg string, args ...interface{}) { printArgs(l.std, "WARNING: "+msg, args) }
func (l ConsoleLogger) Error(msg string, args ...interface{})   { printArgs(l.std, "ERROR: "+msg, args) }

func (l ConsoleLogger) Fatal(msg string, args ...interface{}) {
	printArgs(l.std, "FATAL: "+msg, args)
	l.std.Fatal(msg)
}
