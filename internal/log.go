package internal

import "os"

// globalLogger is the logger used by the package-level log function.
var globalLogger *Logger

// logInit initializes the global logger with the specified output function.
// If outputFunc is nil, messages go to the console.
func logInit(outputFunc func(msg string)) {
	globalLogger = NewLogger(outputFunc)
}

// log writes a message through the global logger, initializing it with the
// default output on first use.
var log = func(msg string) {
	if globalLogger == nil {
		globalLogger = NewLogger(nil)
	}
	globalLogger.Print(msg)
}

// Logger is a configurable logging utility. By default it writes to the console.
type Logger struct {
	outputFunc func(msg string)
}

// NewLogger creates a Logger with the specified output function.
// If outputFunc is nil, it defaults to console output.
func NewLogger(outputFunc func(msg string)) *Logger {
	if outputFunc == nil {
		outputFunc = func(msg string) {
			println(msg)
		}
	}
	return &Logger{outputFunc: outputFunc}
}

// Print logs a message using the configured output function.
func (l *Logger) Print(msg string) {
	l.outputFunc(msg)
}

// FileOutputFunc returns an output function that writes log messages to the
// given file path, overwriting the file if it exists.
func FileOutputFunc(filePath string) func(msg string) {
	return func(msg string) {
		f, err := openLogFile(filePath)
		if err != nil {
			println("Logger error:", err.Error())
			println(msg)
			return
		}
		defer f.Close()
		f.WriteString(msg + "\n")
	}
}

// openLogFile opens or creates the log file in write-only mode, truncating
// it if it already exists.
func openLogFile(filePath string) (*os.File, error) {
	return os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
}
