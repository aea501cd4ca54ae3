// mlog extends Go's logging functionality to allow for multiple named
// loggers, each with its own level. Call AddLogger() to register a
// destination, then use the package-level functions to send messages to
// every registered logger whose level permits it.
package mlog

import (
	"errors"
	golog "log"
	"os"
	"path/filepath"
	"sync"
)

// Log levels, DEBUG being the most verbose.
const (
	DEBUG = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	loggers = make(map[string]*logger)
	mu      sync.RWMutex
)

type logger struct {
	l     *golog.Logger
	level int
}

// AddLogger registers a named logger that writes to output at or above
// level. Re-registering an existing name replaces it.
func AddLogger(name string, output *os.File, level int) {
	mu.Lock()
	defer mu.Unlock()

	loggers[name] = &logger{golog.New(output, "", golog.LstdFlags), level}
}

// DelLogger removes a named logger added with AddLogger.
func DelLogger(name string) {
	mu.Lock()
	defer mu.Unlock()

	delete(loggers, name)
}

// SetLevel changes the level of a named logger.
func SetLevel(name string, level int) error {
	mu.Lock()
	defer mu.Unlock()

	if loggers[name] == nil {
		return errors.New("mlog: no such logger")
	}
	loggers[name].level = level
	return nil
}

// LevelInt parses a level name as used by the -level flag.
func LevelInt(s string) (int, error) {
	switch s {
	case "debug":
		return DEBUG, nil
	case "info":
		return INFO, nil
	case "warn":
		return WARN, nil
	case "error":
		return ERROR, nil
	case "fatal":
		return FATAL, nil
	}
	return -1, errors.New("mlog: invalid log level " + s)
}

// Init registers the stderr and (optional) file loggers described by a
// config.Config-shaped set of values. Kept free of the config package to
// avoid an import cycle; callers pass the already-parsed values.
func Init(levelName string, stderr bool, logfile string) error {
	level, err := LevelInt(levelName)
	if err != nil {
		return err
	}

	if stderr {
		AddLogger("stderr", os.Stderr, level)
	}

	if logfile != "" {
		if err := os.MkdirAll(filepath.Dir(logfile), 0755); err != nil {
			return err
		}
		f, err := os.OpenFile(logfile, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0660)
		if err != nil {
			return err
		}
		AddLogger("file", f, level)
	}

	return nil
}

func log(level int, format string, arg ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, lg := range loggers {
		if lg.level <= level {
			lg.l.Printf(format, arg...)
		}
	}
}

func logln(level int, arg ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	for _, lg := range loggers {
		if lg.level <= level {
			lg.l.Println(arg...)
		}
	}
}

func Debug(format string, arg ...interface{}) { log(DEBUG, format, arg...) }
func Info(format string, arg ...interface{})  { log(INFO, format, arg...) }
func Warn(format string, arg ...interface{})  { log(WARN, format, arg...) }
func Error(format string, arg ...interface{}) { log(ERROR, format, arg...) }

func Fatal(format string, arg ...interface{}) {
	log(FATAL, format, arg...)
	os.Exit(1)
}

func Debugln(arg ...interface{}) { logln(DEBUG, arg...) }
func Infoln(arg ...interface{})  { logln(INFO, arg...) }
func Warnln(arg ...interface{}) { logln(WARN, arg...) }
func Errorln(arg ...interface{}) { logln(ERROR, arg...) }

func Fatalln(arg ...interface{}) {
	logln(FATAL, arg...)
	os.Exit(1)
}
