// Package logger provides category-based line logging for the command line
// tools. Library packages return errors instead of logging; only the tools
// write here.
package logger

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

type Logger struct {
	output        io.Writer
	minLevel      Level
	categoryWidth int
	filter        map[string]bool
}

var (
	defaultLogger *Logger
	mu            sync.Mutex
)

func init() {
	defaultLogger = &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

var bufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// RegisterCategories records the category names the process uses, fixing
// the padding width so columns line up.
func RegisterCategories(categories ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, cat := range categories {
		if len(cat)+1 > defaultLogger.categoryWidth {
			defaultLogger.categoryWidth = len(cat) + 1
		}
	}
}

// SetOutput redirects log output; nil restores stdout.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		defaultLogger.output = os.Stdout
	} else {
		defaultLogger.output = w
	}
}

// SetMinLevel drops messages whose category maps below level. Categories
// named in the filter are always kept.
func SetMinLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger.minLevel = level
}

// SetCategoryFilter restricts output to the named categories; error and
// warning always pass. An empty list removes the filter.
func SetCategoryFilter(categories []string) {
	mu.Lock()
	defer mu.Unlock()
	if len(categories) == 0 {
		defaultLogger.filter = nil
		return
	}
	defaultLogger.filter = make(map[string]bool, len(categories))
	for _, cat := range categories {
		defaultLogger.filter[cat] = true
	}
}

func Printf(category string, format string, v ...interface{}) {
	defaultLogger.printf(category, format, v...)
}

func Error(format string, v ...interface{}) {
	defaultLogger.printf("error", format, v...)
}

func Warning(format string, v ...interface{}) {
	defaultLogger.printf("warning", format, v...)
}

func Fatal(format string, v ...interface{}) {
	defaultLogger.printf("error", format, v...)
	os.Exit(1)
}

func (l *Logger) shouldLog(category string) bool {
	if l.filter != nil && l.filter[category] {
		return true
	}
	if levelForCategory(category) < l.minLevel {
		return false
	}
	if l.filter != nil && !l.filter[category] && category != "error" && category != "warning" {
		return false
	}
	return true
}

func (l *Logger) printf(category string, format string, v ...interface{}) {
	if !l.shouldLog(category) {
		return
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		if buf.Cap() <= 64*1024 {
			bufferPool.Put(buf)
		}
	}()

	buf.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	buf.WriteByte(' ')
	buf.WriteString(category)
	for i := len(category); i < l.categoryWidth; i++ {
		buf.WriteByte(' ')
	}
	buf.WriteByte(' ')
	fmt.Fprintf(buf, format, v...)
	if buf.Len() > 0 && buf.Bytes()[buf.Len()-1] != '\n' {
		buf.WriteByte('\n')
	}

	mu.Lock()
	l.output.Write(buf.Bytes())
	mu.Unlock()
}
