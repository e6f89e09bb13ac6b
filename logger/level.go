package logger

import "strings"

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARNING"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func levelForCategory(category string) Level {
	switch category {
	case "error":
		return LevelError
	case "warning":
		return LevelWarning
	default:
		if strings.HasPrefix(category, "debug") {
			return LevelDebug
		}
		return LevelInfo
	}
}
