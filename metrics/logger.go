package metrics

import (
	"fmt"
	"log"
	"os"
	"path"
)

type Logger interface {
	Log(info *StatsInfo)
}

type StdoutLogger struct{}

func NewStdoutLogger() *StdoutLogger {
	return &StdoutLogger{}
}

func (l *StdoutLogger) Log(info *StatsInfo) {
	infoStr, err := info.ToJSON()
	if err == nil {
		log.Print(infoStr)
	} else {
		log.Printf("StdoutLogger: error: %v", err)
	}
}

const defaultQueueSize = 2000
const defaultLogWriters = 2
const defaultMaxLogFileSize = 1024 * 1024 * 1024
const defaultMaxLogFiles = 10

type FileLogger struct {
	MetricsQueue   chan *StatsInfo
	LogDir         string
	MaxLogFileSize int64
	MaxLogFiles    int
	Verbose        bool
}

func NewFileLogger(logDir string, maxLogFileSize int64, maxLogFiles int, verbose bool) *FileLogger {
	if maxLogFileSize <= 0 {
		maxLogFileSize = defaultMaxLogFileSize
	}
	if maxLogFiles <= 0 {
		maxLogFiles = defaultMaxLogFiles
	}
	logger := &FileLogger{
		MetricsQueue:   make(chan *StatsInfo, defaultQueueSize),
		LogDir:         logDir,
		MaxLogFileSize: maxLogFileSize,
		MaxLogFiles:    maxLogFiles,
		Verbose:        verbose,
	}

	for i := 0; i < defaultLogWriters; i++ {
		go logger.startLogWriter(i)
	}

	return logger
}

func (l *FileLogger) Log(info *StatsInfo) {
	l.MetricsQueue <- info
}

func (l *FileLogger) startLogWriter(idx int) {
	f, err := l.openLogFile(idx)
	if err != nil {
		log.Printf("FileLogger%d: log open error: %v", idx, err)
	}

	for info := range l.MetricsQueue {
		infoStr, err := info.ToJSON()
		if err != nil {
			log.Printf("FileLogger%d: info.ToJSON() error: %v", idx, err)
			continue
		}

		f, err = l.tryRotateLogFile(f, idx)
		if err != nil {
			continue
		}

		_, err = f.WriteString(infoStr)
		if err != nil {
			log.Printf("FileLogger%d: write error: %v", idx, err)
			continue
		}
		f.Sync()
	}
}

func (l *FileLogger) openLogFile(idx int) (*os.File, error) {
	logFilePath := path.Join(l.LogDir, fmt.Sprintf("log%d", idx))
	return os.OpenFile(logFilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

// tryRotateLogFile rotates the current log file once it exceeds the size
// limit, recycling the oldest rotation slot when all are taken.
func (l *FileLogger) tryRotateLogFile(currFile *os.File, idx int) (*os.File, error) {
	info, err := currFile.Stat()
	if err != nil {
		log.Printf("FileLogger%d: log rotation error: %v", idx, err)
		return currFile, nil
	}

	if info.Size() < l.MaxLogFileSize {
		return currFile, nil
	}

	currLogFilePath := path.Join(l.LogDir, fmt.Sprintf("log%d", idx))
	var rotatedLogFilePath string
	var oldestSlot string
	var oldestTime os.FileInfo
	for i := 0; i < l.MaxLogFiles; i++ {
		filePath := path.Join(l.LogDir, fmt.Sprintf("log%d.%d", idx, i))
		stat, err := os.Stat(filePath)
		if os.IsNotExist(err) {
			rotatedLogFilePath = filePath
			break
		}
		if err != nil {
			continue
		}
		if oldestTime == nil || stat.ModTime().Before(oldestTime.ModTime()) {
			oldestTime = stat
			oldestSlot = filePath
		}
	}

	if len(rotatedLogFilePath) == 0 {
		rotatedLogFilePath = oldestSlot
		if l.Verbose {
			log.Printf("FileLogger%d: maximum number of log files reached, overwriting %s", idx, rotatedLogFilePath)
		}
		if err := os.Remove(rotatedLogFilePath); err != nil {
			log.Printf("FileLogger%d: log rotation error: %v", idx, err)
			return currFile, nil
		}
	}

	currFile.Close()
	if err := os.Rename(currLogFilePath, rotatedLogFilePath); err != nil {
		log.Printf("FileLogger%d: log rotation error: %v", idx, err)
		return currFile, nil
	}

	if l.Verbose {
		log.Printf("FileLogger%d: log file rotated: %v", idx, rotatedLogFilePath)
	}

	f, err := l.openLogFile(idx)
	if err != nil {
		log.Printf("FileLogger%d: log rotation error: %v", idx, err)
	}

	return f, err
}
