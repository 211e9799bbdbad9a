package log

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sadpig70/qns-go/common"
)

// ReportLogger appends one JSON line per optimization run to a daily
// file under FileDir. It is safe for concurrent use.
type ReportLogger struct {
	dl     *dailyLogger
	logger *slog.Logger
}

func NewReportLogger(fileDir string) (*ReportLogger, error) {
	if err := common.IsDirWritable(fileDir); err != nil {
		return nil, fmt.Errorf("failed to write to %s: %w", fileDir, err)
	}
	dl := newDailyLogger(fileDir)
	return &ReportLogger{
		dl:     dl,
		logger: slog.New(slog.NewJSONHandler(dl, nil)),
	}, nil
}

func (r *ReportLogger) Log(requestID string, fidelityBefore, fidelityAfter float64, swapCount int, elapsed time.Duration) {
	r.logger.Info(
		"OptimizationReport",
		slog.String("request_id", requestID),
		slog.Float64("fidelity_before", fidelityBefore),
		slog.Float64("fidelity_after", fidelityAfter),
		slog.Int("swap_count", swapCount),
		slog.Duration("elapsed", elapsed),
	)
}

func (r *ReportLogger) Close() error {
	return r.dl.Close()
}

type dailyLogger struct {
	mu              sync.Mutex
	fileDir         string
	currentFileName string
	file            *os.File
}

func newDailyLogger(fileDir string) *dailyLogger {
	return &dailyLogger{
		fileDir: fileDir,
	}
}

func (dl *dailyLogger) Write(p []byte) (n int, err error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	fileName := fmt.Sprintf("report-%s.log", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(dl.fileDir, fileName)
	currentFilePath := filepath.Join(dl.fileDir, dl.currentFileName)

	if dl.file == nil || currentFilePath != filePath {
		if dl.file != nil {
			dl.file.Close()
		}
		var err error
		dl.file, err = os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, err
		}
		dl.currentFileName = fileName
	}

	return dl.file.Write(p)
}

func (dl *dailyLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file != nil {
		return dl.file.Close()
	}
	return nil
}
