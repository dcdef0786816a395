package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os/exec"
	"strings"
	"time"

	"github.com/inspectify/inspectify/api/internal/metrics"
	"github.com/inspectify/inspectify/api/internal/report/domain"
	"golang.org/x/sync/semaphore"
)

const (
	kindPredict = "predict"
	kindDetect  = "detect"

	// ServerTimeField is the single field added to every analysis result.
	ServerTimeField = "server_processing_time"

	defaultTimeout        = 60 * time.Second
	defaultQueueTimeout   = 30 * time.Second
	defaultMaxConcurrency = 4
	waitDelay             = 2 * time.Second
)

// Config は外部スクリプト呼び出しの設定。
type Config struct {
	// Interpreter runs the scripts (e.g. "python"). Empty executes them directly.
	Interpreter    string
	PredictScript  string
	DetectScript   string
	Timeout        time.Duration
	MaxConcurrency int
	QueueTimeout   time.Duration
	Logger         *log.Logger
}

// Invoker runs the classification and detection scripts through a
// bounded pool of worker slots.
type Invoker struct {
	interpreter   string
	predictScript string
	detectScript  string
	timeout       time.Duration
	queueTimeout  time.Duration
	slots         *semaphore.Weighted
	logger        *log.Logger
}

// New は設定値を補完して Invoker を生成する。
func New(cfg Config) *Invoker {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = defaultQueueTimeout
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = defaultMaxConcurrency
	}
	return &Invoker{
		interpreter:   strings.TrimSpace(cfg.Interpreter),
		predictScript: cfg.PredictScript,
		detectScript:  cfg.DetectScript,
		timeout:       cfg.Timeout,
		queueTimeout:  cfg.QueueTimeout,
		slots:         semaphore.NewWeighted(int64(cfg.MaxConcurrency)),
		logger:        cfg.Logger,
	}
}

// Analyze runs the detection script on imagePath. On success it returns the
// JSON object printed by the script plus ServerTimeField (milliseconds).
func (i *Invoker) Analyze(ctx context.Context, imagePath string, coords domain.Coordinates) (map[string]any, error) {
	args := []string{imagePath}
	if coords.Complete() {
		args = append(args, strings.TrimSpace(coords.Latitude), strings.TrimSpace(coords.Longitude))
	}

	startedAt := time.Now()
	stdout, err := i.run(ctx, kindDetect, i.detectScript, args)
	if err != nil {
		return nil, err
	}

	result, ok := ExtractJSONObject(stdout)
	if !ok {
		metrics.AnalysisTotal.WithLabelValues(kindDetect, "parse_error").Inc()
		i.logf("detect output has no JSON object: %q", truncate(stdout, 200))
		return nil, ErrParse
	}
	result[ServerTimeField] = time.Since(startedAt).Milliseconds()
	metrics.AnalysisTotal.WithLabelValues(kindDetect, "ok").Inc()
	return result, nil
}

// Classify runs the road classifier and returns the trimmed last line of stdout.
func (i *Invoker) Classify(ctx context.Context, imagePath string) (string, error) {
	stdout, err := i.run(ctx, kindPredict, i.predictScript, []string{imagePath})
	if err != nil {
		return "", err
	}
	metrics.AnalysisTotal.WithLabelValues(kindPredict, "ok").Inc()
	return LastLine(stdout), nil
}

// IsRoad reports whether a classifier label denotes a road.
func IsRoad(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), "road")
}

func (i *Invoker) run(ctx context.Context, kind, script string, args []string) ([]byte, error) {
	if err := i.acquire(ctx); err != nil {
		metrics.AnalysisTotal.WithLabelValues(kind, "busy").Inc()
		return nil, err
	}
	defer i.slots.Release(1)

	metrics.AnalysisInFlight.Inc()
	defer metrics.AnalysisInFlight.Dec()

	runCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	name, argv := i.command(script, args)
	cmd := exec.CommandContext(runCtx, name, argv...)
	configureProcess(cmd)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	startedAt := time.Now()
	runErr := cmd.Run()
	metrics.AnalysisDurationSeconds.WithLabelValues(kind).Observe(time.Since(startedAt).Seconds())

	if runErr == nil {
		return stdout.Bytes(), nil
	}

	// A fired deadline wins over whatever exit status the kill produced.
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		metrics.AnalysisTotal.WithLabelValues(kind, "timeout").Inc()
		i.logf("%s script timed out after %s: %s", kind, i.timeout, script)
		return nil, ErrTimeout
	}
	if ctx.Err() != nil {
		metrics.AnalysisTotal.WithLabelValues(kind, "canceled").Inc()
		return nil, fmt.Errorf("%s script canceled: %w", kind, ctx.Err())
	}

	metrics.AnalysisTotal.WithLabelValues(kind, "failed").Inc()
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		i.logf("%s script exited %d: %s", kind, exitErr.ExitCode(), firstLine(stderr.String()))
		return nil, &ProcessError{ExitCode: exitErr.ExitCode(), Stderr: stderr.String(), Err: runErr}
	}
	i.logf("%s script failed to start: %v", kind, runErr)
	return nil, &ProcessError{ExitCode: -1, Stderr: stderr.String(), Err: runErr}
}

func (i *Invoker) acquire(ctx context.Context) error {
	queueCtx, cancel := context.WithTimeout(ctx, i.queueTimeout)
	defer cancel()
	if err := i.slots.Acquire(queueCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrBusy
	}
	return nil
}

func (i *Invoker) command(script string, args []string) (string, []string) {
	if i.interpreter == "" {
		return script, args
	}
	return i.interpreter, append([]string{script}, args...)
}

func (i *Invoker) logf(format string, args ...any) {
	if i.logger != nil {
		i.logger.Printf(format, args...)
	}
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return strings.TrimSpace(s[:idx])
	}
	return s
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
