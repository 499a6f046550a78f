package gh

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/mrz1836/repo-file-sync/internal/logging"
)

// CommandRunner interface for executing gh CLI commands
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
	RunWithInput(ctx context.Context, input []byte, name string, args ...string) ([]byte, error)
}

// realCommandRunner executes gh CLI commands with client-side throttling.
// The limiter keeps burst traffic (blob uploads during commit replay) under
// GitHub's secondary rate limits; callers see throttling only as latency.
type realCommandRunner struct {
	logger    *logrus.Logger
	logConfig *logging.LogConfig
	limiter   *rate.Limiter
	token     string
}

// defaultRequestsPerSecond bounds API request rate. GitHub's secondary
// limits reject sustained bursts well below this.
const defaultRequestsPerSecond = 10

// NewCommandRunner creates a command runner for gh CLI invocations.
// The token, when non-empty, is passed to gh via GH_TOKEN.
func NewCommandRunner(logger *logrus.Logger, logConfig *logging.LogConfig, token string) CommandRunner {
	return &realCommandRunner{
		logger:    logger,
		logConfig: logConfig,
		limiter:   rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
		token:     token,
	}
}

// Run executes a command and returns its output
func (r *realCommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return r.RunWithInput(ctx, nil, name, args...)
}

// RunWithInput executes a command with input and returns its output.
//
// Side Effects:
// - Blocks until the rate limiter admits the request
// - Logs request/response details when --debug-api is enabled
func (r *realCommandRunner) RunWithInput(ctx context.Context, input []byte, name string, args ...string) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // Arguments are constructed internally
	cmd.Env = os.Environ()
	if r.token != "" {
		cmd.Env = append(cmd.Env, "GH_TOKEN="+r.token)
	}

	logger := logging.WithStandardFields(r.logger, r.logConfig, logging.ComponentNames.API)
	debugAPI := r.logConfig != nil && r.logConfig.Debug.API

	if debugAPI {
		logger.WithFields(logrus.Fields{
			logging.StandardFields.Operation: logging.OperationTypes.APIRequest,
			"args":                           args,
		}).Debug("GitHub CLI request")
		if input != nil {
			logger.WithField(logging.StandardFields.ContentSize, len(input)).Trace("Request input")
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if input != nil {
		cmd.Stdin = bytes.NewReader(input)
	}

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if debugAPI {
		logger.WithFields(logrus.Fields{
			logging.StandardFields.DurationMs:  duration.Milliseconds(),
			logging.StandardFields.ContentSize: stdout.Len(),
			logging.StandardFields.Error:       err,
		}).Debug("GitHub CLI response")
	}

	if err != nil {
		if stderr.Len() > 0 {
			if r.logger != nil {
				logger.WithFields(logrus.Fields{
					"args":                        args,
					"stderr":                      stderr.String(),
					logging.StandardFields.Status: "failed",
				}).Error("GitHub CLI command failed")
			}
			return nil, &CommandError{
				Command: name,
				Args:    args,
				Stderr:  stderr.String(),
				Err:     err,
			}
		}
		return nil, err
	}

	return stdout.Bytes(), nil
}

// CommandError provides detailed error information from command execution
type CommandError struct {
	Command string
	Args    []string
	Stderr  string
	Err     error
}

func (e *CommandError) Error() string {
	return e.Stderr
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
