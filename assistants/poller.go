package assistants

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"

	"github.com/neferdata/allms-go/llm"
)

// errRunPending signals the poll loop to keep waiting.
var errRunPending = errors.New("run still pending")

// waitForRun polls the run at a fixed interval until it completes, a
// terminal failure status appears, or the run deadline expires. The
// backoff is constant: polling never speeds up or slows down.
func (s *Session) waitForRun(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	var lastStatus RunStatus
	poll := func() error {
		status, err := s.runStatus(ctx)
		if err != nil {
			return backoff.Permanent(err)
		}
		lastStatus = status
		if s.debug {
			s.logger.Debug().Str("run_id", s.runID).Str("status", string(status)).Msg("Run status")
		}
		switch {
		case status == RunStatusCompleted:
			return nil
		case status.Pending():
			return errRunPending
		default:
			return backoff.Permanent(llm.NewRunFailedError(
				fmt.Sprintf("run %s ended with status %q", s.runID, status)))
		}
	}

	err := backoff.Retry(poll, backoff.WithContext(backoff.NewConstantBackOff(s.pollInterval), ctx))
	if err == nil {
		return nil
	}
	if errors.Is(err, errRunPending) || errors.Is(err, context.DeadlineExceeded) {
		return llm.NewRunTimeoutError(
			fmt.Sprintf("run %s did not finish within %s (last status %q)", s.runID, s.runTimeout, lastStatus),
			ctx.Err())
	}
	return err
}
