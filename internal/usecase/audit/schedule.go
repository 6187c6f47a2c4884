package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Schedule registers CheckAll on a cron spec ("@daily", "0 3 * * *", ...) and
// starts the scheduler. An empty spec or "off" disables the audit and returns nil.
// Each run gets its own context bounded by timeout.
func Schedule(spec string, auditor *Auditor, timeout time.Duration) (*cron.Cron, error) {
	if spec == "" || strings.EqualFold(spec, "off") {
		return nil, nil
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if _, err := auditor.CheckAll(ctx); err != nil {
			auditor.Log.Error("rollup audit failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid audit schedule %q: %w", spec, err)
	}

	c.Start()
	return c, nil
}
