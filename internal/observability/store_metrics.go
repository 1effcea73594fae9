package observability

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/launchpadhq/schoolhub/internal/datastore"
)

// ObserveStoreOp satisfies datastore.StoreMetrics.
func (p *Prom) ObserveStoreOp(op, table string, duration time.Duration, err error) {
	status := "ok"

	if err != nil {
		status = "error"
		p.StoreErrors.WithLabelValues(op, table, classifyStoreErr(err)).Inc()
	}

	p.StoreOpDuration.WithLabelValues(op, table, status).Observe(duration.Seconds())
}

func classifyStoreErr(err error) string {
	var storeErr *datastore.StoreError
	if errors.As(err, &storeErr) {
		switch {
		case storeErr.Status == 0:
			return "transport"
		case storeErr.Status == 401 || storeErr.Status == 403:
			return "denied"
		case storeErr.Status == 409:
			return "conflict"
		case storeErr.Status >= 500:
			return "upstream_5xx"
		default:
			return "http_" + strconv.Itoa(storeErr.Status)
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	default:
		return "unknown"
	}
}
