package services

import (
	"time"

	"github.com/yungbote/workpulse-backend/internal/observability"
	"github.com/yungbote/workpulse-backend/internal/pkg/errors"
)

func observe(op string, start time.Time, hit bool, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = string(errors.KindOf(err))
		if outcome == "" {
			outcome = "error"
		}
	case hit:
		outcome = "cache_hit"
	}
	observability.Current().ObserveEngine(op, outcome, time.Since(start))
}
