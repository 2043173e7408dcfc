package broker

import (
	"time"

	"github.com/skybi/session-broker/internal/hashmap"
)

// loginThrottle counts failed login attempts per remote address inside a fixed window
type loginThrottle struct {
	limit    int
	attempts *hashmap.ExpiringMap[string, int]
}

func newLoginThrottle(limit int, window time.Duration) *loginThrottle {
	throttle := &loginThrottle{
		limit:    limit,
		attempts: hashmap.NewExpiring[string, int](window),
	}
	if limit > 0 && window > 0 {
		throttle.attempts.ScheduleCleanupTask(window)
	}
	return throttle
}

func (throttle *loginThrottle) blocked(address string) bool {
	if throttle.limit <= 0 {
		return false
	}
	n, ok := throttle.attempts.Lookup(address)
	return ok && n >= throttle.limit
}

func (throttle *loginThrottle) fail(address string) {
	if throttle.limit <= 0 {
		return
	}
	throttle.attempts.Compute(address, func(current int, _ bool) int {
		return current + 1
	})
}

func (throttle *loginThrottle) reset(address string) {
	throttle.attempts.Unset(address)
}

func (throttle *loginThrottle) stop() {
	throttle.attempts.StopCleanupTask()
}
