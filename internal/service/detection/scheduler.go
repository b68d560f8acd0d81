package detection

import "time"

// Scheduler delivers frame callbacks at the display's refresh cadence.
type Scheduler interface {
	C() <-chan time.Time
	Stop()
}

type tickerScheduler struct {
	ticker *time.Ticker
}

// NewTickerScheduler returns a Scheduler firing every interval. Ticks are
// dropped while the receiver is busy, so cycles never pile up.
func NewTickerScheduler(interval time.Duration) Scheduler {
	if interval <= 0 {
		interval = time.Second / 30
	}
	return &tickerScheduler{ticker: time.NewTicker(interval)}
}

func (s *tickerScheduler) C() <-chan time.Time { return s.ticker.C }

func (s *tickerScheduler) Stop() { s.ticker.Stop() }
