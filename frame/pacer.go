package frame

import "time"

// TickerPacer keeps a loop at or below a target frame rate by sleeping off
// whatever is left of each frame's time slot.
type TickerPacer struct {
	period     time.Duration
	frameStart time.Time
	sleep      func(time.Duration)
	now        func() time.Time
}

func NewTickerPacer(fps int) *TickerPacer {
	if fps < 1 {
		fps = 1
	}
	return &TickerPacer{
		period:     time.Second / time.Duration(fps),
		frameStart: time.Now(),
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

func (p *TickerPacer) Wait() {
	if elapsed := p.now().Sub(p.frameStart); elapsed < p.period {
		p.sleep(p.period - elapsed)
	}
	p.frameStart = p.now()
}
