package sweep

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Expirer is the subscription operation the sweeper runs on schedule.
type Expirer interface {
	ProcessExpirations(ctx context.Context) (int, error)
}

// Config holds the sweep schedule.
type Config struct {
	// Schedule is a standard cron expression. The default runs once an
	// hour, comfortably inside the grace a lapsed period already has.
	Schedule string        `env:"SWEEP_SCHEDULE" envDefault:"5 * * * *"`
	Timeout  time.Duration `env:"SWEEP_TIMEOUT" envDefault:"5m"`
}

// Sweeper periodically expires subscriptions whose effective end has
// passed. One run scans the whole table; failures are logged and the
// next scheduled run picks up whatever was left.
type Sweeper struct {
	expirer  Expirer
	schedule string
	timeout  time.Duration
	log      *slog.Logger
	cron     *cron.Cron
}

var ErrInvalidSchedule = errors.New("sweep schedule is not a valid cron expression")

// New creates a Sweeper. Panics if expirer is nil.
func New(cfg Config, expirer Expirer, log *slog.Logger) *Sweeper {
	if expirer == nil {
		panic("sweep: expirer is required")
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "5 * * * *"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Sweeper{
		expirer:  expirer,
		schedule: cfg.Schedule,
		timeout:  cfg.Timeout,
		log:      log,
		cron:     cron.New(),
	}
}

// Start registers the job and starts the scheduler in its own
// goroutine.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Run); err != nil {
		return errors.Join(ErrInvalidSchedule, err)
	}
	s.cron.Start()
	s.log.Info("expiration sweep scheduled", slog.String("schedule", s.schedule))
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Run executes one sweep immediately. It is the scheduled job body and
// is also called directly at startup so a long-down instance catches
// up without waiting for the next tick.
func (s *Sweeper) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	expired, err := s.expirer.ProcessExpirations(ctx)
	if err != nil {
		s.log.Error("expiration sweep failed",
			slog.Int("expired", expired),
			slog.Any("error", err))
		return
	}
	if expired > 0 {
		s.log.Info("expiration sweep finished",
			slog.Int("expired", expired),
			slog.Duration("took", time.Since(started)))
	}
}
