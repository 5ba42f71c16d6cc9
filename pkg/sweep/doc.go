// Package sweep runs the periodic subscription expiration job.
//
// Cancelled subscriptions keep their plan until the paid period ends;
// the sweeper is what actually flips them (and any lapsed plan the
// gateway stopped charging) to expired. The job is idempotent, so an
// extra run after a crash or redeploy is harmless.
//
// # Usage
//
//	sweeper := sweep.New(cfg.Sweep, manager, log)
//	if err := sweeper.Start(); err != nil {
//		return err
//	}
//	defer sweeper.Stop()
//	sweeper.Run() // catch up immediately on boot
package sweep
