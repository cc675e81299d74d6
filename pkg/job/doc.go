// Package job runs background tasks on River, a Postgres-backed queue.
//
// Every task travels as the same River job kind carrying a task name and a
// JSON payload; the manager's registry decodes the payload into the task's
// own type before calling Handle. Periodic tasks are declared with a
// five-field cron expression.
//
//	m, err := job.NewManager(pool,
//		job.WithTask(tasks.NewApplicationSubmitted(mail, users)),
//		job.WithScheduledTask(tasks.NewSessionCleanup(store)),
//		job.WithLogger(log),
//	)
//	_ = m.Enqueue(ctx, "application_submitted", payload)
package job
