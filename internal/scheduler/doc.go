// Package scheduler повторяет пакетную операцию по cron-расписанию.
//
// Используется командой `maskctl job run IDS --cron EXPR`: процесс остаётся
// на переднем плане и в каждый момент срабатывания выполняет один пакет.
// Пакеты не перекрываются: следующий момент вычисляется после завершения
// предыдущего пакета, пропущенные моменты не догоняются.
//
// Структура:
//   - cron.go      — парсинг cron-выражений (5 полей, допускается префикс CRON_TZ=)
//   - scheduler.go — цикл ожидания и запуска
//
// Использование:
//
//	sched, err := scheduler.ParseCron("*/30 * * * *")
//	s := scheduler.New(scheduler.Config{Schedule: sched, Logger: logger})
//	err = s.Run(ctx, func(ctx context.Context, n int) error {
//	    _, err := orch.RunJobs(ctx, sess, ids, opts)
//	    return err
//	})
package scheduler
