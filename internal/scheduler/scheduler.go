// Package scheduler runs the periodic background jobs: refreshing source
// statistics and sending the daily review digest.
package scheduler

import (
	"context"
	"time"

	"github.com/example/lemmabank/internal/database"
	"github.com/example/lemmabank/internal/notify"
	"github.com/go-co-op/gocron"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// digestSample is the number of due items named in a digest.
const digestSample = 5

// Config holds the job settings.
type Config struct {
	StatsInterval time.Duration
	DigestHour    int
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler *gocron.Scheduler
	notifier  notify.Notifier
	cfg       Config

	sources   *database.SourceRepository
	sentences *database.SentenceRepository
	users     *database.UserRepository
	vocab     *database.VocabRepository

	now func() time.Time
}

// New creates a new scheduler instance
func New(db *sqlx.DB, notifier notify.Notifier, cfg Config) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		notifier:  notifier,
		cfg:       cfg,
		sources:   database.NewSourceRepository(db),
		sentences: database.NewSentenceRepository(db),
		users:     database.NewUserRepository(db),
		vocab:     database.NewVocabRepository(db),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	s.scheduler.SingletonModeAll()

	if _, err := s.scheduler.Every(s.cfg.StatsInterval).Do(s.refreshStats); err != nil {
		return err
	}
	// Hourly check, the digest goes out when the hour matches
	if _, err := s.scheduler.Every(1).Hour().StartAt(nextHour(s.now())).Do(s.checkAndSendDigests); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	log.Info().
		Dur("stats_interval", s.cfg.StatsInterval).
		Int("digest_hour", s.cfg.DigestHour).
		Msg("scheduler started")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) refreshStats() {
	if _, err := s.RefreshStats(context.Background()); err != nil {
		log.Error().Err(err).Msg("failed to refresh source stats")
	}
}

func (s *Scheduler) checkAndSendDigests() {
	if _, err := s.RunDigest(context.Background(), s.now()); err != nil {
		log.Error().Err(err).Msg("failed to send digests")
	}
}

// RefreshStats relinks the sentences of every source against the current
// wordforms and recomputes the per-source counts.
func (s *Scheduler) RefreshStats(ctx context.Context) (int64, error) {
	started := time.Now()

	ids, err := s.sources.IDs(ctx)
	if err != nil {
		return 0, err
	}
	for _, id := range ids {
		if _, err := s.sentences.Relink(ctx, id); err != nil {
			log.Error().Err(err).Int64("source_id", id).Msg("failed to relink sentences")
		}
	}

	n, err := s.sources.RefreshStats(ctx)
	if err != nil {
		return 0, err
	}
	log.Info().Int64("sources", n).Dur("took", time.Since(started)).Msg("source stats refreshed")
	return n, nil
}

// RunDigest sends every user with a linked chat the number of items due at
// now. Nothing is sent outside the configured hour. It returns the number of
// digests sent.
func (s *Scheduler) RunDigest(ctx context.Context, now time.Time) (int, error) {
	if now.Hour() != s.cfg.DigestHour {
		log.Debug().Int("hour", now.Hour()).Msg("outside digest hour, skipping")
		return 0, nil
	}

	users, err := s.users.ListForDigest(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, user := range users {
		due, err := s.vocab.CountDue(ctx, user.ID, now)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to count due items")
			continue
		}
		if due == 0 {
			continue
		}

		items, err := s.vocab.Due(ctx, user.ID, now, digestSample)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("failed to list due items")
			continue
		}
		labels := make([]string, 0, len(items))
		for _, item := range items {
			labels = append(labels, item.Label)
		}

		name := user.DisplayName
		if name == "" {
			name = user.Username
		}
		if err := s.notifier.SendDigest(*user.TelegramChatID, notify.DigestText(name, due, labels)); err != nil {
			log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to send digest")
			continue
		}
		sent++
	}

	log.Info().Int("sent", sent).Int("users", len(users)).Msg("digests sent")
	return sent, nil
}

func nextHour(t time.Time) time.Time {
	return t.Truncate(time.Hour).Add(time.Hour)
}
