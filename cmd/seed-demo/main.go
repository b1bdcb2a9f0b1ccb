package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/stemsi/examroom/internal/cache"
	"github.com/stemsi/examroom/internal/config"
	"github.com/stemsi/examroom/internal/database"
	"github.com/stemsi/examroom/internal/demo"
	"github.com/stemsi/examroom/internal/logger"
	"github.com/stemsi/examroom/internal/model"
	"github.com/stemsi/examroom/internal/repository"
	"github.com/stemsi/examroom/internal/service"
)

func main() {
	reset := flag.Bool("reset", false, "Replace the sample exam and question banks if they already exist")
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	store := cache.NewRedis(rdb)

	users := repository.NewUserRepository(pool)
	exams := repository.NewExamRepository(pool)
	banks := repository.NewQuestionBankRepository(pool)
	authService := service.NewAuthService(cfg, users, store, log)

	// ─── Accounts ──────────────────────────────────────────────────────
	var authorID int
	for _, acc := range demo.Accounts() {
		u, err := users.GetByEmail(ctx, acc.Email)
		switch {
		case err == nil:
			log.Info().Str("email", acc.Email).Msg("Account exists, skipping")
		case errors.Is(err, repository.ErrNotFound):
			hash, err := authService.HashPassword(acc.Password)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to hash password")
			}
			u = &model.User{Name: acc.Name, Email: acc.Email, Role: acc.Role, PasswordHash: hash}
			if err := users.Create(ctx, u); err != nil {
				log.Fatal().Err(err).Str("email", acc.Email).Msg("Failed to create account")
			}
			log.Info().Str("email", acc.Email).Str("role", string(acc.Role)).Int("id", u.ID).Msg("Account created")
		default:
			log.Fatal().Err(err).Str("email", acc.Email).Msg("Failed to look up account")
		}
		if u.Role == model.RoleAdmin && authorID == 0 {
			authorID = u.ID
		}
	}

	// ─── Sample question banks ─────────────────────────────────────────
	for _, b := range demo.QuestionBanks() {
		b.AuthorID = authorID
		_, err := banks.GetByID(ctx, b.ID)
		switch {
		case err == nil && !*reset:
			log.Info().Str("bank_id", b.ID.String()).Msg("Question bank exists, skipping")
			continue
		case err == nil:
			err = banks.Update(ctx, b)
		case errors.Is(err, repository.ErrNotFound):
			err = banks.Create(ctx, b)
		}
		if err != nil {
			log.Fatal().Err(err).Str("bank_id", b.ID.String()).Msg("Failed to seed question bank")
		}
		log.Info().Str("bank_id", b.ID.String()).Str("category", b.Category).Msg("Question bank seeded")
	}

	// ─── Sample exam ───────────────────────────────────────────────────
	exam := demo.JavaScriptFundamentals()
	exam.AuthorID = authorID

	_, err = exams.GetByID(ctx, exam.ID)
	switch {
	case err == nil && !*reset:
		log.Info().Str("exam_id", exam.ID.String()).Msg("Sample exam exists, skipping (use -reset to replace)")
		return
	case err == nil:
		if err := exams.Delete(ctx, exam.ID); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete sample exam")
		}
	case !errors.Is(err, repository.ErrNotFound):
		log.Fatal().Err(err).Msg("Failed to look up sample exam")
	}

	if err := exams.Create(ctx, exam); err != nil {
		log.Fatal().Err(err).Msg("Failed to create sample exam")
	}
	if err := store.DeleteExam(ctx, exam.ID); err != nil {
		log.Warn().Err(err).Msg("Failed to evict cached sample exam")
	}

	log.Info().
		Str("exam_id", exam.ID.String()).
		Str("title", exam.Title).
		Int("questions", len(exam.Questions)).
		Msg("Sample exam seeded")
}
