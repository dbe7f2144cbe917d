package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/campfirehq/campfire-backend/internal/gamification"
	"github.com/campfirehq/campfire-backend/internal/logger"
	"github.com/campfirehq/campfire-backend/internal/repos"
	"github.com/campfirehq/campfire-backend/internal/types"
	"github.com/campfirehq/campfire-backend/internal/utils"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	postgresHost := utils.GetEnv("POSTGRES_HOST", "localhost", log)
	postgresPort := utils.GetEnv("POSTGRES_PORT", "5432", log)
	postgresUser := utils.GetEnv("POSTGRES_USER", "postgres", log)
	postgresPassword := utils.GetEnv("POSTGRES_PASSWORD", "", log)
	postgresName := utils.GetEnv("POSTGRES_NAME", "campfire", log)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", postgresUser, postgresPassword, postgresHost, postgresPort, postgresName)

	serviceLog.Info("Connecting to Postgres...")
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		serviceLog.Error("Failed to connect to Postgres", "error", err)
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	return &PostgresService{db: gdb, log: serviceLog}, nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Community{},
		&types.CommunityMember{},
		&types.LiveSession{},
		&types.SessionParticipation{},
		&types.Achievement{},
		&types.UserAchievement{},
	)
	if err != nil {
		s.log.Error("Auto migration failed for postgres tables", "error", err)
		return err
	}

	s.log.Info("Configuring foreign key relationships for postgres tables...")
	for _, stmt := range []string{
		`ALTER TABLE "user_token" DROP CONSTRAINT IF EXISTS "fk_user_token_user_id";
		 ALTER TABLE "user_token" ADD CONSTRAINT "fk_user_token_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "community_member" DROP CONSTRAINT IF EXISTS "fk_community_member_user_id";
		 ALTER TABLE "community_member" ADD CONSTRAINT "fk_community_member_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "community_member" DROP CONSTRAINT IF EXISTS "fk_community_member_community_id";
		 ALTER TABLE "community_member" ADD CONSTRAINT "fk_community_member_community_id"
		 FOREIGN KEY ("community_id") REFERENCES "community"("id") ON DELETE CASCADE`,
		`ALTER TABLE "live_session" DROP CONSTRAINT IF EXISTS "fk_live_session_community_id";
		 ALTER TABLE "live_session" ADD CONSTRAINT "fk_live_session_community_id"
		 FOREIGN KEY ("community_id") REFERENCES "community"("id") ON DELETE CASCADE`,
		`ALTER TABLE "session_participation" DROP CONSTRAINT IF EXISTS "fk_session_participation_session_id";
		 ALTER TABLE "session_participation" ADD CONSTRAINT "fk_session_participation_session_id"
		 FOREIGN KEY ("session_id") REFERENCES "live_session"("id") ON DELETE CASCADE`,
		`ALTER TABLE "session_participation" DROP CONSTRAINT IF EXISTS "fk_session_participation_user_id";
		 ALTER TABLE "session_participation" ADD CONSTRAINT "fk_session_participation_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
		`ALTER TABLE "user_achievement" DROP CONSTRAINT IF EXISTS "fk_user_achievement_user_id";
		 ALTER TABLE "user_achievement" ADD CONSTRAINT "fk_user_achievement_user_id"
		 FOREIGN KEY ("user_id") REFERENCES "user"("id") ON DELETE CASCADE`,
	} {
		if err := s.db.Exec(stmt).Error; err != nil {
			s.log.Error("Failed to configure foreign key", "error", err)
			return err
		}
	}
	return nil
}

// SeedAchievementCatalog materializes the static achievement catalog as rows
// so per-user unlocks have something to reference.
func (s *PostgresService) SeedAchievementCatalog(ctx context.Context, repo repos.AchievementRepo) error {
	entries := gamification.Catalog()
	rows := make([]*types.Achievement, 0, len(entries))
	now := time.Now().UTC()
	for _, entry := range entries {
		rows = append(rows, &types.Achievement{
			ID:          uuid.New(),
			Code:        entry.Code,
			Name:        entry.Name,
			Description: entry.Description,
			Metric:      entry.Metric,
			Threshold:   entry.Threshold,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return repo.SeedCatalog(ctx, nil, rows)
}
