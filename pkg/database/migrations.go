package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/teceudesenvolvo/BluAppCamaraPacatuba-sub000/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names shared by the repositories.
const (
	UsersCollection           = "users"
	DeviceTokensCollection    = "device_tokens"
	TrustedContactsCollection = "trusted_contacts"
	PanicAlertsCollection     = "panic_alerts"
	NotificationsCollection   = "notifications"
	migrationsCollection      = "migrations"
)

type Migration struct {
	Version     int
	Description string
	Up          func(ctx context.Context, db *mongo.Database) error
	Down        func(ctx context.Context, db *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		logger:     log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		log := m.logger.WithFields(map[string]interface{}{
			"version":     migration.Version,
			"description": migration.Description,
		})
		log.Info("Running migration")

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}

		log.Info("Migration completed")
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Info("Reverting migration")

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(migrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(migrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)
	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Index user emails for trusted contact resolution",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db.Collection(UsersCollection), []mongo.IndexModel{
					{
						// Not unique: the authentication subsystem does not guarantee it.
						Keys:    bson.D{{Key: "email", Value: 1}},
						Options: options.Index().SetName("email_lookup"),
					},
				})
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				return dropIndexes(ctx, db.Collection(UsersCollection), "email_lookup")
			},
		},
		{
			Version:     2,
			Description: "Create device_tokens with one token per user",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db.Collection(DeviceTokensCollection), []mongo.IndexModel{
					{
						Keys:    bson.D{{Key: "user_id", Value: 1}},
						Options: options.Index().SetUnique(true).SetName("user_id_unique"),
					},
				})
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				return dropIndexes(ctx, db.Collection(DeviceTokensCollection), "user_id_unique")
			},
		},
		{
			Version:     3,
			Description: "Create trusted_contacts with one contact per user",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db.Collection(TrustedContactsCollection), []mongo.IndexModel{
					{
						Keys:    bson.D{{Key: "user_id", Value: 1}},
						Options: options.Index().SetUnique(true).SetName("user_id_unique"),
					},
				})
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				return dropIndexes(ctx, db.Collection(TrustedContactsCollection), "user_id_unique")
			},
		},
		{
			Version:     4,
			Description: "Create panic_alerts with unique protocols",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db.Collection(PanicAlertsCollection), []mongo.IndexModel{
					{
						Keys:    bson.D{{Key: "protocol", Value: 1}},
						Options: options.Index().SetUnique(true).SetName("protocol_unique"),
					},
					{
						Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
						Options: options.Index().SetName("user_history"),
					},
				})
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				return dropIndexes(ctx, db.Collection(PanicAlertsCollection), "protocol_unique", "user_history")
			},
		},
		{
			Version:     5,
			Description: "Create notifications indexes for inbox and unread queries",
			Up: func(ctx context.Context, db *mongo.Database) error {
				return createIndexes(ctx, db.Collection(NotificationsCollection), []mongo.IndexModel{
					{
						Keys:    bson.D{{Key: "target_user_id", Value: 1}, {Key: "created_at", Value: -1}},
						Options: options.Index().SetName("inbox"),
					},
					{
						Keys:    bson.D{{Key: "target_user_id", Value: 1}, {Key: "is_read", Value: 1}},
						Options: options.Index().SetName("unread"),
					},
				})
			},
			Down: func(ctx context.Context, db *mongo.Database) error {
				return dropIndexes(ctx, db.Collection(NotificationsCollection), "inbox", "unread")
			},
		},
	}
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) error {
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", collection.Name(), err)
	}
	return nil
}

func dropIndexes(ctx context.Context, collection *mongo.Collection, names ...string) error {
	for _, name := range names {
		if _, err := collection.Indexes().DropOne(ctx, name); err != nil {
			return fmt.Errorf("failed to drop index %s on %s: %w", name, collection.Name(), err)
		}
	}
	return nil
}
