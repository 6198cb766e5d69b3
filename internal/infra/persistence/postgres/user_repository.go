package postgres

import (
	"context"

	"pointshop/internal/domain/entity"
	domainerrors "pointshop/internal/domain/errors"
	"pointshop/internal/domain/repository"
	"pointshop/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// FindByHandle reads from the primary so a just-debited balance is visible.
func (repo *userRepository) FindByHandle(ctx context.Context, handle string) (*entity.User, error) {
	var userM model.UserModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where("tg_username = ?", handle).
		First(&userM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by handle")
	}

	return toUserDomain(&userM), nil
}

func (repo *userRepository) Create(ctx context.Context, user *entity.User) error {
	userM := fromUserDomain(user)

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicate, "handle already exists")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt

	return nil
}

func (repo *userRepository) SetPasswordHash(ctx context.Context, userID int64, hash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("password_hash", hash)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to set password hash")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// SetPoints upserts on the handle so concurrent grants to a new user never
// collide on the unique index.
func (repo *userRepository) SetPoints(ctx context.Context, handle string, points int) (*entity.User, error) {
	userM := model.UserModel{Handle: handle, Points: points}
	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tg_username"}},
			DoUpdates: clause.AssignmentColumns([]string{"points"}),
		}).
		Create(&userM).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to set points")
	}

	return repo.FindByHandle(ctx, handle)
}

func (repo *userRepository) DebitPoints(ctx context.Context, userID int64, amount int) (bool, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ? AND points >= ?", userID, amount).
		Update("points", gorm.Expr("points - ?", amount))
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "failed to debit points")
	}

	return result.RowsAffected == 1, nil
}

func (repo *userRepository) ListByPoints(ctx context.Context, offset, limit int) ([]*entity.User, error) {
	var userMs []model.UserModel
	err := repo.db.WithContext(ctx).
		Order("points DESC").
		Order("id ASC").
		Offset(offset).
		Limit(limit).
		Find(&userMs).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list users")
	}

	users := make([]*entity.User, 0, len(userMs))
	for i := range userMs {
		users = append(users, toUserDomain(&userMs[i]))
	}

	return users, nil
}

func (repo *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.UserModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count users")
	}

	return count, nil
}

func (repo *userRepository) ListHandles(ctx context.Context) ([]string, error) {
	var handles []string
	err := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Order("id ASC").
		Pluck("tg_username", &handles).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list user handles")
	}

	return handles, nil
}

func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:           data.ID,
		Handle:       data.Handle,
		Points:       data.Points,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
	}
}

func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:           data.ID,
		Handle:       data.Handle,
		Points:       data.Points,
		PasswordHash: data.PasswordHash,
		CreatedAt:    data.CreatedAt,
	}
}
