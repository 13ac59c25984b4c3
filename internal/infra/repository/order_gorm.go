package repository

import (
	"context"
	"time"

	"iaction/internal/domain/model"
	repo "iaction/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderGormRepository struct {
	db *gorm.DB
}

func NewOrderGormRepository(db *gorm.DB) *OrderGormRepository {
	return &OrderGormRepository{db: db}
}

func (r *OrderGormRepository) Create(ctx context.Context, order model.Order) (model.Order, error) {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if err := r.db.WithContext(ctx).Create(&order).Error; err != nil {
		if isUniqueViolation(err) {
			return model.Order{}, repo.ErrConflict
		}
		return model.Order{}, err
	}
	return order, nil
}

func (r *OrderGormRepository) FindByID(ctx context.Context, orderID string) (model.Order, bool, error) {
	return r.findOne(ctx, "id = ?", orderID)
}

func (r *OrderGormRepository) FindByCode(ctx context.Context, code string) (model.Order, bool, error) {
	return r.findOne(ctx, "reference_code = ?", code)
}

func (r *OrderGormRepository) findOne(ctx context.Context, cond string, arg any) (model.Order, bool, error) {
	var o model.Order
	err := r.db.WithContext(ctx).Where(cond, arg).First(&o).Error
	if isNotFound(err) {
		return model.Order{}, false, nil
	}
	if err != nil {
		return model.Order{}, false, err
	}
	return o, true, nil
}

func (r *OrderGormRepository) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{"status": status, "updated_at": time.Now()})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 読んでから書くのではなく、WHERE status = from の条件付きUPDATEで競合を防ぐ
func (r *OrderGormRepository) TransitionStatus(ctx context.Context, orderID string, from, to model.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ?", orderID, from).
		Updates(map[string]any{"status": to, "updated_at": time.Now()})

	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *OrderGormRepository) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 50
	}

	q := r.db.WithContext(ctx).Model(&model.Order{})

	//status 絞り込み
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Order{}, 0, err
	}

	var items []model.Order
	offset := (f.Page - 1) * f.Limit
	if err := q.Order("created_at desc").Limit(f.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Order{}, 0, err
	}

	return items, total, nil
}
