package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/booking-engine/internal/calendar"
	"github.com/Leganyst/booking-engine/internal/model"
)

type BookingRepository interface {
	// Создать новое бронирование.
	Create(ctx context.Context, booking *model.Booking) error
	// Получить бронирование по ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Получить бронирование с блокировкой строки.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	// Найти бронирование по ключу идемпотентности (nil, если нет).
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error)
	// Перезаписать изменяемые поля бронирования.
	Update(ctx context.Context, booking *model.Booking) error
	// Запомнить идентификатор события во внешнем календаре.
	SetExternalEventID(ctx context.Context, id uuid.UUID, externalID string) error
	// Удалить живое бронирование; возвращает число удалённых строк.
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	// Живые бронирования специалиста, пересекающие окно.
	ListOverlapping(ctx context.Context, specialistID uuid.UUID, window calendar.TimeRange, exclude uuid.UUID) ([]model.Booking, error)
	// Есть ли будущие бронирования услуги.
	HasFutureForService(ctx context.Context, serviceID uuid.UUID, now time.Time) (bool, error)
	// Брони специалиста, начинающиеся не раньше from.
	ListStartingFrom(ctx context.Context, specialistID uuid.UUID, from time.Time) ([]model.Booking, error)
	// Записать снимок отменённого бронирования.
	Archive(ctx context.Context, c *model.CanceledBooking) error
	// Архивная запись по ID исходного бронирования.
	GetArchived(ctx context.Context, bookingID uuid.UUID) (*model.CanceledBooking, error)
	// Количество архивных записей по ID исходного бронирования.
	CountArchived(ctx context.Context, bookingID uuid.UUID) (int64, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db      *gorm.DB
	dialect string
}

func NewGormBookingRepository(db *gorm.DB, dialect string) *GormBookingRepository {
	return &GormBookingRepository{db: db, dialect: dialect}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	var b model.Booking
	if err := forUpdate(r.db.WithContext(ctx), r.dialect).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) FindByIdempotencyKey(ctx context.Context, key string) (*model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Where("idempotency_key = ?", key).
		Limit(1).
		Find(&b).Error
	if err != nil {
		return nil, err
	}
	if b.ID == uuid.Nil {
		return nil, nil
	}
	return &b, nil
}

func (r *GormBookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	update := map[string]any{
		"specialist_id": booking.SpecialistID,
		"work_point_id": booking.WorkPointID,
		"service_id":    booking.ServiceID,
		"client_name":   booking.ClientName,
		"client_phone":  booking.ClientPhone,
		"start_at":      booking.StartAt,
		"end_at":        booking.EndAt,
	}
	return r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", booking.ID).
		Updates(update).
		Error
}

func (r *GormBookingRepository) SetExternalEventID(ctx context.Context, id uuid.UUID, externalID string) error {
	return r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ?", id).
		Update("external_event_id", externalID).
		Error
}

func (r *GormBookingRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Booking{})
	return res.RowsAffected, res.Error
}

func (r *GormBookingRepository) ListOverlapping(
	ctx context.Context,
	specialistID uuid.UUID,
	window calendar.TimeRange,
	exclude uuid.UUID,
) ([]model.Booking, error) {
	var out []model.Booking
	q := r.db.WithContext(ctx).
		Where("specialist_id = ?", specialistID).
		Where("start_at < ? AND end_at > ?", window.End, window.Start)
	if exclude != uuid.Nil {
		q = q.Where("id <> ?", exclude)
	}
	err := q.Order("start_at").Find(&out).Error
	return out, err
}

// Occupied реализует calendar.BookingSource.
func (r *GormBookingRepository) Occupied(
	ctx context.Context,
	specialistID uuid.UUID,
	window calendar.TimeRange,
	exclude uuid.UUID,
) ([]calendar.TimeRange, error) {
	bookings, err := r.ListOverlapping(ctx, specialistID, window, exclude)
	if err != nil {
		return nil, err
	}
	out := make([]calendar.TimeRange, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, calendar.TimeRange{Start: b.StartAt, End: b.EndAt})
	}
	return out, nil
}

func (r *GormBookingRepository) HasFutureForService(ctx context.Context, serviceID uuid.UUID, now time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("service_id = ? AND start_at > ?", serviceID, now).
		Count(&n).Error
	return n > 0, err
}

func (r *GormBookingRepository) ListStartingFrom(ctx context.Context, specialistID uuid.UUID, from time.Time) ([]model.Booking, error) {
	var out []model.Booking
	err := r.db.WithContext(ctx).
		Where("specialist_id = ? AND start_at >= ?", specialistID, from).
		Order("start_at").
		Find(&out).Error
	return out, err
}

func (r *GormBookingRepository) Archive(ctx context.Context, c *model.CanceledBooking) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormBookingRepository) GetArchived(ctx context.Context, bookingID uuid.UUID) (*model.CanceledBooking, error) {
	var c model.CanceledBooking
	if err := r.db.WithContext(ctx).First(&c, "booking_id = ?", bookingID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormBookingRepository) CountArchived(ctx context.Context, bookingID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.CanceledBooking{}).
		Where("booking_id = ?", bookingID).
		Count(&n).Error
	return n, err
}
