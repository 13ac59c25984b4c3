package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"iaction/internal/fulfillment"
	"iaction/internal/validator"
)

const (
	EnrollTypeProduct = "product"
	EnrollTypeCourse  = "course"
)

type EnrollmentSender interface {
	SendFreeProduct(ctx context.Context, customerName, customerEmail, productID, productName string) error
	SendCourseEnrollment(ctx context.Context, in fulfillment.CourseEnrollment, isPaid bool) error
}

type EnrollmentUsecase struct {
	sender EnrollmentSender
	logger *slog.Logger
}

func NewEnrollmentUsecase(sender EnrollmentSender, logger *slog.Logger) *EnrollmentUsecase {
	return &EnrollmentUsecase{sender: sender, logger: logger}
}

type EnrollInput struct {
	Type          string
	ItemID        string
	ItemName      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	IsPaid        bool
}

// メール失敗は登録失敗にしない。Warningに入れて返す
type EnrollResult struct {
	Message string
	Warning string
}

func (u *EnrollmentUsecase) Enroll(ctx context.Context, in EnrollInput) (EnrollResult, error) {
	in.Type = strings.TrimSpace(in.Type)
	if err := validator.Required(in.Type, in.ItemID, in.ItemName, in.CustomerName, in.CustomerEmail); err != nil {
		return EnrollResult{}, validationError(err.Error())
	}
	if err := validator.MaxLen(in.ItemID, in.ItemName, in.CustomerName, in.CustomerEmail, in.CustomerPhone); err != nil {
		return EnrollResult{}, validationError(err.Error())
	}
	if err := validator.Email(in.CustomerEmail); err != nil {
		return EnrollResult{}, validationError(err.Error())
	}

	email := strings.TrimSpace(in.CustomerEmail)
	name := strings.TrimSpace(in.CustomerName)

	var err error
	switch in.Type {
	case EnrollTypeProduct:
		err = u.sender.SendFreeProduct(ctx, name, email, in.ItemID, in.ItemName)
	case EnrollTypeCourse:
		err = u.sender.SendCourseEnrollment(ctx, fulfillment.CourseEnrollment{
			CustomerName:  name,
			CustomerEmail: email,
			CourseID:      in.ItemID,
			CourseName:    in.ItemName,
		}, in.IsPaid)
	default:
		return EnrollResult{}, validationError("type must be product or course")
	}

	if err != nil {
		err = fmt.Errorf("%w: %v", ErrExternal, err)
		u.logger.Error("enrollment email failed", "type", in.Type, "item_id", in.ItemID, "email", email, "err", err)
		return EnrollResult{
			Message: "Enrollment successful",
			Warning: "Email delivery may be delayed",
		}, nil
	}

	u.logger.Info("enrollment completed", "type", in.Type, "item_id", in.ItemID, "email", email)
	return EnrollResult{Message: "Enrollment successful, email sent"}, nil
}
