package email

import (
	"context"
	"fmt"

	"github.com/shandysiswandi/assetly/internal/otp/usecase"
	"github.com/shandysiswandi/assetly/internal/pkg/instrument"
	"github.com/shandysiswandi/assetly/internal/pkg/mail"
	"go.opentelemetry.io/otel/codes"
)

const subjectOTP = "Password Reset OTP"

const bodyOTP = "Dear %s,\n\n" +
	"Your OTP for password reset is: %s\n\n" +
	"This OTP will expire in %d minutes.\n\n" +
	"If you didn't request this, please ignore this email.\n\n" +
	"Do not share this OTP with anyone."

type Mail struct {
	client mail.Mail
	ins    instrument.Instrumentation
}

func New(client mail.Mail, ins instrument.Instrumentation) *Mail {
	return &Mail{client: client, ins: ins}
}

func (m *Mail) SendOTP(ctx context.Context, msg usecase.OTPMail) error {
	ctx, span := m.ins.Tracer("otp.outbound.email").Start(ctx, "SendOTP")
	defer span.End()

	name := msg.FullName
	if name == "" {
		name = "user"
	}

	if err := m.client.Send(ctx, mail.Message{
		To:       []string{msg.To},
		Subject:  subjectOTP,
		TextBody: fmt.Sprintf(bodyOTP, name, msg.Code, int(msg.TTL.Minutes())),
	}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
