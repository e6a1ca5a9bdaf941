package user

import (
	"context"

	"github.com/darasahq/darasa/core"
)

type serviceMock struct {
	service
}

// NewServiceMock returns a ServiceInterface whose password reset mails are
// sent synchronously, so tests can assert on them.
func NewServiceMock(repo Repository, mailSvc core.EmailService) ServiceInterface {
	return &serviceMock{
		service: service{
			repo:    repo,
			mailSvc: mailSvc,
		},
	}
}

func (svc *serviceMock) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
	if err != nil {
		return err
	}
	// run synchronously
	svc.sendPasswordResetMail(usr)
	return nil
}
