package customers

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/logger"
	"storefront/internal/models"
)

// Profile is the contact information saved for a returning guest.
type Profile struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Directory issues guest tokens and stores one profile per email.
type Directory struct {
	repo       Repository
	log        *logger.Logger
	now        func() time.Time
	issueToken func() (string, error)
}

func NewDirectory(repo Repository, log *logger.Logger) (*Directory, error) {
	if repo == nil {
		return nil, errors.New("customers: repository is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Directory{
		repo:       repo,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
		issueToken: IssueToken,
	}, nil
}

// UpsertByEmail replaces the profile stored for the email and returns a fresh
// token. Any token previously handed out for that email stops resolving.
func (d *Directory) UpsertByEmail(ctx context.Context, profile Profile) (string, error) {
	email := strings.ToLower(strings.TrimSpace(profile.Email))
	if email == "" {
		return "", apperr.InvalidInput("email", "email is required to save a profile")
	}

	token, err := d.issueToken()
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInternal, err, "issue customer token")
	}

	record := models.Customer{
		Token:     token,
		Name:      strings.TrimSpace(profile.Name),
		Email:     email,
		Phone:     strings.TrimSpace(profile.Phone),
		Address:   strings.TrimSpace(profile.Address),
		CreatedAt: d.now(),
	}
	if err := d.repo.UpsertByEmail(ctx, record); err != nil {
		return "", apperr.Upstream(err, "save customer profile")
	}

	d.log.Info(d.log.WithField(ctx, "email", email), "customer profile saved")
	return token, nil
}

// Lookup resolves a bearer token to its profile.
func (d *Directory) Lookup(ctx context.Context, token string) (models.Customer, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Customer{}, apperr.New(apperr.CodeUnauthorized, "customer token required")
	}
	customer, err := d.repo.FindByToken(ctx, token)
	if errors.Is(err, ErrNotFound) {
		return models.Customer{}, apperr.New(apperr.CodeNotFound, "customer not found").With("entity", "customer")
	}
	if err != nil {
		return models.Customer{}, apperr.Upstream(err, "load customer")
	}
	return customer, nil
}

func (d *Directory) Count(ctx context.Context) (int64, error) {
	count, err := d.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Upstream(err, "count customers")
	}
	return count, nil
}
