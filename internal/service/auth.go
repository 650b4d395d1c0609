package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"bakerlane-api/internal/apperr"
	"bakerlane-api/internal/client"
	"bakerlane-api/internal/config"
	"bakerlane-api/internal/dto"
	"bakerlane-api/internal/model"
	"bakerlane-api/internal/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/labstack/gommon/log"
	"gorm.io/gorm"
)

const (
	otpLength = 6
	otpTTL    = 5 * time.Minute

	// compared against when the contact is unknown so the response takes as
	// long as a real mismatch
	dummyPassword = "bakerlane-timing-guard"
)

type AuthService interface {
	Register(ctx context.Context, kind model.IdentityKind, req *dto.RegisterRequest) (*model.Identity, error)
	Login(ctx context.Context, kind model.IdentityKind, contact, password string) (*model.Session, error)
	Logout(ctx context.Context, token string) error
	ResolveSession(ctx context.Context, token string) (*model.Identity, error)
	UpdateProfile(ctx context.Context, identity *model.Identity, req *dto.UpdateProfileRequest) (*model.Identity, error)
	UpdateAddress(ctx context.Context, buyer *model.Identity, req *dto.UpdateAddressRequest) (*model.Identity, error)
	UpdatePassword(ctx context.Context, identity *model.Identity, sessionID, current, next string) error
	SendOTP(ctx context.Context, kind model.IdentityKind, email string) error
	VerifyOTP(ctx context.Context, kind model.IdentityKind, email, code string) error

	AdminLogin(ctx context.Context, email, password string) (*model.AdminSession, error)
	AdminLogout(ctx context.Context, token string) error
	ResolveAdminSession(ctx context.Context, token string) (*model.Admin, error)
	SeedAdmin(ctx context.Context, email, password string) error
}

type authServiceImpl struct {
	db           *gorm.DB
	identityRepo repository.IdentityRepository
	sessionRepo  repository.SessionRepository
	shopRepo     repository.ShopRepository
	adminRepo    repository.AdminRepository
	otpRepo      repository.OTPRepository
	hasher       client.PasswordHasher
	notifier     Notifier
	cfg          config.Session
	logger       *log.Logger
	now          func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	db *gorm.DB,
	identityRepo repository.IdentityRepository,
	sessionRepo repository.SessionRepository,
	shopRepo repository.ShopRepository,
	adminRepo repository.AdminRepository,
	otpRepo repository.OTPRepository,
	hasher client.PasswordHasher,
	notifier Notifier,
	cfg config.Session,
	logger *log.Logger,
	now func() time.Time,
) AuthService {
	if now == nil {
		now = time.Now
	}
	return &authServiceImpl{
		db:           db,
		identityRepo: identityRepo,
		sessionRepo:  sessionRepo,
		shopRepo:     shopRepo,
		adminRepo:    adminRepo,
		otpRepo:      otpRepo,
		hasher:       hasher,
		notifier:     notifier,
		cfg:          cfg,
		logger:       logger,
		now:          now,
	}
}

func (s *authServiceImpl) Register(ctx context.Context, kind model.IdentityKind, req *dto.RegisterRequest) (*model.Identity, error) {
	if !kind.Valid() {
		return nil, apperr.Validation("unknown account kind", nil)
	}
	if !req.Terms {
		return nil, apperr.Validation("terms must be accepted", map[string]string{"terms": "required"})
	}

	var email, phone *string
	if e := model.NormalizeEmail(req.Email); e != "" {
		email = &e
	}
	if p := strings.TrimSpace(req.Phone); p != "" {
		phone = &p
	}
	if email == nil && phone == nil {
		return nil, apperr.Validation("email or phone is required", map[string]string{"email": "required_without", "phone": "required_without"})
	}
	if kind == model.KindBuyer && (req.Longitude != nil || req.Latitude != nil) {
		return nil, apperr.Validation("location is only kept for sellers", nil)
	}
	if (req.Longitude == nil) != (req.Latitude == nil) {
		return nil, apperr.Validation("longitude and latitude go together", map[string]string{"longitude": "required_with", "latitude": "required_with"})
	}

	exists, err := s.identityRepo.ExistsByContact(ctx, kind, email, phone)
	if err != nil {
		return nil, fmt.Errorf("check existing account: %w", err)
	}
	if exists {
		return nil, apperr.ErrAlreadyExists.With("an account with this email or phone already exists")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	identity := &model.Identity{
		ID:           uuid.NewString(),
		Kind:         kind,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		Phone:        phone,
		PasswordHash: hash,
		Longitude:    req.Longitude,
		Latitude:     req.Latitude,
	}
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		if isDuplicateKey(err) {
			return nil, apperr.ErrAlreadyExists.With("an account with this email or phone already exists")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	return identity, nil
}

// Login verifies credentials and opens a session. The session cap is
// enforced before the insert, inside one transaction holding the identity
// row, so concurrent logins cannot leave more than the cap behind.
func (s *authServiceImpl) Login(ctx context.Context, kind model.IdentityKind, contact, password string) (*model.Session, error) {
	if !kind.Valid() {
		return nil, apperr.ErrInvalidCredentials
	}

	identity, err := s.identityRepo.FindByContact(ctx, kind, strings.TrimSpace(contact))
	if err != nil {
		if isNotFound(err) {
			_, _ = s.hasher.Verify(password, s.timingHash())
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find account: %w", err)
	}

	ok, err := s.hasher.Verify(password, identity.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &model.Session{
		ID:         uuid.NewString(),
		IdentityID: identity.ID,
		Seq:        1,
		Kind:       identity.Kind,
		ExpiresAt:  now.Add(s.cfg.TTL),
		CreatedAt:  now,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.identityRepo.LockForUpdate(ctx, tx, identity.ID); err != nil {
			return fmt.Errorf("lock account: %w", err)
		}

		existing, err := s.sessionRepo.ListByIdentity(ctx, tx, identity.ID)
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		var evict []string
		live := make([]*model.Session, 0, len(existing))
		for _, sess := range existing {
			if sess.Seq >= session.Seq {
				session.Seq = sess.Seq + 1
			}
			if sess.Expired(now) {
				evict = append(evict, sess.ID)
				continue
			}
			live = append(live, sess)
		}
		for len(live) >= model.MaxSessionsPerIdentity {
			evict = append(evict, live[0].ID)
			live = live[1:]
		}

		if err := s.sessionRepo.DeleteByIDs(ctx, tx, evict); err != nil {
			return fmt.Errorf("evict sessions: %w", err)
		}
		if err := s.sessionRepo.Create(ctx, tx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}

		if identity.Kind == model.KindSeller {
			if err := s.shopRepo.CreateIfAbsent(ctx, tx, newShopFor(identity)); err != nil {
				return fmt.Errorf("create shop: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return session, nil
}

func newShopFor(identity *model.Identity) *model.Shop {
	return &model.Shop{
		ID:           uuid.NewString(),
		ClientID:     identity.ID,
		ShopName:     identity.Name,
		Slug:         slug.Make(identity.Name),
		ShopCategory: model.DefaultShopCategory,
		ProfileImage: model.DefaultProfileImage,
		IsActive:     true,
		Status:       model.ShopStatusInactive,
	}
}

// Logout succeeds whether or not the session still exists.
func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := s.sessionRepo.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *authServiceImpl) ResolveSession(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, apperr.ErrSessionNotFound
	}

	session, err := s.sessionRepo.FindByID(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, apperr.ErrSessionNotFound
	}

	identity, err := s.identityRepo.FindByID(ctx, session.Kind, session.IdentityID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrSessionNotFound
		}
		return nil, fmt.Errorf("find session owner: %w", err)
	}

	return identity, nil
}

func (s *authServiceImpl) UpdateProfile(ctx context.Context, identity *model.Identity, req *dto.UpdateProfileRequest) (*model.Identity, error) {
	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Longitude != nil || req.Latitude != nil {
		if identity.Kind != model.KindSeller {
			return nil, apperr.Validation("location is only kept for sellers", nil)
		}
		if req.Longitude == nil || req.Latitude == nil {
			return nil, apperr.Validation("longitude and latitude go together", map[string]string{"longitude": "required_with", "latitude": "required_with"})
		}
		fields["longitude"] = *req.Longitude
		fields["latitude"] = *req.Latitude
	}

	if err := s.identityRepo.UpdateProfile(ctx, identity.ID, fields); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	updated, err := s.identityRepo.FindByID(ctx, identity.Kind, identity.ID)
	if err != nil {
		return nil, storeErr(err, "reload profile", "account")
	}
	return updated, nil
}

// UpdatePassword revokes every other session of the identity once the new
// password is stored.
// UpdateAddress replaces the buyer's delivery address. Pincodes are six
// digits and never start with zero.
func (s *authServiceImpl) UpdateAddress(ctx context.Context, buyer *model.Identity, req *dto.UpdateAddressRequest) (*model.Identity, error) {
	if buyer.Kind != model.KindBuyer {
		return nil, apperr.ErrForbidden.With("only buyers keep a delivery address")
	}

	address := model.Address{
		FlatNo:       strings.TrimSpace(req.FlatNo),
		BuildingName: strings.TrimSpace(req.BuildingName),
		Area:         strings.TrimSpace(req.Area),
		City:         strings.TrimSpace(req.City),
		Pincode:      strings.TrimSpace(req.Pincode),
		State:        strings.TrimSpace(req.State),
	}
	if !validPincode(address.Pincode) {
		return nil, apperr.Validation("invalid 6-digit pincode", map[string]string{"pincode": "pincode"})
	}
	if address.FlatNo == "" {
		return nil, apperr.Validation("flat/house no is required", map[string]string{"flatNo": "required"})
	}

	fields := map[string]interface{}{
		"address_flat_no":       address.FlatNo,
		"address_building_name": address.BuildingName,
		"address_area":          address.Area,
		"address_city":          address.City,
		"address_pincode":       address.Pincode,
		"address_state":         address.State,
	}
	if err := s.identityRepo.UpdateProfile(ctx, buyer.ID, fields); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}

	updated, err := s.identityRepo.FindByID(ctx, model.KindBuyer, buyer.ID)
	if err != nil {
		return nil, storeErr(err, "reload profile", "account")
	}
	return updated, nil
}

func validPincode(pincode string) bool {
	if len(pincode) != 6 || pincode[0] == '0' {
		return false
	}
	for _, r := range pincode {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (s *authServiceImpl) UpdatePassword(ctx context.Context, identity *model.Identity, sessionID, current, next string) error {
	ok, err := s.hasher.Verify(current, identity.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return apperr.ErrInvalidCredentials.With("current password is incorrect")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.identityRepo.UpdatePassword(ctx, identity.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := s.sessionRepo.DeleteOthers(ctx, identity.ID, sessionID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return nil
}

// SendOTP answers the same way for unknown addresses.
func (s *authServiceImpl) SendOTP(ctx context.Context, kind model.IdentityKind, email string) error {
	email = model.NormalizeEmail(email)

	identity, err := s.identityRepo.FindByEmail(ctx, kind, email)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return fmt.Errorf("find account: %w", err)
	}

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	now := s.now().UTC()
	err = s.otpRepo.Upsert(ctx, &model.OTP{
		Kind:      kind,
		Email:     email,
		Code:      code,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	s.notifier.Notify(Message{
		Email:   identity.EmailValue(),
		Kind:    model.TemplateOTP,
		Subject: "Your BakerLane verification code",
		Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(otpTTL.Minutes())),
	})
	return nil
}

func (s *authServiceImpl) VerifyOTP(ctx context.Context, kind model.IdentityKind, email, code string) error {
	email = model.NormalizeEmail(email)

	otp, err := s.otpRepo.Find(ctx, kind, email)
	if err != nil {
		if isNotFound(err) {
			return apperr.ErrInvalidOTP
		}
		return fmt.Errorf("find otp: %w", err)
	}
	if !s.now().Before(otp.ExpiresAt) {
		return apperr.ErrInvalidOTP
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(code)) != 1 {
		return apperr.ErrInvalidOTP
	}

	identity, err := s.identityRepo.FindByEmail(ctx, kind, email)
	if err != nil {
		return storeErr(err, "find account", "account")
	}
	if err := s.identityRepo.MarkVerified(ctx, kind, identity.ID); err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	if err := s.otpRepo.Delete(ctx, kind, email); err != nil {
		s.logger.Warnj(log.JSON{"msg": "delete used otp", "error": err.Error()})
	}
	return nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n.Int64()), nil
}

func (s *authServiceImpl) timingHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			s.logger.Errorj(log.JSON{"msg": "build timing hash", "error": err.Error()})
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *authServiceImpl) AdminLogin(ctx context.Context, email, password string) (*model.AdminSession, error) {
	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			_, _ = s.hasher.Verify(password, s.timingHash())
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}

	ok, err := s.hasher.Verify(password, admin.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return nil, apperr.ErrInvalidCredentials
	}

	now := s.now().UTC()
	session := &model.AdminSession{
		ID:        uuid.NewString(),
		AdminID:   admin.ID,
		ExpiresAt: now.Add(s.cfg.AdminTTL),
		CreatedAt: now,
	}
	if err := s.sessionRepo.CreateAdmin(ctx, session); err != nil {
		return nil, fmt.Errorf("create admin session: %w", err)
	}

	return session, nil
}

func (s *authServiceImpl) AdminLogout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if _, err := s.sessionRepo.DeleteAdmin(ctx, token); err != nil {
		return fmt.Errorf("delete admin session: %w", err)
	}
	return nil
}

func (s *authServiceImpl) ResolveAdminSession(ctx context.Context, token string) (*model.Admin, error) {
	if token == "" {
		return nil, apperr.ErrUnauthorized
	}

	session, err := s.sessionRepo.FindAdminByID(ctx, token)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("find admin session: %w", err)
	}
	if session.Expired(s.now()) {
		return nil, apperr.ErrUnauthorized
	}

	admin, err := s.adminRepo.FindByID(ctx, session.AdminID)
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.ErrUnauthorized
		}
		return nil, fmt.Errorf("find admin: %w", err)
	}

	return admin, nil
}

// SeedAdmin creates the first super admin if no admin has that email yet.
func (s *authServiceImpl) SeedAdmin(ctx context.Context, email, password string) error {
	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	created, err := s.adminRepo.CreateIfAbsent(ctx, &model.Admin{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleSuperAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		s.logger.Infoj(log.JSON{"msg": "seeded admin", "email": email})
	}
	return nil
}
