package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"academy_backend/internal/appErrors"
	"academy_backend/internal/blockchain"
	"academy_backend/internal/logger"
	"academy_backend/internal/models"
	"academy_backend/internal/pdf"
	"academy_backend/internal/repositories"
	"academy_backend/internal/storage"
)

// CertificateService issues completion certificates: renders the PDF,
// uploads it, records the row and anchors it on-chain when a real minter
// is configured. Issue is idempotent per (user, course).
type CertificateService struct {
	repos         *repositories.Registry
	renderer      pdf.Renderer
	store         storage.Storage
	minter        blockchain.Minter
	notifications *NotificationService
}

func NewCertificateService(
	repos *repositories.Registry,
	renderer pdf.Renderer,
	store storage.Storage,
	minter blockchain.Minter,
	notifications *NotificationService,
) *CertificateService {
	return &CertificateService{
		repos:         repos,
		renderer:      renderer,
		store:         store,
		minter:        minter,
		notifications: notifications,
	}
}

// Issue creates the certificate for a completed course. A second call for
// the same (user, course) returns the existing row untouched.
func (s *CertificateService) Issue(ctx context.Context, site *models.Site, userID, courseID string) (*models.Certificate, error) {
	existing, err := s.repos.Certificates.FindByUserAndCourse(ctx, site.ID, userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !appErrors.Is(err, repositories.ErrNotFound) {
		return nil, appErrors.InternalError(err)
	}

	user, err := s.repos.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, appErrors.ErrUserNotFound
	}
	if user.SiteID != site.ID {
		return nil, appErrors.ErrCrossTenant
	}
	course, err := s.repos.Courses.FindCourse(ctx, site.ID, courseID)
	if err != nil {
		return nil, appErrors.ErrCourseNotFound
	}

	now := time.Now().UTC()
	cert := &models.Certificate{
		UserID:   userID,
		CourseID: courseID,
		Status:   models.CertificateStatusIssued,
		IssuedAt: &now,
	}
	cert.ID = uuid.NewString()
	cert.SiteID = site.ID

	rendered, err := s.renderer.RenderCertificate(pdf.CertificateData{
		CertificateID: cert.ID,
		StudentName:   user.FullName(),
		CourseTitle:   course.Title,
		SiteName:      site.Name,
		IssuedAt:      now,
	})
	if err != nil {
		return nil, appErrors.InternalError(fmt.Errorf("failed to render certificate: %w", err))
	}

	path := fmt.Sprintf("certificates/%s/%s_%s.pdf", userID, courseID, cert.ID)
	if err := s.store.Save(ctx, path, bytes.NewReader(rendered), "application/pdf"); err != nil {
		return nil, appErrors.Unavailable(fmt.Errorf("failed to upload certificate: %w", err))
	}
	cert.CertificateURL = s.store.URL(path)

	// Minting is best-effort: a failed mint leaves the certificate issued.
	if s.minter != nil {
		if result, mintErr := s.minter.Mint(ctx, cert.ID); mintErr == nil && result != nil {
			cert.Status = models.CertificateStatusMinted
			cert.ChainTxHash = result.TxHash
			cert.ChainTokenID = result.TokenID
			mintedAt := time.Now().UTC()
			cert.MintedAt = &mintedAt
		} else if mintErr != nil {
			logger.Warn("Certificate minting failed", "certificate_id", cert.ID, "error", mintErr)
		}
	}

	if err := s.repos.Certificates.Create(ctx, cert); err != nil {
		// A concurrent issue won the race; return its row.
		if appErrors.Is(err, repositories.ErrAlreadyExists) {
			return s.repos.Certificates.FindByUserAndCourse(ctx, site.ID, userID, courseID)
		}
		return nil, appErrors.InternalError(err)
	}

	s.stampEnrollment(ctx, site.ID, userID, courseID, now)

	s.notifications.NotifyInApp(ctx, site, userID, NotificationCertificateIssued,
		"Certificate issued",
		fmt.Sprintf("Your certificate for %q is ready", course.Title),
		map[string]interface{}{"certificate_id": cert.ID, "course_id": courseID},
	)
	s.notifications.SendEmail(ctx, site, user,
		"Your certificate is ready", "certificate_issued",
		map[string]interface{}{
			"Name":           user.FullName(),
			"CourseTitle":    course.Title,
			"SiteName":       site.Name,
			"CertificateURL": cert.CertificateURL,
		},
	)

	return cert, nil
}

func (s *CertificateService) stampEnrollment(ctx context.Context, siteID, userID, courseID string, at time.Time) {
	enrollment, err := s.repos.Enrollments.FindByUserAndCourse(ctx, siteID, userID, courseID)
	if err != nil {
		return
	}
	enrollment.CertificateIssuedAt = &at
	if err := s.repos.Enrollments.Update(ctx, enrollment); err != nil {
		logger.Warn("Failed to stamp enrollment with certificate date",
			"enrollment_id", enrollment.ID,
			"error", err,
		)
	}
}

// VerificationResult is what the public verification endpoint returns.
type VerificationResult struct {
	Valid              bool       `json:"valid"`
	RecipientName      string     `json:"recipient_name,omitempty"`
	CourseTitle        string     `json:"course_title,omitempty"`
	IssuedAt           *time.Time `json:"issued_at,omitempty"`
	BlockchainVerified bool       `json:"blockchain_verified"`
}

// Verify checks a certificate id without auth. The lookup is scoped to
// the requesting tenant, so a certificate id from another site reports
// valid=false. Revoked certificates report valid=false without revealing
// details.
func (s *CertificateService) Verify(ctx context.Context, site *models.Site, certificateID string) (*VerificationResult, error) {
	cert, err := s.repos.Certificates.Find(ctx, site.ID, certificateID)
	if appErrors.Is(err, repositories.ErrNotFound) {
		return &VerificationResult{Valid: false}, nil
	}
	if err != nil {
		return nil, appErrors.InternalError(err)
	}

	valid := cert.Status == models.CertificateStatusIssued || cert.Status == models.CertificateStatusMinted
	if !valid {
		return &VerificationResult{Valid: false}, nil
	}

	result := &VerificationResult{
		Valid:    true,
		IssuedAt: cert.IssuedAt,
	}
	if user, err := s.repos.Users.FindByID(ctx, cert.UserID); err == nil {
		result.RecipientName = user.FullName()
	}
	if course, err := s.repos.Courses.FindCourse(ctx, site.ID, cert.CourseID); err == nil {
		result.CourseTitle = course.Title
	}
	if s.minter != nil {
		if verified, err := s.minter.Verify(ctx, certificateID); err == nil {
			result.BlockchainVerified = verified
		}
	}
	return result, nil
}

func (s *CertificateService) ListByUser(ctx context.Context, site *models.Site, userID string) ([]models.Certificate, error) {
	certs, err := s.repos.Certificates.FindByUser(ctx, site.ID, userID)
	if err != nil {
		return nil, appErrors.InternalError(err)
	}
	return certs, nil
}
