package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/adoption-service/internal/domain"
	"github.com/spec-kit/adoption-service/internal/events"
	"github.com/spec-kit/adoption-service/internal/repository"
	apperrors "github.com/spec-kit/adoption-service/pkg/util/errorutil"
)

// TransitionRecorder counts approve and reject outcomes.
type TransitionRecorder interface {
	RecordTransition(action, outcome string)
}

// AdoptionService owns the adoption request lifecycle and keeps the request,
// its pet and the applicant's adopted set consistent.
type AdoptionService struct {
	users      repository.UserRepository
	pets       repository.PetRepository
	vendors    repository.VendorRepository
	adoptions  repository.AdoptionRepository
	dispatcher events.Dispatcher
	recorder   TransitionRecorder
	logger     *zap.Logger
	clock      Clock
}

// AdoptionDependencies bundles collaborators for the adoption service.
type AdoptionDependencies struct {
	UserRepo     repository.UserRepository
	PetRepo      repository.PetRepository
	VendorRepo   repository.VendorRepository
	AdoptionRepo repository.AdoptionRepository
	Dispatcher   events.Dispatcher
	Recorder     TransitionRecorder
	Logger       *zap.Logger
	Clock        Clock
}

// SubmitAdoptionInput is the application form.
type SubmitAdoptionInput struct {
	AdoptionID        string
	PetID             string
	ApplicantID       string
	FullName          string
	Email             string
	Phone             string
	Address           string
	ReasonForAdoption string
}

// ReconcileReport lists the adopted-set repairs made by Reconcile.
type ReconcileReport struct {
	Added   []domain.AdoptedPair
	Removed []domain.AdoptedPair
}

// NewAdoptionService constructs the service.
func NewAdoptionService(deps AdoptionDependencies) *AdoptionService {
	return &AdoptionService{
		users:      deps.UserRepo,
		pets:       deps.PetRepo,
		vendors:    deps.VendorRepo,
		adoptions:  deps.AdoptionRepo,
		dispatcher: deps.Dispatcher,
		recorder:   deps.Recorder,
		logger:     nopLogger(deps.Logger),
		clock:      deps.Clock,
	}
}

// SubmitRequest creates a Pending request with a snapshot of the applicant's
// contact details. The pet's status is left unchanged, so several requests may
// be pending for one pet.
func (s *AdoptionService) SubmitRequest(ctx context.Context, input SubmitAdoptionInput) (*domain.AdoptionRequest, error) {
	input = trimSubmitInput(input)
	if err := requireFields(map[string]string{
		"adoptionId":        input.AdoptionID,
		"petId":             input.PetID,
		"applicantId":       input.ApplicantID,
		"fullName":          input.FullName,
		"email":             input.Email,
		"phone":             input.Phone,
		"address":           input.Address,
		"reasonForAdoption": input.ReasonForAdoption,
	}, "adoptionId", "petId", "applicantId", "fullName", "email", "phone", "address", "reasonForAdoption"); err != nil {
		return nil, err
	}
	if !validEmail(input.Email) {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"fields": []string{"email"}})
	}

	applicant, err := s.users.GetByID(ctx, input.ApplicantID)
	if err != nil {
		return nil, storeError(err, "applicant", map[string]any{"applicantId": input.ApplicantID})
	}
	if applicant.Ban.IsBanned && !applicant.Ban.UnbanDue(s.clock.now()) {
		return nil, apperrors.NewForbidden("banned users cannot submit adoption requests")
	}

	pet, err := s.pets.GetByID(ctx, input.PetID)
	if err != nil {
		return nil, storeError(err, "pet", map[string]any{"petId": input.PetID})
	}
	vendor, err := s.vendors.GetByID(ctx, pet.VendorID)
	if err != nil {
		return nil, storeError(err, "vendor", map[string]any{"vendorId": pet.VendorID})
	}

	req := &domain.AdoptionRequest{
		ID:          uuid.NewString(),
		AdoptionID:  input.AdoptionID,
		ApplicantID: applicant.ID,
		PetID:       pet.ID,
		VendorID:    vendor.ID,
		Snapshot: domain.ApplicantSnapshot{
			FullName: input.FullName,
			Email:    input.Email,
			Phone:    input.Phone,
			Address:  input.Address,
			PetName:  pet.Name,
		},
		ReasonForAdoption: input.ReasonForAdoption,
		Status:            domain.AdoptionStatusPending,
	}
	if err := s.adoptions.Create(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("adoptionId already in use", map[string]any{"adoptionId": input.AdoptionID})
		}
		return nil, storeError(err, "adoption request", nil)
	}

	payload := adoptionPayload(req)
	payload.VendorEmail = vendor.Email
	payload.VendorName = vendor.OrganizationName
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventAdoptionSubmitted, req.AdoptionID, &applicant.ID, s.clock.now(), payload))
	return req, nil
}

// ApproveRequest approves the request and marks the pet Adopted as one unit,
// then adds the pet to the applicant's adopted set. Both steps are idempotent:
// approving an already approved request re-runs only the set insert, and a
// rejected request is left as it is. Approving a second request for a pet
// that is already adopted fails with a conflict.
func (s *AdoptionService) ApproveRequest(ctx context.Context, adoptionID, applicantID, petID string) (*domain.AdoptionRequest, error) {
	if err := requireFields(map[string]string{
		"adoptionId": adoptionID, "applicantId": applicantID, "petId": petID,
	}, "adoptionId", "applicantId", "petId"); err != nil {
		return nil, err
	}

	applicant, err := s.users.GetByID(ctx, applicantID)
	if err != nil {
		return nil, storeError(err, "applicant", map[string]any{"applicantId": applicantID})
	}
	req, err := s.requestForPet(ctx, adoptionID, petID)
	if err != nil {
		return nil, err
	}
	if req.ApplicantID != applicant.ID {
		return nil, apperrors.NewNotFound("adoption request", map[string]any{"adoptionId": adoptionID, "applicantId": applicantID})
	}

	outcome, err := s.adoptions.Approve(ctx, adoptionID)
	if err != nil {
		if errors.Is(err, repository.ErrPetUnavailable) {
			s.record("approve", "conflict")
			return nil, apperrors.NewConflict("pet has already been adopted through another request", map[string]any{"petId": petID})
		}
		return nil, storeError(err, "adoption request", map[string]any{"adoptionId": adoptionID})
	}

	if outcome.Request.Status == domain.AdoptionStatusApproved {
		added, err := s.users.AddAdoptedPet(ctx, applicant.ID, petID)
		if err != nil {
			return nil, storeError(err, "adopted pet", nil)
		}
		if added && !outcome.Changed {
			s.logger.Info("repaired missing adopted pet entry",
				zap.String("adoption_id", adoptionID), zap.String("user_id", applicant.ID), zap.String("pet_id", petID))
		}
	}

	if !outcome.Changed {
		s.record("approve", "noop")
		return outcome.Request, nil
	}
	s.record("approve", "changed")
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventAdoptionApproved, adoptionID, nil, s.clock.now(), adoptionPayload(outcome.Request)))
	return outcome.Request, nil
}

// RejectRequest rejects a Pending request. Terminal requests are returned
// unchanged, so a rejection never undoes an approval. Pet status and the
// applicant's adopted set are not touched.
func (s *AdoptionService) RejectRequest(ctx context.Context, adoptionID, petID string) (*domain.AdoptionRequest, error) {
	if err := requireFields(map[string]string{"adoptionId": adoptionID, "petId": petID}, "adoptionId", "petId"); err != nil {
		return nil, err
	}
	if _, err := s.requestForPet(ctx, adoptionID, petID); err != nil {
		return nil, err
	}

	outcome, err := s.adoptions.Reject(ctx, adoptionID)
	if err != nil {
		return nil, storeError(err, "adoption request", map[string]any{"adoptionId": adoptionID})
	}
	if !outcome.Changed {
		s.record("reject", "noop")
		return outcome.Request, nil
	}
	s.record("reject", "changed")
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventAdoptionRejected, adoptionID, nil, s.clock.now(), adoptionPayload(outcome.Request)))
	return outcome.Request, nil
}

// RejectCompetingRequests rejects every request still Pending for a pet that
// has been adopted. It never runs as part of approval.
func (s *AdoptionService) RejectCompetingRequests(ctx context.Context, petID string) ([]domain.AdoptionRequest, error) {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return nil, storeError(err, "pet", map[string]any{"petId": petID})
	}
	if pet.Status != domain.PetStatusAdopted {
		return nil, apperrors.NewConflict("pet has not been adopted", map[string]any{"petId": petID, "status": pet.Status})
	}

	rejected, err := s.adoptions.RejectPendingForPet(ctx, petID)
	if err != nil {
		return nil, storeError(err, "adoption request", nil)
	}
	for i := range rejected {
		s.record("reject", "changed")
		publish(ctx, s.dispatcher, s.logger,
			events.New(events.EventAdoptionRejected, rejected[i].AdoptionID, nil, s.clock.now(), adoptionPayload(&rejected[i])))
	}
	return rejected, nil
}

// ListAdoptedPets returns the hydrated pets in the user's adopted set.
func (s *AdoptionService) ListAdoptedPets(ctx context.Context, userID string) ([]domain.Pet, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storeError(err, "user", map[string]any{"userId": userID})
	}
	pets, err := s.users.ListAdoptedPets(ctx, userID)
	if err != nil {
		return nil, storeError(err, "adopted pets", nil)
	}
	if pets == nil {
		pets = []domain.Pet{}
	}
	return pets, nil
}

// GetRequest fetches a request by its adoptionId.
func (s *AdoptionService) GetRequest(ctx context.Context, adoptionID string) (*domain.AdoptionRequest, error) {
	req, err := s.adoptions.GetByAdoptionID(ctx, adoptionID)
	if err != nil {
		return nil, storeError(err, "adoption request", map[string]any{"adoptionId": adoptionID})
	}
	return req, nil
}

// ListApplicantRequests lists the requests a user has submitted.
func (s *AdoptionService) ListApplicantRequests(ctx context.Context, userID string, limit, offset int) ([]domain.AdoptionRequest, error) {
	reqs, err := s.adoptions.List(ctx, repository.AdoptionFilter{ApplicantID: &userID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, storeError(err, "adoption requests", nil)
	}
	return reqs, nil
}

// ListVendorRequests lists the requests addressed to a vendor, optionally
// narrowed by status.
func (s *AdoptionService) ListVendorRequests(ctx context.Context, vendorID string, statuses []domain.AdoptionStatus, limit, offset int) ([]domain.AdoptionRequest, error) {
	reqs, err := s.adoptions.List(ctx, repository.AdoptionFilter{VendorID: &vendorID, Statuses: statuses, Limit: limit, Offset: offset})
	if err != nil {
		return nil, storeError(err, "adoption requests", nil)
	}
	return reqs, nil
}

// AuthorizePetManager checks that the actor may decide requests for petID: an
// admin, or the user who owns the pet's vendor.
func (s *AdoptionService) AuthorizePetManager(ctx context.Context, actor Actor, petID string) error {
	pet, err := s.pets.GetByID(ctx, petID)
	if err != nil {
		return storeError(err, "pet", map[string]any{"petId": petID})
	}
	if actor.IsAdmin() {
		return nil
	}
	vendor, err := s.vendors.GetByID(ctx, pet.VendorID)
	if err != nil {
		return storeError(err, "vendor", nil)
	}
	if vendor.UserID != actor.UserID {
		return apperrors.NewForbidden("only the listing vendor may manage this pet's requests")
	}
	return nil
}

// Reconcile makes every user's adopted set match the Approved requests:
// missing entries are added and unbacked entries are removed.
func (s *AdoptionService) Reconcile(ctx context.Context) (ReconcileReport, error) {
	report := ReconcileReport{Added: []domain.AdoptedPair{}, Removed: []domain.AdoptedPair{}}

	approved, err := s.adoptions.ListApproved(ctx)
	if err != nil {
		return report, storeError(err, "adoption requests", nil)
	}
	expected := make(map[domain.AdoptedPair]struct{}, len(approved))
	for _, req := range approved {
		expected[domain.AdoptedPair{UserID: req.ApplicantID, PetID: req.PetID}] = struct{}{}
	}

	actual, err := s.users.ListAdoptedPairs(ctx)
	if err != nil {
		return report, storeError(err, "adopted pets", nil)
	}
	present := make(map[domain.AdoptedPair]struct{}, len(actual))
	for _, pair := range actual {
		present[pair] = struct{}{}
		if _, ok := expected[pair]; ok {
			continue
		}
		if err := s.users.RemoveAdoptedPet(ctx, pair.UserID, pair.PetID); err != nil {
			return report, storeError(err, "adopted pets", nil)
		}
		report.Removed = append(report.Removed, pair)
	}

	for _, req := range approved {
		pair := domain.AdoptedPair{UserID: req.ApplicantID, PetID: req.PetID}
		if _, ok := present[pair]; ok {
			continue
		}
		added, err := s.users.AddAdoptedPet(ctx, pair.UserID, pair.PetID)
		if err != nil {
			return report, storeError(err, "adopted pets", nil)
		}
		if added {
			report.Added = append(report.Added, pair)
		}
		present[pair] = struct{}{}
	}

	if len(report.Added) > 0 || len(report.Removed) > 0 {
		s.logger.Info("adopted pets reconciled", zap.Int("added", len(report.Added)), zap.Int("removed", len(report.Removed)))
	}
	return report, nil
}

// requestForPet loads the pet and the request and checks the request belongs
// to that pet.
func (s *AdoptionService) requestForPet(ctx context.Context, adoptionID, petID string) (*domain.AdoptionRequest, error) {
	if _, err := s.pets.GetByID(ctx, petID); err != nil {
		return nil, storeError(err, "pet", map[string]any{"petId": petID})
	}
	req, err := s.adoptions.GetByAdoptionID(ctx, adoptionID)
	if err != nil {
		return nil, storeError(err, "adoption request", map[string]any{"adoptionId": adoptionID})
	}
	if req.PetID != petID {
		return nil, apperrors.NewNotFound("adoption request", map[string]any{"adoptionId": adoptionID, "petId": petID})
	}
	return req, nil
}

func (s *AdoptionService) record(action, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordTransition(action, outcome)
	}
}

func adoptionPayload(req *domain.AdoptionRequest) events.AdoptionPayload {
	return events.AdoptionPayload{
		AdoptionID:     req.AdoptionID,
		ApplicantID:    req.ApplicantID,
		ApplicantName:  req.Snapshot.FullName,
		ApplicantEmail: req.Snapshot.Email,
		ApplicantPhone: req.Snapshot.Phone,
		PetID:          req.PetID,
		PetName:        req.Snapshot.PetName,
		VendorID:       req.VendorID,
	}
}

func trimSubmitInput(in SubmitAdoptionInput) SubmitAdoptionInput {
	return SubmitAdoptionInput{
		AdoptionID:        strings.TrimSpace(in.AdoptionID),
		PetID:             strings.TrimSpace(in.PetID),
		ApplicantID:       strings.TrimSpace(in.ApplicantID),
		FullName:          strings.TrimSpace(in.FullName),
		Email:             strings.TrimSpace(in.Email),
		Phone:             strings.TrimSpace(in.Phone),
		Address:           strings.TrimSpace(in.Address),
		ReasonForAdoption: strings.TrimSpace(in.ReasonForAdoption),
	}
}
