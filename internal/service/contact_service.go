package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"time"

	"contact_book/internal/model"
	"contact_book/internal/repository"
	"contact_book/internal/storage"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrContactNotFound  = errors.New("contact not found")
	ErrPhoneTaken       = errors.New("this phone number already exists in your contacts")
	ErrBlankField       = errors.New("firstname, lastname and phone must not be blank")
	ErrImageTooLarge    = errors.New("image exceeds the maximum allowed size of 2MB")
	ErrInvalidImageType = errors.New("invalid image type, only JPEG, PNG and WEBP are allowed")
	ErrNoImage          = errors.New("contact has no profile image")
)

// MaxImageSize caps profile image uploads at 2 MiB
const MaxImageSize = 2 * 1024 * 1024

// Allowed image MIME types mapped to the extension used for stored objects
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ContactService defines operations on a user's contact list. Every
// operation takes the acting user and enforces the access predicates; an
// ownership mismatch is reported as ErrContactNotFound so callers cannot
// probe for other users' records.
type ContactService interface {
	List(ctx context.Context, actor Actor) ([]model.Contact, error)
	Get(ctx context.Context, actor Actor, id int64) (*model.Contact, error)
	Create(ctx context.Context, actor Actor, req model.CreateContactRequest, image *multipart.FileHeader) (*model.Contact, error)
	Update(ctx context.Context, actor Actor, id int64, req model.UpdateContactRequest, image *multipart.FileHeader) (*model.Contact, error)
	Delete(ctx context.Context, actor Actor, id int64) error
	OpenImage(ctx context.Context, actor Actor, id int64) (io.ReadCloser, string, error)
}

type contactService struct {
	repo  repository.ContactRepository
	files storage.Storage
	log   *zap.Logger
}

// NewContactService creates a new ContactService
func NewContactService(repo repository.ContactRepository, files storage.Storage, log *zap.Logger) ContactService {
	return &contactService{repo: repo, files: files, log: log}
}

func (s *contactService) List(ctx context.Context, actor Actor) ([]model.Contact, error) {
	if actor.IsAdmin() {
		contacts, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list all contacts: %w", err)
		}
		return contacts, nil
	}
	contacts, err := s.repo.FindByOwner(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	return contacts, nil
}

func (s *contactService) Get(ctx context.Context, actor Actor, id int64) (*model.Contact, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find contact: %w", err)
	}
	if contact == nil || !CanRead(actor, contact) {
		return nil, ErrContactNotFound
	}
	return contact, nil
}

func (s *contactService) Create(ctx context.Context, actor Actor, req model.CreateContactRequest, image *multipart.FileHeader) (*model.Contact, error) {
	existing, err := s.repo.FindByOwnerAndPhone(ctx, actor.ID, req.Phone)
	if err != nil {
		return nil, fmt.Errorf("failed to check phone uniqueness: %w", err)
	}
	if existing != nil {
		return nil, ErrPhoneTaken
	}

	// Owner is always the caller; there is no way to create for someone else
	contact := &model.Contact{
		OwnerID:   actor.ID,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Phone:     req.Phone,
		Note:      req.Note,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	var storedImage string
	if image != nil {
		storedImage, err = s.storeImage(ctx, image)
		if err != nil {
			return nil, err
		}
		contact.ProfileImage = &storedImage
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		if storedImage != "" {
			if rmErr := s.files.Remove(ctx, storedImage); rmErr != nil {
				s.log.Warn("failed to clean up image after create failure",
					zap.String("image", storedImage), zap.Error(rmErr))
			}
		}
		// Two creates racing on the same phone: the constraint decides
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}
	return contact, nil
}

func (s *contactService) Update(ctx context.Context, actor Actor, id int64, req model.UpdateContactRequest, image *multipart.FileHeader) (*model.Contact, error) {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find contact for update: %w", err)
	}
	if contact == nil || !CanModify(actor, contact) {
		return nil, ErrContactNotFound
	}

	// Required fields may be omitted on a partial update, never blanked
	for _, f := range []*string{req.Firstname, req.Lastname, req.Phone} {
		if f != nil && *f == "" {
			return nil, ErrBlankField
		}
	}

	if req.Firstname != nil {
		contact.Firstname = *req.Firstname
	}
	if req.Lastname != nil {
		contact.Lastname = *req.Lastname
	}
	if req.Phone != nil && *req.Phone != contact.Phone {
		existing, err := s.repo.FindByOwnerAndPhone(ctx, contact.OwnerID, *req.Phone)
		if err != nil {
			return nil, fmt.Errorf("failed to check phone uniqueness: %w", err)
		}
		if existing != nil && existing.ID != contact.ID {
			return nil, ErrPhoneTaken
		}
		contact.Phone = *req.Phone
	}
	if req.Note != nil {
		contact.Note = req.Note
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		if errors.Is(err, repository.ErrUniqueViolation) {
			return nil, ErrPhoneTaken
		}
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}

	if image != nil {
		if err := s.replaceImage(ctx, contact, image); err != nil {
			return nil, err
		}
	}
	return contact, nil
}

func (s *contactService) Delete(ctx context.Context, actor Actor, id int64) error {
	contact, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to find contact for deletion: %w", err)
	}
	if contact == nil || !CanModify(actor, contact) {
		return ErrContactNotFound
	}

	// The stored image goes first. If the row delete then fails the client
	// gets an error and at worst an orphaned file remains, never a contact
	// row pointing at a missing file.
	if contact.ProfileImage != nil {
		if err := s.files.Remove(ctx, *contact.ProfileImage); err != nil {
			return fmt.Errorf("failed to remove profile image: %w", err)
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

func (s *contactService) OpenImage(ctx context.Context, actor Actor, id int64) (io.ReadCloser, string, error) {
	contact, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, "", err
	}
	if contact.ProfileImage == nil || *contact.ProfileImage == "" {
		return nil, "", ErrNoImage
	}

	rc, err := s.files.Open(ctx, *contact.ProfileImage)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, "", ErrNoImage
		}
		return nil, "", fmt.Errorf("failed to open profile image: %w", err)
	}
	return rc, *contact.ProfileImage, nil
}

// storeImage validates an uploaded file against the size cap and the MIME
// allow-list, then writes it under a generated object name. The uploaded
// filename is never used.
func (s *contactService) storeImage(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > MaxImageSize {
		return "", ErrImageTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	// Sniff the real content type; the client-declared header is not trusted
	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("failed to detect file type: %w", err)
	}
	ext, ok := allowedImageTypes[mtype.String()]
	if !ok {
		return "", ErrInvalidImageType
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("failed to rewind uploaded file: %w", err)
	}

	name := uuid.NewString() + ext
	if err := s.files.Save(ctx, name, src, fh.Size, mtype.String()); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return name, nil
}

// replaceImage stores the new image, points the contact at it and removes
// the superseded file. updated_at refreshes with the image reference.
func (s *contactService) replaceImage(ctx context.Context, contact *model.Contact, fh *multipart.FileHeader) error {
	name, err := s.storeImage(ctx, fh)
	if err != nil {
		return err
	}

	updatedAt, err := s.repo.UpdateProfileImage(ctx, contact.ID, &name)
	if err != nil {
		if rmErr := s.files.Remove(ctx, name); rmErr != nil {
			s.log.Warn("failed to clean up image after reference update failure",
				zap.String("image", name), zap.Error(rmErr))
		}
		return fmt.Errorf("failed to update image reference: %w", err)
	}

	old := contact.ProfileImage
	contact.ProfileImage = &name
	contact.UpdatedAt = updatedAt

	if old != nil && *old != name {
		if err := s.files.Remove(ctx, *old); err != nil {
			s.log.Warn("failed to remove superseded image", zap.String("image", *old), zap.Error(err))
		}
	}
	return nil
}
