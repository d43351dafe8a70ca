package drive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"hotel-bot/api/internal/registration"
)

// Store — папка с фото документов в Google Drive.
type Store struct {
	svc      *gdrive.Service
	folderID string
	// Public — выдавать ссылку «чтение для всех, у кого есть ссылка».
	Public bool
}

func New(ctx context.Context, credentialsFile, folderID string, public bool) (*Store, error) {
	svc, err := gdrive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gdrive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("drive: new service: %w", err)
	}
	return NewWithService(svc, folderID, public), nil
}

func NewWithService(svc *gdrive.Service, folderID string, public bool) *Store {
	return &Store{svc: svc, folderID: folderID, Public: public}
}

const fileFields = "id, name, webViewLink, createdTime"

func toPhoto(f *gdrive.File) registration.Photo {
	p := registration.Photo{ID: f.Id, Name: f.Name, Link: f.WebViewLink}
	if t, err := time.Parse(time.RFC3339, f.CreatedTime); err == nil {
		p.CreatedAt = t
	}
	return p
}

func (s *Store) Upload(ctx context.Context, data []byte, name string) (registration.Photo, error) {
	meta := &gdrive.File{Name: name, Parents: []string{s.folderID}, MimeType: "image/jpeg"}
	f, err := s.svc.Files.Create(meta).
		Media(bytes.NewReader(data)).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return registration.Photo{}, fmt.Errorf("drive: upload %s: %w", name, err)
	}
	if s.Public {
		perm := &gdrive.Permission{Type: "anyone", Role: "reader"}
		if _, err := s.svc.Permissions.Create(f.Id, perm).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
			// фото уже загружено, без публичной ссылки тоже можно работать
			log.Warnf("drive: make %s public: %v", f.Id, err)
		}
	}
	return toPhoto(f), nil
}

// List — последние фото папки, новые первыми.
func (s *Store) List(ctx context.Context, limit int) ([]registration.Photo, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType contains 'image/' and trashed = false", s.folderID)
	resp, err := s.svc.Files.List().
		Q(q).
		OrderBy("createdTime desc").
		PageSize(int64(limit)).
		Fields("files(" + fileFields + ")").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("drive: list: %w", err)
	}
	out := make([]registration.Photo, 0, len(resp.Files))
	for _, f := range resp.Files {
		out = append(out, toPhoto(f))
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.svc.Files.Delete(id).SupportsAllDrives(true).Context(ctx).Do(); err != nil {
		return fmt.Errorf("drive: delete %s: %w", id, err)
	}
	return nil
}
