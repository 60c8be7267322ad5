package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/yigit/lorebase/internal/app/models"
	"github.com/yigit/lorebase/internal/db"
	"github.com/yigit/lorebase/internal/pkg/apperrors"
	"github.com/yigit/lorebase/internal/pkg/filestorage"
)

var errInjected = errors.New("injected failure")

// memStore backs the in-memory repositories. Rows are stored by value so a
// transaction snapshot can be restored on rollback.
type memStore struct {
	mu sync.Mutex

	fileTypes  map[string]models.FileType
	files      map[int64]models.File
	links      []models.FileLink
	users      map[int64]models.User
	nextFileID int64
	nextLinkID int64

	fileTypeLookups int
	linkCreateErr   error
	commitErr       error
}

func newMemStore() *memStore {
	return &memStore{
		fileTypes: map[string]models.FileType{},
		files:     map[int64]models.File{},
		users:     map[int64]models.User{},
	}
}

func (m *memStore) addFileType(id int64, alias, root string) *models.FileType {
	m.mu.Lock()
	defer m.mu.Unlock()
	ft := models.FileType{ID: id, Alias: alias, Name: alias + " files", RootPath: root}
	m.fileTypes[alias] = ft
	return &ft
}

func (m *memStore) addUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memStore) fileCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.files)
}

func (m *memStore) linkCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.links)
}

func (m *memStore) file(id int64) (models.File, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	return f, ok
}

// fakeTransactor restores the memStore snapshot when fn or the commit fails
type fakeTransactor struct {
	store *memStore
	calls int
}

func (t *fakeTransactor) WithTransaction(ctx context.Context, fn db.TransactionFn) error {
	t.calls++

	t.store.mu.Lock()
	files := make(map[int64]models.File, len(t.store.files))
	for k, v := range t.store.files {
		files[k] = v
	}
	links := append([]models.FileLink(nil), t.store.links...)
	t.store.mu.Unlock()

	err := fn(ctx)
	if err == nil {
		t.store.mu.Lock()
		err = t.store.commitErr
		t.store.mu.Unlock()
	}

	if err != nil {
		t.store.mu.Lock()
		t.store.files = files
		t.store.links = links
		t.store.mu.Unlock()
		return err
	}
	return nil
}

type fakeFileTypeRepo struct{ store *memStore }

func (r *fakeFileTypeRepo) Upsert(_ context.Context, ft *models.FileType) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.fileTypes[ft.Alias]; ok {
		ft.ID = existing.ID
	} else {
		ft.ID = int64(len(r.store.fileTypes) + 1)
	}
	r.store.fileTypes[ft.Alias] = *ft
	return ft.ID, nil
}

func (r *fakeFileTypeRepo) GetByAlias(_ context.Context, alias string) (*models.FileType, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.fileTypeLookups++
	ft, ok := r.store.fileTypes[alias]
	if !ok {
		return nil, nil
	}
	return &ft, nil
}

func (r *fakeFileTypeRepo) List(_ context.Context) ([]*models.FileType, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := make([]*models.FileType, 0, len(r.store.fileTypes))
	for _, ft := range r.store.fileTypes {
		ft := ft
		out = append(out, &ft)
	}
	return out, nil
}

type fakeFileRepo struct{ store *memStore }

func (r *fakeFileRepo) Create(_ context.Context, file *models.File) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, f := range r.store.files {
		if f.FileTypeID == file.FileTypeID && f.OwnerID == file.OwnerID && f.Name == file.Name {
			return 0, apperrors.ErrDuplicateFile
		}
	}
	r.store.nextFileID++
	file.ID = r.store.nextFileID
	file.CreatedAt = time.Now()
	row := *file
	row.FileType = nil
	r.store.files[file.ID] = row
	return file.ID, nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id int64) (*models.File, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	f, ok := r.store.files[id]
	if !ok {
		return nil, apperrors.ErrFileNotFound
	}
	for _, ft := range r.store.fileTypes {
		if ft.ID == f.FileTypeID {
			ft := ft
			f.FileType = &ft
		}
	}
	return &f, nil
}

func (r *fakeFileRepo) GetByIDForUpdate(ctx context.Context, id int64) (*models.File, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeFileRepo) UpdateDeletedState(_ context.Context, file *models.File) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.files[file.ID]; !ok {
		return apperrors.ErrFileNotFound
	}
	row := *file
	row.FileType = nil
	r.store.files[file.ID] = row
	return nil
}

func (r *fakeFileRepo) Delete(_ context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.files[id]; !ok {
		return apperrors.ErrFileNotFound
	}
	delete(r.store.files, id)
	return nil
}

type fakeLinkRepo struct{ store *memStore }

func (r *fakeLinkRepo) Create(_ context.Context, link *models.FileLink) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.linkCreateErr != nil {
		return 0, r.store.linkCreateErr
	}
	r.store.nextLinkID++
	link.ID = r.store.nextLinkID
	r.store.links = append(r.store.links, *link)
	return link.ID, nil
}

func (r *fakeLinkRepo) ListActiveFiles(_ context.Context, owner models.Owner) ([]*models.File, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*models.File
	for _, l := range r.store.links {
		if l.OwnerKind != owner.Kind || l.OwnerID != owner.ID || l.DeletedAt != nil {
			continue
		}
		f, ok := r.store.files[l.FileID]
		if !ok || f.IsDeleted {
			continue
		}
		out = append(out, &f)
	}
	return out, nil
}

func (r *fakeLinkRepo) DeleteByFileID(_ context.Context, fileID int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	kept := r.store.links[:0]
	for _, l := range r.store.links {
		if l.FileID != fileID {
			kept = append(kept, l)
		}
	}
	r.store.links = kept
	return nil
}

type fakeUserRepo struct {
	store      *memStore
	lastLogins []int64
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	user.ID = int64(len(r.store.users) + 1)
	r.store.users[user.ID] = *user
	return user.ID, nil
}

func (r *fakeUserRepo) Exists(_ context.Context, id int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.users[id]
	return ok, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateLastLogin(_ context.Context, id int64) error {
	r.lastLogins = append(r.lastLogins, id)
	return nil
}

// faultyBlobs fails Commit of every staged file with commitErr
type faultyBlobs struct {
	filestorage.BlobStore
	commitErr error
}

func (b *faultyBlobs) Stage(dir string, r io.Reader) (filestorage.StagedFile, error) {
	staged, err := b.BlobStore.Stage(dir, r)
	if err != nil {
		return nil, err
	}
	return &faultyStaged{StagedFile: staged, err: b.commitErr}, nil
}

type faultyStaged struct {
	filestorage.StagedFile
	err error
}

func (s *faultyStaged) Commit(string) error { return s.err }
