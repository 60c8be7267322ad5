package models

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType maps an owner-kind alias to the directory its files live under
type FileType struct {
	ID        int64     `json:"id" db:"id"`
	Alias     string    `json:"alias" db:"alias"`
	Name      string    `json:"name" db:"name"`
	RootPath  string    `json:"rootPath" db:"root_path"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// File is the metadata record of one uploaded blob
type File struct {
	ID         int64      `json:"id" db:"id"`
	Name       string     `json:"name" db:"name"`
	Extension  string     `json:"extension" db:"extension"`
	FileTypeID int64      `json:"fileTypeId" db:"file_type_id"`
	OwnerID    int64      `json:"ownerId" db:"owner_id"`
	IsDeleted  bool       `json:"isDeleted" db:"is_deleted"`
	CreatedBy  *int64     `json:"createdBy,omitempty" db:"created_by"`
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedBy  *int64     `json:"updatedBy,omitempty" db:"updated_by"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
	DeletedBy  *int64     `json:"deletedBy,omitempty" db:"deleted_by"`
	DeletedAt  *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`

	FileType *FileType `json:"fileType,omitempty"` // Relation, no db tag
}

// NewFile builds a File and derives its extension from name.
// The extension is never recomputed afterwards.
func NewFile(name string, fileType *FileType, ownerID int64, createdBy *int64) *File {
	return &File{
		Name:       name,
		Extension:  ExtensionOf(name),
		FileTypeID: fileType.ID,
		OwnerID:    ownerID,
		CreatedBy:  createdBy,
		FileType:   fileType,
	}
}

// ExtensionOf returns the lowercase extension of name including the dot,
// or "" when there is none
func ExtensionOf(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// SetDeleted flips the soft-delete flag when it differs from deleted and
// stamps the audit fields. It reports whether anything changed.
func (f *File) SetDeleted(deleted bool, actingUserID int64, now time.Time) bool {
	if f.IsDeleted == deleted {
		return false
	}

	f.IsDeleted = deleted
	f.UpdatedBy = &actingUserID
	f.UpdatedAt = &now
	if deleted {
		f.DeletedBy = &actingUserID
		f.DeletedAt = &now
	} else {
		f.DeletedBy = nil
		f.DeletedAt = nil
	}
	return true
}

// FileLink ties a File to one owner entity of one kind
type FileLink struct {
	ID        int64      `json:"id" db:"id"`
	FileID    int64      `json:"fileId" db:"file_id"`
	OwnerKind OwnerKind  `json:"ownerKind" db:"owner_kind"`
	OwnerID   int64      `json:"ownerId" db:"owner_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}
