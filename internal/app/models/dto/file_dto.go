package dto

// FileIDResponse is returned after a file has been stored
type FileIDResponse struct {
	ID int64 `json:"id" example:"123"` // Identifier of the stored file
}

// FileListItem is one entry of an owner's file listing
type FileListItem struct {
	ID   int64  `json:"id" example:"123"`          // File identifier
	Name string `json:"name" example:"avatar.png"` // Stored file name
}

// SetDeletedRequest carries the tri-state soft-delete flag.
// A null or missing isDeleted leaves the file untouched.
type SetDeletedRequest struct {
	IsDeleted *bool `json:"isDeleted" example:"true"`
}

// FileTypeResponse describes a registered file type
type FileTypeResponse struct {
	ID    int64  `json:"id" example:"1"`
	Alias string `json:"alias" example:"User"`
	Name  string `json:"name" example:"User files"`
}
