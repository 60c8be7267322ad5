package models

// OwnerKind names the category of entity a file can be attached to.
// Its value doubles as the FileType alias for that category.
type OwnerKind string

const (
	OwnerKindUser                     OwnerKind = "User"
	OwnerKindInformationArticleDetail OwnerKind = "InformationArticleDetail"
	OwnerKindNewsDetail               OwnerKind = "NewsDetail"
)

// Owner identifies one owning entity
type Owner struct {
	Kind OwnerKind
	ID   int64
}
