package model

// Platform identifies a remote document platform.
type Platform string

const (
	Notion Platform = "notion"
)

// IsValid returns true if the platform is recognized.
func (p Platform) IsValid() bool {
	switch p {
	case Notion:
		return true
	default:
		return false
	}
}

// AllPlatforms returns all supported remote platforms.
func AllPlatforms() []Platform {
	return []Platform{Notion}
}

// String returns the string representation of the platform.
func (p Platform) String() string {
	return string(p)
}
