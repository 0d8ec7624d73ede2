package models

// DefaultArtistImage is served when an artist has no picture of their own.
const DefaultArtistImage = "/static/images/default-artist.jpg"

// Artist holds artist information. Only the first name is required.
type Artist struct {
	BaseModel
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Location       string `json:"location"`
	Medium         string `json:"medium"`
	Style          string `json:"style"`
	Theme          string `json:"theme"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
	ImageURL       string `json:"image_url"`
	IsActive       bool   `json:"is_active"`

	Artworks []Artwork `json:"artworks,omitempty"`
}

// FullName returns the display name, appending the last name when present.
func (a *Artist) FullName() string {
	if a.LastName != "" {
		return a.FirstName + " " + a.LastName
	}
	return a.FirstName
}

// PrimaryImage picks the uploaded picture first, then the external URL,
// then the placeholder.
func (a *Artist) PrimaryImage() string {
	if a.ProfilePicture != "" {
		return a.ProfilePicture
	}
	if a.ImageURL != "" {
		return a.ImageURL
	}
	return DefaultArtistImage
}
