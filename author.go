package blogcore

// DefaultAuthorBio is shown for authors without a profile.
const DefaultAuthorBio = "A passionate writer and anime fan with deep knowledge of the medium and its cultural impact."

type AuthorLink struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	URL  string `json:"url" yaml:"url" toml:"url"`
}

type Author struct {
	Name      string       `json:"name" yaml:"name" toml:"name"`
	Title     string       `json:"title" yaml:"title" toml:"title"`
	Bio       string       `json:"bio" yaml:"bio" toml:"bio"`
	AvatarURL string       `json:"avatarURL" yaml:"avatarURL" toml:"avatarURL"`
	Links     []AuthorLink `json:"links" yaml:"links" toml:"links"`
}

// defaultAuthor is the profile used when an author has no configured profile.
func defaultAuthor(name string) Author {
	return Author{
		Name:  name,
		Title: "Anime Enthusiast",
		Bio:   DefaultAuthorBio,
	}
}
