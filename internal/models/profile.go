package models

// Profile is the per-user extension record (career, interests, bio).
type Profile struct {
	Name              string   `json:"name"`
	Email             string   `json:"email"`
	Career            string   `json:"career"`
	Semester          string   `json:"semester"`
	SelectedInterests []string `json:"selectedInterests"`
	AboutMe           string   `json:"aboutMe"`
	Hobby             string   `json:"hobby"`
	FavoriteMovie     string   `json:"favoriteMovie"`
	ImageURL          string   `json:"imageUrl"`
}

// ProfileFields is what a user submits when saving their profile.
type ProfileFields struct {
	Name              string   `json:"name" validate:"notblank"`
	Email             string   `json:"email" validate:"required,email"`
	Career            string   `json:"career" validate:"required"`
	Semester          string   `json:"semester"`
	SelectedInterests []string `json:"selectedInterests" validate:"dive,notblank"`
	AboutMe           string   `json:"aboutMe" validate:"max=500"`
	Hobby             string   `json:"hobby" validate:"max=120"`
	FavoriteMovie     string   `json:"favoriteMovie" validate:"max=120"`
	ImageURL          string   `json:"imageUrl" validate:"omitempty,url"`
}
