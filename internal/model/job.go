package model

// ThumbnailJob is enqueued on the file queue for every uploaded image.
type ThumbnailJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}

// WelcomeJob is enqueued on the user queue when an account is created.
type WelcomeJob struct {
	UserID string `json:"userId"`
}
