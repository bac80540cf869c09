package dto

// SubItem is the user-facing projection of a submission. Storage internals
// (blob label, etag, confidence) never appear here.
type SubItem struct {
	ID       uint   `json:"id"`
	Src      string `json:"src"`
	Score    int    `json:"score"`
	Prompt   string `json:"prompt"`
	Rotation int    `json:"rotation"`
	Codename string `json:"codename"`
	UserID   uint   `json:"userId"`
	RumbleID *uint  `json:"rumbleId"`
}

// UploadResponse identifies a stored page.
type UploadResponse struct {
	BlobLabel string `json:"blobLabel"`
	Etag      string `json:"etag"`
	RawBytes  []byte `json:"-"`
}

// SubmitRequest is the multipart form of POST /submissions (page file aside).
type SubmitRequest struct {
	PromptID      uint   `form:"promptId" validate:"required"`
	RumbleID      *uint  `form:"rumbleId"`
	SourceID      int    `form:"sourceId" validate:"omitempty,oneof=1 2"`
	Transcription string `form:"transcription" validate:"omitempty,max=20000"`
}

type FlagRequest struct {
	Flags []uint `json:"flags" validate:"required,min=1,dive,required"`
}
