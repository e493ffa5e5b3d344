package models

// Folder is one destination folder in the taxpayer's document portal.
type Folder struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DocumentRequest is an open request from the firm for taxpayer documents.
type DocumentRequest struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// UploadOutcome is the normalized result of a single file transfer.
// Executors never surface Go errors to the session loop; every failure
// mode collapses to OK=false with a human-readable message.
type UploadOutcome struct {
	OK      bool
	Message string
}
