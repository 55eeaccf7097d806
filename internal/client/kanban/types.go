package kanban

// Raw wire records as the backend serves them. Statuses stay in the remote
// vocabulary (todo / in_progress / done) until mapping.

type TaskRecord struct {
	TaskID        int      `json:"task_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Deadline      *string  `json:"deadline"`
	Status        string   `json:"status"`
	Priority      string   `json:"priority"`
	GroupID       int      `json:"group_id"`
	BoardID       int      `json:"board_id"`
	AssignerID    int      `json:"assigner_id"`
	UserIDs       []int    `json:"user_ids"`
	AssignedFiles []string `json:"assigned_files"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     *string  `json:"updated_at"`
}

type GroupRecord struct {
	GroupID     int    `json:"group_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

type UserRecord struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

type CreateTaskRequest struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Priority      string   `json:"priority,omitempty"`
	Deadline      *string  `json:"deadline,omitempty"`
	Status        string   `json:"status"`
	GroupID       int      `json:"group_id"`
	UserIDs       []int    `json:"user_ids,omitempty"`
	AssignedFiles []string `json:"assigned_files,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type UploadFileResponse struct {
	FilePath string `json:"file_path"`
}

type APIError struct {
	Detail string `json:"detail"`
}
